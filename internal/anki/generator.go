package anki

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/grunwald/internal"
	"codeberg.org/snonux/grunwald/internal/word"
)

// Card represents a single Anki flashcard
type Card struct {
	Front         string // The word itself
	Type          string // Part of speech
	Transcription string
	Translation   string
	Notes         string // Description and etymology
	ImageFile     string // Path to the exported picture, if any

	imageData []byte
}

// GeneratorOptions configures the Anki export
type GeneratorOptions struct {
	OutputPath     string // Output CSV file path
	MediaFolder    string // Folder the pictures are written to
	IncludeHeaders bool
}

// DefaultGeneratorOptions returns sensible defaults
func DefaultGeneratorOptions() *GeneratorOptions {
	return &GeneratorOptions{
		OutputPath:     "anki_import.csv",
		MediaFolder:    "anki_media",
		IncludeHeaders: true,
	}
}

// Generator creates Anki-compatible import files
type Generator struct {
	options *GeneratorOptions
	cards   []Card
}

// NewGenerator creates a new Anki generator
func NewGenerator(options *GeneratorOptions) *Generator {
	if options == nil {
		options = DefaultGeneratorOptions()
	}
	return &Generator{
		options: options,
		cards:   make([]Card, 0),
	}
}

// CardFromWord renders a word as a card. Markup is reduced to plain text.
func CardFromWord(w word.Word) Card {
	p := w.Plain()

	var notes []string
	for _, s := range []string{p.Description, p.Etymology, p.Association} {
		if s != "" {
			notes = append(notes, s)
		}
	}

	card := Card{
		Front:         p.Name,
		Type:          p.Type,
		Transcription: p.Transcription,
		Translation:   p.Translation,
		Notes:         strings.Join(notes, "\n\n"),
	}
	if w.HasImage() && w.Image.HasData() {
		card.imageData = w.Image.Data
	}
	return card
}

// AddCard adds a card to the collection
func (g *Generator) AddCard(card Card) {
	g.cards = append(g.cards, card)
}

// AddWords adds one card per word
func (g *Generator) AddWords(words []word.Word) {
	for _, w := range words {
		g.AddCard(CardFromWord(w))
	}
}

// GetCards returns a slice of all cards for modification
func (g *Generator) GetCards() []Card {
	return g.cards
}

// WriteMedia writes the pictures carried by the cards into the media
// folder and points the cards at them
func (g *Generator) WriteMedia() error {
	for i, card := range g.cards {
		if len(card.imageData) == 0 {
			continue
		}
		if err := os.MkdirAll(g.options.MediaFolder, 0755); err != nil {
			return fmt.Errorf("failed to create media folder: %w", err)
		}

		name := internal.SanitizeFilename(card.Front) + imageExt(card.imageData)
		path := uniquePath(filepath.Join(g.options.MediaFolder, name))
		if err := os.WriteFile(path, card.imageData, 0644); err != nil {
			return fmt.Errorf("failed to write picture of %s: %w", card.Front, err)
		}
		g.cards[i].ImageFile = path
	}
	return nil
}

// GenerateCSV creates a CSV file for Anki import
func (g *Generator) GenerateCSV() error {
	file, err := os.Create(g.options.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if g.options.IncludeHeaders {
		headers := []string{"German", "Type", "Pronunciation", "Translation", "Image", "Notes"}
		if err := writer.Write(headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for _, card := range g.cards {
		record := []string{
			card.Front,
			card.Type,
			card.Transcription,
			card.Translation,
			formatImageField(card.ImageFile),
			card.Notes,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write card: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	return nil
}

// formatImageField formats image file reference for Anki
func formatImageField(imageFile string) string {
	if imageFile == "" {
		return ""
	}
	return fmt.Sprintf(`<img src="%s">`, filepath.Base(imageFile))
}

func imageExt(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

// uniquePath appends _1, _2, ... to path until it names no existing file
func uniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// Stats returns statistics about the card collection
func (g *Generator) Stats() (totalCards, withImages int) {
	totalCards = len(g.cards)
	for _, card := range g.cards {
		if card.ImageFile != "" {
			withImages++
		}
	}
	return
}
