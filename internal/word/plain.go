package word

import (
	"strings"

	"github.com/k3a/html2text"
)

// PlainWord is the display form of a Word with all markup removed
type PlainWord struct {
	Name          string
	Type          string
	Transcription string
	Translation   string
	Association   string
	Etymology     string
	Description   string
}

// Plain renders the word's markup fields as plain text.
// Parsed fields are stored verbatim; stripping happens here, at display time.
func (w Word) Plain() PlainWord {
	return PlainWord{
		Name:          w.Name,
		Type:          w.Type.String(),
		Transcription: PlainText(w.Transcription),
		Translation:   PlainText(w.Translation),
		Association:   PlainText(w.Association),
		Etymology:     PlainText(w.Etymology),
		Description:   PlainText(w.Description),
	}
}

// PlainText converts an HTML fragment to trimmed plain text
func PlainText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	text := html2text.HTML2TextWithOptions(fragment,
		html2text.WithUnixLineBreaks(),
		html2text.WithLinksInnerText(),
	)
	return strings.TrimSpace(text)
}
