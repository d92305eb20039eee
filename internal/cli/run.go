package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/grunwald/internal"
	"codeberg.org/snonux/grunwald/internal/anki"
	"codeberg.org/snonux/grunwald/internal/archive"
	"codeberg.org/snonux/grunwald/internal/batch"
	"codeberg.org/snonux/grunwald/internal/image"
	"codeberg.org/snonux/grunwald/internal/storage"
	"codeberg.org/snonux/grunwald/internal/word"
)

func runSearch(cmd *cobra.Command, flags *Flags, name string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()
	a.pipeline.Subscribe(storage.Events{
		OnWordResolved: func(w word.Word) { printWord(out, w) },
		OnWordCachedChanged: func(stored bool) {
			if stored {
				fmt.Fprintln(out, "Stored in database")
			} else {
				fmt.Fprintln(out, "Not stored in database")
			}
		},
	})

	w, err := a.pipeline.Lookup(cmd.Context(), name)
	if err != nil {
		return err
	}
	if !flags.Save || w.IsSaved() {
		return nil
	}
	return a.pipeline.InsertWord(cmd.Context())
}

func runList(cmd *cobra.Command) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()
	a.pipeline.Subscribe(storage.Events{
		OnWordListLoaded: func(words []word.Word) {
			for _, w := range words {
				fmt.Fprintf(out, "%s\t%s\n", w.Name, w.Type)
			}
		},
	})

	err = a.pipeline.PreloadWords(cmd.Context())
	if errors.Is(err, storage.ErrNoWords) {
		fmt.Fprintln(out, "No words stored yet")
		return nil
	}
	return err
}

func runRemove(cmd *cobra.Command, name string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	key := storage.NormalizeName(name)
	exists, err := a.store.Exists(cmd.Context(), key)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("remove word %q: %w", key, storage.ErrNotFound)
	}

	// Selects the stored word in the cache; no network access for known words
	if _, err := a.pipeline.Lookup(cmd.Context(), key); err != nil {
		return err
	}
	if err := a.pipeline.RemoveWord(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", key)
	return nil
}

func runImage(cmd *cobra.Command, flags *Flags, name string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	w, err := a.pipeline.Lookup(cmd.Context(), name)
	if err != nil {
		return err
	}

	id := image.NoImageID
	if w.HasImage() {
		id = w.Name
	}
	size := image.Size{Width: flags.Width, Height: flags.Height}
	res := <-a.images.RequestImage(cmd.Context(), id, size)
	if !res.Valid && !errors.Is(res.Err, image.ErrNoImage) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: using placeholder for %s: %v\n", w.Name, res.Err)
	}

	// Keep fetched bytes with the stored word so the next run needs no network
	if w.IsSaved() && res.Valid && !w.Image.HasData() {
		if err := a.pipeline.InsertWord(cmd.Context()); err != nil {
			a.log.Warn("failed to store fetched image", "name", w.Name, "error", err)
		}
	}

	path := flags.Output
	if path == "" {
		path = internal.SanitizeFilename(w.Name) + ".png"
	}
	if err := writePNG(path, res); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Image written to %s\n", path)
	return nil
}

func runImport(cmd *cobra.Command, file string) error {
	words, err := batch.ReadBatchFile(file)
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()
	im := batch.NewImporter(a.pipeline, a.log)
	im.Progress = func(i, total int, res batch.Result) {
		line := fmt.Sprintf("[%d/%d] %s: %s", i, total, res.Name, res.Outcome)
		if res.Err != nil {
			line += " (" + res.Err.Error() + ")"
		}
		fmt.Fprintln(out, line)
	}

	report, err := im.Import(cmd.Context(), words)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nDone! %d saved, %d already stored, %d failed\n",
		report.Count(batch.Saved), report.Count(batch.AlreadyStored), report.Count(batch.Failed))
	if failed := report.Count(batch.Failed); failed > 0 {
		return fmt.Errorf("%d of %d words failed", failed, len(words))
	}
	return nil
}

func runReset(cmd *cobra.Command) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	a.store.Reset(cmd.Context())
	fmt.Fprintf(cmd.OutOrStdout(), "Database reset: %s\n", a.store.Path())
	return nil
}

func runArchive(cmd *cobra.Command) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	archived, err := archive.ArchiveDatabase(cfg.Database.Path, time.Now())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Database archived to: %s\n", archived)
	return nil
}

func runExport(cmd *cobra.Command, flags *Flags) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	words, err := a.store.All(cmd.Context())
	if err != nil {
		return fmt.Errorf("load all words from db: %w", err)
	}
	if len(words) == 0 {
		return fmt.Errorf("nothing to export: %w", storage.ErrNoWords)
	}

	media := flags.MediaDir
	if media == "" {
		media = strings.TrimSuffix(flags.ExportFile, filepath.Ext(flags.ExportFile)) + "_media"
	}
	gen := anki.NewGenerator(&anki.GeneratorOptions{
		OutputPath:     flags.ExportFile,
		MediaFolder:    media,
		IncludeHeaders: true,
	})
	gen.AddWords(words)
	if err := gen.WriteMedia(); err != nil {
		return err
	}
	if err := gen.GenerateCSV(); err != nil {
		return err
	}

	total, withImages := gen.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d cards (%d with pictures) to %s\n", total, withImages, flags.ExportFile)
	return nil
}

func printWord(out io.Writer, w word.Word) {
	p := w.Plain()
	fmt.Fprintf(out, "%s (%s)\n", p.Name, p.Type)

	fields := []struct {
		label, value string
	}{
		{"Pronunciation", p.Transcription},
		{"Translation", p.Translation},
		{"Description", p.Description},
		{"Etymology", p.Etymology},
		{"Related", p.Association},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		fmt.Fprintf(out, "  %s: %s\n", f.label, strings.ReplaceAll(f.value, "\n", "\n    "))
	}
}

func writePNG(path string, res image.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	if err := image.EncodePNG(f, res); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}
	return nil
}
