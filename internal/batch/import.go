package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"codeberg.org/snonux/grunwald/internal/word"
)

// Resolver resolves a word into the cache and saves the cached word
type Resolver interface {
	Lookup(ctx context.Context, name string) (word.Word, error)
	InsertWord(ctx context.Context) error
}

// Outcome is what happened to one imported word
type Outcome int

const (
	Saved Outcome = iota
	AlreadyStored
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Saved:
		return "saved"
	case AlreadyStored:
		return "already stored"
	default:
		return "failed"
	}
}

// Result is the outcome of importing one word
type Result struct {
	Name    string
	Outcome Outcome
	Err     error
}

// Report summarizes an import run
type Report struct {
	Results []Result
}

// Count returns the number of words with the given outcome
func (r Report) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Err joins the errors of all failed words, nil when every word succeeded
func (r Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Name, res.Err))
		}
	}
	return errors.Join(errs...)
}

// Importer resolves and saves words one after the other
type Importer struct {
	resolver Resolver
	log      *slog.Logger
	// Progress, when set, is called after every word
	Progress func(i, total int, res Result)
}

// NewImporter creates an importer saving through resolver
func NewImporter(resolver Resolver, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Importer{resolver: resolver, log: logger.With("component", "batch")}
}

// Import resolves and saves every word. A failing word does not stop the
// run; its error is recorded in the report. Cancelling ctx stops the run
// before the next word.
func (im *Importer) Import(ctx context.Context, words []string) (Report, error) {
	var report Report
	for i, name := range words {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res := im.importWord(ctx, name)
		report.Results = append(report.Results, res)
		if im.Progress != nil {
			im.Progress(i+1, len(words), res)
		}
	}

	im.log.Info("import finished", "words", len(words),
		"saved", report.Count(Saved), "already_stored", report.Count(AlreadyStored),
		"failed", report.Count(Failed))
	return report, nil
}

func (im *Importer) importWord(ctx context.Context, name string) Result {
	w, err := im.resolver.Lookup(ctx, name)
	if err != nil {
		im.log.Warn("word not resolved", "name", name, "error", err)
		return Result{Name: name, Outcome: Failed, Err: err}
	}
	if w.IsSaved() {
		return Result{Name: w.Name, Outcome: AlreadyStored}
	}

	if err := im.resolver.InsertWord(ctx); err != nil {
		im.log.Warn("word not saved", "name", name, "error", err)
		return Result{Name: w.Name, Outcome: Failed, Err: err}
	}
	return Result{Name: w.Name, Outcome: Saved}
}
