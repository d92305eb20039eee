package wiktionary

import (
	"context"
	"errors"
	"fmt"

	"codeberg.org/snonux/grunwald/internal/parser"
	"codeberg.org/snonux/grunwald/internal/word"
)

// ContentFetcher resolves a word from its extract
type ContentFetcher struct {
	client *Client
	parser *parser.Parser
}

// NewContentFetcher creates a content fetcher
func NewContentFetcher(client *Client, p *parser.Parser) *ContentFetcher {
	return &ContentFetcher{client: client, parser: p}
}

// FetchWordContent probes, fetches and parses the entry for name
func (f *ContentFetcher) FetchWordContent(ctx context.Context, name string) (word.Word, error) {
	if err := f.client.Probe(ctx); err != nil {
		return word.Word{}, err
	}

	body, err := f.client.Get(ctx, f.client.ContentURL(name))
	if err != nil {
		return word.Word{}, err
	}

	w, err := f.parser.ParseWordContent(name, body)
	if err != nil {
		return word.Word{}, parseError(name, err)
	}

	f.client.log.Info("word fetched", "name", name, "type", w.Type.String())
	return w, nil
}

// Phase is a step of the image fetch
type Phase int

const (
	PhaseResolvingURL Phase = iota
	PhaseFetchingBytes
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseResolvingURL:
		return "resolving url"
	case PhaseFetchingBytes:
		return "fetching bytes"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ImageFetcher resolves a page image in two requests: the image
// metadata first, then the bytes at the URL it names.
type ImageFetcher struct {
	client *Client
	parser *parser.Parser

	// OnPhase, when set, is called on entering every phase
	OnPhase func(name string, phase Phase)
}

// NewImageFetcher creates an image fetcher
func NewImageFetcher(client *Client, p *parser.Parser) *ImageFetcher {
	return &ImageFetcher{client: client, parser: p}
}

// FetchWordImage returns the page image of name with its bytes.
// Either phase failing ends the fetch with one error; nothing is retried.
func (f *ImageFetcher) FetchWordImage(ctx context.Context, name string) (word.Image, error) {
	var (
		img word.Image
		err error
	)

	phase := PhaseResolvingURL
	for {
		if f.OnPhase != nil {
			f.OnPhase(name, phase)
		}

		switch phase {
		case PhaseResolvingURL:
			img, err = f.resolve(ctx, name)
			if err != nil {
				phase = PhaseFailed
				continue
			}
			phase = PhaseFetchingBytes

		case PhaseFetchingBytes:
			img.Data, err = f.client.GetMedia(ctx, img.URL)
			if err != nil {
				phase = PhaseFailed
				continue
			}
			phase = PhaseDone

		case PhaseDone:
			f.client.log.Info("image fetched", "name", name, "url", img.URL, "bytes", len(img.Data))
			return img, nil

		case PhaseFailed:
			f.client.log.Warn("image fetch failed", "name", name, "error", err)
			return word.Image{}, err
		}
	}
}

func (f *ImageFetcher) resolve(ctx context.Context, name string) (word.Image, error) {
	if err := f.client.Probe(ctx); err != nil {
		return word.Image{}, err
	}

	body, err := f.client.Get(ctx, f.client.ImageURL(name))
	if err != nil {
		return word.Image{}, err
	}

	img, err := f.parser.ParseWordImage(body)
	if err != nil {
		return word.Image{}, parseError(name, err)
	}
	if img.URL == "" {
		return word.Image{}, &NetworkError{
			Kind:    KindParse,
			Message: fmt.Sprintf("image url of %q is empty", name),
			Code:    NoCode,
		}
	}
	return img, nil
}

func parseError(name string, err error) *NetworkError {
	code := NoCode
	var perr *parser.ParseError
	if errors.As(err, &perr) {
		code = perr.Code
	}
	return &NetworkError{
		Kind:    KindParse,
		Message: fmt.Sprintf("%s: %v", name, err),
		Code:    code,
		Err:     err,
	}
}
