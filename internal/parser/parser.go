package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"codeberg.org/snonux/grunwald/internal/word"
)

// DefaultLanguage is the language section parsed when none is configured
const DefaultLanguage = "German"

// Parser turns dictionary API payloads into words and images.
// It holds no state besides its configuration and is safe for concurrent use.
type Parser struct {
	language string
	log      *slog.Logger
	now      func() time.Time
}

// Option configures a Parser
type Option func(*Parser)

// WithLogger sets the logger used for parse diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.log = logger.With("component", "parser")
		}
	}
}

// WithClock sets the clock used to timestamp parsed words
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a parser for the given target language
func New(language string, opts ...Option) *Parser {
	if language == "" {
		language = DefaultLanguage
	}
	p := &Parser{
		language: language,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Language returns the configured target language
func (p *Parser) Language() string {
	return p.language
}

// ParseWordContent parses a query/extracts response for name.
// The envelope is {query:{pages:{<id>:{extract:"<html>"}}}}.
func (p *Parser) ParseWordContent(name string, raw []byte) (word.Word, error) {
	page, err := p.firstPage(raw)
	if err != nil {
		return word.Word{}, err
	}

	extract, ok := stringMember(page, "extract")
	if !ok {
		return word.Word{}, p.fail(missing("extract"))
	}

	p.log.Debug("remote word content", "name", name, "bytes", len(extract))

	w, err := p.parseMarkup(name, extract)
	if err != nil {
		return word.Word{}, err
	}
	return w, nil
}

// ParseWordImage parses a query/pageimages response.
// The envelope is {query:{pages:{<id>:{original:{source,width,height}}}}}.
// An empty source is not an error here; the caller decides what to do with it.
func (p *Parser) ParseWordImage(raw []byte) (word.Image, error) {
	page, err := p.firstPage(raw)
	if err != nil {
		return word.Image{}, err
	}

	original, ok := objectMember(page, "original")
	if !ok {
		return word.Image{}, p.fail(missing("original"))
	}

	source, ok := stringMember(original, "source")
	if !ok {
		return word.Image{}, p.fail(missing("source"))
	}
	width, ok := intMember(original, "width")
	if !ok {
		return word.Image{}, p.fail(missing("width"))
	}
	height, ok := intMember(original, "height")
	if !ok {
		return word.Image{}, p.fail(missing("height"))
	}

	p.log.Debug("remote image url", "url", source, "width", width, "height", height)

	return word.Image{
		ID:     word.UnsavedID,
		URL:    source,
		Width:  width,
		Height: height,
	}, nil
}

// firstPage walks query.pages and returns the first page in document order
func (p *Parser) firstPage(raw []byte) (map[string]json.RawMessage, error) {
	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		perr := malformed("json parse error: %v", err)
		var syntax *json.SyntaxError
		if errors.As(err, &syntax) {
			perr.Code = int(syntax.Offset)
		}
		return nil, p.fail(perr)
	}

	root, ok := decodeObject(raw)
	if !ok {
		return nil, p.fail(malformed("json document is not an object"))
	}
	if len(root) == 0 {
		return nil, p.fail(malformed("json document is empty"))
	}

	query, ok := objectMember(root, "query")
	if !ok {
		return nil, p.fail(missing("query"))
	}

	pagesRaw, ok := query["pages"]
	if !ok {
		return nil, p.fail(missing("pages"))
	}
	if _, ok := decodeObject(pagesRaw); !ok {
		return nil, p.fail(missing("pages"))
	}

	firstRaw, ok := firstMember(pagesRaw)
	if !ok {
		return nil, p.fail(malformed("parse json data is not correct, first page is missing"))
	}
	page, ok := decodeObject(firstRaw)
	if !ok {
		return nil, p.fail(malformed("parse json data is not correct, first page is missing"))
	}
	return page, nil
}

func (p *Parser) fail(err *ParseError) *ParseError {
	p.log.Warn("parse failed", "error", err.Message, "code", err.Code)
	return err
}

func decodeObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func objectMember(obj map[string]json.RawMessage, key string) (map[string]json.RawMessage, bool) {
	raw, ok := obj[key]
	if !ok {
		return nil, false
	}
	return decodeObject(raw)
}

func stringMember(obj map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := obj[key]
	if !ok {
		return "", false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func intMember(obj map[string]json.RawMessage, key string) (int, bool) {
	raw, ok := obj[key]
	if !ok {
		return 0, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// firstMember returns the value of the first member of a JSON object.
// Go maps are unordered, so the object is walked with a token decoder.
func firstMember(raw json.RawMessage) (json.RawMessage, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil, false
	}
	if !dec.More() {
		return nil, false
	}
	if _, err := dec.Token(); err != nil {
		return nil, false
	}
	var value json.RawMessage
	if err := dec.Decode(&value); err != nil {
		return nil, false
	}
	return value, true
}
