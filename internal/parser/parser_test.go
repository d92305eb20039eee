package parser

import (
	"errors"
	"strings"
	"testing"
	"time"

	"codeberg.org/snonux/grunwald/internal/testutil"
	"codeberg.org/snonux/grunwald/internal/word"
	"github.com/google/go-cmp/cmp"
)

var fixedNow = time.Date(2024, 5, 17, 8, 30, 0, 0, time.UTC)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	return New("", WithLogger(testutil.Logger(t)), WithClock(func() time.Time { return fixedNow }))
}

func TestNewDefaultsToGerman(t *testing.T) {
	if got := New("").Language(); got != DefaultLanguage {
		t.Errorf("Language() = %q, want %q", got, DefaultLanguage)
	}
	if got := New("French").Language(); got != "French" {
		t.Errorf("Language() = %q, want French", got)
	}
}

func TestParseWordContent(t *testing.T) {
	p := newTestParser(t)

	got, err := p.ParseWordContent("Hund", testutil.ContentPayload("Hund", testutil.HundExtract))
	if err != nil {
		t.Fatalf("ParseWordContent() error = %v", err)
	}

	want := word.Word{
		ID:            word.UnsavedID,
		Name:          "Hund",
		Transcription: "<li>IPA: /hʊnt/</li>",
		Translation:   "<li>dog</li>",
		Association:   "<p>Katze</p><ul><li>Köter</li></ul>",
		Etymology:     "<p>From <i>Middle High German</i> <b>hunt</b>.</p>",
		Description:   "<p><b>Hund</b> m (genitive Hundes, plural Hunde)</p>",
		Type:          word.Noun,
		Date:          fixedNow,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseWordContent() mismatch (-want +got):\n%s", diff)
	}
	if got.IsSaved() {
		t.Error("parsed word must not carry a persistent id")
	}
}

func TestParseWordContentVerbWithoutRelations(t *testing.T) {
	p := newTestParser(t)

	got, err := p.ParseWordContent("laufen", testutil.ContentPayload("laufen", testutil.LaufenExtract))
	if err != nil {
		t.Fatalf("ParseWordContent() error = %v", err)
	}
	if got.Type != word.Verb {
		t.Errorf("Type = %v, want Verb", got.Type)
	}
	if got.Translation != "<li>to run</li>" {
		t.Errorf("Translation = %q", got.Translation)
	}
	if got.Etymology != "" || got.Transcription != "" || got.Association != "" {
		t.Errorf("expected absent sections to stay empty, got %+v", got)
	}
	if got.HasImage() {
		t.Error("verbs do not carry images")
	}
}

func TestParseWordContentFirstPageInDocumentOrder(t *testing.T) {
	p := newTestParser(t)

	raw := []byte(`{"query":{"pages":{
		"b":{"extract":"<h2 id=\"German\">German</h2><h3 id=\"Verb\">Verb</h3><ol><li>first</li></ol>"},
		"a":{"extract":"<h2 id=\"German\">German</h2><h3 id=\"Noun\">Noun</h3><ol><li>second</li></ol>"}
	}}}`)

	got, err := p.ParseWordContent("x", raw)
	if err != nil {
		t.Fatalf("ParseWordContent() error = %v", err)
	}
	if got.Type != word.Verb || got.Translation != "<li>first</li>" {
		t.Errorf("parsed the wrong page: %+v", got)
	}
}

func TestParseWordContentHeadingWrappers(t *testing.T) {
	p := newTestParser(t)

	extract := `<div class="mw-heading mw-heading2"><h2 id="German">German</h2></div>
<div class="mw-heading mw-heading3"><h3 id="Etymology_1">Etymology 1</h3></div>
<p>From x.</p>
<div class="mw-heading mw-heading4"><h4 id="Noun">Noun</h4></div>
<p>desc</p>
<ol><li>dog</li></ol>
<div class="mw-heading mw-heading2"><h2 id="Dutch">Dutch</h2></div>
<div class="mw-heading mw-heading3"><h3 id="Verb">Verb</h3></div>
<ol><li>other</li></ol>`

	got, err := p.ParseWordContent("Hund", testutil.ContentPayload("Hund", extract))
	if err != nil {
		t.Fatalf("ParseWordContent() error = %v", err)
	}
	if got.Etymology != "<p>From x.</p>" {
		t.Errorf("Etymology = %q", got.Etymology)
	}
	if got.Type != word.Noun {
		t.Errorf("Type = %v, want Noun; the Dutch section must be ignored", got.Type)
	}
	if got.Description != "<p>desc</p>" {
		t.Errorf("Description = %q", got.Description)
	}
	if got.Translation != "<li>dog</li>" {
		t.Errorf("Translation = %q", got.Translation)
	}
}

func TestParseWordContentLanguage(t *testing.T) {
	tests := []struct {
		name    string
		extract string
		wantMsg string
	}{
		{
			name:    "other language only",
			extract: testutil.FrenchExtract,
			wantMsg: `language mismatch: found "French", want "German"`,
		},
		{
			name:    "no language heading",
			extract: "<p>nothing here</p>",
			wantMsg: `language section "German" not found`,
		},
		{
			name:    "empty extract",
			extract: "",
			wantMsg: `language section "German" not found`,
		},
	}

	p := newTestParser(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ParseWordContent("chien", testutil.ContentPayload("chien", tt.extract))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, ErrLanguage) {
				t.Errorf("error %v is not ErrLanguage", err)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantMsg)
			}
			if !got.Equal(word.Word{}) {
				t.Errorf("expected zero word on error, got %+v", got)
			}
		})
	}
}

func TestParseWordContentMalformed(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantMsg string
	}{
		{"not json", "not json", "json parse error"},
		{"array", "[]", "json document is not an object"},
		{"null", "null", "json document is not an object"},
		{"empty object", "{}", "json document is empty"},
		{"no query", `{"batchcomplete":""}`, "'query' is missing"},
		{"query not object", `{"query":"x"}`, "'query' is missing"},
		{"no pages", `{"query":{}}`, "'pages' is missing"},
		{"pages not object", `{"query":{"pages":[]}}`, "'pages' is missing"},
		{"no page", `{"query":{"pages":{}}}`, "first page is missing"},
		{"page not object", `{"query":{"pages":{"1":7}}}`, "first page is missing"},
		{"no extract", `{"query":{"pages":{"1":{"missing":""}}}}`, "'extract' is missing"},
		{"extract not string", `{"query":{"pages":{"1":{"extract":5}}}}`, "'extract' is missing"},
		{"extract null", `{"query":{"pages":{"1":{"extract":null}}}}`, "'extract' is missing"},
	}

	p := newTestParser(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseWordContent("Hund", []byte(tt.raw))
			if err == nil {
				t.Fatal("expected an error")
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error %T is not a *ParseError", err)
			}
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("error %v is not ErrMalformed", err)
			}
			if !strings.Contains(perr.Message, tt.wantMsg) {
				t.Errorf("Message = %q, want it to contain %q", perr.Message, tt.wantMsg)
			}
		})
	}
}

func TestSyntaxErrorCarriesOffset(t *testing.T) {
	p := newTestParser(t)

	_, err := p.ParseWordContent("Hund", []byte(`{"query": nope}`))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if perr.Code <= 0 {
		t.Errorf("Code = %d, want the syntax error offset", perr.Code)
	}

	_, err = p.ParseWordContent("Hund", []byte(`{}`))
	if !errors.As(err, &perr) || perr.Code != NoCode {
		t.Errorf("structural errors must carry NoCode, got %v", err)
	}
}

func TestParseWordImage(t *testing.T) {
	p := newTestParser(t)

	got, err := p.ParseWordImage(testutil.ImagePayload("Hund", "https://upload.example.org/Hund.jpg", 640, 480))
	if err != nil {
		t.Fatalf("ParseWordImage() error = %v", err)
	}
	want := word.Image{ID: word.UnsavedID, URL: "https://upload.example.org/Hund.jpg", Width: 640, Height: 480}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseWordImage() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseWordImageEmptySource(t *testing.T) {
	p := newTestParser(t)

	got, err := p.ParseWordImage(testutil.ImagePayload("Hund", "", 1, 1))
	if err != nil {
		t.Fatalf("ParseWordImage() error = %v", err)
	}
	if got.URL != "" {
		t.Errorf("URL = %q, want empty", got.URL)
	}
}

func TestParseWordImageMalformed(t *testing.T) {
	page := func(original string) []byte {
		return []byte(`{"query":{"pages":{"4711":{"title":"Hund"` + original + `}}}}`)
	}

	tests := []struct {
		name    string
		raw     []byte
		wantMsg string
	}{
		{"missing page", testutil.MissingPayload("Hund"), "'original' is missing"},
		{"original not object", page(`,"original":"x"`), "'original' is missing"},
		{"no source", page(`,"original":{"width":1,"height":1}`), "'source' is missing"},
		{"no width", page(`,"original":{"source":"u","height":1}`), "'width' is missing"},
		{"height not number", page(`,"original":{"source":"u","width":1,"height":"1"}`), "'height' is missing"},
		{"garbage", []byte("<html>"), "json parse error"},
	}

	p := newTestParser(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ParseWordImage(tt.raw)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("error %v is not ErrMalformed", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Error() = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
			if !got.Equal(word.Image{}) {
				t.Errorf("expected zero image on error, got %+v", got)
			}
		})
	}
}

func TestLabelMatches(t *testing.T) {
	tests := []struct {
		id, label string
		want      bool
	}{
		{"Noun", "Noun", true},
		{"Noun_2", "Noun", true},
		{"Etymology_1", "Etymology", true},
		{"Noun_phrase", "Noun", false},
		{"Noun_", "Noun", false},
		{"Proper_noun", "Noun", false},
		{"Proper_noun_3", "Proper_noun", true},
	}
	for _, tt := range tests {
		if got := labelMatches(tt.id, tt.label); got != tt.want {
			t.Errorf("labelMatches(%q, %q) = %v, want %v", tt.id, tt.label, got, tt.want)
		}
	}
}
