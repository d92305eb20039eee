package word

import (
	"strings"
	"testing"
	"time"
)

func TestHasImageOnlyForNouns(t *testing.T) {
	for _, l := range PartsOfSpeech {
		w := Word{Type: l.Type}
		if got, want := w.HasImage(), l.Type == Noun; got != want {
			t.Errorf("HasImage() for %s = %v, want %v", l.Type, got, want)
		}
	}
	if (Word{Type: Unknown}).HasImage() {
		t.Error("Unknown type must not carry an image")
	}
}

func TestEmptySentinel(t *testing.T) {
	if Empty.ID != UnsavedID {
		t.Errorf("Empty.ID = %d, want %d", Empty.ID, UnsavedID)
	}
	if Empty.Type != Unknown {
		t.Errorf("Empty.Type = %v, want Unknown", Empty.Type)
	}
	if !Empty.IsEmpty() {
		t.Error("Empty.IsEmpty() = false")
	}
	if (Word{ID: UnsavedID, Name: "Hund"}).IsEmpty() {
		t.Error("named word reported as empty")
	}
}

func TestWordEqual(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	base := Word{
		ID:          3,
		Name:        "Katze",
		Translation: "<li>cat</li>",
		Type:        Noun,
		Image:       Image{ID: 1, URL: "https://example.org/cat.png", Width: 10, Height: 20, Data: []byte{1, 2, 3}},
		Date:        now,
	}

	same := base.Clone()
	same.Date = now.In(time.FixedZone("CET", 3600))
	if !base.Equal(same) {
		t.Error("expected words with the same instant to be equal")
	}

	tests := []struct {
		name   string
		mutate func(w *Word)
	}{
		{"id", func(w *Word) { w.ID = 4 }},
		{"name", func(w *Word) { w.Name = "Hund" }},
		{"translation", func(w *Word) { w.Translation = "" }},
		{"type", func(w *Word) { w.Type = Verb }},
		{"image data", func(w *Word) { w.Image.Data = []byte{1, 2} }},
		{"image url", func(w *Word) { w.Image.URL = "" }},
		{"date", func(w *Word) { w.Date = now.Add(time.Second) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := base.Clone()
			tt.mutate(&other)
			if base.Equal(other) {
				t.Errorf("words differing in %s compared equal", tt.name)
			}
		})
	}
}

func TestCloneDoesNotShareImageData(t *testing.T) {
	w := Word{Image: Image{Data: []byte{9, 9}}}
	c := w.Clone()
	c.Image.Data[0] = 1
	if w.Image.Data[0] != 9 {
		t.Error("clone shares image bytes with the original")
	}
}

func TestTypeString(t *testing.T) {
	if Noun.String() != "Noun" {
		t.Errorf("Noun.String() = %q", Noun.String())
	}
	if ProperNoun.String() != "Proper_noun" {
		t.Errorf("ProperNoun.String() = %q", ProperNoun.String())
	}
	if Type(99).String() != "Unknown" {
		t.Errorf("Type(99).String() = %q", Type(99).String())
	}
	if Type(99).Valid() {
		t.Error("Type(99) reported valid")
	}
}

func TestPartsOfSpeechCoversAllTypes(t *testing.T) {
	seen := map[Type]bool{}
	for _, l := range PartsOfSpeech {
		if seen[l.Type] {
			t.Errorf("duplicate entry for %v", l.Type)
		}
		seen[l.Type] = true
	}
	for ty := Noun; ty <= Particle; ty++ {
		if !seen[ty] {
			t.Errorf("type %d missing from PartsOfSpeech", ty)
		}
	}
	if PartsOfSpeech[0].Type != Noun {
		t.Error("Noun must be matched first")
	}
}

func TestPlain(t *testing.T) {
	w := Word{
		Name:        "Hund",
		Type:        Noun,
		Translation: `<li><a href="/wiki/dog">dog</a></li>`,
		Etymology:   "<p>From <i>Middle High German</i> <b>hunt</b>.</p>",
	}
	p := w.Plain()
	if p.Name != "Hund" || p.Type != "Noun" {
		t.Errorf("unexpected header fields %+v", p)
	}
	if !strings.Contains(p.Translation, "dog") || strings.Contains(p.Translation, "<") {
		t.Errorf("translation not stripped: %q", p.Translation)
	}
	if !strings.Contains(p.Etymology, "Middle High German") || strings.Contains(p.Etymology, "<i>") {
		t.Errorf("etymology not stripped: %q", p.Etymology)
	}
	if p.Description != "" {
		t.Errorf("empty field rendered as %q", p.Description)
	}
}
