package testutil

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// HundExtract is a trimmed extract for "Hund" with an English section
// ahead of the German one, the way the live API orders languages.
const HundExtract = `<h2><span id="English">English</span></h2>
<h3><span id="Noun">Noun</span></h3>
<p><b>Hund</b> (plural Hunds)</p>
<ol><li>A surname.</li></ol>
<h2><span id="German">German</span></h2>
<h3><span id="Etymology">Etymology</span></h3>
<p>From <i>Middle High German</i> <b>hunt</b>.</p>
<h3><span id="Pronunciation">Pronunciation</span></h3>
<ul><li>IPA: /hʊnt/</li><li>Audio</li></ul>
<h3><span id="Noun">Noun</span></h3>
<p><b>Hund</b> m (genitive Hundes, plural Hunde)</p>
<ol><li>dog</li><li>hound</li></ol>
<h4><span id="Synonyms">Synonyms</span></h4>
<ul><li>Köter</li></ul>
<h4><span id="Antonyms">Antonyms</span></h4>
<p>Katze</p>
`

// LaufenExtract is a German verb with no etymology or relations
const LaufenExtract = `<h2><span id="German">German</span></h2>
<h3><span id="Verb">Verb</span></h3>
<p><b>laufen</b> (class 7 strong)</p>
<ol><li>to run</li></ol>
`

// FrenchExtract has no German section at all
const FrenchExtract = `<h2><span id="French">French</span></h2>
<h3><span id="Noun">Noun</span></h3>
<ol><li>chien</li></ol>
`

// ContentPayload wraps an extract in a query/extracts envelope
func ContentPayload(title, extract string) []byte {
	return mustMarshal(map[string]any{
		"batchcomplete": "",
		"query": map[string]any{
			"pages": map[string]any{
				"4711": map[string]any{
					"pageid":  4711,
					"ns":      0,
					"title":   title,
					"extract": extract,
				},
			},
		},
	})
}

// ImagePayload builds a query/pageimages envelope
func ImagePayload(title, source string, width, height int) []byte {
	return mustMarshal(map[string]any{
		"batchcomplete": "",
		"query": map[string]any{
			"pages": map[string]any{
				"4711": map[string]any{
					"pageid": 4711,
					"title":  title,
					"original": map[string]any{
						"source": source,
						"width":  width,
						"height": height,
					},
				},
			},
		},
	})
}

// MissingPayload is what the API returns for a title that has no page
func MissingPayload(title string) []byte {
	return mustMarshal(map[string]any{
		"batchcomplete": "",
		"query": map[string]any{
			"pages": map[string]any{
				"-1": map[string]any{
					"ns":      0,
					"title":   title,
					"missing": "",
				},
			},
		},
	})
}

// PNG encodes a solid image of the given size
func PNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
