package parser

import (
	"strings"

	"codeberg.org/snonux/grunwald/internal/word"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var (
	selH2   = cascadia.MustCompile("h2")
	selH3   = cascadia.MustCompile("h3")
	selH4   = cascadia.MustCompile("h4")
	selSpan = cascadia.MustCompile("span[id]")
	selOl   = cascadia.MustCompile("ol")
	selLi   = cascadia.MustCompile("li")
)

const (
	labelEtymology     = "Etymology"
	labelPronunciation = "Pronunciation"
	labelSynonyms      = "Synonyms"
	labelAntonyms      = "Antonyms"
)

// section is the run of sibling nodes between a language heading and the next one
type section []*html.Node

func (p *Parser) parseMarkup(name, extract string) (word.Word, error) {
	doc, err := html.Parse(strings.NewReader(extract))
	if err != nil {
		return word.Word{}, p.fail(malformed("html parse error: %v", err))
	}

	sec, perr := p.languageSection(doc)
	if perr != nil {
		return word.Word{}, p.fail(perr)
	}

	w := word.Word{
		ID:   word.UnsavedID,
		Name: name,
		Date: p.now(),
	}
	w.Etymology = sec.block(labelEtymology, "p")
	w.Transcription = sec.firstItem(labelPronunciation)
	w.Translation = sec.translation()

	ty, heading := sec.partOfSpeech()
	w.Type = ty
	if heading != nil {
		if next := nextBlock(heading); next != nil && next.Data == "p" {
			w.Description = outerHTML(next)
		}
	}
	w.Association = sec.association()

	p.log.Debug("parsed word", "name", name, "type", w.Type.String(),
		"has_translation", w.Translation != "", "has_etymology", w.Etymology != "")
	return w, nil
}

// languageSection finds the h2 for the configured language and collects its section
func (p *Parser) languageSection(doc *html.Node) (section, *ParseError) {
	var firstFound string
	for _, h := range cascadia.QueryAll(doc, selH2) {
		id := headingID(h)
		if id == "" {
			continue
		}
		text := headingText(h)
		if firstFound == "" {
			firstFound = text
		}
		if id != p.language {
			continue
		}
		if text != p.language {
			return nil, languageMismatch(text, p.language)
		}
		return collectSection(h), nil
	}
	if firstFound != "" {
		return nil, languageMismatch(firstFound, p.language)
	}
	return nil, languageNotFound(p.language)
}

func collectSection(h2 *html.Node) section {
	var sec section
	for n := anchor(h2).NextSibling; n != nil; n = n.NextSibling {
		if n.Type != html.ElementNode {
			continue
		}
		if n.Data == "h2" || (isHeadingWrapper(n) && cascadia.Query(n, selH2) != nil) {
			break
		}
		sec = append(sec, n)
	}
	return sec
}

// headings returns the h3 and h4 headings of the section matching label, h3 first
func (s section) headings(label string) []*html.Node {
	var out []*html.Node
	for _, sel := range []cascadia.Selector{selH3, selH4} {
		for _, h := range s.matchAll(sel) {
			if labelMatches(headingID(h), label) {
				out = append(out, h)
			}
		}
	}
	return out
}

func (s section) matchAll(sel cascadia.Selector) []*html.Node {
	var out []*html.Node
	for _, n := range s {
		if sel.Match(n) {
			out = append(out, n)
		}
		out = append(out, cascadia.QueryAll(n, sel)...)
	}
	return out
}

// block returns the first block of the given tag following a heading labelled label
func (s section) block(label string, tags ...string) string {
	for _, h := range s.headings(label) {
		next := nextBlock(h)
		if next != nil && hasTag(next, tags) {
			return outerHTML(next)
		}
	}
	return ""
}

// firstItem returns the first list item of the list following label
func (s section) firstItem(label string) string {
	for _, h := range s.headings(label) {
		next := nextBlock(h)
		if next == nil || next.Data != "ul" {
			continue
		}
		if li := cascadia.Query(next, selLi); li != nil {
			return outerHTML(li)
		}
	}
	return ""
}

func (s section) translation() string {
	for _, ol := range s.matchAll(selOl) {
		if li := cascadia.Query(ol, selLi); li != nil {
			return outerHTML(li)
		}
	}
	return ""
}

// partOfSpeech returns the first part of speech in table order that has a heading
func (s section) partOfSpeech() (word.Type, *html.Node) {
	for _, l := range word.PartsOfSpeech {
		if hs := s.headings(l.Heading); len(hs) > 0 {
			return l.Type, hs[0]
		}
	}
	return word.Unknown, nil
}

func (s section) association() string {
	var b strings.Builder
	for _, label := range []string{labelAntonyms, labelSynonyms} {
		for _, h := range s.headings(label) {
			next := nextBlock(h)
			if next != nil && hasTag(next, []string{"p", "ul"}) {
				b.WriteString(outerHTML(next))
			}
		}
	}
	return b.String()
}

// headingID is the heading's own id, else the id of its first span
func headingID(h *html.Node) string {
	if id := attr(h, "id"); id != "" {
		return id
	}
	if span := cascadia.Query(h, selSpan); span != nil {
		return attr(span, "id")
	}
	return ""
}

func headingText(h *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(h)
	return strings.TrimSpace(b.String())
}

// labelMatches accepts "Noun" as well as numbered ids such as "Noun_2"
func labelMatches(id, label string) bool {
	return id == label || strings.HasPrefix(id, label+"_") && isDigits(id[len(label)+1:])
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// anchor returns the mw-heading wrapper of a heading if present
func anchor(h *html.Node) *html.Node {
	if h.Parent != nil && isHeadingWrapper(h.Parent) {
		return h.Parent
	}
	return h
}

func isHeadingWrapper(n *html.Node) bool {
	if n.Type != html.ElementNode || n.Data != "div" {
		return false
	}
	for _, class := range strings.Fields(attr(n, "class")) {
		if strings.HasPrefix(class, "mw-heading") {
			return true
		}
	}
	return false
}

// nextBlock returns the next element sibling after a heading
func nextBlock(h *html.Node) *html.Node {
	for n := anchor(h).NextSibling; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode {
			return n
		}
	}
	return nil
}

func hasTag(n *html.Node, tags []string) bool {
	for _, t := range tags {
		if n.Data == t {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func outerHTML(n *html.Node) string {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return ""
	}
	return b.String()
}
