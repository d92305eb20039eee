package word

// Type is the part of speech of a word. The numeric value is what gets
// persisted in the word.type column, so existing values must not change.
type Type int

const (
	Unknown Type = iota
	Noun
	Verb
	Adjective
	Adverb
	Pronoun
	ProperNoun
	Preposition
	Conjunction
	Interjection
	Numeral
	Article
	Particle
)

// Label maps a part of speech to the heading id the dictionary uses for it
type Label struct {
	Type    Type
	Heading string
}

// PartsOfSpeech is the lookup table used when detecting the type of a word.
// It is iterated in order and the first heading match wins, so Noun is
// preferred over Verb for words that are both.
var PartsOfSpeech = []Label{
	{Noun, "Noun"},
	{Verb, "Verb"},
	{Adjective, "Adjective"},
	{Adverb, "Adverb"},
	{Pronoun, "Pronoun"},
	{ProperNoun, "Proper_noun"},
	{Preposition, "Preposition"},
	{Conjunction, "Conjunction"},
	{Interjection, "Interjection"},
	{Numeral, "Numeral"},
	{Article, "Article"},
	{Particle, "Particle"},
}

// String returns the dictionary heading for the type, or "Unknown"
func (t Type) String() string {
	for _, l := range PartsOfSpeech {
		if l.Type == t {
			return l.Heading
		}
	}
	return "Unknown"
}

// Valid reports whether t is one of the declared types
func (t Type) Valid() bool {
	return t >= Unknown && t <= Particle
}
