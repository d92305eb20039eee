// Package parser turns MediaWiki action API responses into words.
//
// Word content comes from prop=extracts, whose payload is an HTML extract
// holding one h2 section per language. Only the section for the configured
// language is read; its headings select the etymology, pronunciation,
// part of speech, description, translation and related words. The
// fragments are kept as HTML and rendered to text by word.Plain.
//
// Images come from prop=pageimages in two steps; this package only turns
// the first response into an image URL with its original dimensions.
package parser
