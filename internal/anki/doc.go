// Package anki exports stored words as an Anki CSV import file, with the
// pictures of nouns written to a media folder.
package anki
