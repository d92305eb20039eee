// Package store persists words in SQLite.
//
// Two tables are kept: word and word_image. A word row references its
// image through id_image, which is -1 for words that have no image; only
// nouns own an image row. Writes that touch both tables run in a single
// transaction.
package store
