// Package storage coordinates a word lookup.
//
// A lookup first asks the store whether the name is known. Known words are
// read from the store; unknown ones clear the cache and go to the content
// fetcher. Either way the result lands in the shared cache and is announced
// through Events. Each request takes a generation number and only the
// newest one may publish, so a slow response can never overwrite the
// answer to a later request.
//
// InsertWord and RemoveWord act on whatever word the cache currently holds.
package storage
