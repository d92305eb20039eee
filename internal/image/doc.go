// Package image turns word images into something a display layer can draw.
//
// A request names a word and a size. The bytes come from the cached word
// when it already carries them; otherwise the page image is fetched and
// attached to the cache. The decoded image is scaled to the requested
// size, never beyond the original dimensions. Failures never surface as
// a missing image: the caller gets a placeholder flagged invalid.
package image
