// Package word defines the dictionary data model: words, their optional
// image and the part-of-speech enumeration. It also provides the Empty
// sentinel used as the "nothing resolved" state by the word cache.
package word
