// Package wiktionary fetches dictionary entries and page images from a
// MediaWiki action API, by default the English Wiktionary.
//
// Every fetch first probes connectivity, then issues GET requests through
// a circuit breaker. Failures are returned as *NetworkError classified by
// Kind; payloads rejected by the parser are KindParse and wrap the
// *parser.ParseError.
package wiktionary
