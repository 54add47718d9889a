// Package ingest turns token/lemma record streams into pages.
//
// A stream is a sequence of TAB-separated "token<TAB>lemma" records with
// interspersed page-break records (token equal to the page-break marker).
// Markers are removed by SplitPages; they never become tokens.
package ingest
