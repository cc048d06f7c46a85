// Package annotate draws graded pairs onto a copy of the page for human
// review and stores the result.
//
// Every pair gets its number box, and its option box when present, outlined
// in the colour of its verdict, with the reading printed above the number
// box. The annotated page is encoded as PNG and handed to a Sink, which
// returns the locator reported to callers.
package annotate
