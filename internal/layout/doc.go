// Package layout turns detected regions into (question number, option)
// pairs.
//
// Answer sheets are assumed to carry two handwritten columns: question
// numbers on the left and option letters on the right. PartitionColumns
// separates the two columns by clustering region centers along X, and
// MatchRows pairs each number with the first option on roughly the same
// line.
package layout
