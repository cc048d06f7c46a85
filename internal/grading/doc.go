// Package grading turns a photographed answer sheet into a scored report.
//
// Engine runs the full pipeline for one page: region detection, column
// partitioning, row matching, character classification, verdicts and
// scoring, with an optional annotation side output. Judge and Score hold the
// decision logic and can be used on their own.
//
// # Scoring
//
// The total is always the number of questions in the answer key. Rows whose
// predicted question is not in the key get the NoKey verdict and are left
// out of both the score and the report rows.
//
// # Errors
//
// Fatal conditions are reported as *Failure values carrying a Kind. No step
// is retried: the pipeline is deterministic for a given page and model.
//
// # Thread Safety
//
// An Engine is immutable after construction and may grade pages
// concurrently, provided its classifiers are safe for concurrent use.
package grading
