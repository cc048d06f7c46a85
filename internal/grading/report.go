package grading

import "math"

// AnswerKey maps question labels to the correct option letter.
type AnswerKey map[string]string

// ReportRow is the reading and verdict of one pair.
type ReportRow struct {
	Question string  `json:"question_pred"`
	Option   string  `json:"option_pred"`
	Verdict  Verdict `json:"result"`
}

// Report is the graded result of one page.
type Report struct {
	Score      int         `json:"score"`
	Total      int         `json:"total"`
	Percentage float64     `json:"percentage"`
	Rows       []ReportRow `json:"results"`

	// AnnotatedImage locates the annotated copy of the page; empty when no
	// annotation was written.
	AnnotatedImage string `json:"annotated_image_url"`
}

// Judge decides the verdict for question q answered with option o. An empty
// o means no option was found.
func Judge(q, o string, key AnswerKey) Verdict {
	correct, ok := key[q]
	switch {
	case !ok:
		return NoKey
	case o == "":
		return NotAttempted
	case o == correct:
		return Correct
	default:
		return Wrong
	}
}

// Score builds a report from judged rows. NoKey rows are dropped, the total
// is the size of the key and the percentage is rounded half to even at two
// decimals (1 of 32 is 3.12).
//
// The score counts distinct correct questions rather than Correct rows: a
// question read on several rows counts once, so the score never exceeds the
// total. Every row is still reported.
func Score(rows []ReportRow, key AnswerKey) *Report {
	r := &Report{
		Total: len(key),
		Rows:  make([]ReportRow, 0, len(rows)),
	}
	scored := make(map[string]bool, len(key))
	for _, row := range rows {
		if row.Verdict == NoKey {
			continue
		}
		if row.Verdict == Correct && !scored[row.Question] {
			scored[row.Question] = true
			r.Score++
		}
		r.Rows = append(r.Rows, row)
	}
	if r.Total > 0 {
		p := 100 * float64(r.Score) / float64(r.Total)
		r.Percentage = math.RoundToEven(p*100) / 100
	}
	return r
}
