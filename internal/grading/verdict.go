package grading

import "fmt"

// Verdict is the outcome of one answered question.
type Verdict int

const (
	Correct Verdict = iota
	Wrong
	NotAttempted
	NoKey
)

var verdictNames = [...]string{
	Correct:      "Correct",
	Wrong:        "Wrong",
	NotAttempted: "NotAttempted",
	NoKey:        "NoKey",
}

func (v Verdict) String() string {
	if v >= 0 && int(v) < len(verdictNames) {
		return verdictNames[v]
	}
	return fmt.Sprintf("Verdict(%d)", int(v))
}

// MarshalText encodes the verdict by name.
func (v Verdict) MarshalText() ([]byte, error) {
	if v < 0 || int(v) >= len(verdictNames) {
		return nil, fmt.Errorf("invalid verdict %d", int(v))
	}
	return []byte(verdictNames[v]), nil
}

// UnmarshalText decodes a verdict name.
func (v *Verdict) UnmarshalText(text []byte) error {
	for i, name := range verdictNames {
		if name == string(text) {
			*v = Verdict(i)
			return nil
		}
	}
	return fmt.Errorf("unknown verdict %q", text)
}
