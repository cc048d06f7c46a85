package grading

import (
	"encoding/json"
	"testing"
)

func TestVerdict_String(t *testing.T) {
	tests := []struct {
		v    Verdict
		want string
	}{
		{Correct, "Correct"},
		{Wrong, "Wrong"},
		{NotAttempted, "NotAttempted"},
		{NoKey, "NoKey"},
		{Verdict(9), "Verdict(9)"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestVerdict_JSON(t *testing.T) {
	row := ReportRow{Question: "12", Option: "", Verdict: NotAttempted}
	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"question_pred":"12","option_pred":"","result":"NotAttempted"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var back ReportRow
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back != row {
		t.Errorf("Unmarshal = %+v, want %+v", back, row)
	}
}

func TestVerdict_InvalidText(t *testing.T) {
	var v Verdict
	if err := v.UnmarshalText([]byte("Maybe")); err == nil {
		t.Error("expected error for unknown verdict")
	}
	if _, err := Verdict(-1).MarshalText(); err == nil {
		t.Error("expected error for out-of-range verdict")
	}
}
