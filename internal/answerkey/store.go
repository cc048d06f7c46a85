// Package answerkey loads and validates answer keys.
//
// Keys are JSON objects mapping question labels to option letters, stored
// one file per exam as <exam_code>.json:
//
//	{"1": "A", "2": "C", "10": "D"}
package answerkey

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/ironsheep/sheet-grader/internal/grading"
)

// Options are the only letters an answer may use.
var Options = []string{"A", "B", "C", "D"}

var examCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidExamCode reports whether code may name an answer key file.
func ValidExamCode(code string) bool {
	return examCodePattern.MatchString(code)
}

// FileStore reads answer keys from a directory.
type FileStore struct {
	Dir string
}

// Path returns the file holding the key for examCode.
func (s FileStore) Path(examCode string) string {
	return filepath.Join(s.Dir, examCode+".json")
}

// Load reads and validates the key for examCode. A missing key is reported
// as an AnswerKeyMissing failure.
func (s FileStore) Load(examCode string) (grading.AnswerKey, error) {
	if !ValidExamCode(examCode) {
		return nil, grading.NewFailure(grading.AnswerKeyMissing,
			fmt.Sprintf("invalid exam code %q", examCode), nil)
	}

	f, err := os.Open(s.Path(examCode))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, grading.NewFailure(grading.AnswerKeyMissing,
			fmt.Sprintf("no answer key found for exam_code '%s'", examCode), err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open answer key: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Save validates key and writes it for examCode, replacing any existing key.
func (s FileStore) Save(examCode string, key grading.AnswerKey) error {
	if !ValidExamCode(examCode) {
		return fmt.Errorf("invalid exam code %q", examCode)
	}
	if err := Validate(key); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create answer key directory: %w", err)
	}

	data, err := json.MarshalIndent(key, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode answer key: %w", err)
	}
	if err := os.WriteFile(s.Path(examCode), data, 0644); err != nil {
		return fmt.Errorf("failed to write answer key: %w", err)
	}
	return nil
}

// LoadFile reads and validates an answer key stored at path.
func LoadFile(path string) (grading.AnswerKey, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, grading.NewFailure(grading.AnswerKeyMissing,
			fmt.Sprintf("no answer key found at %s", path), err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open answer key: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads one JSON answer key from r and validates it.
func Decode(r io.Reader) (grading.AnswerKey, error) {
	var key grading.AnswerKey
	if err := json.NewDecoder(r).Decode(&key); err != nil {
		return nil, fmt.Errorf("failed to parse answer key: %w", err)
	}
	if err := Validate(key); err != nil {
		return nil, err
	}
	return key, nil
}

// Validate checks that key is non-empty and every answer is one of Options.
func Validate(key grading.AnswerKey) error {
	if len(key) == 0 {
		return errors.New("answer key is empty")
	}

	questions := make([]string, 0, len(key))
	for q := range key {
		questions = append(questions, q)
	}
	sort.Strings(questions)

	for _, q := range questions {
		if q == "" {
			return errors.New("answer key has an empty question label")
		}
		if !isOption(key[q]) {
			return fmt.Errorf("question %s: answer %q is not one of %v", q, key[q], Options)
		}
	}
	return nil
}

func isOption(s string) bool {
	for _, o := range Options {
		if s == o {
			return true
		}
	}
	return false
}
