// Package question reads the question bank file that seeds the questions table.
//
// The file is a JSON array. Answers come in several shapes: a boolean or 0/1 for
// true/false items, "True"/"False" strings, the index of the correct option, or
// the option text itself. Parse turns every shape into the option text.
package question

import (
	"docdot_backend/internal/model"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var ErrInvalidQuestion = errors.New("invalid question")

type record struct {
	ID           uint            `json:"id"`
	Category     string          `json:"category"`
	Difficulty   string          `json:"difficulty"`
	QuestionType string          `json:"questionType"`
	Question     string          `json:"question"`
	Options      []string        `json:"options"`
	Answer       json.RawMessage `json:"answer"`
	Explanation  string          `json:"explanation"`
	ImageURL     string          `json:"imageUrl"`
}

func LoadFile(path string) ([]model.Question, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse validates and normalizes the bank. Items without an id are numbered by
// position; ids must be unique.
func Parse(r io.Reader) ([]model.Question, error) {
	var records []record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}

	out := make([]model.Question, 0, len(records))
	seen := make(map[uint]bool, len(records))
	for i, rec := range records {
		if rec.ID == 0 {
			rec.ID = uint(i + 1)
		}
		if seen[rec.ID] {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrInvalidQuestion, rec.ID)
		}
		seen[rec.ID] = true

		q, err := convert(rec)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", rec.ID, err)
		}
		out = append(out, q)
	}
	return out, nil
}

func convert(rec record) (model.Question, error) {
	q := model.Question{
		ID:           rec.ID,
		Category:     strings.TrimSpace(rec.Category),
		QuestionType: rec.QuestionType,
		Question:     strings.TrimSpace(rec.Question),
		Explanation:  rec.Explanation,
		ImageURL:     rec.ImageURL,
	}
	if q.Category == "" || q.Question == "" {
		return q, fmt.Errorf("%w: category and question are required", ErrInvalidQuestion)
	}
	if q.QuestionType == "" {
		q.QuestionType = "text"
	}

	d, ok := ParseDifficulty(rec.Difficulty)
	if !ok || d == "" {
		if strings.TrimSpace(rec.Difficulty) != "" {
			return q, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidQuestion, rec.Difficulty)
		}
		d = model.DifficultyMedium
	}
	q.Difficulty = d

	answer, options, err := normalizeAnswer(rec.Answer, rec.Options)
	if err != nil {
		return q, err
	}
	q.Answer, q.Options = answer, options
	return q, nil
}

// ParseDifficulty accepts easy, medium and hard in any case. An empty string or
// "all" yields an empty difficulty, meaning no filter.
func ParseDifficulty(s string) (model.Difficulty, bool) {
	switch d := model.Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case "", "all":
		return "", true
	case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
		return d, true
	default:
		return "", false
	}
}

func normalizeAnswer(raw json.RawMessage, options []string) (string, []string, error) {
	var v interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil || v == nil {
		return "", nil, fmt.Errorf("%w: missing answer", ErrInvalidQuestion)
	}

	switch a := v.(type) {
	case bool:
		return trueFalseAnswer(a)
	case float64:
		if len(options) == 0 {
			if a == 1 || a == 0 {
				return trueFalseAnswer(a == 1)
			}
			return "", nil, fmt.Errorf("%w: numeric answer %v without options", ErrInvalidQuestion, a)
		}
		i := int(a)
		if float64(i) != a || i < 0 || i >= len(options) {
			return "", nil, fmt.Errorf("%w: answer index %v out of range", ErrInvalidQuestion, a)
		}
		return options[i], options, nil
	case string:
		a = strings.TrimSpace(a)
		if len(options) == 0 {
			switch strings.ToLower(a) {
			case "true":
				return trueFalseAnswer(true)
			case "false":
				return trueFalseAnswer(false)
			}
			return "", nil, fmt.Errorf("%w: answer %q without options", ErrInvalidQuestion, a)
		}
		for _, o := range options {
			if o == a {
				return a, options, nil
			}
		}
		return "", nil, fmt.Errorf("%w: answer %q is not one of the options", ErrInvalidQuestion, a)
	default:
		return "", nil, fmt.Errorf("%w: unsupported answer", ErrInvalidQuestion)
	}
}

func trueFalseAnswer(b bool) (string, []string, error) {
	options := []string{"True", "False"}
	if b {
		return "True", options, nil
	}
	return "False", options, nil
}
