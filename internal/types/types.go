// Package types defines the records mentor stores and the candidates it extracts.
package types

import (
	"fmt"
	"strings"
	"time"
)

// MenuItem is a persisted menu entry keyed by Name.
type MenuItem struct {
	Name        string    `json:"name" yaml:"name" toml:"name"`
	Price       int64     `json:"price" yaml:"price" toml:"price"`
	Description string    `json:"description" yaml:"description" toml:"description"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at" toml:"updated_at"`
}

// QAEntry is a persisted question/answer pair keyed by Question.
type QAEntry struct {
	Question  string    `json:"question" yaml:"question" toml:"question"`
	Answer    string    `json:"answer" yaml:"answer" toml:"answer"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at" toml:"updated_at"`
}

// Candidate is a menu entry recognized in free text. It is never stored directly.
type Candidate struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Line        int    `json:"line"` // 1-based line of the name in the input
}

// MenuItem converts the candidate into a record stamped with at.
func (c Candidate) MenuItem(at time.Time) *MenuItem {
	return &MenuItem{
		Name:        c.Name,
		Price:       c.Price,
		Description: c.Description,
		UpdatedAt:   at,
	}
}

func (c Candidate) String() string {
	return fmt.Sprintf("%s (%d)", c.Name, c.Price)
}

// ValidateMenuItem checks the fields a store relies on.
func ValidateMenuItem(item *MenuItem) error {
	if item == nil {
		return &ValidationError{Field: "item", Reason: "is nil"}
	}
	if strings.TrimSpace(item.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if item.Price < 0 {
		return &ValidationError{Field: "price", Value: fmt.Sprint(item.Price), Reason: "must not be negative"}
	}
	return validateStamp(item.UpdatedAt)
}

// ValidateQA checks the fields a store relies on.
func ValidateQA(entry *QAEntry) error {
	if entry == nil {
		return &ValidationError{Field: "entry", Reason: "is nil"}
	}
	if strings.TrimSpace(entry.Question) == "" {
		return &ValidationError{Field: "question", Reason: "is required"}
	}
	if strings.TrimSpace(entry.Answer) == "" {
		return &ValidationError{Field: "answer", Reason: "is required"}
	}
	return validateStamp(entry.UpdatedAt)
}

// validateStamp rejects stamps the stored layout cannot order: the text form
// only sorts correctly for four-digit years.
func validateStamp(at time.Time) error {
	if at.IsZero() {
		return &ValidationError{Field: "updated_at", Reason: "is required"}
	}
	if y := at.UTC().Year(); y < 0 || y > 9999 {
		return &ValidationError{Field: "updated_at", Value: fmt.Sprint(y), Reason: "year must be between 0000 and 9999"}
	}
	return nil
}
