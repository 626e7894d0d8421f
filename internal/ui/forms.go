package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/untoldecay/mentor/internal/types"
)

// MenuFormValues holds the raw strings a menu form collects.
type MenuFormValues struct {
	Name        string
	Price       string
	Description string
}

// QAFormValues holds the raw strings a Q&A form collects.
type QAFormValues struct {
	Question string
	Answer   string
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validatePrice(s string) error {
	_, err := types.ParsePrice(s)
	return err
}

// RunMenuForm asks for a menu item. Fields already set in v are prefilled.
// Returns huh.ErrUserAborted when the user cancels.
func RunMenuForm(in io.Reader, out io.Writer, v *MenuFormValues) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("e.g., Kebab").
				Value(&v.Name).
				Validate(required("name")),

			huh.NewInput().
				Title("Price").
				Description("Whole currency units, e.g. 150,000").
				Value(&v.Price).
				Validate(validatePrice),

			huh.NewText().
				Title("Description").
				CharLimit(1000).
				Value(&v.Description),
		),
	)
	return form.WithInput(in).WithOutput(out).Run()
}

// RunQAForm asks for a question and its answer. The answer may use markdown.
func RunQAForm(in io.Reader, out io.Writer, v *QAFormValues) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Question").
				Placeholder("e.g., Do you deliver?").
				Value(&v.Question).
				Validate(required("question")),

			huh.NewText().
				Title("Answer").
				Description("Markdown is rendered by `mentor qa show`").
				CharLimit(5000).
				Value(&v.Answer).
				Validate(required("answer")),
		),
	)
	return form.WithInput(in).WithOutput(out).Run()
}
