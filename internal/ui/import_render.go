package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/list"

	"github.com/untoldecay/mentor/internal/importer"
	"github.com/untoldecay/mentor/internal/types"
)

// ImportReport is what `mentor parse` shows after a run.
type ImportReport struct {
	Source string
	DryRun bool
	Result *importer.Result
	// Candidates are listed in dry-run mode.
	Candidates []types.Candidate
	// FormatPrice renders prices in the candidate list.
	FormatPrice func(int64) string
}

// RenderImportReport renders the summary of one import.
func RenderImportReport(rep ImportReport, width int) string {
	res := rep.Result
	var sections []string

	var title string
	if rep.DryRun {
		title = fmt.Sprintf("%s Found %d menu item(s) in %s (dry run, nothing saved)", Icon("🔍", "*"), res.Found, rep.Source)
	} else {
		title = fmt.Sprintf("%s Saved %d of %d menu item(s) from %s", Icon("✓", "*"), res.Saved(), res.Found, rep.Source)
	}
	sections = append(sections, lipgloss.NewStyle().Bold(true).Foreground(ColorPass).Render(title))

	if rep.DryRun {
		l := list.New().
			Enumerator(list.Arabic).
			EnumeratorStyle(MutedStyle.MarginRight(1))
		formatPrice := rep.FormatPrice
		if formatPrice == nil {
			formatPrice = func(p int64) string { return fmt.Sprint(p) }
		}
		for _, c := range rep.Candidates {
			l.Item(fmt.Sprintf("%s  %s  %s",
				Truncate(c.Name, width/3),
				RenderAccent(formatPrice(c.Price)),
				RenderMuted(fmt.Sprintf("line %d", c.Line))))
		}
		sections = append(sections, "", l.String())
		return strings.Join(sections, "\n")
	}

	l := list.New().
		Enumerator(func(_ list.Items, i int) string { return "" }).
		EnumeratorStyle(lipgloss.NewStyle())
	addCount := func(n int, label string, render func(string) string) {
		if n > 0 {
			l.Item(render(fmt.Sprintf("%-11s %d", label, n)))
		}
	}
	addCount(res.Inserted, "new", RenderPass)
	addCount(res.Replaced, "updated", RenderPass)
	addCount(res.Unchanged, "unchanged", RenderMuted)
	addCount(res.Superseded, "duplicate", RenderMuted)
	addCount(res.Rejected, "rejected", RenderWarn)
	sections = append(sections, l.String())

	if len(res.Rejections) > 0 {
		rl := list.New().
			Enumerator(func(_ list.Items, i int) string { return RenderWarn("!") }).
			EnumeratorStyle(lipgloss.NewStyle().MarginRight(1))
		for _, r := range res.Rejections {
			rl.Item(fmt.Sprintf("line %d: %s", r.Line, r.Reason))
		}
		sections = append(sections, "", rl.String())
	}
	if res.Unchanged > 0 {
		sections = append(sections, "", TableHintStyle.Render("Unchanged items already had a copy as new or newer."))
	}
	return strings.Join(sections, "\n")
}
