package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/untoldecay/mentor/internal/hooks"
	"github.com/untoldecay/mentor/internal/storage"
	"github.com/untoldecay/mentor/internal/types"
	"github.com/untoldecay/mentor/internal/ui"
	"github.com/untoldecay/mentor/internal/utils"
)

func (a *app) qaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "qa",
		GroupID: "records",
		Short:   "Manage questions and answers",
	}
	cmd.AddCommand(a.qaAddCmd(), a.qaDeleteCmd(), a.qaListCmd(), a.qaShowCmd())
	return cmd
}

func (a *app) qaAddCmd() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "add [QUESTION ANSWER]",
		Short: "Add or update a question and its answer",
		Long: `Add a Q&A entry, or update it if the stored copy is older. The answer may
use markdown; 'mentor qa show' renders it.

Examples:
  mentor qa add "Do you deliver?" "Yes, within **3 km**."
  mentor qa add "Opening hours?" "9 to 23" --at 2024-06-01`,
		Args:        cobra.RangeArgs(0, 2),
		Annotations: map[string]string{storeAnnotation: storeWrite},
		RunE: func(cmd *cobra.Command, args []string) error {
			var v ui.QAFormValues
			switch len(args) {
			case 0:
				if !ui.IsInteractive(a.in, a.out) {
					return errors.New("qa add needs QUESTION and ANSWER")
				}
				if err := ui.RunQAForm(a.in, a.out, &v); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						a.warn("Cancelled.")
						return nil
					}
					return err
				}
			case 1:
				return errors.New("qa add needs an ANSWER after the question")
			default:
				v.Question, v.Answer = args[0], args[1]
			}

			stamp, err := a.stamp(at)
			if err != nil {
				return err
			}
			entry := &types.QAEntry{
				Question:  strings.TrimSpace(v.Question),
				Answer:    strings.TrimSpace(v.Answer),
				UpdatedAt: stamp,
			}
			outcome, err := a.store.UpsertQA(cmd.Context(), entry)
			if err != nil {
				return err
			}
			a.logger.Debug("qa entry upserted", "question", entry.Question, "outcome", outcome)

			if a.jsonOutput() {
				return a.outputJSON(upsertResult{Key: entry.Question, Outcome: outcome.String(), UpdatedAt: types.FormatTimestamp(stamp)})
			}
			a.println(describeOutcome(outcome, "question", fmt.Sprintf("%q", entry.Question), ""))
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "record time (default: now)")
	return cmd
}

func (a *app) qaDeleteCmd() *cobra.Command {
	var all, yes bool
	cmd := &cobra.Command{
		Use:         "delete QUESTION...",
		Short:       "Delete Q&A entries",
		Annotations: map[string]string{storeAnnotation: storeWrite},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if all {
				if len(args) > 0 {
					return errors.New("--all does not take questions")
				}
				if !yes && !ui.PromptYesNo(a.in, a.errOut, "Delete every Q&A entry?", false) {
					return errors.New("refusing to delete all Q&A entries without --yes")
				}
				entries, err := storage.CollectQA(ctx, a.store)
				if err != nil {
					return err
				}
				for _, e := range entries {
					args = append(args, e.Question)
				}
			} else if len(args) == 0 {
				return errors.New("qa delete needs at least one QUESTION (or --all)")
			}

			var deleted, missing []string
			for _, q := range args {
				if _, err := a.store.GetQA(ctx, q); err != nil {
					if !isNotFound(err) {
						return err
					}
					missing = append(missing, q)
					continue
				}
				if err := a.store.DeleteQA(ctx, q); err != nil {
					return err
				}
				deleted = append(deleted, q)
			}
			a.logger.Debug("qa entries deleted", "count", len(deleted))
			if len(deleted) > 0 {
				a.runHook(ctx, hooks.EventDelete, "qa", deleteResult{Deleted: deleted, Missing: nonNil(missing)})
			}

			if a.jsonOutput() {
				return a.outputJSON(deleteResult{Deleted: nonNil(deleted), Missing: nonNil(missing)})
			}
			for _, q := range deleted {
				a.println(fmt.Sprintf("%s Deleted question %q", ui.RenderPass(ui.Icon("✓", "*")), q))
			}
			for _, q := range missing {
				a.println(fmt.Sprintf("%s No question %q", ui.RenderMuted(ui.Icon("•", "-")), q))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "delete every Q&A entry")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *app) qaListCmd() *cobra.Command {
	var match string
	cmd := &cobra.Command{
		Use:         "list",
		Short:       "List Q&A entries",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{storeAnnotation: storeRead},
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := storage.CollectQA(cmd.Context(), a.store)
			if err != nil {
				return err
			}
			if match != "" {
				filtered := entries[:0]
				for _, e := range entries {
					if utils.FuzzyMatch(match, e.Question) {
						filtered = append(filtered, e)
					}
				}
				entries = filtered
			}

			if a.jsonOutput() {
				return a.outputJSON(nonNil(entries))
			}
			if len(entries) == 0 {
				a.println(ui.RenderMuted("No Q&A entries."))
				return nil
			}
			a.println(ui.RenderQATable(entries, a.width()))
			a.println(ui.RenderMuted(fmt.Sprintf("%d entr(ies)", len(entries))))
			return nil
		},
	}
	cmd.Flags().StringVar(&match, "match", "", "fuzzy filter on the question")
	return cmd
}

func (a *app) qaShowCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:         "show QUESTION",
		Short:       "Show one answer, rendered as markdown",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{storeAnnotation: storeRead},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			entry, err := a.store.GetQA(ctx, args[0])
			if isNotFound(err) {
				entries, lerr := storage.CollectQA(ctx, a.store)
				if lerr != nil {
					return lerr
				}
				questions := make([]string, 0, len(entries))
				for _, e := range entries {
					questions = append(questions, e.Question)
				}
				return errNotFound("question", args[0], utils.Suggest(args[0], questions, 3, 3))
			}
			if err != nil {
				return err
			}

			if a.jsonOutput() {
				return a.outputJSON(entry)
			}
			a.println(ui.RenderAccent(entry.Question))
			if raw {
				a.println(entry.Answer)
				return nil
			}
			rendered, err := ui.RenderMarkdown(entry.Answer, a.width())
			if err != nil {
				a.logger.Debug("markdown render failed, printing raw answer", "error", err)
				rendered = entry.Answer + "\n"
			}
			fmt.Fprint(a.out, rendered)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the answer without markdown rendering")
	return cmd
}
