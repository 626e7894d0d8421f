package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/untoldecay/mentor/internal/hooks"
	"github.com/untoldecay/mentor/internal/storage"
	"github.com/untoldecay/mentor/internal/timeparsing"
	"github.com/untoldecay/mentor/internal/types"
	"github.com/untoldecay/mentor/internal/ui"
	"github.com/untoldecay/mentor/internal/utils"
)

func (a *app) menuCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "menu",
		GroupID: "records",
		Short:   "Manage menu items",
	}
	cmd.AddCommand(a.menuAddCmd(), a.menuDeleteCmd(), a.menuListCmd(), a.menuShowCmd())
	return cmd
}

// upsertResult is the JSON shape of add commands.
type upsertResult struct {
	Key       string `json:"key"`
	Outcome   string `json:"outcome"`
	UpdatedAt string `json:"updated_at"`
}

func (a *app) menuAddCmd() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "add [NAME PRICE [DESCRIPTION]]",
		Short: "Add or update a menu item",
		Long: `Add a menu item, or update it if the stored copy is older.

PRICE is whole currency units; "150000" and "150,000" are the same.
With no arguments on a terminal, a form asks for the fields.

--at stamps the record with another time ("2024-06-01 12:00", "yesterday").
An item stamped earlier than the stored copy leaves the stored copy alone.

Examples:
  mentor menu add Kebab 150,000 "Grilled lamb"
  mentor menu add Doogh 40000 --at "2 hours ago"`,
		Args:        cobra.RangeArgs(0, 3),
		Annotations: map[string]string{storeAnnotation: storeWrite},
		RunE: func(cmd *cobra.Command, args []string) error {
			var v ui.MenuFormValues
			switch len(args) {
			case 0:
				if !ui.IsInteractive(a.in, a.out) {
					return errors.New("menu add needs NAME and PRICE")
				}
				if err := ui.RunMenuForm(a.in, a.out, &v); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						a.warn("Cancelled.")
						return nil
					}
					return err
				}
			case 1:
				return errors.New("menu add needs a PRICE after the name")
			default:
				v.Name = args[0]
				v.Price = args[1]
				if len(args) == 3 {
					v.Description = args[2]
				}
			}

			price, err := types.ParsePrice(v.Price)
			if err != nil {
				return err
			}
			stamp, err := a.stamp(at)
			if err != nil {
				return err
			}
			item := &types.MenuItem{
				Name:        strings.TrimSpace(v.Name),
				Price:       price,
				Description: strings.TrimSpace(v.Description),
				UpdatedAt:   stamp,
			}
			outcome, err := a.store.UpsertMenuItem(cmd.Context(), item)
			if err != nil {
				return err
			}
			a.logger.Debug("menu item upserted", "name", item.Name, "outcome", outcome)

			if a.jsonOutput() {
				return a.outputJSON(upsertResult{Key: item.Name, Outcome: outcome.String(), UpdatedAt: types.FormatTimestamp(stamp)})
			}
			a.println(describeOutcome(outcome, "menu item", item.Name, a.formatPrice(item.Price)))
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "record time (default: now)")
	return cmd
}

// stamp resolves an --at value against the clock.
func (a *app) stamp(at string) (time.Time, error) {
	if at == "" {
		return a.clock(), nil
	}
	t, err := timeparsing.ParseTime(at, a.clock())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at: %w", err)
	}
	return t, nil
}

func describeOutcome(outcome storage.Outcome, kind, key, detail string) string {
	if detail != "" {
		detail = " (" + detail + ")"
	}
	switch outcome {
	case storage.OutcomeInserted:
		return fmt.Sprintf("%s Added %s %s%s", ui.RenderPass(ui.Icon("✓", "*")), kind, key, detail)
	case storage.OutcomeReplaced:
		return fmt.Sprintf("%s Updated %s %s%s", ui.RenderPass(ui.Icon("✓", "*")), kind, key, detail)
	default:
		return fmt.Sprintf("%s Kept %s %s: the stored copy is as new or newer", ui.RenderMuted(ui.Icon("•", "-")), kind, key)
	}
}

func (a *app) menuDeleteCmd() *cobra.Command {
	var all, yes bool
	cmd := &cobra.Command{
		Use:   "delete NAME...",
		Short: "Delete menu items",
		Long: `Delete menu items by name. Deleting a name that does not exist is not an
error.

Examples:
  mentor menu delete Kebab Doogh
  mentor menu delete --all --yes`,
		Annotations: map[string]string{storeAnnotation: storeWrite},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if all {
				if len(args) > 0 {
					return errors.New("--all does not take names")
				}
				if !yes && !ui.PromptYesNo(a.in, a.errOut, "Delete every menu item?", false) {
					return errors.New("refusing to delete all menu items without --yes")
				}
				items, err := storage.CollectMenuItems(ctx, a.store)
				if err != nil {
					return err
				}
				for _, item := range items {
					args = append(args, item.Name)
				}
			} else if len(args) == 0 {
				return errors.New("menu delete needs at least one NAME (or --all)")
			}

			var deleted, missing []string
			for _, name := range args {
				if _, err := a.store.GetMenuItem(ctx, name); err != nil {
					if !isNotFound(err) {
						return err
					}
					missing = append(missing, name)
					continue
				}
				if err := a.store.DeleteMenuItem(ctx, name); err != nil {
					return err
				}
				deleted = append(deleted, name)
			}
			a.logger.Debug("menu items deleted", "count", len(deleted))
			if len(deleted) > 0 {
				a.runHook(ctx, hooks.EventDelete, "menu", deleteResult{Deleted: deleted, Missing: nonNil(missing)})
			}

			if a.jsonOutput() {
				return a.outputJSON(deleteResult{Deleted: nonNil(deleted), Missing: nonNil(missing)})
			}
			for _, name := range deleted {
				a.println(fmt.Sprintf("%s Deleted menu item %s", ui.RenderPass(ui.Icon("✓", "*")), name))
			}
			for _, name := range missing {
				a.println(fmt.Sprintf("%s No menu item named %s", ui.RenderMuted(ui.Icon("•", "-")), name))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "delete every menu item")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

type deleteResult struct {
	Deleted []string `json:"deleted"`
	Missing []string `json:"missing"`
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (a *app) menuListCmd() *cobra.Command {
	var match string
	cmd := &cobra.Command{
		Use:         "list",
		Short:       "List menu items",
		Long:        "List menu items in the order they were first added. --match keeps names that contain the given letters in order.",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{storeAnnotation: storeRead},
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := storage.CollectMenuItems(cmd.Context(), a.store)
			if err != nil {
				return err
			}
			if match != "" {
				filtered := items[:0]
				for _, item := range items {
					if utils.FuzzyMatch(match, item.Name) {
						filtered = append(filtered, item)
					}
				}
				items = filtered
			}

			if a.jsonOutput() {
				return a.outputJSON(nonNil(items))
			}
			if len(items) == 0 {
				a.println(ui.RenderMuted("No menu items."))
				return nil
			}
			a.println(ui.RenderMenuTable(items, a.formatPrice, a.width()))
			a.println(ui.RenderMuted(fmt.Sprintf("%d item(s)", len(items))))
			return nil
		},
	}
	cmd.Flags().StringVar(&match, "match", "", "fuzzy filter on the name")
	return cmd
}

func (a *app) menuShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "show NAME",
		Short:       "Show one menu item",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{storeAnnotation: storeRead},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			item, err := a.store.GetMenuItem(ctx, args[0])
			if isNotFound(err) {
				items, lerr := storage.CollectMenuItems(ctx, a.store)
				if lerr != nil {
					return lerr
				}
				names := make([]string, 0, len(items))
				for _, it := range items {
					names = append(names, it.Name)
				}
				return errNotFound("menu item", args[0], utils.Suggest(args[0], names, 2, 3))
			}
			if err != nil {
				return err
			}

			if a.jsonOutput() {
				return a.outputJSON(item)
			}
			a.println(ui.RenderAccent(item.Name))
			a.println(fmt.Sprintf("Price:       %s", a.formatPrice(item.Price)))
			if item.Description != "" {
				a.println(fmt.Sprintf("Description: %s", item.Description))
			}
			if !item.UpdatedAt.IsZero() {
				a.println(ui.RenderMuted(fmt.Sprintf("Updated:     %s UTC", types.FormatTimestamp(item.UpdatedAt))))
			}
			return nil
		},
	}
}
