package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/untoldecay/mentor/internal/export"
	"github.com/untoldecay/mentor/internal/hooks"
	"github.com/untoldecay/mentor/internal/importer"
	"github.com/untoldecay/mentor/internal/ui"
)

func (a *app) seedCmd() *cobra.Command {
	var formatFlag string
	cmd := &cobra.Command{
		Use:     "seed FILE|-",
		GroupID: "transfer",
		Short:   "Load records from a json, yaml, toml or csv export",
		Long: `Load menu items and Q&A entries from a file written by 'mentor export'.

Records keep their own timestamps and go through the same rule as every
other write: a stored copy that is as new or newer wins. Seeding an old
backup therefore never undoes later edits. Records without a timestamp get
the current time.

Text exports are read with 'mentor parse'.

Examples:
  mentor seed backup.yaml
  cat menu.json | mentor seed - --format json`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{storeAnnotation: storeWrite},
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]
			var format export.Format
			switch {
			case formatFlag != "":
				f, err := export.ParseFormat(formatFlag)
				if err != nil {
					return err
				}
				format = f
			default:
				f, ok := export.FormatFromPath(source)
				if !ok {
					return fmt.Errorf("cannot tell the format of %s; pass --format", sourceName(source))
				}
				format = f
			}

			var r io.Reader = a.in
			if source != "-" {
				f, err := os.Open(a.path(source))
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", source, err)
				}
				defer func() { _ = f.Close() }()
				r = f
			}

			doc, err := export.Read(r, format)
			if err != nil {
				return fmt.Errorf("%s: %w", sourceName(source), err)
			}

			im := importer.New(nil, a.store, importer.WithClock(a.clock), importer.WithLogger(a.logger))
			res, err := im.Seed(cmd.Context(), doc.MenuItems(), doc.QAEntries())
			if res != nil {
				if perr := a.printSeedResult(sourceName(source), res); perr != nil && err == nil {
					err = perr
				}
			}
			if err != nil {
				return err
			}
			if res.Menu.Saved()+res.QA.Saved() > 0 {
				a.runHook(cmd.Context(), hooks.EventSeed, sourceName(source), res)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "json, yaml, toml or csv (default: from the file extension)")
	return cmd
}

func (a *app) printSeedResult(source string, res *importer.SeedResult) error {
	if a.jsonOutput() {
		return a.outputJSON(res)
	}
	a.println(fmt.Sprintf("%s Seeded from %s", ui.RenderPass(ui.Icon("✓", "*")), source))
	a.println(seedLine("menu", &res.Menu))
	a.println(seedLine("qa", &res.QA))
	for _, r := range res.Menu.Rejections {
		a.warn("menu %q: %s", r.Name, r.Reason)
	}
	for _, r := range res.QA.Rejections {
		a.warn("qa %q: %s", r.Name, r.Reason)
	}
	return nil
}

func seedLine(table string, r *importer.Result) string {
	return fmt.Sprintf("  %-5s %d found, %d new, %d updated, %d unchanged, %d rejected",
		table, r.Found, r.Inserted, r.Replaced, r.Unchanged, r.Rejected)
}
