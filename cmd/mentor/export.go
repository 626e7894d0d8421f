package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/untoldecay/mentor/internal/export"
	"github.com/untoldecay/mentor/internal/ui"
)

func (a *app) exportCmd() *cobra.Command {
	var (
		formatFlag string
		output     string
	)
	cmd := &cobra.Command{
		Use:     "export",
		GroupID: "transfer",
		Short:   "Export the menu and Q&A entries",
		Long: `Write the database as text, json, yaml, toml or csv.

text writes the menu in the same three-line layout 'mentor parse' reads, so
an export can be edited and imported again. csv holds the menu only. The
structured formats keep every timestamp and load back with 'mentor seed'.

Without --format the format follows the -o file extension, or text.

Examples:
  mentor export > menu.txt
  mentor export -o backup.yaml
  mentor export --format csv -o menu.csv`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{storeAnnotation: storeRead},
		RunE: func(cmd *cobra.Command, _ []string) error {
			format := export.FormatText
			switch {
			case formatFlag != "":
				f, err := export.ParseFormat(formatFlag)
				if err != nil {
					return err
				}
				format = f
			case output != "":
				if f, ok := export.FormatFromPath(output); ok {
					format = f
				}
			}

			doc, err := export.Load(cmd.Context(), a.store, a.clock())
			if err != nil {
				return err
			}
			opts := export.Options{Currency: a.currency()}

			if output == "" || output == "-" {
				return export.Write(a.out, doc, format, opts)
			}

			path := a.path(output)
			if err := writeFileAtomic(path, func(f *os.File) error {
				return export.Write(f, doc, format, opts)
			}); err != nil {
				return err
			}
			a.logger.Debug("exported", "path", path, "format", format, "menu", len(doc.Menu), "qa", len(doc.QA))
			if a.jsonOutput() {
				return a.outputJSON(map[string]any{
					"path":   path,
					"format": format,
					"menu":   len(doc.Menu),
					"qa":     len(doc.QA),
				})
			}
			a.println(fmt.Sprintf("%s Exported %d menu item(s) and %d Q&A entr(ies) to %s (%s)",
				ui.RenderPass(ui.Icon("✓", "*")), len(doc.Menu), len(doc.QA), output, format))
			return nil
		},
	}
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "text, json, yaml, toml or csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to FILE instead of stdout")
	return cmd
}

// writeFileAtomic writes through a temp file in the same directory and
// renames it into place, so a failed export never truncates an old one.
func writeFileAtomic(path string, write func(*os.File) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
