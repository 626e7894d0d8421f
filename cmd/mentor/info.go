package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/untoldecay/mentor/internal/config"
	"github.com/untoldecay/mentor/internal/storage"
	"github.com/untoldecay/mentor/internal/storage/sqlite"
	"github.com/untoldecay/mentor/internal/ui"
)

type infoReport struct {
	DatabasePath    string           `json:"database_path"`
	DatabaseBytes   int64            `json:"database_bytes"`
	MenuItems       int              `json:"menu_items"`
	QAEntries       int              `json:"qa_entries"`
	LastImportAt    string           `json:"last_import_at,omitempty"`
	LastImportCount string           `json:"last_import_count,omitempty"`
	ConfigFile      string           `json:"config_file,omitempty"`
	DotEnvFile      string           `json:"dotenv_file,omitempty"`
	Settings        []config.Setting `json:"settings,omitempty"`
}

func (a *app) infoCmd() *cobra.Command {
	var showConfig bool
	cmd := &cobra.Command{
		Use:     "info",
		GroupID: "about",
		Short:   "Show database and configuration information",
		Long: `Display which database mentor is using and what is in it.

This helps when mentor picks up an unexpected database or config file. It
shows:
  - The absolute path to the database file
  - How many menu items and Q&A entries it holds
  - When text was last imported, and how many items that saved
  - The config and .env files that were read
  - Every setting and where its value came from (with --config-sources)

Examples:
  mentor info
  mentor info --json
  mentor info --config-sources`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{storeAnnotation: storeRead},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			dbPath := a.dbPath()
			if dbPath != sqlite.MemoryPath {
				if abs, err := filepath.Abs(dbPath); err == nil {
					dbPath = abs
				}
			}
			rep := infoReport{
				DatabasePath: dbPath,
				ConfigFile:   a.cfg.File(),
				DotEnvFile:   a.cfg.DotEnvFile(),
			}
			if st, err := os.Stat(dbPath); err == nil {
				rep.DatabaseBytes = st.Size()
			}

			var err error
			if rep.MenuItems, err = a.store.CountMenuItems(ctx); err != nil {
				return err
			}
			if rep.QAEntries, err = a.store.CountQA(ctx); err != nil {
				return err
			}
			if rep.LastImportAt, err = a.store.GetMetadata(ctx, storage.MetaLastImportAt); err != nil {
				return err
			}
			if rep.LastImportCount, err = a.store.GetMetadata(ctx, storage.MetaLastImportCount); err != nil {
				return err
			}
			if showConfig || a.jsonOutput() {
				rep.Settings = a.cfg.Settings()
			}

			if a.jsonOutput() {
				return a.outputJSON(rep)
			}
			a.printInfo(rep, showConfig)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showConfig, "config-sources", false, "list every setting and where it came from")
	return cmd
}

func (a *app) printInfo(rep infoReport, showConfig bool) {
	field := func(label, value string) {
		a.println(fmt.Sprintf("%-13s %s", label+":", value))
	}
	a.println(ui.RenderAccent("mentor"))
	field("Database", rep.DatabasePath)
	field("Menu items", fmt.Sprint(rep.MenuItems))
	field("Q&A entries", fmt.Sprint(rep.QAEntries))
	if rep.LastImportAt != "" {
		field("Last import", fmt.Sprintf("%s UTC (%s saved)", rep.LastImportAt, rep.LastImportCount))
	} else {
		field("Last import", ui.RenderMuted("never"))
	}
	field("Config file", orNone(rep.ConfigFile))
	if rep.DotEnvFile != "" {
		field(".env file", rep.DotEnvFile)
	}

	if !showConfig {
		return
	}
	a.println("")
	a.println(ui.RenderAccent("Settings"))
	for _, s := range rep.Settings {
		value := fmt.Sprint(s.Value)
		if list, ok := s.Value.([]string); ok {
			value = strings.Join(list, ", ")
		}
		a.println(fmt.Sprintf("  %-18s %-24s %s", s.Key, value, ui.RenderMuted(string(s.Source))))
	}
}

func orNone(s string) string {
	if s == "" {
		return ui.RenderMuted("(none)")
	}
	return s
}
