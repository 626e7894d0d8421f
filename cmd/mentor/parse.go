package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/untoldecay/mentor/internal/extractor"
	"github.com/untoldecay/mentor/internal/hooks"
	"github.com/untoldecay/mentor/internal/importer"
	"github.com/untoldecay/mentor/internal/types"
	"github.com/untoldecay/mentor/internal/ui"
)

const (
	msgEmptyInput = "Please enter text."
	msgNoMatches  = "No valid menu items found."
)

// parseReport is the JSON shape of `mentor parse`.
type parseReport struct {
	Source string `json:"source"`
	DryRun bool   `json:"dry_run"`
	importer.Result
	Candidates []types.Candidate `json:"candidates,omitempty"`
}

func (a *app) parseCmd() *cobra.Command {
	var (
		dryRun     bool
		watch      bool
		currencies []string
	)
	cmd := &cobra.Command{
		Use:     "parse [FILE|-]",
		GroupID: "transfer",
		Short:   "Import menu items from pasted menu text",
		Long: `Read menu text from FILE (or stdin) and save every item found.

An item is three lines: the name, a description, and the price followed by
the currency word. Thousands are grouped with commas:

  Kebab
  Grilled lamb with rice
  150,000 Toman

Every item gets the current time. An item already stored with a newer time
is left alone, so importing the same text twice changes nothing.

--watch keeps running and re-imports FILE whenever it is saved.

Examples:
  mentor parse menu.txt
  pbpaste | mentor parse --dry-run
  mentor parse menu.txt --watch`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{storeAnnotation: storeWrite},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			source := "-"
			if len(args) == 1 {
				source = args[0]
			}
			if watch && source == "-" {
				return errors.New("--watch needs a FILE")
			}
			if watch && dryRun {
				return errors.New("--watch and --dry-run cannot be combined")
			}

			if cmd.Flags().Changed("currency") {
				a.cfg.Set("parse.currency", currencies)
			}
			ex, err := extractor.NewMenuExtractor(a.cfg.Currencies()...)
			if err != nil {
				return err
			}
			im := importer.New(ex, a.store, importer.WithClock(a.clock), importer.WithLogger(a.logger))

			if err := a.importSource(ctx, im, source, dryRun); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return a.watchAndImport(ctx, im, source)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be imported without saving")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-import FILE whenever it changes")
	cmd.Flags().StringSliceVar(&currencies, "currency", nil, "currency word(s) after prices (default from config)")
	return cmd
}

func (a *app) readSource(source string) (string, error) {
	var (
		data []byte
		err  error
	)
	if source == "-" {
		data, err = io.ReadAll(a.in)
	} else {
		data, err = os.ReadFile(a.path(source))
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", sourceName(source), err)
	}
	return strings.TrimPrefix(string(data), "\ufeff"), nil
}

func sourceName(source string) string {
	if source == "-" {
		return "stdin"
	}
	return source
}

func (a *app) importSource(ctx context.Context, im *importer.Importer, source string, dryRun bool) error {
	text, err := a.readSource(source)
	if err != nil {
		return err
	}
	report := parseReport{Source: sourceName(source), DryRun: dryRun}

	if dryRun {
		if strings.TrimSpace(text) == "" {
			a.warn(msgEmptyInput)
			return a.printParseReport(report)
		}
		report.Candidates = im.Preview(text)
		report.Found = len(report.Candidates)
		if report.Found == 0 {
			a.warn(msgNoMatches)
		}
		return a.printParseReport(report)
	}

	res, err := im.ImportText(ctx, text)
	switch {
	case errors.Is(err, importer.ErrEmptyInput):
		a.warn(msgEmptyInput)
		return a.printParseReport(report)
	case err != nil:
		if res != nil {
			report.Result = *res
			_ = a.printParseReport(report)
		}
		return err
	}
	report.Result = *res
	if res.Found == 0 {
		a.warn(msgNoMatches)
	}
	if err := a.printParseReport(report); err != nil {
		return err
	}
	if res.Saved() > 0 {
		a.runHook(ctx, hooks.EventImport, report.Source, report)
	}
	return nil
}

func (a *app) printParseReport(report parseReport) error {
	if a.jsonOutput() {
		return a.outputJSON(report)
	}
	if report.Found == 0 {
		return nil
	}
	res := report.Result
	a.println(ui.RenderImportReport(ui.ImportReport{
		Source:      report.Source,
		DryRun:      report.DryRun,
		Result:      &res,
		Candidates:  report.Candidates,
		FormatPrice: a.formatPrice,
	}, a.width()))
	return nil
}

// watchAndImport re-imports source on every settled change until ctx ends.
// Imports run on this goroutine only.
func (a *app) watchAndImport(ctx context.Context, im *importer.Importer, source string) error {
	changes := make(chan struct{}, 1)
	fw, err := NewFileWatcher(a.path(source), a.cfg.WatchDebounce(), a.logger, func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer func() { _ = fw.Close() }()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		fw.Run(runCtx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	a.logger.Info("watching for changes", "path", a.path(source))
	fmt.Fprintf(a.errOut, "Watching %s for changes (Ctrl+C to stop)\n", source)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			a.logger.Info("file changed, importing", "path", a.path(source))
			if err := a.importSource(ctx, im, source, false); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				a.logger.Error("import failed", "path", a.path(source), "error", err)
				a.warn("import failed: %v", err)
			}
		}
	}
}
