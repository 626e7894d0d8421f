package importer

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/untoldecay/mentor/internal/extractor"
	"github.com/untoldecay/mentor/internal/storage"
	"github.com/untoldecay/mentor/internal/types"
)

// ErrEmptyInput is returned by ImportText for blank text.
var ErrEmptyInput = errors.New("no text to import")

// Importer ties an extractor to a store.
type Importer struct {
	extractor extractor.Extractor
	store     storage.Storage
	clock     Clock
	logger    *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithClock replaces the wall clock.
func WithClock(clock Clock) Option {
	return func(im *Importer) {
		if clock != nil {
			im.clock = clock
		}
	}
}

// WithLogger sets the logger used for per-record debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(im *Importer) {
		if logger != nil {
			im.logger = logger
		}
	}
}

// New returns an Importer. A nil extractor uses the default menu grammar.
func New(ex extractor.Extractor, store storage.Storage, opts ...Option) *Importer {
	if ex == nil {
		ex = extractor.MustMenuExtractor()
	}
	im := &Importer{
		extractor: ex,
		store:     store,
		clock:     SystemClock,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Preview extracts candidates without touching the store.
func (im *Importer) Preview(text string) []types.Candidate {
	var out []types.Candidate
	for c := range im.extractor.Extract(text) {
		out = append(out, c)
	}
	return out
}

// ImportText extracts menu entries from text and upserts them. A text with
// no recognizable entry is not an error; the Result has Found == 0.
func (im *Importer) ImportText(ctx context.Context, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	res, err := UpsertBatch(ctx, im.store, im.extractor.Extract(text), im.clock)
	im.logResult("import", res, err)
	if err != nil {
		return res, err
	}
	if res.Found > 0 {
		im.recordImport(ctx, res)
	}
	return res, nil
}

// recordImport stores bookkeeping for `mentor info`. Failures are logged
// only; the import itself already committed.
func (im *Importer) recordImport(ctx context.Context, res *Result) {
	at := types.FormatTimestamp(im.clock())
	if err := im.store.SetMetadata(ctx, storage.MetaLastImportAt, at); err != nil {
		im.logger.Warn("failed to record last import time", "error", err)
		return
	}
	if err := im.store.SetMetadata(ctx, storage.MetaLastImportCount, strconv.Itoa(res.Saved())); err != nil {
		im.logger.Warn("failed to record last import count", "error", err)
	}
}

func (im *Importer) logResult(op string, res *Result, err error) {
	if res == nil {
		return
	}
	attrs := []any{
		"extractor", im.extractor.Name(),
		"found", res.Found,
		"inserted", res.Inserted,
		"replaced", res.Replaced,
		"unchanged", res.Unchanged,
		"superseded", res.Superseded,
		"rejected", res.Rejected,
	}
	if err != nil {
		im.logger.Error(op+" stopped", append(attrs, "error", err)...)
		return
	}
	im.logger.Debug(op+" finished", attrs...)
	for _, r := range res.Rejections {
		im.logger.Debug("candidate rejected", "line", r.Line, "name", r.Name, "reason", r.Reason)
	}
}
