package importer

import (
	"context"
	"errors"

	"github.com/untoldecay/mentor/internal/types"
)

// SeedResult reports a Seed run per table.
type SeedResult struct {
	Menu Result `json:"menu"`
	QA   Result `json:"qa"`
}

// Seed loads records from an exported document through the same conflict
// rule as a text import. Records keep their own UpdatedAt; a record without
// one is stamped with the clock. Re-seeding an old export therefore never
// overwrites newer data.
func (im *Importer) Seed(ctx context.Context, menu []*types.MenuItem, qa []*types.QAEntry) (*SeedResult, error) {
	res := &SeedResult{}

	for i, item := range menu {
		res.Menu.Found++
		if item == nil {
			res.Menu.Rejected++
			continue
		}
		rec := *item
		if rec.UpdatedAt.IsZero() {
			rec.UpdatedAt = im.clock()
		}
		out, err := im.store.UpsertMenuItem(ctx, &rec)
		if err != nil {
			var verr *types.ValidationError
			if errors.As(err, &verr) {
				res.Menu.reject(types.Candidate{Name: rec.Name}, err)
				continue
			}
			return res, &BatchError{Index: i, Name: rec.Name, Err: err}
		}
		res.Menu.record(out)
	}

	for i, entry := range qa {
		res.QA.Found++
		if entry == nil {
			res.QA.Rejected++
			continue
		}
		rec := *entry
		if rec.UpdatedAt.IsZero() {
			rec.UpdatedAt = im.clock()
		}
		out, err := im.store.UpsertQA(ctx, &rec)
		if err != nil {
			var verr *types.ValidationError
			if errors.As(err, &verr) {
				res.QA.reject(types.Candidate{Name: rec.Question}, err)
				continue
			}
			return res, &BatchError{Index: i, Name: rec.Question, Err: err}
		}
		res.QA.record(out)
	}

	im.logResult("seed menu", &res.Menu, nil)
	im.logResult("seed qa", &res.QA, nil)
	return res, nil
}
