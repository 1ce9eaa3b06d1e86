package repository

import (
	"context"

	"poewiki/internal/model"
)

// Archive writes fetched pages and finished runs to Postgres. Either part
// may be nil, which turns it off.
type Archive struct {
	Raw     *RawRepository
	Records *RecordRepository
}

func (a *Archive) SavePage(ctx context.Context, p model.RawPage) error {
	if a == nil || a.Raw == nil {
		return nil
	}
	return a.Raw.Save(ctx, p)
}

func (a *Archive) SaveRun(ctx context.Context, run model.Run, rs model.RecordSet) error {
	if a == nil || a.Records == nil {
		return nil
	}
	return a.Records.SaveRun(ctx, run, rs)
}
