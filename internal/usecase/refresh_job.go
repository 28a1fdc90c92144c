package usecase

import (
	"context"
	"fmt"

	drepo "stocklens/internal/domain/repository"
	"stocklens/pkg/queue"
)

// RefreshJobType is the queue message type for on-demand refreshes.
const RefreshJobType = "signal.refresh"

// RefreshPayload is the queue payload for a single-key refresh.
type RefreshPayload struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
	Force     bool   `json:"force"`
}

// RefreshJob executes queued on-demand refreshes through the same
// single-key pipeline as the scheduler; the per-key lock serializes both.
type RefreshJob struct {
	refresher *Refresher
}

// NewRefreshJob creates the queue job handler.
func NewRefreshJob(refresher *Refresher) *RefreshJob {
	return &RefreshJob{refresher: refresher}
}

func (j *RefreshJob) Name() string { return "signal_refresh" }

func (j *RefreshJob) Type() string { return RefreshJobType }

func (j *RefreshJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[RefreshPayload](payload)
	if err != nil {
		return fmt.Errorf("parse refresh payload: %w", err)
	}
	if p.Symbol == "" {
		return fmt.Errorf("refresh payload missing symbol")
	}
	tf := drepo.NormalizeTimeframe(p.Timeframe)
	return j.refresher.RefreshKey(ctx, p.Symbol, tf, p.Force)
}
