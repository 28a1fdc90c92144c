package usecase

import (
	"context"
	"fmt"

	"stocklens/pkg/logger"
	"stocklens/pkg/queue"
)

// LogDigestJobType is the queue message type for aggregated error logs.
const LogDigestJobType = "log.aggregate"

// LogDigestJob consumes aggregated error batches flushed by the log
// collector and re-emits one compact line per distinct error. In a
// multi-instance deployment one consumer digests the whole fleet.
type LogDigestJob struct {
	logger *logger.Logger
}

// NewLogDigestJob creates the digest handler.
func NewLogDigestJob(lgr *logger.Logger) *LogDigestJob {
	return &LogDigestJob{logger: lgr}
}

func (j *LogDigestJob) Name() string { return "log_digest" }

func (j *LogDigestJob) Type() string { return LogDigestJobType }

func (j *LogDigestJob) Handle(_ context.Context, payload interface{}) error {
	entries, err := queue.ParsePayload[[]logger.AggregatedLogEntry](payload)
	if err != nil {
		return fmt.Errorf("parse log digest payload: %w", err)
	}
	for _, e := range *entries {
		j.logger.Info("error digest",
			logger.String("message", e.Message),
			logger.String("caller", e.Caller),
			logger.Int("count", e.Count),
			logger.String("first_seen", e.FirstSeen.Format("2006-01-02T15:04:05Z07:00")),
			logger.String("last_seen", e.LastSeen.Format("2006-01-02T15:04:05Z07:00")))
	}
	return nil
}
