package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSignalRecordKey(t *testing.T) {
	r := &SignalRecord{Symbol: "AAPL", Timeframe: "1h"}
	assert.Equal(t, "AAPL:1h", r.Key())
}

func TestSignalRecordIsFresh(t *testing.T) {
	now := time.Now()
	r := &SignalRecord{NextUpdateAt: now.Add(time.Minute)}
	assert.True(t, r.IsFresh(now))
	assert.False(t, r.IsFresh(now.Add(time.Minute)), "deadline itself is stale")
	assert.False(t, r.IsFresh(now.Add(2*time.Minute)))

	var zero SignalRecord
	assert.False(t, zero.IsFresh(now), "zero record always needs a refresh")
}
