package usecase

import (
	"testing"

	"stocklens/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTradePlanLong(t *testing.T) {
	atr := 2.0
	plan := BuildTradePlan(100, &atr, models.DirectionLong)

	require.Equal(t, models.DirectionLong, plan.Direction)
	require.NotNil(t, plan.Entry)
	require.NotNil(t, plan.StopLoss)
	require.NotNil(t, plan.TakeProfit1)
	require.NotNil(t, plan.TakeProfit2)
	require.NotNil(t, plan.RiskReward)

	assert.Equal(t, 100.0, *plan.Entry)
	assert.Equal(t, 96.0, *plan.StopLoss)
	assert.Equal(t, 103.0, *plan.TakeProfit1)
	assert.Equal(t, 106.0, *plan.TakeProfit2)
	assert.Equal(t, 1.5, *plan.RiskReward)

	// ordering invariant for longs
	assert.Less(t, *plan.StopLoss, *plan.Entry)
	assert.Less(t, *plan.Entry, *plan.TakeProfit1)
	assert.Less(t, *plan.TakeProfit1, *plan.TakeProfit2)
}

func TestBuildTradePlanShort(t *testing.T) {
	atr := 2.0
	plan := BuildTradePlan(100, &atr, models.DirectionShort)

	require.Equal(t, models.DirectionShort, plan.Direction)
	assert.Equal(t, 104.0, *plan.StopLoss)
	assert.Equal(t, 97.0, *plan.TakeProfit1)
	assert.Equal(t, 94.0, *plan.TakeProfit2)
	assert.Equal(t, 1.5, *plan.RiskReward)

	// ordering invariant for shorts
	assert.Greater(t, *plan.StopLoss, *plan.Entry)
	assert.Greater(t, *plan.Entry, *plan.TakeProfit1)
	assert.Greater(t, *plan.TakeProfit1, *plan.TakeProfit2)
}

func TestBuildTradePlanNoATR(t *testing.T) {
	for name, atr := range map[string]*float64{
		"nil":      nil,
		"zero":     ptr(0.0),
		"negative": ptr(-1.0),
	} {
		plan := BuildTradePlan(100, atr, models.DirectionLong)
		assert.Equal(t, models.DirectionNone, plan.Direction, name)
		assert.Nil(t, plan.Entry, name)
		assert.Nil(t, plan.StopLoss, name)
		assert.Nil(t, plan.TakeProfit1, name)
		assert.Nil(t, plan.TakeProfit2, name)
		assert.Nil(t, plan.RiskReward, name)
	}
}

func TestBuildTradePlanNoDirection(t *testing.T) {
	atr := 2.0
	plan := BuildTradePlan(100, &atr, models.DirectionNone)
	assert.Equal(t, models.DirectionNone, plan.Direction)
	assert.Nil(t, plan.Entry)
}

func TestRiskRewardRounding(t *testing.T) {
	atr := 3.0
	plan := BuildTradePlan(55.55, &atr, models.DirectionLong)
	require.NotNil(t, plan.RiskReward)
	// reward 3*atr over risk 2*atr regardless of price
	assert.Equal(t, 1.5, *plan.RiskReward)
}

func ptr(v float64) *float64 { return &v }
