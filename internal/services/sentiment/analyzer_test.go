package sentiment

import (
	"testing"

	"stocklens/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeEmptyIsNeutral(t *testing.T) {
	a := NewAnalyzer()
	snap := a.Analyze(nil)

	assert.Equal(t, 0.0, snap.Score)
	assert.Equal(t, models.SentimentNeutral, snap.Label)
	assert.Equal(t, 0, snap.NewsCount)
	assert.False(t, snap.FetchedAt.IsZero())
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := NewAnalyzer()
	items := []models.NewsItem{
		{Title: "Shares rally after earnings beat", Description: "Strong growth in cloud revenue"},
		{Title: "Analysts upgrade the stock", Description: ""},
	}
	first := a.Analyze(items)
	second := a.Analyze(items)
	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Label, second.Label)
	assert.Equal(t, 2, first.NewsCount)
}

func TestAnalyzePositiveHeadlines(t *testing.T) {
	a := NewAnalyzer()
	items := []models.NewsItem{
		{Title: "Stock soars as profits surge"},
		{Title: "Shares rally on record growth"},
	}
	snap := a.Analyze(items)
	assert.Greater(t, snap.Score, 0.05)
	assert.Equal(t, models.SentimentPositive, snap.Label)
}

func TestAnalyzeNegativeHeadlines(t *testing.T) {
	a := NewAnalyzer()
	items := []models.NewsItem{
		{Title: "Shares plunge after earnings miss"},
		{Title: "Stock tumbles on fraud probe"},
	}
	snap := a.Analyze(items)
	assert.Less(t, snap.Score, -0.05)
	assert.Equal(t, models.SentimentNegative, snap.Label)
}

func TestScoreRange(t *testing.T) {
	a := NewAnalyzer()
	for _, text := range []string{
		"",
		"soar surge rally bullish breakout jump record strong robust",
		"crash plunge tumble bearish bankrupt fraud recession selloff",
		"the quick brown fox",
	} {
		score := a.Score(text)
		assert.GreaterOrEqual(t, score, -1.0, "text %q", text)
		assert.LessOrEqual(t, score, 1.0, "text %q", text)
	}
}

func TestScoreNegationFlips(t *testing.T) {
	a := NewAnalyzer()
	pos := a.Score("a strong quarter")
	neg := a.Score("not a strong quarter")
	require.Greater(t, pos, 0.0)
	assert.Less(t, neg, 0.0)
}

func TestScoreBoosterAmplifies(t *testing.T) {
	a := NewAnalyzer()
	base := a.Score("shares rally")
	boosted := a.Score("shares sharply rally")
	damped := a.Score("shares slightly rally")

	assert.Greater(t, boosted, base)
	assert.Less(t, damped, base)
}

func TestLabelFor(t *testing.T) {
	assert.Equal(t, models.SentimentPositive, LabelFor(0.05))
	assert.Equal(t, models.SentimentNegative, LabelFor(-0.05))
	assert.Equal(t, models.SentimentNeutral, LabelFor(0.049))
	assert.Equal(t, models.SentimentNeutral, LabelFor(-0.049))
	assert.Equal(t, models.SentimentNeutral, LabelFor(0))
}
