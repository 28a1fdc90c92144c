package sentiment

import (
	"math"
	"strings"
	"time"
	"unicode"

	"stocklens/internal/domain/models"
)

const (
	// Label thresholds on the aggregated compound score.
	positiveThreshold = 0.05
	negativeThreshold = -0.05

	// Normalization constant for the compound score.
	normAlpha = 15.0

	negationDampener = -0.74
)

// Analyzer is a lexicon and rule based polarity scorer for news documents.
// Deterministic: the same inputs always produce the same snapshot.
type Analyzer struct{}

// NewAnalyzer creates a sentiment analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze scores each document and aggregates the mean compound score.
// An empty input yields a neutral snapshot with zero count.
func (a *Analyzer) Analyze(items []models.NewsItem) models.SentimentSnapshot {
	snap := models.SentimentSnapshot{
		Label:     models.SentimentNeutral,
		FetchedAt: time.Now().UTC(),
	}
	if len(items) == 0 {
		return snap
	}

	var sum float64
	for _, item := range items {
		sum += a.Score(item.Title + " " + item.Description)
	}
	snap.Score = sum / float64(len(items))
	snap.NewsCount = len(items)
	snap.Label = LabelFor(snap.Score)
	return snap
}

// Score computes the compound polarity of a single document in [-1, 1].
func (a *Analyzer) Score(text string) float64 {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0
	}

	var total float64
	for i, tok := range tokens {
		valence, ok := lexicon[tok]
		if !ok {
			continue
		}

		// look back up to three tokens for boosters and negations
		for j := i - 1; j >= 0 && j >= i-3; j-- {
			prev := tokens[j]
			if b, ok := boosters[prev]; ok {
				if valence > 0 {
					valence += b
				} else {
					valence -= b
				}
			}
			if negations[prev] {
				valence *= negationDampener
			}
		}
		total += valence
	}

	// VADER-style normalization into [-1, 1]
	compound := total / math.Sqrt(total*total+normAlpha)
	if compound > 1 {
		compound = 1
	}
	if compound < -1 {
		compound = -1
	}
	return compound
}

// LabelFor classifies an aggregated score.
func LabelFor(score float64) models.SentimentLabel {
	switch {
	case score >= positiveThreshold:
		return models.SentimentPositive
	case score <= negativeThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '-'
	})
}
