package service

import "stocklens/internal/domain/models"

// SentimentAnalyzer scores news documents and aggregates them into a snapshot.
type SentimentAnalyzer interface {
	Analyze(items []models.NewsItem) models.SentimentSnapshot
}
