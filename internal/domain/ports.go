package domain

import "context"

// Source yields raw rows of the review export.
type Source interface {
	Name() string
	// Version identifies the current content; a change invalidates the loaded dataset.
	Version(ctx context.Context) (string, error)
	ReadRows(ctx context.Context) ([]RawRow, error)
}

type ReviewStore interface {
	UpsertReviews(ctx context.Context, rs []Review) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type SentimentScorer interface {
	ScoreText(ctx context.Context, text string) (float64, error)
}

type CloudRenderer interface {
	// RenderCloud returns the encoded image and its content type.
	RenderCloud(ctx context.Context, texts []string) ([]byte, string, error)
}
