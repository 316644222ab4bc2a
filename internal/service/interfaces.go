package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"post_browser/internal/domain"
)

type RecordSource interface {
	ID() string
	Name() string
	FetchPage(ctx context.Context, limit, page int) (*domain.PageResult, error)
}

type Publisher interface {
	Publish(ctx context.Context, event *domain.ViewEvent) error
	Close() error
}
