// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
package repository

import (
	"context"

	"doctools/internal/model"
)

// ActivityRepository persists the content-free activity log using SQL queries only.
// No business logic here, strictly persistence operations.
type ActivityRepository interface {
	// Record inserts one activity row.
	Record(ctx context.Context, a *model.Activity) error

	// List returns a page of activities, newest first, and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Activity], error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}

// NoopActivityRepository discards records and lists nothing. Used when no database is configured.
type NoopActivityRepository struct{}

var _ ActivityRepository = NoopActivityRepository{}

func (NoopActivityRepository) Record(context.Context, *model.Activity) error { return nil }

func (NoopActivityRepository) List(context.Context, PageQuery) (*PageResult[model.Activity], error) {
	return &PageResult[model.Activity]{Items: []model.Activity{}}, nil
}
