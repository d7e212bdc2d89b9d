package selector

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"barricade.gg/backend/internal/pkg/bcerr"
)

type S[T any] struct {
	DB *bun.DB
}

func New[T any](db *bun.DB) S[T] {
	return S[T]{
		DB: db,
	}
}

func (r S[T]) SelectOne(ctx context.Context, fn func(q *bun.SelectQuery) *bun.SelectQuery) (*T, error) {
	return SelectOneWith[T](ctx, r.DB, fn)
}

func (r S[T]) SelectMany(ctx context.Context, fn func(q *bun.SelectQuery) *bun.SelectQuery) ([]*T, error) {
	return SelectManyWith[T](ctx, r.DB, fn)
}

// SelectOneWith is SelectOne on an arbitrary bun.IDB, typically a transaction.
func SelectOneWith[T any](ctx context.Context, db bun.IDB, fn func(q *bun.SelectQuery) *bun.SelectQuery) (*T, error) {
	var model T
	err := fn(db.NewSelect().Model(&model)).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, bcerr.ErrNotFound
	} else if err != nil {
		return nil, err
	}

	return &model, nil
}

// SelectManyWith is SelectMany on an arbitrary bun.IDB. An empty result is not an error.
func SelectManyWith[T any](ctx context.Context, db bun.IDB, fn func(q *bun.SelectQuery) *bun.SelectQuery) ([]*T, error) {
	var model []*T
	err := fn(db.NewSelect().Model(&model)).Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	return model, nil
}
