package storage

import (
	"context"
	"errors"

	"redirector/internal/domain/models"
)

var (
	// ErrTargetNotFound - no target has the given id.
	ErrTargetNotFound = errors.New("target not found")
	// ErrDuplicateURL - another target already points at the URL.
	ErrDuplicateURL = errors.New("duplicate URL")
)

// TargetStore is the part of the destination table the redirect core uses.
type TargetStore interface {
	// ActiveTargets returns active targets ordered by weight desc, creation time desc.
	ActiveTargets(ctx context.Context) ([]models.RedirectTarget, error)
	// IncrementHits adds one to the target's hit counter.
	IncrementHits(ctx context.Context, id string) error
	// Ping checks the store is reachable.
	Ping(ctx context.Context) error
}

// TargetWriter seeds targets. The admin panel owns real edits.
type TargetWriter interface {
	InsertTarget(ctx context.Context, t models.RedirectTarget) (models.RedirectTarget, error)
}
