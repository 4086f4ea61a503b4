package repository

import (
	"context"

	"aura-studio/internal/domain/model"
)

// SessionRepository owns the canonical studio sessions. Mutations go
// through Update so concurrent merges (theme images, chat patches,
// editor edits) are serialized per session; Find returns a detached
// snapshot.
type SessionRepository interface {
	Create(ctx context.Context, s *model.StudioSession) error
	Find(ctx context.Context, id string) (*model.StudioSession, error)
	// Update applies fn to the live session under its lock and returns a
	// snapshot of the result. fn returning an error aborts the mutation.
	Update(ctx context.Context, id string, fn func(*model.StudioSession) error) (*model.StudioSession, error)
	Delete(ctx context.Context, id string) error
}
