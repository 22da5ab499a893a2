package sessions

import (
	"context"
	"errors"
)

var (
	ErrNotFound          = errors.New("session not found")
	ErrInvalidTransition = errors.New("invalid session transition")
)

// Store is the persistence collaborator for sessions. The pgx Repo is the
// production implementation; tests use an in-memory one. Implementations
// must return ErrNotFound for unknown ids and must only report success
// after the write is durable — the service applies no optimistic state.
type Store interface {
	Insert(ctx context.Context, s Session) (*Session, error)
	Update(ctx context.Context, s Session) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Session, error)
	List(ctx context.Context) ([]Session, error)
}
