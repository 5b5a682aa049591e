package domain

import "context"

// UserStore records which users have talked to the bot. Append-only:
// records are never updated or deleted.
type UserStore interface {
	Exists(ctx context.Context, userID int64) (bool, error)
	Insert(ctx context.Context, userID int64) error
	Close() error
}
