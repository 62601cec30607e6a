package db

import (
	"context"

	"gorm.io/gorm"
)

type sessionKey struct{}

// OpenSession returns the session carried by ctx, so calls made inside
// InTransaction join the transaction. Otherwise it starts a session on db.
func OpenSession(ctx context.Context, db *gorm.DB) (context.Context, *gorm.DB) {
	if tx, ok := ctx.Value(sessionKey{}).(*gorm.DB); ok {
		return ctx, tx
	}

	tx := db.WithContext(ctx)
	return context.WithValue(ctx, sessionKey{}, tx), tx
}

// InTransaction runs fn in a transaction. The context handed to fn carries
// the transaction for nested OpenSession calls; a transaction already on ctx
// is reused as a savepoint.
func InTransaction(ctx context.Context, db *gorm.DB, fn func(ctx context.Context, tx *gorm.DB) error) error {
	_, session := OpenSession(ctx, db)

	return session.Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, sessionKey{}, tx), tx)
	})
}
