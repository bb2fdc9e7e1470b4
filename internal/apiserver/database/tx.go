package database

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// TransactionFromContext returns the control-DB transaction carried by
// ctx, or nil when the caller is not inside one.
func TransactionFromContext(ctx context.Context) *gorm.DB {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	if !ok {
		return nil
	}
	return tx
}

// ContextWithTransaction stores a control-DB transaction in ctx so that
// store calls made during the transaction join it.
func ContextWithTransaction(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func getDBFromContext(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx := TransactionFromContext(ctx); tx != nil {
		return tx
	}
	return db.WithContext(ctx)
}
