package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxRunner scopes fn to one database transaction: it commits when fn returns
// nil and rolls back on any error or panic. Repository methods ending in Tx
// must be called with the tx handed to fn.
type TxRunner interface {
	RunTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTxRunner struct{ db *gorm.DB }

func NewTxRunner(db *gorm.DB) TxRunner { return &gormTxRunner{db: db} }

func (r *gormTxRunner) RunTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
