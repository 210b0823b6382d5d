package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	categoryPostgres "github.com/frahmantamala/personal-ledger/internal/category/postgres"
	"github.com/frahmantamala/personal-ledger/internal/transaction"
	transactionPostgres "github.com/frahmantamala/personal-ledger/internal/transaction/postgres"
)

// ledgerLockKey identifies the single ledger for pg_advisory_xact_lock.
const ledgerLockKey int64 = 0x6c6564676572

type UnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Do runs fn in one database transaction. On postgres the transaction holds
// the ledger advisory lock, so balance checks and writes are serialized.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos transaction.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", ledgerLockKey).Error; err != nil {
				return fmt.Errorf("failed to acquire ledger lock: %w", err)
			}
		}
		return fn(ctx, Repositories(tx))
	})
}

// Repositories binds the stores to db, which may be a transaction.
func Repositories(db *gorm.DB) transaction.Repositories {
	return transaction.Repositories{
		Categories:   categoryPostgres.NewCategoryRepository(db),
		Transactions: transactionPostgres.NewTransactionRepository(db),
	}
}
