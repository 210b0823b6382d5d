package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	transactionDatamodel "github.com/frahmantamala/personal-ledger/internal/core/datamodel/transaction"
	"github.com/frahmantamala/personal-ledger/internal/transaction"
)

const saveBatchSize = 500

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) transaction.RepositoryAPI {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Save(ctx context.Context, tx *transactionDatamodel.Transaction) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(tx).Error
}

// SaveMany inserts all rows or none.
func (r *TransactionRepository) SaveMany(ctx context.Context, txs []*transactionDatamodel.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return db.Omit(clause.Associations).CreateInBatches(txs, saveBatchSize).Error
	})
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transactionDatamodel.Transaction, error) {
	var tx transactionDatamodel.Transaction
	err := r.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepository) GetAll(ctx context.Context) ([]*transactionDatamodel.Transaction, error) {
	var txs []*transactionDatamodel.Transaction
	err := r.db.WithContext(ctx).Preload("Category").Order("created_at DESC").Find(&txs).Error
	return txs, err
}

func (r *TransactionRepository) Remove(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&transactionDatamodel.Transaction{}).Error
}

type typeTotal struct {
	Type  string
	Cents int64
}

// GetBalance sums in integer cents. SQLite keeps numeric columns as REAL, so
// summing value directly drifts on fractional amounts.
func (r *TransactionRepository) GetBalance(ctx context.Context) (transaction.Balance, error) {
	var totals []typeTotal
	err := r.db.WithContext(ctx).
		Model(&transactionDatamodel.Transaction{}).
		Select("type, CAST(COALESCE(SUM(CAST(ROUND(value * 100) AS BIGINT)), 0) AS BIGINT) AS cents").
		Group("type").
		Scan(&totals).Error
	if err != nil {
		return transaction.Balance{}, err
	}

	income, outcome := decimal.Zero, decimal.Zero
	for _, t := range totals {
		switch transaction.Type(t.Type) {
		case transaction.TypeIncome:
			income = decimal.New(t.Cents, -2)
		case transaction.TypeOutcome:
			outcome = decimal.New(t.Cents, -2)
		}
	}
	return transaction.NewBalance(income, outcome), nil
}
