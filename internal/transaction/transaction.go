package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/personal-ledger/internal"
	"github.com/frahmantamala/personal-ledger/internal/category"
	transactionDatamodel "github.com/frahmantamala/personal-ledger/internal/core/datamodel/transaction"
)

type Type string

const (
	TypeIncome  Type = "income"
	TypeOutcome Type = "outcome"
)

// Types lists the accepted transaction types.
var Types = []string{string(TypeIncome), string(TypeOutcome)}

func ParseType(raw string) (Type, bool) {
	switch Type(raw) {
	case TypeIncome:
		return TypeIncome, true
	case TypeOutcome:
		return TypeOutcome, true
	}
	return "", false
}

type State int

const (
	StatePending State = iota
	StatePersisted
	StateDeleted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StatePersisted:
		return "persisted"
	case StateDeleted:
		return "deleted"
	}
	return "unknown"
}

type Transaction struct {
	ID         uuid.UUID          `json:"id"`
	Title      string             `json:"title"`
	Type       Type               `json:"type"`
	Value      decimal.Decimal    `json:"value"`
	CategoryID *uuid.UUID         `json:"category_id"`
	Category   *category.Category `json:"category,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`

	state State
}

// NewTransaction builds a pending transaction with a fresh identity.
func NewTransaction(title string, txType Type, value decimal.Decimal, cat *category.Category) *Transaction {
	now := time.Now()
	tx := &Transaction{
		ID:        uuid.New(),
		Title:     title,
		Type:      txType,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
		state:     StatePending,
	}
	if cat != nil {
		id := cat.ID
		tx.CategoryID = &id
		tx.Category = cat
	}
	return tx
}

func (t *Transaction) State() State {
	return t.state
}

func (t *Transaction) MarkPersisted() error {
	if t.state != StatePending {
		return internal.ErrInvalidStateTransition
	}
	t.state = StatePersisted
	return nil
}

func (t *Transaction) MarkDeleted() error {
	if t.state != StatePersisted {
		return internal.ErrInvalidStateTransition
	}
	t.state = StateDeleted
	return nil
}

// ToDataModel leaves the category association unset so saves never touch categories.
func ToDataModel(t *Transaction) *transactionDatamodel.Transaction {
	dm := &transactionDatamodel.Transaction{
		ID:        t.ID,
		Title:     t.Title,
		Type:      string(t.Type),
		Value:     t.Value,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.CategoryID != nil {
		id := *t.CategoryID
		dm.CategoryID = &id
	}
	return dm
}

// FromDataModel returns a persisted transaction.
func FromDataModel(dm *transactionDatamodel.Transaction) *Transaction {
	t := &Transaction{
		ID:        dm.ID,
		Title:     dm.Title,
		Type:      Type(dm.Type),
		Value:     dm.Value,
		CreatedAt: dm.CreatedAt,
		UpdatedAt: dm.UpdatedAt,
		state:     StatePersisted,
	}
	if dm.CategoryID != nil {
		id := *dm.CategoryID
		t.CategoryID = &id
	}
	if dm.Category != nil {
		t.Category = category.FromDataModel(dm.Category)
	}
	return t
}
