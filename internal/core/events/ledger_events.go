package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeTransactionCreated   = "transaction.created"
	EventTypeTransactionDeleted   = "transaction.deleted"
	EventTypeTransactionsImported = "transactions.imported"
)

type TransactionCreatedEvent struct {
	BaseEvent
	TransactionID string `json:"transaction_id"`
	Title         string `json:"title"`
	Kind          string `json:"kind"`
	Value         string `json:"value"`
	Category      string `json:"category"`
}

func NewTransactionCreatedEvent(transactionID, title, kind, value, category string) *TransactionCreatedEvent {
	return &TransactionCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTransactionCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"transaction_id": transactionID,
				"title":          title,
				"kind":           kind,
				"value":          value,
				"category":       category,
			},
		},
		TransactionID: transactionID,
		Title:         title,
		Kind:          kind,
		Value:         value,
		Category:      category,
	}
}

type TransactionDeletedEvent struct {
	BaseEvent
	TransactionID string `json:"transaction_id"`
}

func NewTransactionDeletedEvent(transactionID string) *TransactionDeletedEvent {
	return &TransactionDeletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTransactionDeleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"transaction_id": transactionID,
			},
		},
		TransactionID: transactionID,
	}
}

type TransactionsImportedEvent struct {
	BaseEvent
	Source            string `json:"source"`
	Imported          int    `json:"imported"`
	Skipped           int    `json:"skipped"`
	CategoriesCreated int    `json:"categories_created"`
}

func NewTransactionsImportedEvent(source string, imported, skipped, categoriesCreated int) *TransactionsImportedEvent {
	return &TransactionsImportedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTransactionsImported,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"source":             source,
				"imported":           imported,
				"skipped":            skipped,
				"categories_created": categoriesCreated,
			},
		},
		Source:            source,
		Imported:          imported,
		Skipped:           skipped,
		CategoriesCreated: categoriesCreated,
	}
}
