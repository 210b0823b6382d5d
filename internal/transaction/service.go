package transaction

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/frahmantamala/personal-ledger/internal"
	"github.com/frahmantamala/personal-ledger/internal/category"
	transactionDatamodel "github.com/frahmantamala/personal-ledger/internal/core/datamodel/transaction"
	"github.com/frahmantamala/personal-ledger/internal/core/events"
)

// RepositoryAPI persists transactions. GetByID returns nil, nil when absent.
type RepositoryAPI interface {
	Save(ctx context.Context, tx *transactionDatamodel.Transaction) error
	SaveMany(ctx context.Context, txs []*transactionDatamodel.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*transactionDatamodel.Transaction, error)
	GetAll(ctx context.Context) ([]*transactionDatamodel.Transaction, error)
	Remove(ctx context.Context, id uuid.UUID) error
	GetBalance(ctx context.Context) (Balance, error)
}

type Service struct {
	uow       UnitOfWork
	publisher Publisher
	logger    *slog.Logger
}

// NewService wires the service; publisher may be nil.
func NewService(uow UnitOfWork, publisher Publisher, logger *slog.Logger) *Service {
	return &Service{
		uow:       uow,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateTransaction records one transaction. An outcome that would drive the
// balance below zero fails with ErrInsufficientFunds and mutates nothing.
func (s *Service) CreateTransaction(ctx context.Context, dto CreateTransactionDTO) (*Transaction, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		s.logger.Warn("transaction validation failed", "error", err)
		return nil, err
	}

	txType, _ := ParseType(dto.Type)
	value := *dto.Value

	var created *Transaction
	err := s.uow.Do(ctx, func(ctx context.Context, repos Repositories) error {
		balance, err := repos.Transactions.GetBalance(ctx)
		if err != nil {
			return err
		}
		if !balance.Allows(txType, value) {
			s.logger.Warn("outcome exceeds balance",
				"total", balance.Total.String(),
				"value", value.String())
			return internal.NewInsufficientFundsError(balance.Total.String(), value.String())
		}

		cat, _, err := category.NewService(repos.Categories, s.logger).FindOrCreate(ctx, dto.Category)
		if err != nil {
			return err
		}

		tx := NewTransaction(dto.Title, txType, value, cat)
		if err := repos.Transactions.Save(ctx, ToDataModel(tx)); err != nil {
			return err
		}
		created = tx
		return nil
	})
	if err != nil {
		if _, ok := internal.IsAppError(err); !ok {
			s.logger.Error("failed to create transaction", "error", err, "title", dto.Title)
		}
		return nil, err
	}

	if err := created.MarkPersisted(); err != nil {
		return nil, err
	}

	s.logger.Info("transaction created",
		"transaction_id", created.ID,
		"type", created.Type,
		"value", created.Value.String(),
		"category", dto.Category)

	s.publish(ctx, events.NewTransactionCreatedEvent(
		created.ID.String(), created.Title, string(created.Type), created.Value.String(), dto.Category))

	return created, nil
}

// DeleteTransaction removes a transaction without re-checking the balance.
func (s *Service) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	var removed *Transaction
	err := s.uow.Do(ctx, func(ctx context.Context, repos Repositories) error {
		found, err := repos.Transactions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if found == nil {
			return internal.ErrTransactionNotFound
		}
		if err := repos.Transactions.Remove(ctx, id); err != nil {
			return err
		}
		removed = FromDataModel(found)
		return nil
	})
	if err != nil {
		if _, ok := internal.IsAppError(err); !ok {
			s.logger.Error("failed to delete transaction", "error", err, "transaction_id", id)
		}
		return err
	}

	if err := removed.MarkDeleted(); err != nil {
		return err
	}

	s.logger.Info("transaction deleted", "transaction_id", id)
	s.publish(ctx, events.NewTransactionDeletedEvent(id.String()))
	return nil
}

func (s *Service) ListTransactions(ctx context.Context) (*TransactionsResponse, error) {
	response := &TransactionsResponse{}
	err := s.uow.Do(ctx, func(ctx context.Context, repos Repositories) error {
		dataTransactions, err := repos.Transactions.GetAll(ctx)
		if err != nil {
			return err
		}
		balance, err := repos.Transactions.GetBalance(ctx)
		if err != nil {
			return err
		}

		response.Transactions = make([]*Transaction, 0, len(dataTransactions))
		for _, dm := range dataTransactions {
			response.Transactions = append(response.Transactions, FromDataModel(dm))
		}
		response.Balance = balance
		return nil
	})
	if err != nil {
		s.logger.Error("failed to list transactions", "error", err)
		return nil, err
	}

	s.logger.Debug("retrieved transactions", "count", len(response.Transactions))
	return response, nil
}

func (s *Service) GetBalance(ctx context.Context) (Balance, error) {
	var balance Balance
	err := s.uow.Do(ctx, func(ctx context.Context, repos Repositories) error {
		var err error
		balance, err = repos.Transactions.GetBalance(ctx)
		return err
	})
	if err != nil {
		s.logger.Error("failed to compute balance", "error", err)
		return Balance{}, err
	}
	return balance, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
