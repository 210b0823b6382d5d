package transaction

import (
	"context"

	"github.com/frahmantamala/personal-ledger/internal/category"
	"github.com/frahmantamala/personal-ledger/internal/core/events"
)

// Repositories are the stores bound to one unit of work.
type Repositories struct {
	Categories   category.RepositoryAPI
	Transactions RepositoryAPI
}

// UnitOfWork runs fn atomically. Everything fn writes through repos is
// committed when fn returns nil and rolled back otherwise.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}
