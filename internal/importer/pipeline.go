package importer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/personal-ledger/internal/category"
	transactionDatamodel "github.com/frahmantamala/personal-ledger/internal/core/datamodel/transaction"
	"github.com/frahmantamala/personal-ledger/internal/core/events"
	"github.com/frahmantamala/personal-ledger/internal/transaction"
)

type ImportResult struct {
	Transactions      []*transaction.Transaction `json:"transactions"`
	Skipped           int                        `json:"skipped"`
	CategoriesCreated int                        `json:"categories_created"`
}

type Pipeline struct {
	uow       transaction.UnitOfWork
	publisher transaction.Publisher
	logger    *slog.Logger
}

// NewPipeline wires the import pipeline; publisher may be nil.
func NewPipeline(uow transaction.UnitOfWork, publisher transaction.Publisher, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		uow:       uow,
		publisher: publisher,
		logger:    logger,
	}
}

// Import loads every acceptable row of artifact. Categories are resolved with
// one lookup and one batch insert, and transactions are saved in one batch,
// all in a single unit of work. The balance rule does not apply to imports.
// The artifact is removed only after the unit of work commits.
func (p *Pipeline) Import(ctx context.Context, artifact Artifact) (*ImportResult, error) {
	log := p.logger.With("artifact", artifact.Name())

	parsed, err := p.parse(artifact, log)
	if err != nil {
		log.Error("failed to parse import file", "error", err)
		return nil, err
	}

	result := &ImportResult{
		Transactions: []*transaction.Transaction{},
		Skipped:      parsed.skipped,
	}

	if len(parsed.records) > 0 {
		var created []*transaction.Transaction
		var categoriesCreated int
		err := p.uow.Do(ctx, func(ctx context.Context, repos transaction.Repositories) error {
			categories := category.NewService(repos.Categories, log)
			resolved, newCount, err := resolveCategories(ctx, categories, distinctCategories(parsed.records))
			if err != nil {
				return err
			}

			txs, err := materialize(parsed.records, resolved)
			if err != nil {
				return err
			}

			dataTransactions := make([]*transactionDatamodel.Transaction, len(txs))
			for i, tx := range txs {
				dataTransactions[i] = transaction.ToDataModel(tx)
			}
			if err := repos.Transactions.SaveMany(ctx, dataTransactions); err != nil {
				return err
			}

			created = txs
			categoriesCreated = newCount
			return nil
		})
		if err != nil {
			log.Error("import rolled back, artifact kept", "error", err, "records", len(parsed.records))
			return nil, err
		}

		for _, tx := range created {
			if err := tx.MarkPersisted(); err != nil {
				return nil, err
			}
		}
		result.Transactions = created
		result.CategoriesCreated = categoriesCreated
	}

	if err := artifact.Remove(); err != nil {
		log.Warn("failed to remove imported artifact", "error", err)
	}

	log.Info("import completed",
		"imported", len(result.Transactions),
		"skipped", result.Skipped,
		"categories_created", result.CategoriesCreated)

	if p.publisher != nil {
		event := events.NewTransactionsImportedEvent(artifact.Name(), len(result.Transactions), result.Skipped, result.CategoriesCreated)
		if err := p.publisher.Publish(ctx, event); err != nil {
			log.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
		}
	}

	return result, nil
}

func (p *Pipeline) parse(artifact Artifact, log *slog.Logger) (parsedFile, error) {
	file, err := artifact.Open()
	if err != nil {
		return parsedFile{}, fmt.Errorf("failed to open artifact: %w", err)
	}
	defer file.Close()

	reader, err := NewRecordReader(artifact.Name(), file)
	if err != nil {
		return parsedFile{}, err
	}
	return parseRecords(reader, log)
}

// resolveCategories maps every title to a category, creating the missing ones
// in one batch. It returns how many were created.
func resolveCategories(ctx context.Context, categories *category.Service, titles []string) (map[string]*category.Category, int, error) {
	resolved, err := categories.FindByTitles(ctx, titles)
	if err != nil {
		return nil, 0, err
	}

	missing := make([]string, 0, len(titles))
	for _, title := range titles {
		if _, ok := resolved[title]; !ok {
			missing = append(missing, title)
		}
	}

	created, err := categories.CreateMany(ctx, missing)
	if err != nil {
		return nil, 0, err
	}
	for _, c := range created {
		resolved[c.Title] = c
	}
	return resolved, len(created), nil
}

func materialize(records []Record, resolved map[string]*category.Category) ([]*transaction.Transaction, error) {
	txs := make([]*transaction.Transaction, 0, len(records))
	for _, r := range records {
		cat, ok := resolved[r.Category]
		if !ok {
			return nil, fmt.Errorf("category %q unresolved for row %d", r.Category, r.Row)
		}
		txs = append(txs, transaction.NewTransaction(r.Title, r.Type, r.Value, cat))
	}
	return txs, nil
}
