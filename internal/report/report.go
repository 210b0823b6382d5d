package report

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// CategorySummary aggregates the ledger per category. Transactions whose
// category was deleted are reported under an empty title.
type CategorySummary struct {
	Category     string          `json:"category"`
	Income       decimal.Decimal `json:"income"`
	Outcome      decimal.Decimal `json:"outcome"`
	Net          decimal.Decimal `json:"net"`
	Transactions int             `json:"transactions"`
}

type CategorySummaryResponse struct {
	Categories []CategorySummary `json:"categories"`
}

type summaryRow struct {
	Category     string `db:"category"`
	IncomeCents  int64  `db:"income_cents"`
	OutcomeCents int64  `db:"outcome_cents"`
	Transactions int    `db:"transactions"`
}

// Totals are summed in integer cents so SQLite's REAL storage stays exact.
const categorySummaryQuery = `
SELECT
	COALESCE(c.title, '') AS category,
	CAST(COALESCE(SUM(CASE WHEN t.type = 'income' THEN CAST(ROUND(t.value * 100) AS BIGINT) ELSE 0 END), 0) AS BIGINT) AS income_cents,
	CAST(COALESCE(SUM(CASE WHEN t.type = 'outcome' THEN CAST(ROUND(t.value * 100) AS BIGINT) ELSE 0 END), 0) AS BIGINT) AS outcome_cents,
	COUNT(t.id) AS transactions
FROM transactions t
LEFT JOIN categories c ON c.id = t.category_id
GROUP BY c.title
ORDER BY category`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CategorySummaries(ctx context.Context) ([]CategorySummary, error) {
	var rows []summaryRow
	if err := r.db.SelectContext(ctx, &rows, categorySummaryQuery); err != nil {
		return nil, err
	}

	summaries := make([]CategorySummary, len(rows))
	for i, row := range rows {
		summaries[i] = CategorySummary{
			Category:     row.Category,
			Income:       decimal.New(row.IncomeCents, -2),
			Outcome:      decimal.New(row.OutcomeCents, -2),
			Transactions: row.Transactions,
		}
	}
	return summaries, nil
}

type RepositoryAPI interface {
	CategorySummaries(ctx context.Context) ([]CategorySummary, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) CategorySummary(ctx context.Context) (*CategorySummaryResponse, error) {
	rows, err := s.repo.CategorySummaries(ctx)
	if err != nil {
		s.logger.Error("failed to build category summary", "error", err)
		return nil, err
	}

	for i := range rows {
		rows[i].Net = rows[i].Income.Sub(rows[i].Outcome)
	}
	if rows == nil {
		rows = []CategorySummary{}
	}
	return &CategorySummaryResponse{Categories: rows}, nil
}
