package category

import (
	"context"
	"fmt"
	"log/slog"

	categoryDatamodel "github.com/frahmantamala/personal-ledger/internal/core/datamodel/category"
)

// RepositoryAPI is the durable title -> category mapping.
type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*categoryDatamodel.Category, error)
	GetByTitle(ctx context.Context, title string) (*categoryDatamodel.Category, error)
	GetByTitles(ctx context.Context, titles []string) ([]*categoryDatamodel.Category, error)
	CreateMany(ctx context.Context, categories []*categoryDatamodel.Category) error
	CreateIfAbsent(ctx context.Context, category *categoryDatamodel.Category) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetAllCategories(ctx context.Context) ([]CategoryResponse, error) {
	dataCategories, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to get categories from repository", "error", err)
		return nil, err
	}

	responses := make([]CategoryResponse, 0, len(dataCategories))
	for _, dataCategory := range dataCategories {
		responses = append(responses, FromDataModel(dataCategory).ToResponse())
	}

	s.logger.Debug("retrieved categories", "count", len(responses))
	return responses, nil
}

// FindByTitles returns the categories that already exist for titles, keyed by title.
// Titles without a category are absent from the result.
func (s *Service) FindByTitles(ctx context.Context, titles []string) (map[string]*Category, error) {
	found := make(map[string]*Category, len(titles))
	if len(titles) == 0 {
		return found, nil
	}

	dataCategories, err := s.repo.GetByTitles(ctx, titles)
	if err != nil {
		s.logger.Error("failed to look up categories by title", "error", err, "titles", len(titles))
		return nil, err
	}

	for _, dataCategory := range dataCategories {
		found[dataCategory.Title] = FromDataModel(dataCategory)
	}
	return found, nil
}

// CreateMany persists one new category per title in a single batch.
// It does not check for existing titles; callers pre-filter.
func (s *Service) CreateMany(ctx context.Context, titles []string) ([]*Category, error) {
	if len(titles) == 0 {
		return []*Category{}, nil
	}

	dataCategories := make([]*categoryDatamodel.Category, len(titles))
	for i, title := range titles {
		dataCategories[i] = ToDataModel(NewCategory(title))
	}

	if err := s.repo.CreateMany(ctx, dataCategories); err != nil {
		s.logger.Error("failed to create categories", "error", err, "count", len(titles))
		return nil, err
	}

	created := make([]*Category, len(dataCategories))
	for i, dataCategory := range dataCategories {
		created[i] = FromDataModel(dataCategory)
	}

	s.logger.Info("categories created", "count", len(created))
	return created, nil
}

// FindOrCreate resolves title to a category, creating it when missing.
// The bool reports whether this call created the category.
func (s *Service) FindOrCreate(ctx context.Context, title string) (*Category, bool, error) {
	existing, err := s.repo.GetByTitle(ctx, title)
	if err != nil {
		s.logger.Error("failed to look up category", "error", err, "title", title)
		return nil, false, err
	}
	if existing != nil {
		return FromDataModel(existing), false, nil
	}

	candidate := NewCategory(title)
	if err := s.repo.CreateIfAbsent(ctx, ToDataModel(candidate)); err != nil {
		s.logger.Error("failed to create category", "error", err, "title", title)
		return nil, false, err
	}

	// a concurrent writer may have won the insert; the stored row is authoritative
	stored, err := s.repo.GetByTitle(ctx, title)
	if err != nil {
		s.logger.Error("failed to reload category", "error", err, "title", title)
		return nil, false, err
	}
	if stored == nil {
		return nil, false, fmt.Errorf("category %q missing after insert", title)
	}

	created := stored.ID == candidate.ID
	if created {
		s.logger.Info("category created", "category_id", stored.ID, "title", title)
	}
	return FromDataModel(stored), created, nil
}
