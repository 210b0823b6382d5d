package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frahmantamala/personal-ledger/internal/category"
	categoryDatamodel "github.com/frahmantamala/personal-ledger/internal/core/datamodel/category"
)

const (
	// titleLookupChunk keeps one IN list well under driver bind-parameter limits.
	titleLookupChunk = 1000
	createBatchSize  = 500
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) category.RepositoryAPI {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetAll(ctx context.Context) ([]*categoryDatamodel.Category, error) {
	var categories []*categoryDatamodel.Category
	err := r.db.WithContext(ctx).Order("title ASC").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) GetByTitle(ctx context.Context, title string) (*categoryDatamodel.Category, error) {
	var cat categoryDatamodel.Category
	err := r.db.WithContext(ctx).Where("title = ?", title).First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepository) GetByTitles(ctx context.Context, titles []string) ([]*categoryDatamodel.Category, error) {
	var categories []*categoryDatamodel.Category
	if len(titles) == 0 {
		return categories, nil
	}
	db := r.db.WithContext(ctx)
	for start := 0; start < len(titles); start += titleLookupChunk {
		end := min(start+titleLookupChunk, len(titles))
		var chunk []*categoryDatamodel.Category
		if err := db.Where("title IN ?", titles[start:end]).Find(&chunk).Error; err != nil {
			return nil, err
		}
		categories = append(categories, chunk...)
	}
	return categories, nil
}

func (r *CategoryRepository) CreateMany(ctx context.Context, categories []*categoryDatamodel.Category) error {
	if len(categories) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(categories, createBatchSize).Error
}

func (r *CategoryRepository) CreateIfAbsent(ctx context.Context, cat *categoryDatamodel.Category) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "title"}}, DoNothing: true}).
		Create(cat).Error
}
