package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	categoryDatamodel "github.com/frahmantamala/personal-ledger/internal/core/datamodel/category"
)

type Transaction struct {
	ID         uuid.UUID                   `gorm:"column:id;type:uuid;primaryKey"`
	Title      string                      `gorm:"column:title;not null"`
	Type       string                      `gorm:"column:type;not null"`
	Value      decimal.Decimal             `gorm:"column:value;type:numeric(14,2);not null"`
	CategoryID *uuid.UUID                  `gorm:"column:category_id;type:uuid;index"`
	Category   *categoryDatamodel.Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	CreatedAt  time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

func (Transaction) TableName() string {
	return "transactions"
}
