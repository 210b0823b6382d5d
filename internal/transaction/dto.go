package transaction

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/frahmantamala/personal-ledger/internal"
	"github.com/frahmantamala/personal-ledger/internal/core/common/validation"
)

type CreateTransactionDTO struct {
	Title    string           `json:"title"`
	Value    *decimal.Decimal `json:"value"`
	Type     string           `json:"type"`
	Category string           `json:"category"`
}

func (dto *CreateTransactionDTO) Normalize() {
	dto.Title = strings.TrimSpace(dto.Title)
	dto.Type = strings.TrimSpace(dto.Type)
	dto.Category = strings.TrimSpace(dto.Category)
}

func (dto *CreateTransactionDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("title", dto.Title).
		Required().
		MaxLength(255)
	validator.Field("type", dto.Type).
		Required().
		OneOf(Types, internal.ErrCodeInvalidType)
	validator.Field("value", dto.Value).
		Required().
		NonNegative(internal.ErrCodeInvalidValue).
		MaxDecimalPlaces(ValueScale, internal.ErrCodeInvalidValue)
	validator.Field("category", dto.Category).
		Required().
		MaxLength(255)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type TransactionsResponse struct {
	Transactions []*Transaction `json:"transactions"`
	Balance      Balance        `json:"balance"`
}
