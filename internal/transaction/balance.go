package transaction

import "github.com/shopspring/decimal"

// ValueScale is the number of decimal places a stored value keeps.
const ValueScale = 2

// HasValidScale reports whether value fits the stored scale without rounding.
func HasValidScale(value decimal.Decimal) bool {
	return value.Equal(value.Truncate(ValueScale))
}

type Balance struct {
	Income  decimal.Decimal `json:"income"`
	Outcome decimal.Decimal `json:"outcome"`
	Total   decimal.Decimal `json:"total"`
}

func NewBalance(income, outcome decimal.Decimal) Balance {
	return Balance{
		Income:  income,
		Outcome: outcome,
		Total:   income.Sub(outcome),
	}
}

// CanWithdraw reports whether an outcome of value keeps the total non-negative.
func (b Balance) CanWithdraw(value decimal.Decimal) bool {
	return !b.Total.Sub(value).IsNegative()
}

// Allows applies the withdrawal rule to outcomes only.
func (b Balance) Allows(txType Type, value decimal.Decimal) bool {
	if txType != TypeOutcome {
		return true
	}
	return b.CanWithdraw(value)
}

// ComputeBalance folds transactions into a balance.
func ComputeBalance(txs []*Transaction) Balance {
	income, outcome := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case TypeIncome:
			income = income.Add(tx.Value)
		case TypeOutcome:
			outcome = outcome.Add(tx.Value)
		}
	}
	return NewBalance(income, outcome)
}
