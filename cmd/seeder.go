package cmd

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/personal-ledger/internal/transaction"
)

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the ledger with sample transactions for development and testing purposes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}

		ctx := context.Background()
		deps, err := initializeDependencies(ctx, cfg)
		if err != nil {
			return err
		}
		defer deps.Close(ctx)

		if clearData {
			if err := deps.DB.WithContext(ctx).Exec("DELETE FROM transactions").Error; err != nil {
				return fmt.Errorf("failed to clear transactions: %w", err)
			}
			if err := deps.DB.WithContext(ctx).Exec("DELETE FROM categories").Error; err != nil {
				return fmt.Errorf("failed to clear categories: %w", err)
			}
			fmt.Println("Cleared existing transactions and categories")
		}

		// incomes come first so every outcome passes the balance check
		samples := []struct {
			Title    string
			Type     transaction.Type
			Value    string
			Category string
		}{
			{"Salary", transaction.TypeIncome, "4000", "Salary"},
			{"Freelance website", transaction.TypeIncome, "850.50", "Freelance"},
			{"Rent", transaction.TypeOutcome, "1500", "Housing"},
			{"Groceries", transaction.TypeOutcome, "320.75", "Food"},
			{"Lunch", transaction.TypeOutcome, "18.90", "Food"},
			{"Bus pass", transaction.TypeOutcome, "60", "Transport"},
		}

		for _, s := range samples {
			value := decimal.RequireFromString(s.Value)
			tx, err := deps.Transactions.CreateTransaction(ctx, transaction.CreateTransactionDTO{
				Title:    s.Title,
				Type:     string(s.Type),
				Value:    &value,
				Category: s.Category,
			})
			if err != nil {
				return fmt.Errorf("failed to seed transaction %q: %w", s.Title, err)
			}
			fmt.Printf("Seeded %s %s: %s (%s)\n", tx.Type, tx.Value.StringFixed(2), tx.Title, s.Category)
		}

		balance, err := deps.Transactions.GetBalance(ctx)
		if err != nil {
			return fmt.Errorf("failed to read balance: %w", err)
		}
		fmt.Printf("Ledger seeded successfully; balance %s\n", balance.Total.StringFixed(2))
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")
}
