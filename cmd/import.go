package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/personal-ledger/internal/importer"
)

var keepImportFile bool

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import transactions from a CSV or XLS file",
	Long: `Import transactions from a file whose first row is a header and whose
columns are title, type, value and category. Rows that cannot be read are
skipped. The file is removed after a successful import unless --keep is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		deps, err := initializeDependencies(ctx, cfg)
		if err != nil {
			return err
		}
		defer deps.Close(context.Background())

		result, err := importer.ImportFile(ctx, deps.Pipeline, args[0], keepImportFile)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		printImportResult(cmd, result)
		return nil
	},
}

func printImportResult(cmd *cobra.Command, result *importer.ImportResult) {
	out := cmd.OutOrStdout()
	for _, tx := range result.Transactions {
		categoryTitle := ""
		if tx.Category != nil {
			categoryTitle = tx.Category.Title
		}
		fmt.Fprintf(out, "  %-8s %12s  %-30s %s\n", tx.Type, tx.Value.StringFixed(2), tx.Title, categoryTitle)
	}
	fmt.Fprintf(out, "Imported %d transactions, skipped %d rows, created %d categories\n",
		len(result.Transactions), result.Skipped, result.CategoriesCreated)
}

func init() {
	importCmd.Flags().BoolVar(&keepImportFile, "keep", false, "keep the file after a successful import")

	rootCmd.AddCommand(importCmd)
}
