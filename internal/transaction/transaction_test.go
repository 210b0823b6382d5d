package transaction_test

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/frahmantamala/personal-ledger/internal"
	"github.com/frahmantamala/personal-ledger/internal/category"
	"github.com/frahmantamala/personal-ledger/internal/transaction"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Transaction", func() {
	Describe("ParseType", func() {
		It("should accept income and outcome only", func() {
			t, ok := transaction.ParseType("income")
			Expect(ok).To(BeTrue())
			Expect(t).To(Equal(transaction.TypeIncome))

			t, ok = transaction.ParseType("outcome")
			Expect(ok).To(BeTrue())
			Expect(t).To(Equal(transaction.TypeOutcome))

			_, ok = transaction.ParseType("Income")
			Expect(ok).To(BeFalse())
			_, ok = transaction.ParseType("")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("lifecycle", func() {
		var tx *transaction.Transaction

		BeforeEach(func() {
			tx = transaction.NewTransaction("Lunch", transaction.TypeOutcome, decimal.NewFromInt(12), category.NewCategory("Food"))
		})

		It("should start pending with a category reference", func() {
			Expect(tx.State()).To(Equal(transaction.StatePending))
			Expect(tx.ID.String()).NotTo(BeEmpty())
			Expect(*tx.CategoryID).To(Equal(tx.Category.ID))
		})

		It("should move pending to persisted to deleted", func() {
			Expect(tx.MarkPersisted()).To(Succeed())
			Expect(tx.State()).To(Equal(transaction.StatePersisted))
			Expect(tx.MarkDeleted()).To(Succeed())
			Expect(tx.State()).To(Equal(transaction.StateDeleted))
		})

		It("should reject deleting a pending transaction", func() {
			err := tx.MarkDeleted()
			Expect(errors.Is(err, internal.ErrInvalidStateTransition)).To(BeTrue())
		})

		It("should reject persisting twice", func() {
			Expect(tx.MarkPersisted()).To(Succeed())
			Expect(errors.Is(tx.MarkPersisted(), internal.ErrInvalidStateTransition)).To(BeTrue())
		})

		It("should reject any transition out of deleted", func() {
			Expect(tx.MarkPersisted()).To(Succeed())
			Expect(tx.MarkDeleted()).To(Succeed())
			Expect(tx.MarkPersisted()).NotTo(Succeed())
			Expect(tx.MarkDeleted()).NotTo(Succeed())
		})

		It("should round-trip through the data model as persisted", func() {
			dm := transaction.ToDataModel(tx)
			Expect(dm.Category).To(BeNil())
			Expect(*dm.CategoryID).To(Equal(tx.Category.ID))

			restored := transaction.FromDataModel(dm)
			Expect(restored.ID).To(Equal(tx.ID))
			Expect(restored.Value.Equal(tx.Value)).To(BeTrue())
			Expect(restored.State()).To(Equal(transaction.StatePersisted))
		})
	})
})

var _ = Describe("Balance", func() {
	It("should compute total as income minus outcome", func() {
		b := transaction.NewBalance(decimal.NewFromInt(5000), decimal.NewFromInt(4000))
		Expect(b.Total.String()).To(Equal("1000"))
	})

	It("should be zero for an empty ledger", func() {
		b := transaction.ComputeBalance(nil)
		Expect(b.Income.IsZero()).To(BeTrue())
		Expect(b.Outcome.IsZero()).To(BeTrue())
		Expect(b.Total.IsZero()).To(BeTrue())
	})

	DescribeTable("CanWithdraw",
		func(total, value string, expected bool) {
			b := transaction.NewBalance(decimal.RequireFromString(total), decimal.Zero)
			Expect(b.CanWithdraw(decimal.RequireFromString(value))).To(Equal(expected))
		},
		Entry("below total", "1000", "999.99", true),
		Entry("exactly total", "1000", "1000", true),
		Entry("above total", "1000", "1000.01", false),
		Entry("zero from zero", "0", "0", true),
	)

	It("should never restrict income", func() {
		b := transaction.NewBalance(decimal.Zero, decimal.NewFromInt(10))
		Expect(b.Allows(transaction.TypeIncome, decimal.NewFromInt(1000))).To(BeTrue())
		Expect(b.Allows(transaction.TypeOutcome, decimal.NewFromInt(1))).To(BeFalse())
	})

	It("should fold mixed transactions", func() {
		txs := []*transaction.Transaction{
			transaction.NewTransaction("Salary", transaction.TypeIncome, decimal.RequireFromString("100.50"), nil),
			transaction.NewTransaction("Lunch", transaction.TypeOutcome, decimal.RequireFromString("20.25"), nil),
		}
		b := transaction.ComputeBalance(txs)
		Expect(b.Total.Equal(decimal.RequireFromString("80.25"))).To(BeTrue())
	})
})
