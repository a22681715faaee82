package usecase

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/diillson/finance-dashboard-go/internal/domain/entity"
)

// CategoryDistribution groups the EXPENSE records of a page by category name and sums
// their amounts, largest first. Ties keep first-seen order. Missing amounts count as zero.
func CategoryDistribution(transactions []entity.TransactionRecord) []entity.CategoryAggregate {
	aggregates := []entity.CategoryAggregate{}
	index := map[string]int{}

	for _, tx := range transactions {
		if tx.Type != entity.Expense {
			continue
		}
		name := tx.CategoryName()
		if name == "" {
			name = entity.UncategorizedLabel
		}
		i, ok := index[name]
		if !ok {
			i = len(aggregates)
			index[name] = i
			aggregates = append(aggregates, entity.CategoryAggregate{Name: name, Value: decimal.Zero})
		}
		aggregates[i].Value = aggregates[i].Value.Add(tx.AmountOrZero())
	}

	sort.SliceStable(aggregates, func(a, b int) bool {
		return aggregates[a].Value.GreaterThan(aggregates[b].Value)
	})
	return aggregates
}

// HasMeaningfulDistribution reports whether a distribution chart says anything:
// more than one category, or a single category other than "Uncategorized".
func HasMeaningfulDistribution(aggregates []entity.CategoryAggregate) bool {
	return len(aggregates) > 1 ||
		(len(aggregates) == 1 && aggregates[0].Name != entity.UncategorizedLabel)
}

// SumByType totals the records of type t, treating missing amounts as zero.
func SumByType(transactions []entity.TransactionRecord, t entity.TransactionType) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range transactions {
		if tx.Type == t {
			total = total.Add(tx.AmountOrZero())
		}
	}
	return total
}
