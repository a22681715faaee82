package usecase

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/diillson/finance-dashboard-go/internal/domain/entity"
)

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func tx(t entity.TransactionType, amt string, category string) entity.TransactionRecord {
	rec := entity.TransactionRecord{Type: t, Description: "x", Date: "2024-01-01"}
	if amt != "" {
		rec.Amount = amount(amt)
	}
	if category != "" {
		rec.Category = &entity.Category{Name: category}
	}
	return rec
}

func TestCategoryDistribution(t *testing.T) {
	tests := []struct {
		name string
		in   []entity.TransactionRecord
		want []entity.CategoryAggregate
	}{
		{
			name: "empty page",
			in:   nil,
			want: []entity.CategoryAggregate{},
		},
		{
			name: "same category is summed",
			in: []entity.TransactionRecord{
				tx(entity.Expense, "150", "Food"),
				tx(entity.Expense, "250", "Food"),
			},
			want: []entity.CategoryAggregate{{Name: "Food", Value: decimal.RequireFromString("400")}},
		},
		{
			name: "income ignored, missing category and amount handled",
			in: []entity.TransactionRecord{
				tx(entity.Income, "5000", "Salary"),
				tx(entity.Expense, "20", ""),
				tx(entity.Expense, "", "Food"),
				tx(entity.Expense, "35.5", "Travel"),
			},
			want: []entity.CategoryAggregate{
				{Name: "Travel", Value: decimal.RequireFromString("35.5")},
				{Name: entity.UncategorizedLabel, Value: decimal.RequireFromString("20")},
				{Name: "Food", Value: decimal.Zero},
			},
		},
		{
			name: "ties keep first-seen order",
			in: []entity.TransactionRecord{
				tx(entity.Expense, "10", "B"),
				tx(entity.Expense, "10", "A"),
				tx(entity.Expense, "30", "C"),
				tx(entity.Expense, "10", "D"),
			},
			want: []entity.CategoryAggregate{
				{Name: "C", Value: decimal.RequireFromString("30")},
				{Name: "B", Value: decimal.RequireFromString("10")},
				{Name: "A", Value: decimal.RequireFromString("10")},
				{Name: "D", Value: decimal.RequireFromString("10")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CategoryDistribution(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d aggregates %+v, want %d", len(got), got, len(tt.want))
			}
			for i := range got {
				if got[i].Name != tt.want[i].Name || !got[i].Value.Equal(tt.want[i].Value) {
					t.Errorf("aggregate[%d] = %s %s, want %s %s", i, got[i].Name, got[i].Value, tt.want[i].Name, tt.want[i].Value)
				}
			}
		})
	}
}

// Random pages: no INCOME leaks in, totals are conserved, order is non-increasing.
func TestCategoryDistributionProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	categories := []string{"", "Food", "Rent", "Travel", "Uncategorized"}

	for iter := 0; iter < 200; iter++ {
		n := rng.Intn(15)
		page := make([]entity.TransactionRecord, 0, n)
		incomeNames := map[string]bool{}
		for i := 0; i < n; i++ {
			typ := entity.Expense
			if rng.Intn(3) == 0 {
				typ = entity.Income
			}
			amt := ""
			if rng.Intn(6) != 0 {
				amt = decimal.New(rng.Int63n(100000), -2).String()
			}
			cat := categories[rng.Intn(len(categories))]
			if typ == entity.Income {
				cat = "IncomeOnly"
				incomeNames[cat] = true
			}
			page = append(page, tx(typ, amt, cat))
		}

		got := CategoryDistribution(page)

		sum := decimal.Zero
		for i, agg := range got {
			if incomeNames[agg.Name] {
				t.Fatalf("iteration %d: income category %q leaked into distribution", iter, agg.Name)
			}
			if i > 0 && agg.Value.GreaterThan(got[i-1].Value) {
				t.Fatalf("iteration %d: not sorted descending: %+v", iter, got)
			}
			sum = sum.Add(agg.Value)
		}
		if want := SumByType(page, entity.Expense); !sum.Equal(want) {
			t.Fatalf("iteration %d: sum = %s, want %s", iter, sum, want)
		}
	}
}

func TestHasMeaningfulDistribution(t *testing.T) {
	tests := []struct {
		name string
		in   []entity.CategoryAggregate
		want bool
	}{
		{"empty", nil, false},
		{"only uncategorized", []entity.CategoryAggregate{{Name: entity.UncategorizedLabel}}, false},
		{"one named category", []entity.CategoryAggregate{{Name: "Food"}}, true},
		{"several including uncategorized", []entity.CategoryAggregate{{Name: entity.UncategorizedLabel}, {Name: "Food"}}, true},
		{"lowercase is a real name", []entity.CategoryAggregate{{Name: "uncategorized"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasMeaningfulDistribution(tt.in); got != tt.want {
				t.Errorf("HasMeaningfulDistribution() = %v, want %v", got, tt.want)
			}
		})
	}
}
