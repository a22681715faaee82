package console

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"1234.5", "USD", "$1,234.50"},
		{"0", "usd", "$0.00"},
		{"19.999", "USD", "$20.00"},
		{"42.1", "XYZ", "42.10"},
	}
	for _, tt := range tests {
		got := FormatAmount(decimal.RequireFromString(tt.amount), tt.currency)
		if got != tt.want {
			t.Errorf("FormatAmount(%s, %s) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}

func TestBar(t *testing.T) {
	if got := bar(0, 10); got != "" {
		t.Errorf("zero value bar = %q", got)
	}
	if got := []rune(bar(10, 10)); len(got) != barWidth {
		t.Errorf("full bar has %d cells, want %d", len(got), barWidth)
	}
	if got := []rune(bar(0.001, 10)); len(got) != 1 {
		t.Errorf("tiny values should still show one cell, got %d", len(got))
	}
}

func TestTableRender(t *testing.T) {
	table := NewConsole().CreateTable()
	table.AddColumn("Date")
	table.AddColumn("Amount")
	table.AddRow("2024-05-17", 42)
	if out := table.Render(); out == "" {
		t.Fatal("expected rendered table")
	}
}
