package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSplitEqual(t *testing.T) {
	tests := []struct {
		name  string
		total string
		n     int
		want  []string
	}{
		{name: "even", total: "100.00", n: 2, want: []string{"50", "50"}},
		{name: "remainder_to_first", total: "100.00", n: 3, want: []string{"33.34", "33.33", "33.33"}},
		{name: "two_cents_over_three", total: "0.02", n: 3, want: []string{"0.01", "0.01", "0"}},
		{name: "single", total: "12.34", n: 1, want: []string{"12.34"}},
		{name: "seven_ways", total: "10", n: 7, want: []string{"1.43", "1.43", "1.43", "1.43", "1.43", "1.43", "1.42"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := decimal.RequireFromString(tt.total)
			got := SplitEqual(total, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d shares, got %d", len(tt.want), len(got))
			}
			for i, w := range tt.want {
				if !got[i].Equal(decimal.RequireFromString(w)) {
					t.Errorf("share %d: expected %s, got %s", i, w, got[i])
				}
			}
			if !Sum(got...).Equal(total) {
				t.Errorf("shares sum to %s, expected %s", Sum(got...), total)
			}
		})
	}

	t.Run("zero_participants", func(t *testing.T) {
		if got := SplitEqual(decimal.NewFromInt(10), 0); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})
}

func TestSplitPercent(t *testing.T) {
	t.Run("exact_percentages", func(t *testing.T) {
		got := SplitPercent(decimal.RequireFromString("200"), []decimal.Decimal{
			decimal.NewFromInt(50), decimal.NewFromInt(30), decimal.NewFromInt(20),
		})
		want := []string{"100", "60", "40"}
		for i, w := range want {
			if !got[i].Equal(decimal.RequireFromString(w)) {
				t.Errorf("share %d: expected %s, got %s", i, w, got[i])
			}
		}
	})

	t.Run("remainder_distributed_in_order", func(t *testing.T) {
		third := decimal.RequireFromString("33.33")
		got := SplitPercent(decimal.RequireFromString("10"), []decimal.Decimal{
			decimal.RequireFromString("33.34"), third, third,
		})
		if !Sum(got...).Equal(decimal.NewFromInt(10)) {
			t.Errorf("shares sum to %s, expected 10", Sum(got...))
		}
		if !got[0].Equal(decimal.RequireFromString("3.34")) {
			t.Errorf("expected first share 3.34, got %s", got[0])
		}
	})
}

func TestIsValidAmount(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"10", true},
		{"10.5", true},
		{"10.55", true},
		{"10.555", false},
		{"0", false},
		{"-1", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsValidAmount(decimal.RequireFromString(tt.in)); got != tt.want {
				t.Errorf("IsValidAmount(%s) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	t.Run("usd", func(t *testing.T) {
		if got := Format(decimal.RequireFromString("1234.5"), "USD"); got != "$1,234.50" {
			t.Errorf("expected $1,234.50, got %s", got)
		}
	})

	t.Run("unknown_currency", func(t *testing.T) {
		if got := Format(decimal.RequireFromString("3"), "ZZZ"); got != "3.00 ZZZ" {
			t.Errorf("expected 3.00 ZZZ, got %s", got)
		}
	})

	t.Run("is_currency", func(t *testing.T) {
		if !IsCurrency("EUR") || IsCurrency("ZZZ") {
			t.Error("currency lookup mismatch")
		}
	})
}
