package helpers

import "testing"

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{amount: 0, want: "$0.00"},
		{amount: 7, want: "$7.00"},
		{amount: 200, want: "$200.00"},
		{amount: 1234.5, want: "$1,234.50"},
		{amount: 1000000, want: "$1,000,000.00"},
		{amount: -42.25, want: "$-42.25"},
		{amount: 999.999, want: "$1,000.00"},
	}

	for _, tt := range tests {
		if got := FormatMoney(tt.amount); got != tt.want {
			t.Errorf("FormatMoney(%f): got %s, want %s", tt.amount, got, tt.want)
		}
	}
}

func TestFormatPips(t *testing.T) {
	if got := FormatPips(50); got != "50.0 pips" {
		t.Errorf("FormatPips(50): got %s", got)
	}
}
