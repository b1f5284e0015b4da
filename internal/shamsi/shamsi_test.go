package shamsi_test

import (
	"testing"

	"github.com/Mohamad548/bilalhabashi/internal/shamsi"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already normalized", "1403-01-15", "1403-01-15"},
		{"persian digits", "۱۴۰۳-۰۱-۱۵", "1403-01-15"},
		{"arabic digits", "١٤٠٣-٠١-١٥", "1403-01-15"},
		{"slash year first", "1403/1/5", "1403-01-05"},
		{"slash year last", "1/5/1403", "1403-01-05"},
		{"iso timestamp", "1403-01-15T10:30:00Z", "1403-01-15"},
		{"whitespace", "  1403-01-15 ", "1403-01-15"},
		{"empty", "", ""},
		{"persian slash", "۱۴۰۳/۰۲/۰۳", "1403-02-03"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shamsi.NormalizeDate(tt.in); got != tt.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name   string
		date   string
		months int
		want   string
	}{
		{"zero months", "1403-01-15", 0, "1403-01-15"},
		{"simple add", "1403-01-15", 3, "1403-04-15"},
		{"year carry", "1403-11-10", 3, "1404-02-10"},
		{"two year carry", "1403-06-01", 25, "1405-07-01"},
		{"day capped at 30", "1403-01-31", 1, "1403-02-30"},
		{"day 30 kept", "1403-01-30", 7, "1403-08-30"},
		{"persian input", "۱۴۰۳-۰۱-۱۵", 1, "1403-02-15"},
		{"negative months", "1403-01-15", -1, ""},
		{"garbage", "not-a-date", 1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shamsi.AddMonths(tt.date, tt.months); got != tt.want {
				t.Errorf("AddMonths(%q, %d) = %q, want %q", tt.date, tt.months, got, tt.want)
			}
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	got := shamsi.FormatCurrency(1500000)
	want := "۱٬۵۰۰٬۰۰۰ تومان"
	if got != want {
		t.Errorf("FormatCurrency(1500000) = %q, want %q", got, want)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "۰"},
		{999, "۹۹۹"},
		{1000, "۱٬۰۰۰"},
		{123456789, "۱۲۳٬۴۵۶٬۷۸۹"},
	}
	for _, tt := range tests {
		if got := shamsi.FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
