// Package shamsi holds the date and number helpers shared by the ledger and
// the display layer. Dates are Shamsi (Jalali) calendar strings in
// YYYY-MM-DD form; the helpers never convert between calendars, they only
// normalize and do month arithmetic on the string representation.
package shamsi

import (
	"fmt"
	"strings"
	"time"
)

var persianDigits = []rune("۰۱۲۳۴۵۶۷۸۹")

var asciiDigitMap = map[rune]rune{
	'۰': '0', '۱': '1', '۲': '2', '۳': '3', '۴': '4',
	'۵': '5', '۶': '6', '۷': '7', '۸': '8', '۹': '9',
	'٠': '0', '١': '1', '٢': '2', '٣': '3', '٤': '4',
	'٥': '5', '٦': '6', '٧': '7', '٨': '8', '٩': '9',
}

// ToASCIIDigits converts Persian and Arabic-Indic digits to ASCII.
func ToASCIIDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if a, ok := asciiDigitMap[r]; ok {
			return a
		}
		return r
	}, s)
}

// ToPersianDigits converts ASCII digits to Persian digits.
func ToPersianDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return persianDigits[r-'0']
		}
		return r
	}, s)
}

// NormalizeDate normalizes a date string to YYYY-MM-DD. It accepts Persian or
// Arabic-Indic digits, slash or dash separators, and ISO timestamps (the date
// part is kept). Slash-separated dates may lead with either the year or the
// month part. Anything unrecognized is returned as-is after digit mapping.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:10]
	}
	s = ToASCIIDigits(s)
	if strings.Contains(s, "/") {
		parts := strings.Split(s, "/")
		if len(parts) == 3 {
			a := strings.TrimSpace(parts[0])
			b := strings.TrimSpace(parts[1])
			c := strings.TrimSpace(parts[2])
			if len(c) >= 4 {
				return fmt.Sprintf("%s-%s-%s", c, pad2(a), pad2(b))
			}
			if len(a) >= 4 {
				return fmt.Sprintf("%s-%s-%s", a, pad2(b), pad2(c))
			}
		}
	}
	return s
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// AddMonths adds months to a Shamsi YYYY-MM-DD date and returns the due date.
// Month arithmetic carries into the year; the day of month is capped at 30 so
// schedules never land on a day the shorter Shamsi months lack.
// Returns "" on unparseable input or negative months.
func AddMonths(dateStr string, months int) string {
	normalized := NormalizeDate(dateStr)
	if normalized == "" || months < 0 {
		return ""
	}
	var y, m, d int
	if _, err := fmt.Sscanf(normalized, "%d-%d-%d", &y, &m, &d); err != nil {
		return ""
	}
	m += months
	for m > 12 {
		m -= 12
		y++
	}
	if d > 30 {
		d = 30
	}
	return fmt.Sprintf("%d-%02d-%02d", y, m, d)
}

// FormatNumber renders n with Persian digits and fa-IR thousands separators.
func FormatNumber(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteRune('٬')
		}
		b.WriteRune(r)
	}
	out := ToPersianDigits(b.String())
	if neg {
		return "-" + out
	}
	return out
}

// FormatCurrency renders an amount in Toman for operator-facing messages.
func FormatCurrency(n int64) string {
	return FormatNumber(n) + " تومان"
}

// Today returns today's date in YYYY-MM-DD, matching the ISO date stamps the
// admin UI records for withdrawals.
func Today() string {
	return time.Now().UTC().Format("2006-01-02")
}
