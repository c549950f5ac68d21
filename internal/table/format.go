package table

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DateLayout renders end dates the way an en-US browser prints
// Date.toLocaleString().
const DateLayout = "1/2/2006, 3:04:05 PM"

// NotAvailable stands in for a missing end date.
const NotAvailable = "N/A"

var printer = message.NewPrinter(language.English)

// FormatOdds prints a price with exactly three decimals, rounding the
// float64 value of price the way Number.prototype.toFixed(3) does: to the
// nearest thousandth of the binary value, with exact halves going up.
func FormatOdds(price decimal.Decimal) string {
	f := price.InexactFloat64()
	// a float64 lies exactly halfway between two thousandths only when
	// 16*f is an odd integer
	if s := f * 16; s == math.Trunc(s) && math.Mod(s, 2) != 0 {
		return decimal.NewFromFloat(f).RoundCeil(3).StringFixed(3)
	}
	return strconv.FormatFloat(f, 'f', 3, 64)
}

// FormatVolume prints the integer part of a numeric string with thousands
// separators. Empty, zero and unparseable input give "0".
func FormatVolume(raw string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return "0"
	}
	n := d.IntPart()
	if n == 0 {
		return "0"
	}
	return printer.Sprintf("%d", n)
}

func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}

// ParseOdds reads back a FormatOdds value; unparseable input is 0.
func ParseOdds(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// ParseVolume reads back a FormatVolume value; unparseable input is 0.
func ParseVolume(s string) float64 {
	return ParseOdds(strings.ReplaceAll(s, ",", ""))
}

// ParseDate reads back a FormatDate value as a wall clock time. Rows from the
// same location compare correctly; ok is false for NotAvailable.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
