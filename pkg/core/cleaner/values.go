package cleaner

import (
	"strconv"
	"strings"
	"time"
)

// Currency symbols stripped before numeric parsing, in replacement order.
var currencySymbols = []string{"$", "€", "£", "¥", "₹", "kr", "CHF"}

// ParseNumeric converts a raw field value into a float, handling currency
// symbols, thousands separators (US, European and Indian grouping),
// percentage signs, accounting-style parentheses and scientific notation.
//
// The second result reports whether a value was present at all:
// (nil, false) means the field was missing or blank, (nil, true) means a
// value was there but could not be parsed. Callers use the distinction to
// frame quality issues; neither case is an error.
func ParseNumeric(raw interface{}) (*float64, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, false
	case float64:
		f := v
		return &f, true
	case float32:
		f := float64(v)
		return &f, true
	case int:
		f := float64(v)
		return &f, true
	case int64:
		f := float64(v)
		return &f, true
	case string:
		cleaned := strings.TrimSpace(v)
		if cleaned == "" {
			return nil, false
		}
		f, ok := parseNumericString(cleaned)
		if !ok {
			return nil, true
		}
		return &f, true
	default:
		return nil, true
	}
}

func parseNumericString(s string) (float64, bool) {
	for _, sym := range currencySymbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)

	isPercentage := strings.Contains(s, "%")
	s = strings.ReplaceAll(s, "%", "")

	// Accounting negative: (1000) -> -1000
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + s[1:len(s)-1]
	}

	comma := strings.Index(s, ",")
	dot := strings.Index(s, ".")
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			// European: 1.000.000,50 -> 1000000.50
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			// US: 1,000,000.50 -> 1000000.50
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		parts := strings.Split(s, ",")
		if len(parts) == 2 && len(parts[1]) == 2 {
			// European decimal: 1000,50
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			// Thousands separator: 1,000,000 or 2,50,000
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if isPercentage {
		f /= 100
	}
	return f, true
}

// Tokens that explicitly mean "no date".
var dateSentinels = map[string]bool{
	"null": true,
	"none": true,
	"n/a":  true,
	"-":    true,
}

// Date formats tried in priority order. The order is a behavioral contract:
// ambiguous strings like 03/04/2024 resolve to whichever format matches
// first (here DD/MM/YYYY), and changing the order changes results.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.999999Z07:00",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"01-02-2006",
	"2006/01/02",
	"02.01.2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// ParseDate converts a raw field value into a time. Already-parsed times
// pass through; strings are tried against an ISO-8601 fast path (when a
// timezone marker is present) and then the fixed layout priority list.
// Second result semantics match ParseNumeric: (nil, false) for missing or
// sentinel values, (nil, true) for present-but-unparsable.
func ParseDate(raw interface{}) (*time.Time, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, false
	case time.Time:
		t := v
		return &t, true
	case *time.Time:
		if v == nil {
			return nil, false
		}
		t := *v
		return &t, true
	case string:
		cleaned := strings.TrimSpace(v)
		if cleaned == "" || dateSentinels[strings.ToLower(cleaned)] {
			return nil, false
		}
		if strings.Contains(cleaned, "+") || strings.HasSuffix(cleaned, "Z") {
			if t, err := time.Parse(time.RFC3339Nano, cleaned); err == nil {
				return &t, true
			}
			if t, err := time.Parse(time.RFC3339, cleaned); err == nil {
				return &t, true
			}
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, cleaned); err == nil {
				return &t, true
			}
		}
		return nil, true
	default:
		return nil, true
	}
}
