package pages

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseCents extracts the amount from texts like "$29.99" or "Tax: $2.40".
func ParseCents(text string) (int64, error) {
	i := strings.LastIndex(text, "$")
	if i < 0 {
		return 0, fmt.Errorf("no amount in %q", text)
	}
	amount := strings.TrimSpace(text[i+1:])
	whole, frac, _ := strings.Cut(amount, ".")
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimals", amount)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	cents, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return cents, nil
}
