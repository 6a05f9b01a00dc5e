package valuation

import (
	"fmt"
	"math"
	"strings"
)

// FormatINR renders a rupee amount with Indian digit grouping: the last three
// digits form one group, every group above that has two (₹5,00,000).
func FormatINR(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := fmt.Sprintf("%d", amount)
	if len(digits) <= 3 {
		return "₹" + sign + digits
	}

	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	groups = append(groups, tail)

	return "₹" + sign + strings.Join(groups, ",")
}

// PriceRange derives the displayed band around a predicted price:
// floor(0.9×price) to ceil(1.1×price).
func PriceRange(price float64) (min, max int64) {
	return int64(math.Floor(price * 0.9)), int64(math.Ceil(price * 1.1))
}

// FormatRange renders the price band as currency.
func FormatRange(price float64) string {
	min, max := PriceRange(price)
	return fmt.Sprintf("%s - %s", FormatINR(min), FormatINR(max))
}
