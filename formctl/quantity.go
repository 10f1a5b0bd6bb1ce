package formctl

import (
	"strings"

	"chamado-service/models"
)

// MaxQuantity bounds the magnitude ParseQuantity returns. Longer digit runs
// clamp to it.
const MaxQuantity = 100_000

// ParseQuantity reads the leading integer of s, ignoring leading whitespace
// and trailing garbage ("12abc" is 12). Input without digits, and zero, fall
// back to models.DefaultPreviewQuantity.
func ParseQuantity(s string) int {
	s = strings.TrimLeft(s, " \t\n\r\f\v")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		digits++
		n = min(n*10+int(r-'0'), MaxQuantity)
	}
	if digits == 0 || n == 0 {
		return models.DefaultPreviewQuantity
	}
	if neg {
		return -n
	}
	return n
}
