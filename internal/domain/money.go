package domain

import (
	"math"
	"strconv"
	"strings"
)

// Prices are stored as NUMERIC(12, 2) and order totals as NUMERIC(14, 2).
const (
	MaxPrice       = 9_999_999_999.99
	MaxOrderAmount = 999_999_999_999.99
)

// ValidPrice reports whether p is a non-negative amount of whole cents that
// fits a price column.
func ValidPrice(p float64) bool {
	return validAmount(p, MaxPrice)
}

// OrderAmount returns quantity times unit price rounded to cents.
func OrderAmount(quantity int, unitPrice float64) float64 {
	return math.Round(float64(quantity)*unitPrice*100) / 100
}

func validAmount(v, max float64) bool {
	if math.IsNaN(v) || v < 0 || v > max {
		return false
	}
	// The shortest representation is what the client sent.
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s)-i-1 <= 2
	}
	return true
}
