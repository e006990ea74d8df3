package common

import (
	"math"
	"strconv"
	"strings"
)

// Unavailable is the sentinel written in place of every field of a source
// whose fetch failed. It is distinct from a blank cell, which means missing.
const Unavailable = "N/A"

// TimeLayout is the timestamp form used across snapshot files and exports.
const TimeLayout = "2006-01-02 15:04:05"

// FormatCell renders a numeric value the way snapshot and export rows carry
// it: shortest decimal form that round-trips.
func FormatCell(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseCell reads a numeric cell. The sentinel, blanks, and unparseable text
// all come back as (0, false): missing, never an error.
func ParseCell(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, Unavailable) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
