package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValidateDate checks a YYYY-MM-DD date.
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	_, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// ParseTimeParam accepts RFC3339 or YYYY-MM-DD (midnight in loc). Empty
// input yields nil.
func ParseTimeParam(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	if err := ValidateDate(s); err != nil {
		return nil, err
	}
	t, _ := time.ParseInLocation("2006-01-02", s, loc)
	return &t, nil
}

// ParsePositiveInt parses s, returning def when s is empty, malformed or
// not positive.
func ParsePositiveInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
