package inventory

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// DateLayout is the calendar format used for expiry dates on the wire.
const DateLayout = "2006-01-02"

// MissingDays is rendered in place of a day count that could not be computed.
const MissingDays = "—"

// ErrInvalidDate matches every *InvalidDateError.
var ErrInvalidDate = errors.New("inventory: invalid date")

// InvalidDateError reports an expiry date that could not be parsed.
type InvalidDateError struct {
	Value string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("inventory: invalid date %q", e.Value)
}

// Is lets errors.Is(err, ErrInvalidDate) match.
func (e *InvalidDateError) Is(target error) bool {
	return target == ErrInvalidDate
}

// ParseExpiryDate accepts YYYY-MM-DD (UTC midnight) or RFC3339 timestamps.
func ParseExpiryDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, &InvalidDateError{Value: raw}
	}
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, &InvalidDateError{Value: raw}
}

// DaysRemaining returns ceil((expiry - reference) / 1 day). The difference is
// taken between full timestamps, so the hour of the reference time can move
// the result by one day.
func DaysRemaining(expiry, reference time.Time) int {
	diff := expiry.Sub(reference)
	return int(math.Ceil(float64(diff) / float64(day)))
}

// DaysRemainingFrom parses raw and computes the days left relative to reference.
func DaysRemainingFrom(raw string, reference time.Time) (int, error) {
	expiry, err := ParseExpiryDate(raw)
	if err != nil {
		return 0, err
	}
	return DaysRemaining(expiry, reference), nil
}

// FormatDays renders a day count, falling back to MissingDays when err is set.
func FormatDays(days int, err error) string {
	if err != nil {
		return MissingDays
	}
	return strconv.Itoa(days)
}

// ReportUrgency buckets days remaining for tabular reports.
type ReportUrgency string

const (
	ReportExpired ReportUrgency = "EXPIRED"
	ReportUrgent  ReportUrgency = "URGENT"
	ReportHigh    ReportUrgency = "HIGH"
	ReportMedium  ReportUrgency = "MEDIUM"
	ReportLow     ReportUrgency = "LOW"
	// ReportUnknown marks rows whose expiry date could not be parsed.
	ReportUnknown ReportUrgency = "UNKNOWN"
)

// ReportUrgencyOf is the five bucket scheme used by the expiring products report.
func ReportUrgencyOf(days int) ReportUrgency {
	switch {
	case days <= 0:
		return ReportExpired
	case days <= 7:
		return ReportUrgent
	case days <= 15:
		return ReportHigh
	case days <= 30:
		return ReportMedium
	default:
		return ReportLow
	}
}

// AlertUrgency buckets days remaining for the dashboard badge.
type AlertUrgency string

const (
	AlertHigh    AlertUrgency = "high"
	AlertMedium  AlertUrgency = "medium"
	AlertLow     AlertUrgency = "low"
	AlertUnknown AlertUrgency = "unknown"
)

// AlertUrgencyOf is the three bucket scheme used by the dashboard widget. It
// deliberately differs from ReportUrgencyOf; the two are not interchangeable.
func AlertUrgencyOf(days int) AlertUrgency {
	switch {
	case days <= 7:
		return AlertHigh
	case days <= 15:
		return AlertMedium
	default:
		return AlertLow
	}
}

// BadgeVariant maps an alert urgency to the badge colour variant.
func (u AlertUrgency) BadgeVariant() string {
	switch u {
	case AlertHigh:
		return "destructive"
	case AlertMedium:
		return "warning"
	default:
		return "secondary"
	}
}
