// Package hours derives worked and break durations of a time entry.
//
// Values are decimal hours truncated to two places, so that
// Worked + Break never exceeds the elapsed clock-in to clock-out time.
package hours

import (
	"time"

	"jobsite-timeclock/internal/apperr"
	"jobsite-timeclock/internal/models"

	"github.com/shopspring/decimal"
)

// Places is the number of decimal places kept for hour figures.
const Places = 2

var msPerHour = decimal.NewFromInt(int64(time.Hour / time.Millisecond))

// Result holds the derived durations of a closed entry.
type Result struct {
	Worked decimal.Decimal
	Break  decimal.Decimal
}

// Compute returns worked and break hours for a single break window.
func Compute(clockIn, clockOut time.Time, breakStart, breakEnd *time.Time) (Result, error) {
	return ComputeWithPrior(clockIn, clockOut, breakStart, breakEnd, 0)
}

// ComputeWithPrior is Compute plus the duration of earlier, already closed
// breaks of the same entry.
func ComputeWithPrior(clockIn, clockOut time.Time, breakStart, breakEnd *time.Time, prior time.Duration) (Result, error) {
	if clockOut.Before(clockIn) {
		return Result{}, apperr.ErrClockSkew.WithMessagef("clock-out %s is before clock-in %s",
			clockOut.UTC().Format(time.RFC3339), clockIn.UTC().Format(time.RFC3339))
	}
	elapsed := clockOut.Sub(clockIn)

	brk := BreakDuration(breakStart, breakEnd)
	if prior > 0 {
		brk += prior
	}
	if brk > elapsed {
		brk = elapsed
	}

	return Result{
		Worked: FromDuration(elapsed - brk),
		Break:  FromDuration(brk),
	}, nil
}

// ComputeEntry closes e at clockOut. A break still running at clockOut
// ends there.
func ComputeEntry(e *models.TimeEntry, clockOut time.Time) (Result, error) {
	end := e.BreakEndAt
	if e.OnBreak() {
		end = &clockOut
	}
	return ComputeWithPrior(e.ClockInAt, clockOut, e.BreakStartAt, end, e.PriorBreak())
}

// BreakDuration is max(0, end-start) when both are set, else 0.
func BreakDuration(start, end *time.Time) time.Duration {
	if start == nil || end == nil {
		return 0
	}
	d := end.Sub(*start)
	if d < 0 {
		return 0
	}
	return d
}

// FromDuration converts d to decimal hours, truncated to Places.
func FromDuration(d time.Duration) decimal.Decimal {
	if d <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(d.Milliseconds()).Div(msPerHour).Truncate(Places)
}

// Sum adds hour figures without leaving decimal arithmetic.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
