package rates

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/datetime"
	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
)

// ErrEmptyFeed is returned when the feed body holds no non-blank line.
var ErrEmptyFeed = errors.New("no data found in rate feed response")

// MalformedRecordError reports a last line that is not a "date,rate" pair.
type MalformedRecordError struct {
	Line string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed rate record %q: expected date,rate", e.Line)
}

// InvalidDateError reports a record whose date is not a calendar date.
type InvalidDateError struct {
	Value string
	Err   error
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date format: %s", e.Value)
}

func (e *InvalidDateError) Unwrap() error {
	return e.Err
}

// InvalidRateError reports a rate that is not a finite number in [0,100].
type InvalidRateError struct {
	Value string
}

func (e *InvalidRateError) Error() string {
	return fmt.Sprintf("invalid rate: %s", e.Value)
}

// ParseRecord extracts the newest rate from a feed body. The feed appends
// newest-last, so only the last non-blank line is read; earlier lines are
// headers or history.
func ParseRecord(body string) (RateData, error) {
	var last string
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) != "" {
			last = line
		}
	}
	if last == "" {
		return RateData{}, ErrEmptyFeed
	}

	fields := strings.Split(last, ",")
	if len(fields) < 2 {
		return RateData{}, &MalformedRecordError{Line: strings.TrimSpace(last)}
	}
	dateStr := strings.TrimSpace(fields[0])
	rateStr := strings.TrimSpace(fields[1])

	date, err := datetime.ParseFeedDate(dateStr)
	if err != nil {
		return RateData{}, &InvalidDateError{Value: dateStr, Err: err}
	}

	rate, err := strconv.ParseFloat(rateStr, 64)
	if err != nil || !mathutil.IsFinite(rate) ||
		rate < constants.MinInterestRate || rate > constants.MaxInterestRate {
		return RateData{}, &InvalidRateError{Value: rateStr}
	}

	return RateData{
		Date: datetime.FormatISO(date),
		Rate: rate,
	}, nil
}
