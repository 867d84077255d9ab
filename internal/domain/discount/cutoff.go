// internal/domain/discount/cutoff.go
package discount

import (
	"fmt"
	"time"
)

// CartCutoff computes the order-cutoff instant: today's local midnight when the
// current local time is past the configured cutoff time-of-day, otherwise
// yesterday's. cutoffTime is "HH:MM".
func CartCutoff(now time.Time, cutoffTime string) (time.Time, error) {
	parsed, err := time.Parse("15:04", cutoffTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cutoff time %q: %w", cutoffTime, err)
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	cutoffInstant := midnight.Add(
		time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute)

	if now.After(cutoffInstant) {
		return midnight, nil
	}
	return midnight.AddDate(0, 0, -1), nil
}

// programValid reports whether the program is still in effect: its delivery
// date, normalized to local midnight, must be strictly after the cutoff.
func programValid(p *Program, cutoff time.Time) bool {
	if !p.IsActive {
		return false
	}
	d := p.ValidDeliveryDate.In(cutoff.Location())
	deliveryMidnight := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, cutoff.Location())
	return deliveryMidnight.After(cutoff)
}
