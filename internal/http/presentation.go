package http

import (
	"time"

	"github.com/dustin/go-humanize"
)

// displayPrice renders a backend-computed amount for chrome that shows text
// only. The numeric fields stay in the payload; the shell never parses these
// back.
func displayPrice(amount float64) string {
	return humanize.FormatFloat("#,###.##", amount)
}

// displayTime renders a relative timestamp ("2 days ago").
func displayTime(t time.Time) string {
	return humanize.Time(t)
}
