package expiries

import (
	"sync"
	"time"

	"github.com/pranavmehta/index-datastore/src/marketmodels"
	"github.com/pranavmehta/index-datastore/src/utils"
)

// Classifier designates expiry dates as WEEKLY or MONTHLY on the fixed
// Thursday expiry cycle: an expiry is MONTHLY when it falls on the last
// Thursday of its calendar month, WEEKLY otherwise. Exchange holiday shifts
// are not modelled; callers needing holiday-adjusted expiries must supply an
// external trading calendar.
type Classifier struct {
	mu    sync.Mutex
	cache map[classifierKey]marketmodels.ExpiryType
}

type classifierKey struct {
	underlying string
	expiry     int
}

func NewClassifier() *Classifier {
	return &Classifier{
		cache: make(map[classifierKey]marketmodels.ExpiryType),
	}
}

// Classify memoizes the designation per (underlying, expiry).
func (c *Classifier) Classify(underlying string, expiry int) (marketmodels.ExpiryType, error) {
	key := classifierKey{underlying: underlying, expiry: expiry}

	c.mu.Lock()
	defer c.mu.Unlock()

	if expiryType, found := c.cache[key]; found {
		return expiryType, nil
	}

	t, err := utils.ParseTradingDate(expiry)
	if err != nil {
		return "", err
	}

	expiryType := marketmodels.Weekly
	if t.Weekday() == time.Thursday && utils.FormatTradingDate(t) == lastThursday(t) {
		expiryType = marketmodels.Monthly
	}

	c.cache[key] = expiryType
	return expiryType, nil
}

// CurrentWeeklyExpiry returns the next Thursday on or after date.
func (c *Classifier) CurrentWeeklyExpiry(date int) (int, error) {
	t, err := utils.ParseTradingDate(date)
	if err != nil {
		return 0, err
	}

	daysAhead := (int(time.Thursday) - int(t.Weekday()) + 7) % 7
	return utils.FormatTradingDate(t.AddDate(0, 0, daysAhead)), nil
}

// CurrentMonthlyExpiry returns the last Thursday of date's calendar month.
// The result may be earlier than date; it is the caller's responsibility to
// check whether the monthly expiry has already passed.
func (c *Classifier) CurrentMonthlyExpiry(date int) (int, error) {
	t, err := utils.ParseTradingDate(date)
	if err != nil {
		return 0, err
	}

	return lastThursday(t), nil
}

func lastThursday(t time.Time) int {
	// last day of t's month, then walk back to Thursday
	d := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1)
	for d.Weekday() != time.Thursday {
		d = d.AddDate(0, 0, -1)
	}

	return utils.FormatTradingDate(d)
}
