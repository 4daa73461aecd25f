package datastore

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/pranavmehta/index-datastore/src/marketmodels"
	"github.com/pranavmehta/index-datastore/src/utils"
)

// DefaultDateSearchHorizon bounds the nearest-trading-date scan, in calendar
// days on either side of the requested date.
const DefaultDateSearchHorizon = 10

// Resampler derives coarser bars from the 1-minute series held in the store.
// Windows are aligned to the session open, so a 5-minute bar covers
// [09:15, 09:20) and so on for the NSE session defaults.
type Resampler struct {
	store       *QuoteStore
	sessionOpen int
	horizon     int
}

func NewResampler(store *QuoteStore, sessionOpen int, horizon int) *Resampler {
	if horizon <= 0 {
		horizon = DefaultDateSearchHorizon
	}

	return &Resampler{
		store:       store,
		sessionOpen: sessionOpen,
		horizon:     horizon,
	}
}

// NearestTradingDate resolves a requested date to the closest date actually
// loaded for the underlying, scanning outward (date, date-1, date+1, date-2,
// date+2, ...) up to the configured horizon. Ties prefer the earlier date.
func (r *Resampler) NearestTradingDate(underlying string, date int) (int, error) {
	for k := 0; k <= r.horizon; k++ {
		earlier, err := utils.AddDays(date, -k)
		if err != nil {
			return 0, err
		}

		if r.store.HasDate(underlying, earlier) {
			if k > 0 {
				log.Infof("adjusted %s date %d to nearest trading date %d", underlying, date, earlier)
			}
			return earlier, nil
		}

		if k == 0 {
			continue
		}

		later, err := utils.AddDays(date, k)
		if err != nil {
			return 0, err
		}

		if r.store.HasDate(underlying, later) {
			log.Infof("adjusted %s date %d to nearest trading date %d", underlying, date, later)
			return later, nil
		}
	}

	return 0, fmt.Errorf("Resampler: NearestTradingDate: %w: %s date=%d horizon=%d", marketmodels.ErrNoTradingDateNearby, underlying, date, r.horizon)
}

// Resample aggregates one instrument-day of 1-minute bars into contiguous
// non-overlapping windows of targetTimeframe minutes. Per window: open of the
// first bar, close of the last, max high, min low, summed volume, last oi,
// and coi as the net change across the window (last minus first). Windows
// with no observed bars are omitted.
func (r *Resampler) Resample(instrument marketmodels.Instrument, targetTimeframe marketmodels.Timeframe, date int) ([]Bar, error) {
	if err := targetTimeframe.Validate(); err != nil {
		return nil, err
	}

	day := r.store.day(instrument, marketmodels.TimeframeMinute, date)
	if day == nil {
		return nil, nil
	}

	windowSeconds := targetTimeframe.Seconds()

	var bars []Bar
	var current *marketmodels.Quote
	var firstCOI float64
	currentWindow := 0

	flush := func() {
		if current != nil {
			current.COI = current.COI - firstCOI
			bars = append(bars, Bar{
				Date:  date,
				Time:  r.sessionOpen + currentWindow*windowSeconds,
				Quote: current,
			})
			current = nil
		}
	}

	for _, tod := range day.times {
		quote := day.quotes[tod]
		window := floorDiv(tod-r.sessionOpen, windowSeconds)

		if current == nil || window != currentWindow {
			flush()
			currentWindow = window
			firstCOI = quote.COI
			current = &marketmodels.Quote{
				Open:   quote.Open,
				High:   quote.High,
				Low:    quote.Low,
				Close:  quote.Close,
				Volume: quote.Volume,
				OI:     quote.OI,
				COI:    quote.COI,
			}
			continue
		}

		if quote.High > current.High {
			current.High = quote.High
		}

		if quote.Low < current.Low {
			current.Low = quote.Low
		}

		current.Close = quote.Close
		current.Volume += quote.Volume
		current.OI = quote.OI
		current.COI = quote.COI
	}
	flush()

	return bars, nil
}

// ResampleRange resamples every available trading day in [startDate, endDate].
// Endpoints falling on missing days (weekends, holidays) are substituted with
// the nearest loaded trading date before the walk.
func (r *Resampler) ResampleRange(instrument marketmodels.Instrument, targetTimeframe marketmodels.Timeframe, startDate, endDate int) ([]Bar, error) {
	adjustedStart, err := r.NearestTradingDate(instrument.Underlying, startDate)
	if err != nil {
		return nil, err
	}

	adjustedEnd, err := r.NearestTradingDate(instrument.Underlying, endDate)
	if err != nil {
		return nil, err
	}

	var bars []Bar
	for _, date := range r.store.AvailableDates(instrument.Underlying) {
		if date < adjustedStart || date > adjustedEnd {
			continue
		}

		dayBars, err := r.Resample(instrument, targetTimeframe, date)
		if err != nil {
			return nil, err
		}

		bars = append(bars, dayBars...)
	}

	return bars, nil
}

// floorDiv rounds toward negative infinity so pre-open bars land in the
// window arithmetic dictates rather than clustering into window zero.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}

	return q
}
