package indicators

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/pranavmehta/index-datastore/src/datastore"
	"github.com/pranavmehta/index-datastore/src/marketmodels"
	"github.com/pranavmehta/index-datastore/src/utils"
)

// SeriesKey identifies one cached indicator series.
type SeriesKey struct {
	Instrument marketmodels.Instrument
	Timeframe  marketmodels.Timeframe
	Period     int
	Source     marketmodels.PriceSource
}

func (k SeriesKey) String() string {
	return fmt.Sprintf("sma|%s|%s|%s|%d|%d|%v|%d|%s",
		k.Instrument.Underlying, k.Instrument.Kind, k.Instrument.Symbol, k.Instrument.Expiry, k.Timeframe, k.Instrument.Strike, k.Period, k.Source)
}

// Point is one output value of an indicator series. Defined is false during
// the warm-up period before enough history exists.
type Point struct {
	Date    int     `json:"date"`
	Time    int     `json:"time"`
	Value   float64 `json:"value"`
	Defined bool    `json:"defined"`
}

// cachedSeries keeps the computed points plus the live running-sum state so
// later requests extend the series forward without recomputation.
type cachedSeries struct {
	points    []Point
	startDate int
	endDate   int
	sma       *Sma
}

func (s *cachedSeries) covers(startDate, endDate int) bool {
	return s.startDate <= startDate && s.endDate >= endDate
}

// Engine computes and caches rolling indicators over resampled series. The
// cache is the only mutable state after the store is published: reads go
// through an RWMutex and first computation of a series is single-flighted so
// concurrent callers await one computation instead of racing their own.
type Engine struct {
	resampler *datastore.Resampler

	mu    sync.RWMutex
	cache map[SeriesKey]*cachedSeries
	group singleflight.Group
}

func NewEngine(resampler *datastore.Resampler) *Engine {
	return &Engine{
		resampler: resampler,
		cache:     make(map[SeriesKey]*cachedSeries),
	}
}

// SMA returns the simple moving average series for the instrument over
// [startDate, endDate]. Endpoints on missing days resolve to the nearest
// loaded trading date. The first period-1 points are undefined. Results are
// cached per (instrument, timeframe, period, source) and extended
// monotonically as later ranges are requested.
func (e *Engine) SMA(instrument marketmodels.Instrument, timeframe marketmodels.Timeframe, period int, source marketmodels.PriceSource, startDate, endDate int) ([]Point, error) {
	if err := source.Validate(); err != nil {
		return nil, err
	}

	if period < 1 {
		return nil, fmt.Errorf("Engine: SMA: invalid period %d", period)
	}

	adjustedStart, err := e.resampler.NearestTradingDate(instrument.Underlying, startDate)
	if err != nil {
		return nil, err
	}

	adjustedEnd, err := e.resampler.NearestTradingDate(instrument.Underlying, endDate)
	if err != nil {
		return nil, err
	}

	key := SeriesKey{Instrument: instrument, Timeframe: timeframe, Period: period, Source: source}

	for {
		if points, found := e.cached(key, adjustedStart, adjustedEnd); found {
			return points, nil
		}

		// The group is keyed by series, not by range: concurrent callers for
		// the same series share one computation and re-check coverage after.
		if _, err, _ := e.group.Do(key.String(), func() (interface{}, error) {
			return nil, e.materialize(key, adjustedStart, adjustedEnd)
		}); err != nil {
			return nil, err
		}
	}
}

// cached returns a copy of the covered slice under the read lock, so readers
// never observe a series mid-extension.
func (e *Engine) cached(key SeriesKey, startDate, endDate int) ([]Point, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	series := e.cache[key]
	if series == nil || !series.covers(startDate, endDate) {
		return nil, false
	}

	return slicePoints(series.points, startDate, endDate), true
}

// materialize computes or extends the cached series so it covers
// [startDate, endDate].
func (e *Engine) materialize(key SeriesKey, startDate, endDate int) error {
	e.mu.RLock()
	series := e.cache[key]
	e.mu.RUnlock()

	if series != nil && series.covers(startDate, endDate) {
		return nil
	}

	if series != nil && startDate >= series.startDate {
		return e.extend(key, series, endDate)
	}

	// Earlier start than the cached anchor: the warm-up would differ, so the
	// series is rebuilt from the new start out to the furthest end seen.
	if series != nil && series.endDate > endDate {
		endDate = series.endDate
	}

	bars, err := e.resampler.ResampleRange(key.Instrument, key.Timeframe, startDate, endDate)
	if err != nil {
		return err
	}

	fresh := &cachedSeries{
		startDate: startDate,
		endDate:   endDate,
		sma:       NewSma(key.Period),
	}

	for _, bar := range bars {
		value, err := bar.Quote.Price(key.Source)
		if err != nil {
			return err
		}

		avg, defined := fresh.sma.Update(value)
		fresh.points = append(fresh.points, Point{Date: bar.Date, Time: bar.Time, Value: avg, Defined: defined})
	}

	e.mu.Lock()
	e.cache[key] = fresh
	e.mu.Unlock()

	return nil
}

// extend continues an existing series forward, feeding only post-coverage
// bars into the preserved running state.
func (e *Engine) extend(key SeriesKey, series *cachedSeries, endDate int) error {
	nextDate, err := utils.AddDays(series.endDate, 1)
	if err != nil {
		return err
	}

	if nextDate > endDate {
		e.mu.Lock()
		series.endDate = endDate
		e.mu.Unlock()
		return nil
	}

	bars, err := e.resampler.ResampleRange(key.Instrument, key.Timeframe, nextDate, endDate)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, bar := range bars {
		if bar.Date <= series.endDate {
			continue
		}

		value, err := bar.Quote.Price(key.Source)
		if err != nil {
			return err
		}

		avg, defined := series.sma.Update(value)
		series.points = append(series.points, Point{Date: bar.Date, Time: bar.Time, Value: avg, Defined: defined})
	}

	series.endDate = endDate
	return nil
}

func slicePoints(points []Point, startDate, endDate int) []Point {
	var out []Point
	for _, p := range points {
		if p.Date >= startDate && p.Date <= endDate {
			out = append(out, p)
		}
	}

	return out
}
