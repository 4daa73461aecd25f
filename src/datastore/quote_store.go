package datastore

import (
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/pranavmehta/index-datastore/src/expiries"
	"github.com/pranavmehta/index-datastore/src/marketmodels"
)

// TimeSeriesKey uniquely identifies one bar: which contract, at which bar
// duration, on which trading day, at which second of the day.
type TimeSeriesKey struct {
	Instrument marketmodels.Instrument
	Timeframe  marketmodels.Timeframe
	Date       int
	Time       int
}

// Bar pairs a quote with its position in the series.
type Bar struct {
	Date  int                 `json:"date"`
	Time  int                 `json:"time"`
	Quote *marketmodels.Quote `json:"quote"`
}

type seriesKey struct {
	instrument marketmodels.Instrument
	timeframe  marketmodels.Timeframe
	date       int
}

// daySeries holds one instrument-day of bars with times kept sorted so a
// single day can be walked in order without re-sorting on every query.
type daySeries struct {
	times  []int
	quotes map[int]*marketmodels.Quote
}

func (d *daySeries) insert(tod int, quote *marketmodels.Quote) {
	pos := sort.SearchInts(d.times, tod)
	d.times = append(d.times, 0)
	copy(d.times[pos+1:], d.times[pos:])
	d.times[pos] = tod
	d.quotes[tod] = quote
}

// QuoteStore is the primary index: a flat map keyed by the composite
// TimeSeriesKey for point lookups, plus a per-(instrument, timeframe, date)
// day index for ordered iteration. Ingestion is append-only and happens in a
// single bulk load phase; after Publish the store is read-only and safe for
// concurrent readers without locking.
type QuoteStore struct {
	quotes    map[TimeSeriesKey]*marketmodels.Quote
	days      map[seriesKey]*daySeries
	dates     map[string]map[int]struct{}
	chains    *OptionChainIndex
	published bool
}

func NewQuoteStore(classifier *expiries.Classifier) *QuoteStore {
	store := &QuoteStore{
		quotes: make(map[TimeSeriesKey]*marketmodels.Quote),
		days:   make(map[seriesKey]*daySeries),
		dates:  make(map[string]map[int]struct{}),
	}

	store.chains = newOptionChainIndex(store, classifier)
	return store
}

// Ingest inserts one bar. A second ingestion for the same key fails with
// ErrDuplicateQuote and leaves the first value unchanged. Ingesting an option
// bar also registers its contract with the option chain index.
func (s *QuoteStore) Ingest(instrument marketmodels.Instrument, timeframe marketmodels.Timeframe, date int, tod int, quote *marketmodels.Quote) error {
	if s.published {
		return fmt.Errorf("QuoteStore: Ingest: store is published and read-only")
	}

	if err := instrument.Validate(); err != nil {
		return err
	}

	if err := timeframe.Validate(); err != nil {
		return err
	}

	key := TimeSeriesKey{Instrument: instrument, Timeframe: timeframe, Date: date, Time: tod}
	if _, found := s.quotes[key]; found {
		return fmt.Errorf("QuoteStore: Ingest: %w: %s tf=%d date=%d time=%d", marketmodels.ErrDuplicateQuote, instrument.Symbol, timeframe, date, tod)
	}

	s.quotes[key] = quote

	sk := seriesKey{instrument: instrument, timeframe: timeframe, date: date}
	day, found := s.days[sk]
	if !found {
		day = &daySeries{quotes: make(map[int]*marketmodels.Quote)}
		s.days[sk] = day
	}
	day.insert(tod, quote)

	if _, found := s.dates[instrument.Underlying]; !found {
		s.dates[instrument.Underlying] = make(map[int]struct{})
	}
	s.dates[instrument.Underlying][date] = struct{}{}

	if instrument.Kind.IsOption() {
		s.chains.observe(instrument, date)
	}

	return nil
}

// Get returns the bar at the given key, or ErrQuoteNotFound. Absence is a
// normal occurrence in sparse data and not a load defect.
func (s *QuoteStore) Get(instrument marketmodels.Instrument, timeframe marketmodels.Timeframe, date int, tod int) (*marketmodels.Quote, error) {
	key := TimeSeriesKey{Instrument: instrument, Timeframe: timeframe, Date: date, Time: tod}
	quote, found := s.quotes[key]
	if !found {
		return nil, fmt.Errorf("QuoteStore: Get: %w: %s tf=%d date=%d time=%d", marketmodels.ErrQuoteNotFound, instrument.Symbol, timeframe, date, tod)
	}

	return quote, nil
}

// Chains exposes the option chain index built as a side effect of ingestion.
func (s *QuoteStore) Chains() *OptionChainIndex {
	return s.chains
}

// AvailableDates returns the sorted trading dates for which at least one bar
// exists for the underlying.
func (s *QuoteStore) AvailableDates(underlying string) []int {
	set := s.dates[underlying]
	dates := make([]int, 0, len(set))
	for date := range set {
		dates = append(dates, date)
	}

	sort.Ints(dates)
	return dates
}

func (s *QuoteStore) HasDate(underlying string, date int) bool {
	_, found := s.dates[underlying][date]
	return found
}

// HasData reports whether any bar was loaded for the underlying. A load that
// leaves a requested underlying empty is fatal for every query against it.
func (s *QuoteStore) HasData(underlying string) bool {
	return len(s.dates[underlying]) > 0
}

// Publish marks the end of the bulk load phase. From here on the store is an
// immutable snapshot shared by any number of concurrent readers.
func (s *QuoteStore) Publish() {
	s.published = true
	log.Infof("quote store published: %d bars, %d underlyings", len(s.quotes), len(s.dates))
}

func (s *QuoteStore) day(instrument marketmodels.Instrument, timeframe marketmodels.Timeframe, date int) *daySeries {
	return s.days[seriesKey{instrument: instrument, timeframe: timeframe, date: date}]
}

// Range produces a time-ordered walk over [startDate, endDate], restricted to
// the underlying's available trading dates. The iterator is lazy and may be
// Reset and re-walked against the same store state.
func (s *QuoteStore) Range(instrument marketmodels.Instrument, timeframe marketmodels.Timeframe, startDate, endDate int) *RangeIterator {
	var dates []int
	for _, date := range s.AvailableDates(instrument.Underlying) {
		if date >= startDate && date <= endDate {
			dates = append(dates, date)
		}
	}

	return &RangeIterator{
		store:      s,
		instrument: instrument,
		timeframe:  timeframe,
		dates:      dates,
	}
}

// RangeIterator walks bars day by day in time order.
type RangeIterator struct {
	store      *QuoteStore
	instrument marketmodels.Instrument
	timeframe  marketmodels.Timeframe
	dates      []int
	dayIdx     int
	pos        int
}

// Next returns the next bar in order, or false once the range is exhausted.
func (it *RangeIterator) Next() (Bar, bool) {
	for it.dayIdx < len(it.dates) {
		date := it.dates[it.dayIdx]
		day := it.store.day(it.instrument, it.timeframe, date)
		if day == nil || it.pos >= len(day.times) {
			it.dayIdx++
			it.pos = 0
			continue
		}

		tod := day.times[it.pos]
		it.pos++
		return Bar{Date: date, Time: tod, Quote: day.quotes[tod]}, true
	}

	return Bar{}, false
}

// Reset rewinds the iterator to the start of the range.
func (it *RangeIterator) Reset() {
	it.dayIdx = 0
	it.pos = 0
}
