package dataservices

import (
	"fmt"

	"github.com/pranavmehta/index-datastore/src/datastore"
	"github.com/pranavmehta/index-datastore/src/expiries"
	"github.com/pranavmehta/index-datastore/src/indicators"
	"github.com/pranavmehta/index-datastore/src/marketmodels"
)

// Accessor is the read-only query surface over one published store. It is
// what the strategy engine and the HTTP layer talk to: no consumer reaches
// into the store, the chain index, or the indicator cache directly.
type Accessor struct {
	store      *datastore.QuoteStore
	classifier *expiries.Classifier
	resampler  *datastore.Resampler
	engine     *indicators.Engine
}

func NewAccessor(store *datastore.QuoteStore, classifier *expiries.Classifier, sessionOpen, dateSearchHorizon int) *Accessor {
	resampler := datastore.NewResampler(store, sessionOpen, dateSearchHorizon)

	return &Accessor{
		store:      store,
		classifier: classifier,
		resampler:  resampler,
		engine:     indicators.NewEngine(resampler),
	}
}

// EnsureUnderlying fails with ErrNoDataForUnderlying when the load left the
// underlying empty, since no query against it can ever succeed.
func (a *Accessor) EnsureUnderlying(underlying string) error {
	if !a.store.HasData(underlying) {
		return fmt.Errorf("Accessor: EnsureUnderlying: %w: %s", marketmodels.ErrNoDataForUnderlying, underlying)
	}

	return nil
}

func (a *Accessor) GetQuote(instrument marketmodels.Instrument, timeframe marketmodels.Timeframe, date, tod int) (*marketmodels.Quote, error) {
	return a.store.Get(instrument, timeframe, date, tod)
}

func (a *Accessor) Range(instrument marketmodels.Instrument, timeframe marketmodels.Timeframe, startDate, endDate int) *datastore.RangeIterator {
	return a.store.Range(instrument, timeframe, startDate, endDate)
}

func (a *Accessor) AvailableDates(underlying string) []int {
	return a.store.AvailableDates(underlying)
}

func (a *Accessor) Chain(underlying string, expiry, date, tod int) (map[float64]datastore.ChainLegs, error) {
	return a.store.Chains().Chain(underlying, expiry, date, tod)
}

func (a *Accessor) Contract(underlying string, expiry, date int, strike float64, kind marketmodels.InstrumentKind) (marketmodels.Instrument, error) {
	return a.store.Chains().Contract(underlying, expiry, date, strike, kind)
}

func (a *Accessor) ATMStrike(underlying string, expiry, date int, spot float64) (float64, error) {
	return a.store.Chains().ATMStrike(underlying, expiry, date, spot)
}

func (a *Accessor) ExpiriesOn(underlying string, date int, expiryType marketmodels.ExpiryType) ([]int, error) {
	return a.store.Chains().ExpiriesOn(underlying, date, expiryType)
}

func (a *Accessor) Classify(underlying string, expiry int) (marketmodels.ExpiryType, error) {
	return a.classifier.Classify(underlying, expiry)
}

func (a *Accessor) CurrentWeeklyExpiry(date int) (int, error) {
	return a.classifier.CurrentWeeklyExpiry(date)
}

func (a *Accessor) CurrentMonthlyExpiry(date int) (int, error) {
	return a.classifier.CurrentMonthlyExpiry(date)
}

func (a *Accessor) NearestTradingDate(underlying string, date int) (int, error) {
	return a.resampler.NearestTradingDate(underlying, date)
}

func (a *Accessor) Resample(instrument marketmodels.Instrument, timeframe marketmodels.Timeframe, date int) ([]datastore.Bar, error) {
	return a.resampler.Resample(instrument, timeframe, date)
}

func (a *Accessor) ResampleRange(instrument marketmodels.Instrument, timeframe marketmodels.Timeframe, startDate, endDate int) ([]datastore.Bar, error) {
	return a.resampler.ResampleRange(instrument, timeframe, startDate, endDate)
}

func (a *Accessor) SMA(instrument marketmodels.Instrument, timeframe marketmodels.Timeframe, period int, source marketmodels.PriceSource, startDate, endDate int) ([]indicators.Point, error) {
	return a.engine.SMA(instrument, timeframe, period, source, startDate, endDate)
}
