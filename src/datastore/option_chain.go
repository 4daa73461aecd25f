package datastore

import (
	"fmt"
	"math"
	"sort"

	"github.com/pranavmehta/index-datastore/src/expiries"
	"github.com/pranavmehta/index-datastore/src/marketmodels"
)

type chainKey struct {
	underlying string
	date       int
	expiry     int
}

type dateKey struct {
	underlying string
	date       int
}

// chainEntry records, per strike, the option contracts observed for one
// (underlying, date, expiry). The full identity is kept so chain queries can
// resolve quotes without knowing venue symbols.
type chainEntry struct {
	strikes map[float64]map[marketmodels.InstrumentKind]marketmodels.Instrument
}

// ChainLegs is one strike's row in an option chain. A nil leg means no quote
// was available for that side at the requested time.
type ChainLegs struct {
	Call *marketmodels.Quote
	Put  *marketmodels.Quote
}

// OptionChainIndex is a secondary index maintained as a side effect of
// QuoteStore ingestion. It answers chain enumeration, ATM lookup and expiry
// listing without scanning the primary index.
type OptionChainIndex struct {
	store      *QuoteStore
	classifier *expiries.Classifier
	entries    map[chainKey]*chainEntry
	expirySet  map[dateKey]map[int]struct{}
}

func newOptionChainIndex(store *QuoteStore, classifier *expiries.Classifier) *OptionChainIndex {
	return &OptionChainIndex{
		store:      store,
		classifier: classifier,
		entries:    make(map[chainKey]*chainEntry),
		expirySet:  make(map[dateKey]map[int]struct{}),
	}
}

func (idx *OptionChainIndex) observe(instrument marketmodels.Instrument, date int) {
	ck := chainKey{underlying: instrument.Underlying, date: date, expiry: instrument.Expiry}
	entry, found := idx.entries[ck]
	if !found {
		entry = &chainEntry{strikes: make(map[float64]map[marketmodels.InstrumentKind]marketmodels.Instrument)}
		idx.entries[ck] = entry
	}

	if _, found := entry.strikes[instrument.Strike]; !found {
		entry.strikes[instrument.Strike] = make(map[marketmodels.InstrumentKind]marketmodels.Instrument)
	}
	entry.strikes[instrument.Strike][instrument.Kind] = instrument

	dk := dateKey{underlying: instrument.Underlying, date: date}
	if _, found := idx.expirySet[dk]; !found {
		idx.expirySet[dk] = make(map[int]struct{})
	}
	idx.expirySet[dk][instrument.Expiry] = struct{}{}
}

// Strikes returns the sorted strikes observed for (underlying, expiry) on the
// given trading date.
func (idx *OptionChainIndex) Strikes(underlying string, expiry, date int) []float64 {
	entry := idx.entries[chainKey{underlying: underlying, date: date, expiry: expiry}]
	if entry == nil {
		return nil
	}

	strikes := make([]float64, 0, len(entry.strikes))
	for strike := range entry.strikes {
		strikes = append(strikes, strike)
	}

	sort.Float64s(strikes)
	return strikes
}

// Chain resolves the full chain at one minute: strike by strike, each known
// contract's 1-minute quote at (date, tod). Missing legs are omitted rather
// than errored; a strike with no quote on either side is dropped.
func (idx *OptionChainIndex) Chain(underlying string, expiry, date, tod int) (map[float64]ChainLegs, error) {
	entry := idx.entries[chainKey{underlying: underlying, date: date, expiry: expiry}]
	if entry == nil {
		return nil, fmt.Errorf("OptionChainIndex: Chain: %w: %s expiry=%d date=%d", marketmodels.ErrNoStrikesAvailable, underlying, expiry, date)
	}

	chain := make(map[float64]ChainLegs)
	for strike, contracts := range entry.strikes {
		var legs ChainLegs
		if call, found := contracts[marketmodels.Call]; found {
			if quote, err := idx.store.Get(call, marketmodels.TimeframeMinute, date, tod); err == nil {
				legs.Call = quote
			}
		}

		if put, found := contracts[marketmodels.Put]; found {
			if quote, err := idx.store.Get(put, marketmodels.TimeframeMinute, date, tod); err == nil {
				legs.Put = quote
			}
		}

		if legs.Call != nil || legs.Put != nil {
			chain[strike] = legs
		}
	}

	return chain, nil
}

// Contract returns the observed identity for one leg of the chain, so callers
// can follow up with point or range queries on the primary index.
func (idx *OptionChainIndex) Contract(underlying string, expiry, date int, strike float64, kind marketmodels.InstrumentKind) (marketmodels.Instrument, error) {
	entry := idx.entries[chainKey{underlying: underlying, date: date, expiry: expiry}]
	if entry == nil {
		return marketmodels.Instrument{}, fmt.Errorf("OptionChainIndex: Contract: %w: %s expiry=%d date=%d", marketmodels.ErrNoStrikesAvailable, underlying, expiry, date)
	}

	contract, found := entry.strikes[strike][kind]
	if !found {
		return marketmodels.Instrument{}, fmt.Errorf("OptionChainIndex: Contract: %w: %s expiry=%d date=%d strike=%v kind=%s", marketmodels.ErrQuoteNotFound, underlying, expiry, date, strike, kind)
	}

	return contract, nil
}

// ATMStrike returns the strike closest to spot. Equidistant candidates
// resolve to the lower strike.
func (idx *OptionChainIndex) ATMStrike(underlying string, expiry, date int, spot float64) (float64, error) {
	strikes := idx.Strikes(underlying, expiry, date)
	if len(strikes) == 0 {
		return 0, fmt.Errorf("OptionChainIndex: ATMStrike: %w: %s expiry=%d date=%d", marketmodels.ErrNoStrikesAvailable, underlying, expiry, date)
	}

	best := strikes[0]
	bestDiff := math.Abs(best - spot)
	for _, strike := range strikes[1:] {
		diff := math.Abs(strike - spot)
		if diff < bestDiff {
			best = strike
			bestDiff = diff
		}
	}

	return best, nil
}

// ExpiriesOn lists, sorted ascending, the expiries of the given classification
// observed for the underlying on one trading date.
func (idx *OptionChainIndex) ExpiriesOn(underlying string, date int, expiryType marketmodels.ExpiryType) ([]int, error) {
	if err := expiryType.Validate(); err != nil {
		return nil, err
	}

	var result []int
	for expiry := range idx.expirySet[dateKey{underlying: underlying, date: date}] {
		if expiryType != marketmodels.AllExpiry {
			classified, err := idx.classifier.Classify(underlying, expiry)
			if err != nil {
				return nil, err
			}

			if classified != expiryType {
				continue
			}
		}

		result = append(result, expiry)
	}

	sort.Ints(result)
	return result, nil
}
