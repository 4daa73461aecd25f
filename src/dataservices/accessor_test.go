package dataservices

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranavmehta/index-datastore/src/datastore"
	"github.com/pranavmehta/index-datastore/src/expiries"
	"github.com/pranavmehta/index-datastore/src/marketmodels"
)

const sessionOpen = 33300

// loadFixture bulk-loads three trading days (180103 deliberately missing):
// spot minutes plus a small weekly option chain per day.
func loadFixture(t *testing.T) (*Accessor, marketmodels.Instrument) {
	t.Helper()

	classifier := expiries.NewClassifier()
	store := datastore.NewQuoteStore(classifier)
	spot := marketmodels.NewEquity("NIFTY", "NIFTY 50")

	const expiry = 180104 // Thursday of that week

	for _, date := range []int{180101, 180102, 180104} {
		for m := 0; m < 10; m++ {
			base := 10500 + float64(m)
			quote := &marketmodels.Quote{Open: base, High: base + 2, Low: base - 2, Close: base + 1, Volume: 100}
			require.NoError(t, store.Ingest(spot, 1, date, sessionOpen+m*60, quote))
		}

		for _, strike := range []float64{10400, 10500, 10600} {
			for _, kind := range []marketmodels.InstrumentKind{marketmodels.Call, marketmodels.Put} {
				symbol := fmt.Sprintf("NIFTY%d%d%s", expiry, int(strike), kind)
				option := marketmodels.NewOption("NIFTY", symbol, kind, expiry, strike)
				premium := &marketmodels.Quote{Open: 100, High: 105, Low: 95, Close: 101, Volume: 50, OI: 1000}
				require.NoError(t, store.Ingest(option, 1, date, sessionOpen, premium))
			}
		}
	}

	store.Publish()
	return NewAccessor(store, classifier, sessionOpen, 10), spot
}

func TestAccessorEndToEnd(t *testing.T) {
	accessor, spot := loadFixture(t)

	t.Run("underlying sanity", func(t *testing.T) {
		require.NoError(t, accessor.EnsureUnderlying("NIFTY"))
		assert.ErrorIs(t, accessor.EnsureUnderlying("BANKNIFTY"), marketmodels.ErrNoDataForUnderlying)
	})

	t.Run("point query", func(t *testing.T) {
		quote, err := accessor.GetQuote(spot, 1, 180102, sessionOpen)
		require.NoError(t, err)
		assert.Equal(t, 10501.0, quote.Close)
	})

	t.Run("range query", func(t *testing.T) {
		it := accessor.Range(spot, 1, 180101, 180102)
		count := 0
		for {
			if _, ok := it.Next(); !ok {
				break
			}
			count++
		}
		assert.Equal(t, 20, count)
	})

	t.Run("missing start date resolves to the earlier neighbour", func(t *testing.T) {
		// 180103 is absent; 180102 and 180104 are both one day away and the
		// earlier date wins the tie
		bars, err := accessor.ResampleRange(spot, 5, 180103, 180103)
		require.NoError(t, err)
		require.NotEmpty(t, bars)

		for _, bar := range bars {
			assert.Equal(t, 180102, bar.Date)
		}

		assert.Equal(t, 10500.0, bars[0].Quote.Open)
		assert.Equal(t, int64(500), bars[0].Quote.Volume)
	})

	t.Run("chain and atm through the facade", func(t *testing.T) {
		chain, err := accessor.Chain("NIFTY", 180104, 180102, sessionOpen)
		require.NoError(t, err)
		assert.Len(t, chain, 3)

		strike, err := accessor.ATMStrike("NIFTY", 180104, 180102, 10503)
		require.NoError(t, err)
		assert.Equal(t, 10500.0, strike)
	})

	t.Run("expiries and classification", func(t *testing.T) {
		weeklies, err := accessor.ExpiriesOn("NIFTY", 180102, marketmodels.Weekly)
		require.NoError(t, err)
		assert.Equal(t, []int{180104}, weeklies)

		expiryType, err := accessor.Classify("NIFTY", 180104)
		require.NoError(t, err)
		assert.Equal(t, marketmodels.Weekly, expiryType)

		weekly, err := accessor.CurrentWeeklyExpiry(180102)
		require.NoError(t, err)
		assert.Equal(t, 180104, weekly)

		monthly, err := accessor.CurrentMonthlyExpiry(180102)
		require.NoError(t, err)
		assert.Equal(t, 180125, monthly)
	})

	t.Run("sma over the resampled series", func(t *testing.T) {
		points, err := accessor.SMA(spot, 5, 3, marketmodels.SourceClose, 180101, 180104)
		require.NoError(t, err)
		// two 5-minute windows per day, three days
		require.Len(t, points, 6)
		assert.False(t, points[0].Defined)
		assert.False(t, points[1].Defined)
		assert.True(t, points[2].Defined)
	})
}
