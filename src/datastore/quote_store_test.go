package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranavmehta/index-datastore/src/expiries"
	"github.com/pranavmehta/index-datastore/src/marketmodels"
)

const sessionOpen = 33300 // 09:15:00

func newTestStore() *QuoteStore {
	return NewQuoteStore(expiries.NewClassifier())
}

func quote(open, high, low, close float64, volume int64) *marketmodels.Quote {
	return &marketmodels.Quote{
		Open:   open,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: volume,
	}
}

func TestQuoteStoreIngestAndGet(t *testing.T) {
	spot := marketmodels.NewEquity("NIFTY", "NIFTY 50")

	t.Run("get returns exactly the ingested quote", func(t *testing.T) {
		store := newTestStore()
		first := quote(10, 12, 9, 11, 100)
		second := quote(11, 13, 10, 12, 100)

		require.NoError(t, store.Ingest(spot, 1, 180101, sessionOpen, first))
		require.NoError(t, store.Ingest(spot, 1, 180101, sessionOpen+60, second))

		got, err := store.Get(spot, 1, 180101, sessionOpen)
		require.NoError(t, err)
		assert.Same(t, first, got)

		got, err = store.Get(spot, 1, 180101, sessionOpen+60)
		require.NoError(t, err)
		assert.Same(t, second, got)
	})

	t.Run("duplicate key is rejected and first value retained", func(t *testing.T) {
		store := newTestStore()
		first := quote(10, 12, 9, 11, 100)

		require.NoError(t, store.Ingest(spot, 1, 180101, sessionOpen, first))

		err := store.Ingest(spot, 1, 180101, sessionOpen, quote(99, 99, 99, 99, 0))
		require.Error(t, err)
		assert.ErrorIs(t, err, marketmodels.ErrDuplicateQuote)

		got, err := store.Get(spot, 1, 180101, sessionOpen)
		require.NoError(t, err)
		assert.Same(t, first, got)
	})

	t.Run("absent key signals not found", func(t *testing.T) {
		store := newTestStore()
		_, err := store.Get(spot, 1, 180101, sessionOpen)
		assert.ErrorIs(t, err, marketmodels.ErrQuoteNotFound)
	})

	t.Run("invalid identity is rejected", func(t *testing.T) {
		store := newTestStore()
		malformed := marketmodels.Instrument{Underlying: "NIFTY", Kind: marketmodels.Call, Symbol: "NIFTY18JAN10500CE"}

		err := store.Ingest(malformed, 1, 180101, sessionOpen, quote(1, 1, 1, 1, 0))
		assert.ErrorIs(t, err, marketmodels.ErrMalformedRecord)
	})

	t.Run("published store rejects ingestion", func(t *testing.T) {
		store := newTestStore()
		require.NoError(t, store.Ingest(spot, 1, 180101, sessionOpen, quote(10, 12, 9, 11, 100)))

		store.Publish()
		assert.Error(t, store.Ingest(spot, 1, 180101, sessionOpen+60, quote(11, 13, 10, 12, 100)))
	})

	t.Run("available dates is a sorted superset of ingested dates", func(t *testing.T) {
		store := newTestStore()
		require.NoError(t, store.Ingest(spot, 1, 180104, sessionOpen, quote(10, 12, 9, 11, 100)))
		require.NoError(t, store.Ingest(spot, 1, 180101, sessionOpen, quote(10, 12, 9, 11, 100)))
		require.NoError(t, store.Ingest(spot, 1, 180102, sessionOpen, quote(10, 12, 9, 11, 100)))

		assert.Equal(t, []int{180101, 180102, 180104}, store.AvailableDates("NIFTY"))
		assert.True(t, store.HasDate("NIFTY", 180102))
		assert.False(t, store.HasDate("NIFTY", 180103))
	})
}

func TestQuoteStoreRange(t *testing.T) {
	spot := marketmodels.NewEquity("NIFTY", "NIFTY 50")

	store := newTestStore()
	for i, date := range []int{180101, 180102, 180104} {
		for m := 0; m < 3; m++ {
			base := float64(10 + i)
			require.NoError(t, store.Ingest(spot, 1, date, sessionOpen+m*60, quote(base, base+2, base-1, base+1, 100)))
		}
	}
	store.Publish()

	t.Run("walks dates and minutes in order", func(t *testing.T) {
		it := store.Range(spot, 1, 180101, 180104)

		var keys [][2]int
		for {
			bar, ok := it.Next()
			if !ok {
				break
			}
			keys = append(keys, [2]int{bar.Date, bar.Time})
		}

		require.Len(t, keys, 9)
		assert.Equal(t, [2]int{180101, sessionOpen}, keys[0])
		assert.Equal(t, [2]int{180102, sessionOpen}, keys[3])
		assert.Equal(t, [2]int{180104, sessionOpen + 120}, keys[8])
	})

	t.Run("restricts to the requested window", func(t *testing.T) {
		it := store.Range(spot, 1, 180102, 180103)

		count := 0
		for {
			bar, ok := it.Next()
			if !ok {
				break
			}
			assert.Equal(t, 180102, bar.Date)
			count++
		}

		assert.Equal(t, 3, count)
	})

	t.Run("reset restarts the walk", func(t *testing.T) {
		it := store.Range(spot, 1, 180101, 180104)

		first, ok := it.Next()
		require.True(t, ok)

		for {
			if _, ok := it.Next(); !ok {
				break
			}
		}

		it.Reset()
		again, ok := it.Next()
		require.True(t, ok)
		assert.Equal(t, first, again)
	})

	t.Run("empty range for unknown instrument", func(t *testing.T) {
		other := marketmodels.NewEquity("BANKNIFTY", "BANKNIFTY")
		it := store.Range(other, 1, 180101, 180104)

		_, ok := it.Next()
		assert.False(t, ok)
	})
}
