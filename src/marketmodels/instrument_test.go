package marketmodels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentValidate(t *testing.T) {
	t.Run("equity carries neither expiry nor strike", func(t *testing.T) {
		assert.NoError(t, NewEquity("NIFTY", "NIFTY 50").Validate())

		withExpiry := NewEquity("NIFTY", "NIFTY 50")
		withExpiry.Expiry = 180125
		assert.ErrorIs(t, withExpiry.Validate(), ErrMalformedRecord)
	})

	t.Run("future requires expiry and forbids strike", func(t *testing.T) {
		assert.NoError(t, NewFuture("NIFTY", "NIFTY18JANFUT", 180125).Validate())
		assert.ErrorIs(t, NewFuture("NIFTY", "NIFTY18JANFUT", 0).Validate(), ErrMalformedRecord)

		withStrike := NewFuture("NIFTY", "NIFTY18JANFUT", 180125)
		withStrike.Strike = 10500
		assert.ErrorIs(t, withStrike.Validate(), ErrMalformedRecord)
	})

	t.Run("option requires expiry and strike", func(t *testing.T) {
		assert.NoError(t, NewOption("NIFTY", "NIFTY18JAN10500CE", Call, 180125, 10500).Validate())
		assert.ErrorIs(t, NewOption("NIFTY", "NIFTY18JAN10500CE", Call, 0, 10500).Validate(), ErrMalformedRecord)
		assert.ErrorIs(t, NewOption("NIFTY", "NIFTY18JAN10500PE", Put, 180125, 0).Validate(), ErrMalformedRecord)
	})

	t.Run("unknown kind", func(t *testing.T) {
		bad := Instrument{Underlying: "NIFTY", Kind: "SWAP", Symbol: "X"}
		assert.ErrorIs(t, bad.Validate(), ErrUnknownInstrumentKind)
	})

	t.Run("missing identity fields", func(t *testing.T) {
		assert.ErrorIs(t, NewEquity("", "NIFTY 50").Validate(), ErrMalformedRecord)
		assert.ErrorIs(t, NewEquity("NIFTY", "").Validate(), ErrMalformedRecord)
	})
}

func TestBarRecord(t *testing.T) {
	valid := func() *BarRecord {
		return &BarRecord{
			Underlying: "NIFTY",
			Kind:       Call,
			Symbol:     "NIFTY18JAN10500CE",
			Expiry:     180125,
			Strike:     10500,
			Date:       180101,
			Time:       33300,
			Open:       100, High: 110, Low: 95, Close: 105,
			Volume: 1500, OI: 12000, COI: 250,
		}
	}

	t.Run("valid option record round trips", func(t *testing.T) {
		record := valid()
		require.NoError(t, record.Validate())

		instrument, err := record.Instrument()
		require.NoError(t, err)
		assert.Equal(t, Call, instrument.Kind)
		assert.Equal(t, 10500.0, instrument.Strike)

		quote := record.Quote()
		assert.Equal(t, 105.0, quote.Close)
		assert.Equal(t, int64(12000), quote.OI)
	})

	t.Run("option without strike is malformed", func(t *testing.T) {
		record := valid()
		record.Strike = 0
		assert.ErrorIs(t, record.Validate(), ErrMalformedRecord)
	})

	t.Run("bad date and time", func(t *testing.T) {
		record := valid()
		record.Date = 0
		assert.ErrorIs(t, record.Validate(), ErrMalformedRecord)

		record = valid()
		record.Time = 90000
		assert.ErrorIs(t, record.Validate(), ErrMalformedRecord)
	})

	t.Run("negative volume", func(t *testing.T) {
		record := valid()
		record.Volume = -1
		assert.ErrorIs(t, record.Validate(), ErrMalformedRecord)
	})
}

func TestQuotePrice(t *testing.T) {
	quote := &Quote{Open: 10, High: 14, Low: 8, Close: 12}

	t.Run("sources", func(t *testing.T) {
		for source, expected := range map[PriceSource]float64{
			SourceOpen:  10,
			SourceHigh:  14,
			SourceLow:   8,
			SourceClose: 12,
			SourceOHLC4: 11,
		} {
			value, err := quote.Price(source)
			require.NoError(t, err)
			assert.Equal(t, expected, value, "source %s", source)
		}
	})

	t.Run("unsupported source", func(t *testing.T) {
		_, err := quote.Price("vwap")
		assert.ErrorIs(t, err, ErrUnsupportedIndicatorSource)
	})
}
