package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranavmehta/index-datastore/src/datastore"
	"github.com/pranavmehta/index-datastore/src/expiries"
	"github.com/pranavmehta/index-datastore/src/marketmodels"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

// writeFixture lays out a miniature dataset:
//
//	dataset/nifty/nifty_eq/nifty_eq_180101.csv   (spot minutes)
//	dataset/nifty/nifty_ce/nifty_ce_180101.csv   (one call contract)
func writeFixture(t *testing.T, dir string) string {
	datasetDir := filepath.Join(dir, "dataset")

	writeFile(t, filepath.Join(datasetDir, "nifty", "nifty_eq", "nifty_eq_180101.csv"),
		"date,time,symbol,open,high,low,close\n"+
			"180101,33300,NIFTY 50,10500,10510,10495,10505\n"+
			"180101,33360,NIFTY 50,10505,10515,10500,10510\n")

	writeFile(t, filepath.Join(datasetDir, "nifty", "nifty_ce", "nifty_ce_180101.csv"),
		"date,time,tradingsymbol,expiry,strike,open,high,low,close,volume,oi,coi\n"+
			"180101,33300,NIFTY1810410500CE,180104,10500,120,125,118,121,1500,9000,150\n"+
			// duplicate of the row above, must be skipped and counted
			"180101,33300,NIFTY1810410500CE,180104,10500,120,125,118,121,1500,9000,150\n"+
			// malformed: option without a strike
			"180101,33360,NIFTY18104BADCE,180104,0,120,125,118,121,1500,9000,150\n")

	// out-of-plan day, must be ignored entirely
	writeFile(t, filepath.Join(datasetDir, "nifty", "nifty_eq", "nifty_eq_180215.csv"),
		"date,time,symbol,open,high,low,close\n"+
			"180215,33300,NIFTY 50,11000,11010,10995,11005\n")

	writeFile(t, filepath.Join(dir, "load.csv"),
		"underlying,start_date,end_date\nnifty,180101,180105\n")

	return datasetDir
}

func TestLoader(t *testing.T) {
	t.Run("ingests plan window and aggregates skips", func(t *testing.T) {
		dir := t.TempDir()
		datasetDir := writeFixture(t, dir)

		store := datastore.NewQuoteStore(expiries.NewClassifier())
		report, err := NewLoader(datasetDir, filepath.Join(dir, "load.csv"), store).Load()
		require.NoError(t, err)

		assert.Equal(t, 3, report.Ingested)
		assert.Equal(t, 1, report.Duplicates)
		assert.Equal(t, 1, report.Malformed)
		assert.Equal(t, 0, report.UnknownKind)
		assert.Equal(t, 1, report.DatesLoaded["NIFTY"])

		assert.Equal(t, []int{180101}, store.AvailableDates("NIFTY"))

		spot := marketmodels.NewEquity("NIFTY", "NIFTY 50")
		quote, err := store.Get(spot, 1, 180101, 33300)
		require.NoError(t, err)
		assert.Equal(t, 10505.0, quote.Close)

		option := marketmodels.NewOption("NIFTY", "NIFTY1810410500CE", marketmodels.Call, 180104, 10500)
		premium, err := store.Get(option, 1, 180101, 33300)
		require.NoError(t, err)
		assert.Equal(t, int64(9000), premium.OI)

		// side effect: chain index knows the contract
		strikes := store.Chains().Strikes("NIFTY", 180104, 180101)
		assert.Equal(t, []float64{10500}, strikes)
	})

	t.Run("underlying with zero loaded dates is fatal", func(t *testing.T) {
		dir := t.TempDir()
		datasetDir := writeFixture(t, dir)

		writeFile(t, filepath.Join(dir, "load.csv"),
			"underlying,start_date,end_date\nnifty,180101,180105\nbanknifty,180101,180105\n")

		store := datastore.NewQuoteStore(expiries.NewClassifier())
		_, err := NewLoader(datasetDir, filepath.Join(dir, "load.csv"), store).Load()
		assert.ErrorIs(t, err, marketmodels.ErrNoDataForUnderlying)
	})

	t.Run("missing plan file", func(t *testing.T) {
		dir := t.TempDir()
		datasetDir := writeFixture(t, dir)

		store := datastore.NewQuoteStore(expiries.NewClassifier())
		_, err := NewLoader(datasetDir, filepath.Join(dir, "missing.csv"), store).Load()
		assert.Error(t, err)
	})
}
