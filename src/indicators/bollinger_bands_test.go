package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pranavmehta/index-datastore/src/marketmodels"
)

func TestBollingerBands(t *testing.T) {
	closes := []float64{
		90.70, 92.90, 92.98, 91.80, 92.66, 92.68, 92.30, 92.77, 92.54, 92.95,
		93.20, 91.07, 89.83, 89.74, 90.40, 90.74, 88.02, 88.09, 88.84, 90.78,
		90.54, 91.39, 90.65,
	}

	t.Run("calculate bands", func(t *testing.T) {
		var stats BollingerBandsStats
		bollinger := NewBollingerBands(20, 2.0)
		for _, close := range closes {
			quote := &marketmodels.Quote{Open: close, High: close, Low: close, Close: close}
			_, _stats, err := bollinger.Update(quote)
			assert.NoError(t, err)
			stats = _stats
		}

		assert.Equal(t, 91.0, math.Floor(stats.MovingAverage*10)/10)
		assert.Equal(t, 94.1, math.Floor(stats.Upper*10)/10)
		assert.Equal(t, 87.9, math.Floor(stats.Lower*10)/10)
	})

	t.Run("not ready during warm up", func(t *testing.T) {
		bollinger := NewBollingerBands(20, 2.0)
		ready, _, err := bollinger.Update(&marketmodels.Quote{Close: 100})
		assert.NoError(t, err)
		assert.False(t, ready)
	})
}
