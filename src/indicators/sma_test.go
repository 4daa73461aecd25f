package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSma(t *testing.T) {
	t.Run("warm up then rolling average", func(t *testing.T) {
		sma := NewSma(3)

		_, defined := sma.Update(10)
		assert.False(t, defined)

		_, defined = sma.Update(20)
		assert.False(t, defined)

		value, defined := sma.Update(30)
		assert.True(t, defined)
		assert.Equal(t, 20.0, value)

		value, defined = sma.Update(40)
		assert.True(t, defined)
		assert.Equal(t, 30.0, value)
	})

	t.Run("period one is the identity", func(t *testing.T) {
		sma := NewSma(1)

		value, defined := sma.Update(42)
		assert.True(t, defined)
		assert.Equal(t, 42.0, value)

		value, defined = sma.Update(7)
		assert.True(t, defined)
		assert.Equal(t, 7.0, value)
	})

	t.Run("window slides over long input", func(t *testing.T) {
		sma := NewSma(2)

		var value float64
		for _, v := range []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10} {
			value, _ = sma.Update(v)
		}

		assert.Equal(t, 9.5, value)
	})
}
