package indicators

// Sma is an incremental simple moving average over a fixed period. Updates
// are O(1): the newest value is added to a running sum and the oldest
// subtracted once the window is full.
type Sma struct {
	Period int
	window []float64
	sum    float64
}

// Update feeds the next value and returns the average, or false while the
// warm-up period has not yet accumulated enough history.
func (s *Sma) Update(value float64) (float64, bool) {
	s.window = append(s.window, value)
	s.sum += value

	if len(s.window) < s.Period {
		return 0, false
	}

	if len(s.window) > s.Period {
		s.sum -= s.window[0]
		s.window = s.window[1:]
	}

	return s.sum / float64(s.Period), true
}

func NewSma(period int) *Sma {
	return &Sma{
		Period: period,
	}
}
