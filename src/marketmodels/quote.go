package marketmodels

import "fmt"

// Quote is one immutable price bar. Volume and OI are zero for instruments
// that do not report them (e.g. the spot index).
type Quote struct {
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
	OI     int64   `json:"oi"`
	COI    float64 `json:"coi"`
}

func (q *Quote) AvgOHLC() float64 {
	return (q.Open + q.High + q.Low + q.Close) / 4.0
}

// Price extracts the price series value a caller asked for.
func (q *Quote) Price(source PriceSource) (float64, error) {
	switch source {
	case SourceOpen:
		return q.Open, nil
	case SourceHigh:
		return q.High, nil
	case SourceLow:
		return q.Low, nil
	case SourceClose:
		return q.Close, nil
	case SourceOHLC4:
		return q.AvgOHLC(), nil
	default:
		return 0, fmt.Errorf("Quote: Price: %w: %s", ErrUnsupportedIndicatorSource, source)
	}
}

func (q *Quote) String() string {
	return fmt.Sprintf("open=%.2f, high=%.2f, low=%.2f, close=%.2f, volume=%d, oi=%d, coi=%.2f",
		q.Open, q.High, q.Low, q.Close, q.Volume, q.OI, q.COI)
}
