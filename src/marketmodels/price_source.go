package marketmodels

type PriceSource string

const (
	SourceOpen  PriceSource = "open"
	SourceHigh  PriceSource = "high"
	SourceLow   PriceSource = "low"
	SourceClose PriceSource = "close"
	SourceOHLC4 PriceSource = "ohlc4"
)

func (s PriceSource) Validate() error {
	_, err := (&Quote{}).Price(s)
	return err
}
