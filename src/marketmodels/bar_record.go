package marketmodels

import "fmt"

// BarRecord is the loader boundary: one already-filtered raw bar as delivered
// by the dataset loader. Expiry and Strike are optional and must be present
// exactly when the kind requires them.
type BarRecord struct {
	Underlying string
	Kind       InstrumentKind
	Symbol     string
	Expiry     int
	Strike     float64
	Date       int
	Time       int
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     int64
	OI         int64
	COI        float64
}

// Instrument builds the validated identity for this record.
func (r *BarRecord) Instrument() (Instrument, error) {
	instrument := Instrument{
		Underlying: r.Underlying,
		Kind:       r.Kind,
		Symbol:     r.Symbol,
	}

	switch r.Kind {
	case Future:
		instrument.Expiry = r.Expiry
	case Call, Put:
		instrument.Expiry = r.Expiry
		instrument.Strike = r.Strike
	}

	if err := instrument.Validate(); err != nil {
		return Instrument{}, err
	}

	return instrument, nil
}

func (r *BarRecord) Validate() error {
	if _, err := r.Instrument(); err != nil {
		return err
	}

	if r.Date <= 0 {
		return fmt.Errorf("BarRecord: Validate: %w: invalid date %d for %s", ErrMalformedRecord, r.Date, r.Symbol)
	}

	if r.Time < 0 || r.Time > 86399 {
		return fmt.Errorf("BarRecord: Validate: %w: invalid time %d for %s", ErrMalformedRecord, r.Time, r.Symbol)
	}

	if r.Volume < 0 || r.OI < 0 {
		return fmt.Errorf("BarRecord: Validate: %w: negative volume or oi for %s", ErrMalformedRecord, r.Symbol)
	}

	return nil
}

func (r *BarRecord) Quote() *Quote {
	return &Quote{
		Open:   r.Open,
		High:   r.High,
		Low:    r.Low,
		Close:  r.Close,
		Volume: r.Volume,
		OI:     r.OI,
		COI:    r.COI,
	}
}
