package marketmodels

import "fmt"

// Instrument identifies one tradeable contract. The kind determines which
// fields are mandatory: options carry both expiry and strike, futures carry
// only expiry, equity carries neither. Expiry is a yymmdd trading date.
type Instrument struct {
	Underlying string
	Kind       InstrumentKind
	Symbol     string
	Expiry     int
	Strike     float64
}

func (i Instrument) Validate() error {
	if err := i.Kind.Validate(); err != nil {
		return err
	}

	if i.Underlying == "" {
		return fmt.Errorf("Instrument: Validate: %w: missing underlying", ErrMalformedRecord)
	}

	if i.Symbol == "" {
		return fmt.Errorf("Instrument: Validate: %w: missing symbol", ErrMalformedRecord)
	}

	switch i.Kind {
	case Equity:
		if i.Expiry != 0 || i.Strike != 0 {
			return fmt.Errorf("Instrument: Validate: %w: equity %s must not carry expiry or strike", ErrMalformedRecord, i.Symbol)
		}
	case Future:
		if i.Expiry == 0 {
			return fmt.Errorf("Instrument: Validate: %w: future %s missing expiry", ErrMalformedRecord, i.Symbol)
		}

		if i.Strike != 0 {
			return fmt.Errorf("Instrument: Validate: %w: future %s must not carry a strike", ErrMalformedRecord, i.Symbol)
		}
	case Call, Put:
		if i.Expiry == 0 {
			return fmt.Errorf("Instrument: Validate: %w: option %s missing expiry", ErrMalformedRecord, i.Symbol)
		}

		if i.Strike <= 0 {
			return fmt.Errorf("Instrument: Validate: %w: option %s missing strike", ErrMalformedRecord, i.Symbol)
		}
	}

	return nil
}

func NewEquity(underlying, symbol string) Instrument {
	return Instrument{
		Underlying: underlying,
		Kind:       Equity,
		Symbol:     symbol,
	}
}

func NewFuture(underlying, symbol string, expiry int) Instrument {
	return Instrument{
		Underlying: underlying,
		Kind:       Future,
		Symbol:     symbol,
		Expiry:     expiry,
	}
}

func NewOption(underlying, symbol string, kind InstrumentKind, expiry int, strike float64) Instrument {
	return Instrument{
		Underlying: underlying,
		Kind:       kind,
		Symbol:     symbol,
		Expiry:     expiry,
		Strike:     strike,
	}
}
