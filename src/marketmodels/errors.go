package marketmodels

import "fmt"

var (
	ErrDuplicateQuote             = fmt.Errorf("duplicate quote: key already holds a quote")
	ErrQuoteNotFound              = fmt.Errorf("quote not found")
	ErrMalformedRecord            = fmt.Errorf("malformed record")
	ErrUnknownInstrumentKind      = fmt.Errorf("unknown instrument kind")
	ErrNoStrikesAvailable         = fmt.Errorf("no strikes available")
	ErrNoTradingDateNearby        = fmt.Errorf("no trading date found near requested date")
	ErrUnsupportedIndicatorSource = fmt.Errorf("unsupported indicator source")
	ErrNoDataForUnderlying        = fmt.Errorf("no data loaded for underlying")
)
