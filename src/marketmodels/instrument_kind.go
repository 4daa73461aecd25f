package marketmodels

import "fmt"

type InstrumentKind string

const (
	Equity InstrumentKind = "EQ"
	Future InstrumentKind = "FUT"
	Call   InstrumentKind = "CE"
	Put    InstrumentKind = "PE"
)

func (k InstrumentKind) Validate() error {
	if k != Equity && k != Future && k != Call && k != Put {
		return fmt.Errorf("InstrumentKind: Validate: %w: %s", ErrUnknownInstrumentKind, k)
	}

	return nil
}

func (k InstrumentKind) IsOption() bool {
	return k == Call || k == Put
}
