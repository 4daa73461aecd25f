package marketmodels

import "fmt"

type ExpiryType string

const (
	Weekly    ExpiryType = "WEEKLY"
	Monthly   ExpiryType = "MONTHLY"
	AllExpiry ExpiryType = "ALL"
)

func (e ExpiryType) Validate() error {
	if e != Weekly && e != Monthly && e != AllExpiry {
		return fmt.Errorf("ExpiryType: Validate: invalid expiry type: %s", e)
	}

	return nil
}
