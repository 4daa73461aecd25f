package marketmodels

import "fmt"

// Timeframe is a bar duration in minutes. Only 1-minute bars are ingested;
// coarser timeframes are derived by resampling.
type Timeframe int

const TimeframeMinute Timeframe = 1

func (tf Timeframe) Validate() error {
	if tf < 1 {
		return fmt.Errorf("Timeframe: Validate: invalid timeframe: %d", tf)
	}

	return nil
}

func (tf Timeframe) Seconds() int {
	return int(tf) * 60
}
