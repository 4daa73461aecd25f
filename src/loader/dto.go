package loader

import "github.com/pranavmehta/index-datastore/src/marketmodels"

// LoadPlanRow is one row of the load.csv plan: which underlying to load and
// the inclusive yymmdd date window.
type LoadPlanRow struct {
	Underlying string `csv:"underlying"`
	StartDate  int    `csv:"start_date"`
	EndDate    int    `csv:"end_date"`
}

// barRowDTO mirrors one row of a per-day dataset CSV. Older files label the
// symbol column "symbol" instead of "tradingsymbol"; both are accepted.
type barRowDTO struct {
	Date          int     `csv:"date"`
	Time          int     `csv:"time"`
	TradingSymbol string  `csv:"tradingsymbol"`
	Symbol        string  `csv:"symbol"`
	Expiry        int     `csv:"expiry"`
	Strike        float64 `csv:"strike"`
	Open          float64 `csv:"open"`
	High          float64 `csv:"high"`
	Low           float64 `csv:"low"`
	Close         float64 `csv:"close"`
	Volume        int64   `csv:"volume"`
	OI            int64   `csv:"oi"`
	COI           float64 `csv:"coi"`
}

func (dto *barRowDTO) ToBarRecord(underlying string, kind marketmodels.InstrumentKind) *marketmodels.BarRecord {
	symbol := dto.TradingSymbol
	if symbol == "" {
		symbol = dto.Symbol
	}

	record := &marketmodels.BarRecord{
		Underlying: underlying,
		Kind:       kind,
		Symbol:     symbol,
		Date:       dto.Date,
		Time:       dto.Time,
		Open:       dto.Open,
		High:       dto.High,
		Low:        dto.Low,
		Close:      dto.Close,
		Volume:     dto.Volume,
		OI:         dto.OI,
		COI:        dto.COI,
	}

	switch kind {
	case marketmodels.Future:
		record.Expiry = dto.Expiry
	case marketmodels.Call, marketmodels.Put:
		record.Expiry = dto.Expiry
		record.Strike = dto.Strike
	}

	return record
}
