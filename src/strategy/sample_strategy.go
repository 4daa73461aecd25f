package strategy

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"

	"github.com/pranavmehta/index-datastore/src/dataservices"
	"github.com/pranavmehta/index-datastore/src/indicators"
	"github.com/pranavmehta/index-datastore/src/marketmodels"
	"github.com/pranavmehta/index-datastore/src/utils"
)

// FlexTime accepts an intraday time either as seconds since midnight or as
// an "HH:MM:SS" string.
type FlexTime int

func (t *FlexTime) UnmarshalJSON(data []byte) error {
	var seconds int
	if err := json.Unmarshal(data, &seconds); err == nil {
		*t = FlexTime(seconds)
		return nil
	}

	var hms string
	if err := json.Unmarshal(data, &hms); err != nil {
		return fmt.Errorf("FlexTime: UnmarshalJSON: %w", err)
	}

	seconds, err := utils.HMSToSeconds(hms)
	if err != nil {
		return err
	}

	*t = FlexTime(seconds)
	return nil
}

// SampleStrategyRequest mirrors the strategy-executor request body: a short
// ATM straddle entered and exited once per trading day.
type SampleStrategyRequest struct {
	ID         int      `json:"id"`
	Underlying string   `json:"underlying"`
	SpotSymbol string   `json:"spot_symbol"`
	StartDate  int      `json:"start_date"`
	EndDate    int      `json:"end_date"`
	EntryTime  FlexTime `json:"entry_time"`
	ExitTime   FlexTime `json:"exit_time"`
	Timeframe  int      `json:"timeframe"`
	SmaPeriod  int      `json:"sma_period"`
}

func (r *SampleStrategyRequest) Validate() error {
	if r.Underlying == "" || r.SpotSymbol == "" {
		return fmt.Errorf("SampleStrategyRequest: Validate: underlying and spot_symbol are required")
	}

	if r.StartDate <= 0 || r.EndDate < r.StartDate {
		return fmt.Errorf("SampleStrategyRequest: Validate: invalid date window %d..%d", r.StartDate, r.EndDate)
	}

	if r.EntryTime >= r.ExitTime {
		return fmt.Errorf("SampleStrategyRequest: Validate: entry_time must precede exit_time")
	}

	return nil
}

// DayResult is the outcome of one traded day.
type DayResult struct {
	Date        int     `json:"date"`
	Expiry      int     `json:"expiry"`
	ATMStrike   float64 `json:"atm_strike"`
	EntryCredit float64 `json:"entry_credit"`
	ExitCost    float64 `json:"exit_cost"`
	PnL         float64 `json:"pnl"`
	SpotSma     float64 `json:"spot_sma"`
	SpotRsi     float64 `json:"spot_rsi"`
	BandWidth   float64 `json:"band_width"`
}

type RunReport struct {
	RunID    uuid.UUID
	Request  *SampleStrategyRequest
	Days     []DayResult
	TotalPnL float64
	Skipped  int
}

// RenderTable writes the per-day results in tabular form.
func (r *RunReport) RenderTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Date", "Expiry", "ATM", "Entry", "Exit", "PnL"})

	for _, day := range r.Days {
		table.Append([]string{
			fmt.Sprintf("%d", day.Date),
			fmt.Sprintf("%d", day.Expiry),
			fmt.Sprintf("%.2f", day.ATMStrike),
			fmt.Sprintf("%.2f", day.EntryCredit),
			fmt.Sprintf("%.2f", day.ExitCost),
			fmt.Sprintf("%.2f", day.PnL),
		})
	}

	table.SetFooter([]string{"", "", "", "", "total", fmt.Sprintf("%.2f", r.TotalPnL)})
	table.Render()
}

// Executor runs the sample short-straddle strategy against a published store
// through the read-only accessor.
type Executor struct {
	accessor *dataservices.Accessor
}

func NewExecutor(accessor *dataservices.Accessor) *Executor {
	return &Executor{
		accessor: accessor,
	}
}

func (e *Executor) Run(req *SampleStrategyRequest) (*RunReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := e.accessor.EnsureUnderlying(req.Underlying); err != nil {
		return nil, err
	}

	timeframe := marketmodels.Timeframe(req.Timeframe)
	if req.Timeframe == 0 {
		timeframe = 5
	}

	smaPeriod := req.SmaPeriod
	if smaPeriod == 0 {
		smaPeriod = 14
	}

	startDate, err := e.accessor.NearestTradingDate(req.Underlying, req.StartDate)
	if err != nil {
		return nil, err
	}

	endDate, err := e.accessor.NearestTradingDate(req.Underlying, req.EndDate)
	if err != nil {
		return nil, err
	}

	report := &RunReport{
		RunID:   uuid.New(),
		Request: req,
	}

	log.Infof("sample strategy run %s: %s %d..%d", report.RunID, req.Underlying, startDate, endDate)

	spot := marketmodels.NewEquity(req.Underlying, req.SpotSymbol)

	for _, date := range e.accessor.AvailableDates(req.Underlying) {
		if date < startDate || date > endDate {
			continue
		}

		day, err := e.runDay(req, spot, timeframe, smaPeriod, date)
		if err != nil {
			log.Warnf("run %s: skipping %d: %v", report.RunID, date, err)
			report.Skipped++
			continue
		}

		report.Days = append(report.Days, day)
		report.TotalPnL += day.PnL
	}

	return report, nil
}

func (e *Executor) runDay(req *SampleStrategyRequest, spot marketmodels.Instrument, timeframe marketmodels.Timeframe, smaPeriod int, date int) (DayResult, error) {
	entryTime := int(req.EntryTime)
	exitTime := int(req.ExitTime)

	spotQuote, err := e.accessor.GetQuote(spot, marketmodels.TimeframeMinute, date, entryTime)
	if err != nil {
		return DayResult{}, err
	}

	expiry, err := e.tradableExpiry(req.Underlying, date)
	if err != nil {
		return DayResult{}, err
	}

	atm, err := e.accessor.ATMStrike(req.Underlying, expiry, date, spotQuote.Close)
	if err != nil {
		return DayResult{}, err
	}

	entryChain, err := e.accessor.Chain(req.Underlying, expiry, date, entryTime)
	if err != nil {
		return DayResult{}, err
	}

	entryLegs, found := entryChain[atm]
	if !found || entryLegs.Call == nil || entryLegs.Put == nil {
		return DayResult{}, fmt.Errorf("Executor: runDay: incomplete straddle at strike %v on %d", atm, date)
	}

	exitChain, err := e.accessor.Chain(req.Underlying, expiry, date, exitTime)
	if err != nil {
		return DayResult{}, err
	}

	exitLegs, found := exitChain[atm]
	if !found || exitLegs.Call == nil || exitLegs.Put == nil {
		return DayResult{}, fmt.Errorf("Executor: runDay: no exit quotes at strike %v on %d", atm, date)
	}

	entryCredit := entryLegs.Call.Close + entryLegs.Put.Close
	exitCost := exitLegs.Call.Close + exitLegs.Put.Close

	result := DayResult{
		Date:        date,
		Expiry:      expiry,
		ATMStrike:   atm,
		EntryCredit: entryCredit,
		ExitCost:    exitCost,
		PnL:         entryCredit - exitCost,
	}

	// context for the report: spot trend, momentum and intraday volatility
	if points, err := e.accessor.SMA(spot, timeframe, smaPeriod, marketmodels.SourceClose, date, date); err == nil {
		for _, p := range points {
			if p.Defined && p.Time <= entryTime {
				result.SpotSma = p.Value
			}
		}
	}

	if bars, err := e.accessor.Resample(spot, timeframe, date); err == nil {
		bands := indicators.NewBollingerBands(smaPeriod, 2.0)
		rsi := indicators.NewRsi(smaPeriod)
		for _, bar := range bars {
			if ready, stats, err := bands.Update(bar.Quote); err == nil && ready {
				result.BandWidth = stats.Upper - stats.Lower
			}

			result.SpotRsi = rsi.Update(bar.Quote)
		}
	}

	return result, nil
}

// tradableExpiry picks the nearest weekly expiry on or after the trading
// date, falling back to the monthly cycle when no weekly contract trades.
func (e *Executor) tradableExpiry(underlying string, date int) (int, error) {
	for _, expiryType := range []marketmodels.ExpiryType{marketmodels.Weekly, marketmodels.Monthly} {
		expiries, err := e.accessor.ExpiriesOn(underlying, date, expiryType)
		if err != nil {
			return 0, err
		}

		for _, expiry := range expiries {
			if expiry >= date {
				return expiry, nil
			}
		}
	}

	return 0, fmt.Errorf("Executor: tradableExpiry: %w: %s date=%d", marketmodels.ErrNoStrikesAvailable, underlying, date)
}
