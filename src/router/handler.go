package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/schema"
	log "github.com/sirupsen/logrus"

	"github.com/pranavmehta/index-datastore/src/dataservices"
	"github.com/pranavmehta/index-datastore/src/datastore"
	"github.com/pranavmehta/index-datastore/src/marketmodels"
	"github.com/pranavmehta/index-datastore/src/strategy"
)

var decoder = schema.NewDecoder()

type errorResponse struct {
	Type string `json:"type"`
	Msg  string `json:"message"`
}

func setResponse(response interface{}, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		return fmt.Errorf("setResponse: encode: %w", err)
	}

	return nil
}

func setErrorResponse(errType string, statusCode int, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := &errorResponse{Type: errType, Msg: err.Error()}
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		log.Errorf("setErrorResponse: encode: %v", encodeErr)
	}
}

// statusFor maps the core's caller-facing failures onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, marketmodels.ErrQuoteNotFound):
		return http.StatusNotFound
	case errors.Is(err, marketmodels.ErrNoStrikesAvailable),
		errors.Is(err, marketmodels.ErrNoTradingDateNearby),
		errors.Is(err, marketmodels.ErrNoDataForUnderlying):
		return http.StatusUnprocessableEntity
	case errors.Is(err, marketmodels.ErrMalformedRecord),
		errors.Is(err, marketmodels.ErrUnknownInstrumentKind),
		errors.Is(err, marketmodels.ErrUnsupportedIndicatorSource):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// instrumentRequest carries the query parameters shared by every
// per-instrument endpoint.
type instrumentRequest struct {
	Underlying string  `schema:"underlying,required"`
	Kind       string  `schema:"kind,required"`
	Symbol     string  `schema:"symbol,required"`
	Expiry     int     `schema:"expiry"`
	Strike     float64 `schema:"strike"`
	Timeframe  int     `schema:"timeframe"`
	Date       int     `schema:"date"`
	Time       int     `schema:"time"`
}

func (req *instrumentRequest) instrument() (marketmodels.Instrument, error) {
	instrument := marketmodels.Instrument{
		Underlying: req.Underlying,
		Kind:       marketmodels.InstrumentKind(req.Kind),
		Symbol:     req.Symbol,
		Expiry:     req.Expiry,
		Strike:     req.Strike,
	}

	if err := instrument.Validate(); err != nil {
		return marketmodels.Instrument{}, err
	}

	return instrument, nil
}

func (req *instrumentRequest) timeframe() marketmodels.Timeframe {
	if req.Timeframe == 0 {
		return marketmodels.TimeframeMinute
	}

	return marketmodels.Timeframe(req.Timeframe)
}

type Handler struct {
	accessor *dataservices.Accessor
	executor *strategy.Executor
}

func NewHandler(accessor *dataservices.Accessor) *Handler {
	return &Handler{
		accessor: accessor,
		executor: strategy.NewExecutor(accessor),
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	setResponse(map[string]interface{}{
		"status":  "success",
		"message": "engine is running",
	}, w)
}

func (h *Handler) getQuote(w http.ResponseWriter, r *http.Request) {
	var req instrumentRequest
	if err := decoder.Decode(&req, r.URL.Query()); err != nil {
		setErrorResponse("getQuote: invalid query", 400, err, w)
		return
	}

	instrument, err := req.instrument()
	if err != nil {
		setErrorResponse("getQuote: invalid instrument", 400, err, w)
		return
	}

	quote, err := h.accessor.GetQuote(instrument, req.timeframe(), req.Date, req.Time)
	if err != nil {
		setErrorResponse("getQuote: lookup failed", statusFor(err), err, w)
		return
	}

	setResponse(quote, w)
}

func (h *Handler) getRange(w http.ResponseWriter, r *http.Request) {
	var req resampleRequest
	if err := decoder.Decode(&req, r.URL.Query()); err != nil {
		setErrorResponse("getRange: invalid query", 400, err, w)
		return
	}

	instrument, err := req.instrument()
	if err != nil {
		setErrorResponse("getRange: invalid instrument", 400, err, w)
		return
	}

	bars := []datastore.Bar{}
	it := h.accessor.Range(instrument, req.timeframe(), req.StartDate, req.EndDate)
	for {
		bar, ok := it.Next()
		if !ok {
			break
		}

		bars = append(bars, bar)
	}

	setResponse(bars, w)
}

type chainRequest struct {
	Underlying string  `schema:"underlying,required"`
	Expiry     int     `schema:"expiry,required"`
	Date       int     `schema:"date,required"`
	Time       int     `schema:"time"`
	Spot       float64 `schema:"spot"`
	Type       string  `schema:"type"`
}

func (h *Handler) getChain(w http.ResponseWriter, r *http.Request) {
	var req chainRequest
	if err := decoder.Decode(&req, r.URL.Query()); err != nil {
		setErrorResponse("getChain: invalid query", 400, err, w)
		return
	}

	chain, err := h.accessor.Chain(req.Underlying, req.Expiry, req.Date, req.Time)
	if err != nil {
		setErrorResponse("getChain: lookup failed", statusFor(err), err, w)
		return
	}

	// JSON object keys must be strings
	out := make(map[string]interface{}, len(chain))
	for strike, legs := range chain {
		out[fmt.Sprintf("%v", strike)] = map[string]interface{}{
			"call": legs.Call,
			"put":  legs.Put,
		}
	}

	setResponse(out, w)
}

func (h *Handler) getATMStrike(w http.ResponseWriter, r *http.Request) {
	var req chainRequest
	if err := decoder.Decode(&req, r.URL.Query()); err != nil {
		setErrorResponse("getATMStrike: invalid query", 400, err, w)
		return
	}

	strike, err := h.accessor.ATMStrike(req.Underlying, req.Expiry, req.Date, req.Spot)
	if err != nil {
		setErrorResponse("getATMStrike: lookup failed", statusFor(err), err, w)
		return
	}

	setResponse(map[string]interface{}{"strike": strike}, w)
}

type expiriesRequest struct {
	Underlying string `schema:"underlying,required"`
	Date       int    `schema:"date,required"`
	Type       string `schema:"type"`
}

func (h *Handler) getExpiries(w http.ResponseWriter, r *http.Request) {
	var req expiriesRequest
	if err := decoder.Decode(&req, r.URL.Query()); err != nil {
		setErrorResponse("getExpiries: invalid query", 400, err, w)
		return
	}

	expiryType := marketmodels.ExpiryType(req.Type)
	if req.Type == "" {
		expiryType = marketmodels.AllExpiry
	}

	expiries, err := h.accessor.ExpiriesOn(req.Underlying, req.Date, expiryType)
	if err != nil {
		setErrorResponse("getExpiries: lookup failed", statusFor(err), err, w)
		return
	}

	setResponse(map[string]interface{}{"expiries": expiries}, w)
}

type classifyRequest struct {
	Underlying string `schema:"underlying,required"`
	Expiry     int    `schema:"expiry"`
	Date       int    `schema:"date"`
}

func (h *Handler) classifyExpiry(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := decoder.Decode(&req, r.URL.Query()); err != nil {
		setErrorResponse("classifyExpiry: invalid query", 400, err, w)
		return
	}

	expiryType, err := h.accessor.Classify(req.Underlying, req.Expiry)
	if err != nil {
		setErrorResponse("classifyExpiry: failed", statusFor(err), err, w)
		return
	}

	setResponse(map[string]interface{}{"expiry_type": expiryType}, w)
}

func (h *Handler) currentExpiries(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := decoder.Decode(&req, r.URL.Query()); err != nil {
		setErrorResponse("currentExpiries: invalid query", 400, err, w)
		return
	}

	weekly, err := h.accessor.CurrentWeeklyExpiry(req.Date)
	if err != nil {
		setErrorResponse("currentExpiries: failed", statusFor(err), err, w)
		return
	}

	monthly, err := h.accessor.CurrentMonthlyExpiry(req.Date)
	if err != nil {
		setErrorResponse("currentExpiries: failed", statusFor(err), err, w)
		return
	}

	setResponse(map[string]interface{}{"weekly": weekly, "monthly": monthly}, w)
}

type resampleRequest struct {
	instrumentRequest
	StartDate int `schema:"start_date"`
	EndDate   int `schema:"end_date"`
}

func (h *Handler) getResampled(w http.ResponseWriter, r *http.Request) {
	var req resampleRequest
	if err := decoder.Decode(&req, r.URL.Query()); err != nil {
		setErrorResponse("getResampled: invalid query", 400, err, w)
		return
	}

	instrument, err := req.instrument()
	if err != nil {
		setErrorResponse("getResampled: invalid instrument", 400, err, w)
		return
	}

	var bars interface{}
	if req.StartDate != 0 {
		bars, err = h.accessor.ResampleRange(instrument, req.timeframe(), req.StartDate, req.EndDate)
	} else {
		bars, err = h.accessor.Resample(instrument, req.timeframe(), req.Date)
	}

	if err != nil {
		setErrorResponse("getResampled: failed", statusFor(err), err, w)
		return
	}

	setResponse(bars, w)
}

type smaRequest struct {
	instrumentRequest
	Period    int    `schema:"period,required"`
	Source    string `schema:"source"`
	StartDate int    `schema:"start_date,required"`
	EndDate   int    `schema:"end_date,required"`
}

func (h *Handler) getSMA(w http.ResponseWriter, r *http.Request) {
	var req smaRequest
	if err := decoder.Decode(&req, r.URL.Query()); err != nil {
		setErrorResponse("getSMA: invalid query", 400, err, w)
		return
	}

	instrument, err := req.instrument()
	if err != nil {
		setErrorResponse("getSMA: invalid instrument", 400, err, w)
		return
	}

	source := marketmodels.PriceSource(req.Source)
	if req.Source == "" {
		source = marketmodels.SourceClose
	}

	points, err := h.accessor.SMA(instrument, req.timeframe(), req.Period, source, req.StartDate, req.EndDate)
	if err != nil {
		setErrorResponse("getSMA: failed", statusFor(err), err, w)
		return
	}

	setResponse(points, w)
}

func (h *Handler) runSampleStrategy(w http.ResponseWriter, r *http.Request) {
	startedAt := time.Now()

	var req strategy.SampleStrategyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		setErrorResponse("runSampleStrategy: invalid body", 400, err, w)
		return
	}

	report, err := h.executor.Run(&req)
	if err != nil {
		setErrorResponse("runSampleStrategy: failed", statusFor(err), err, w)
		return
	}

	setResponse(map[string]interface{}{
		"status":     "success",
		"message":    "backtest is completed",
		"run_id":     report.RunID,
		"total_pnl":  report.TotalPnL,
		"days":       report.Days,
		"skipped":    report.Skipped,
		"time_taken": time.Since(startedAt).Seconds(),
	}, w)
}
