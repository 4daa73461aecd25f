package router

import (
	"github.com/gorilla/mux"

	"github.com/pranavmehta/index-datastore/src/dataservices"
)

// Setup wires the query surface onto a mux router. Every route is a thin
// synchronous call into the accessor; the transport owns serialization only.
func Setup(accessor *dataservices.Accessor) *mux.Router {
	h := NewHandler(accessor)

	r := mux.NewRouter()
	r.HandleFunc("/health", h.health).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/quote", h.getQuote).Methods("GET")
	api.HandleFunc("/range", h.getRange).Methods("GET")
	api.HandleFunc("/chain", h.getChain).Methods("GET")
	api.HandleFunc("/chain/atm", h.getATMStrike).Methods("GET")
	api.HandleFunc("/expiries", h.getExpiries).Methods("GET")
	api.HandleFunc("/expiries/classify", h.classifyExpiry).Methods("GET")
	api.HandleFunc("/expiries/current", h.currentExpiries).Methods("GET")
	api.HandleFunc("/resample", h.getResampled).Methods("GET")
	api.HandleFunc("/indicators/sma", h.getSMA).Methods("GET")

	r.HandleFunc("/strategy_executor/sample_strategy", h.runSampleStrategy).Methods("POST")

	return r
}
