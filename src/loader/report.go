package loader

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"

	"github.com/pranavmehta/index-datastore/src/marketmodels"
)

// LoadReport aggregates per-record ingestion errors. Records are isolated:
// a bad row is skipped and counted, never aborting the load.
type LoadReport struct {
	Ingested    int
	Malformed   int
	Duplicates  int
	UnknownKind int
	FilesRead   int
	DatesLoaded map[string]int
}

func NewLoadReport() *LoadReport {
	return &LoadReport{
		DatesLoaded: make(map[string]int),
	}
}

// Record classifies one skipped-record error into its counter.
func (r *LoadReport) Record(err error) {
	switch {
	case errors.Is(err, marketmodels.ErrDuplicateQuote):
		r.Duplicates++
	case errors.Is(err, marketmodels.ErrUnknownInstrumentKind):
		r.UnknownKind++
	default:
		r.Malformed++
	}
}

func (r *LoadReport) Skipped() int {
	return r.Malformed + r.Duplicates + r.UnknownKind
}

// RenderTable writes the load summary for operator eyes.
func (r *LoadReport) RenderTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Underlying", "Dates"})

	underlyings := make([]string, 0, len(r.DatesLoaded))
	for underlying := range r.DatesLoaded {
		underlyings = append(underlyings, underlying)
	}
	sort.Strings(underlyings)

	for _, underlying := range underlyings {
		table.Append([]string{underlying, fmt.Sprintf("%d", r.DatesLoaded[underlying])})
	}

	table.SetFooter([]string{"bars ingested", fmt.Sprintf("%d", r.Ingested)})
	table.Render()

	summary := tablewriter.NewWriter(w)
	summary.SetHeader([]string{"Error", "Count"})
	summary.Append([]string{"malformed", fmt.Sprintf("%d", r.Malformed)})
	summary.Append([]string{"duplicate", fmt.Sprintf("%d", r.Duplicates)})
	summary.Append([]string{"unknown kind", fmt.Sprintf("%d", r.UnknownKind)})
	summary.Render()
}
