package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"github.com/pranavmehta/index-datastore/src/datastore"
	"github.com/pranavmehta/index-datastore/src/marketmodels"
	"github.com/pranavmehta/index-datastore/src/utils"
)

// kindSuffixes maps the per-kind dataset subdirectory suffix to the
// instrument kind, e.g. nifty/nifty_ce holds NIFTY call bars.
var kindSuffixes = map[string]marketmodels.InstrumentKind{
	"eq":  marketmodels.Equity,
	"fut": marketmodels.Future,
	"ce":  marketmodels.Call,
	"pe":  marketmodels.Put,
}

// Loader performs the single bulk load phase: it reads the load plan, walks
// the dataset directory and ingests every selected per-day CSV into the
// store. Per-record failures are counted and skipped; only an underlying that
// ends up with zero dates is fatal.
type Loader struct {
	datasetDir string
	planFile   string
	store      *datastore.QuoteStore
}

func NewLoader(datasetDir, planFile string, store *datastore.QuoteStore) *Loader {
	return &Loader{
		datasetDir: datasetDir,
		planFile:   planFile,
		store:      store,
	}
}

func (l *Loader) readPlan() (map[string]map[int]struct{}, error) {
	f, err := os.Open(l.planFile)
	if err != nil {
		return nil, fmt.Errorf("Loader: readPlan: open %s: %w", l.planFile, err)
	}
	defer f.Close()

	var rows []*LoadPlanRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("Loader: readPlan: parse %s: %w", l.planFile, err)
	}

	plan := make(map[string]map[int]struct{})
	for _, row := range rows {
		span, err := utils.DateSpan(row.StartDate, row.EndDate)
		if err != nil {
			return nil, fmt.Errorf("Loader: readPlan: %s: %w", row.Underlying, err)
		}

		underlying := strings.ToUpper(row.Underlying)
		if _, found := plan[underlying]; !found {
			plan[underlying] = make(map[int]struct{})
		}

		for _, date := range span {
			plan[underlying][date] = struct{}{}
		}
	}

	return plan, nil
}

// Load runs the bulk load and publishes the store. The returned report is
// always populated, also on a fatal NoDataForUnderlying error.
func (l *Loader) Load() (*LoadReport, error) {
	plan, err := l.readPlan()
	if err != nil {
		return nil, err
	}

	report := NewLoadReport()

	entries, err := os.ReadDir(l.datasetDir)
	if err != nil {
		return nil, fmt.Errorf("Loader: Load: read dataset dir %s: %w", l.datasetDir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		underlying := strings.ToUpper(entry.Name())
		dates, found := plan[underlying]
		if !found {
			continue
		}

		if err := l.loadUnderlying(entry.Name(), underlying, dates, report); err != nil {
			return report, err
		}
	}

	for underlying := range plan {
		if !l.store.HasData(underlying) {
			return report, fmt.Errorf("Loader: Load: %w: %s", marketmodels.ErrNoDataForUnderlying, underlying)
		}

		report.DatesLoaded[underlying] = len(l.store.AvailableDates(underlying))
	}

	l.store.Publish()
	log.Infof("load complete: %d bars ingested, %d skipped across %d files", report.Ingested, report.Skipped(), report.FilesRead)

	return report, nil
}

func (l *Loader) loadUnderlying(dirName, underlying string, dates map[int]struct{}, report *LoadReport) error {
	for suffix, kind := range kindSuffixes {
		kindDir := filepath.Join(l.datasetDir, dirName, fmt.Sprintf("%s_%s", dirName, suffix))
		files, err := os.ReadDir(kindDir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("Loader: loadUnderlying: read %s: %w", kindDir, err)
		}

		log.Infof("loading %s_%s", dirName, suffix)

		for _, file := range files {
			if file.IsDir() || !strings.HasSuffix(file.Name(), ".csv") {
				continue
			}

			fileDate, err := dateFromFileName(file.Name())
			if err != nil {
				log.Warnf("skipping %s: %v", file.Name(), err)
				continue
			}

			if _, wanted := dates[fileDate]; !wanted {
				continue
			}

			if err := l.loadFile(filepath.Join(kindDir, file.Name()), underlying, kind, report); err != nil {
				return err
			}
		}
	}

	return nil
}

func (l *Loader) loadFile(path, underlying string, kind marketmodels.InstrumentKind, report *LoadReport) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("Loader: loadFile: open %s: %w", path, err)
	}
	defer f.Close()

	var rows []*barRowDTO
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return fmt.Errorf("Loader: loadFile: parse %s: %w", path, err)
	}

	report.FilesRead++

	for _, row := range rows {
		record := row.ToBarRecord(underlying, kind)
		if err := l.Ingest(record, report); err != nil {
			log.Debugf("skipped record in %s: %v", path, err)
		}
	}

	return nil
}

// Ingest validates and stores one bar record, counting skips in the report.
func (l *Loader) Ingest(record *marketmodels.BarRecord, report *LoadReport) error {
	if err := record.Validate(); err != nil {
		report.Record(err)
		return err
	}

	instrument, err := record.Instrument()
	if err != nil {
		report.Record(err)
		return err
	}

	if err := l.store.Ingest(instrument, marketmodels.TimeframeMinute, record.Date, record.Time, record.Quote()); err != nil {
		report.Record(err)
		return err
	}

	report.Ingested++
	return nil
}

// dateFromFileName extracts the trailing yymmdd token, e.g.
// nifty_ce_180101.csv -> 180101.
func dateFromFileName(name string) (int, error) {
	base := strings.TrimSuffix(name, ".csv")
	parts := strings.Split(base, "_")
	date, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0, fmt.Errorf("no trailing date in %q", name)
	}

	return date, nil
}
