package marketmodels

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AppConfigYAML is the process configuration loaded at startup. Session times
// are "HH:MM:SS" strings in the file and converted once by the caller.
type AppConfigYAML struct {
	DatasetDir        string `yaml:"dataset_dir"`
	LoadPlanFile      string `yaml:"load_plan_file"`
	MarketOpen        string `yaml:"market_open"`
	MarketClose       string `yaml:"market_close"`
	DateSearchHorizon int    `yaml:"date_search_horizon"`
	Port              string `yaml:"port"`
}

func NewAppConfigYAML(path string) (*AppConfigYAML, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("NewAppConfigYAML: read %s: %w", path, err)
	}

	cfg := &AppConfigYAML{
		MarketOpen:        "09:15:00",
		MarketClose:       "15:30:00",
		DateSearchHorizon: 10,
		Port:              "5002",
		LoadPlanFile:      "load.csv",
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("NewAppConfigYAML: parse %s: %w", path, err)
	}

	if cfg.DatasetDir == "" {
		return nil, fmt.Errorf("NewAppConfigYAML: dataset_dir is required")
	}

	return cfg, nil
}
