package config

import "path/filepath"

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Tracker TrackerConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port int
}

type StorageConfig struct {
	DataDir string
}

type TrackerConfig struct {
	// CarryOverEnabled controls whether opening a day prefills it with
	// the previous day's unfinished tasks.
	CarryOverEnabled bool
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4600,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Tracker: TrackerConfig{
			CarryOverEnabled: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON file backend at
// $XDG_CONFIG_HOME/dayorg/config.json and applies DAYORG_* environment
// variable overrides on top.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b Backend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}

// LedgerPath returns the history CSV location inside the data dir.
func (c Config) LedgerPath() string {
	return filepath.Join(c.Storage.DataDir, "history.csv")
}

// WeeklyReportPath returns the weekly report file location.
func (c Config) WeeklyReportPath() string {
	return filepath.Join(c.Storage.DataDir, "weekly_report.txt")
}

// MonthlyReportPath returns the monthly report file location.
func (c Config) MonthlyReportPath() string {
	return filepath.Join(c.Storage.DataDir, "monthly_report.txt")
}
