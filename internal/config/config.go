package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ExcelDataDir   string
	LookupFile     string
	PriceFile      string
	ImageDir       string
	ImageURLPrefix string
	DBPath         string
	OutputDir      string

	HTTPAddr  string
	LogLevel  string
	LogFormat string

	SupplierName    string
	DefaultCurrency string
	VATRate         float64

	ResultsPerPage    int
	MaxResultsPerPage int

	CatalogWatchEnabled  bool
	CatalogWatchInterval time.Duration
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	dataDir := getEnv("EXCEL_DATA_DIR", filepath.Join(cwd, "data"))
	cfg := Config{
		ExcelDataDir:   dataDir,
		LookupFile:     resolve(dataDir, getEnv("LOOKUP_FILE", "cable_tray_lookup.xlsx")),
		PriceFile:      resolve(dataDir, getEnv("PRICE_FILE", "cable_tray_prices.xlsx")),
		ImageDir:       getEnv("IMAGE_DIR", filepath.Join(cwd, "static", "images")),
		ImageURLPrefix: getEnv("IMAGE_URL_PREFIX", "/static/images/"),
		DBPath:         getEnv("DB_PATH", filepath.Join(cwd, "data", "menora.db")),
		OutputDir:      getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		HTTPAddr:  getEnv("HTTP_ADDR", ":8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		SupplierName:    getEnv("SUPPLIER_NAME", "HOLDEE"),
		DefaultCurrency: getEnv("DEFAULT_CURRENCY", "ILS"),
		VATRate:         getEnvFloat("VAT_RATE", 0.17),

		ResultsPerPage:    getEnvInt("RESULTS_PER_PAGE", 20),
		MaxResultsPerPage: getEnvInt("MAX_RESULTS_PER_PAGE", 100),

		CatalogWatchEnabled:  getEnvBool("CATALOG_WATCH_ENABLED", true),
		CatalogWatchInterval: time.Duration(getEnvInt("CATALOG_WATCH_INTERVAL_SEC", 60)) * time.Second,
	}

	if cfg.CatalogWatchInterval <= 0 {
		cfg.CatalogWatchInterval = 60 * time.Second
	}
	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

// resolve keeps absolute file names and places relative ones under dir.
func resolve(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
