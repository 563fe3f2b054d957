package config

import (
	"fmt"
	"strings"

	"salesaudit/domain/dataset"
	"salesaudit/internal/errors"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g.
// SALESAUDIT_HYPOTHESIS_ALPHA=0.01.
const EnvPrefix = "SALESAUDIT"

// Config represents the complete application configuration
type Config struct {
	Input      InputConfig      `mapstructure:"input" yaml:"input"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output"`
	Audit      AuditConfig      `mapstructure:"audit" yaml:"audit"`
	Cleaning   CleaningConfig   `mapstructure:"cleaning" yaml:"cleaning"`
	Hypothesis HypothesisConfig `mapstructure:"hypothesis" yaml:"hypothesis"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
}

// InputConfig describes the dataset being audited
type InputConfig struct {
	CSVPath         string   `mapstructure:"csv_path" yaml:"csv_path" validate:"required"`
	KeyColumn       string   `mapstructure:"key_column" yaml:"key_column" validate:"required"`
	DateColumn      string   `mapstructure:"date_column" yaml:"date_column" validate:"required"`
	RequiredColumns []string `mapstructure:"required_columns" yaml:"required_columns"`
}

// OutputConfig controls where and how artifacts are written
type OutputConfig struct {
	BaseDir    string `mapstructure:"base_dir" yaml:"base_dir" validate:"required"`
	ReportsDir string `mapstructure:"reports_dir" yaml:"reports_dir" validate:"required"`
	PlotsDir   string `mapstructure:"plots_dir" yaml:"plots_dir" validate:"required"`
	// Overwrite replaces artifacts from a previous run. When false an
	// existing artifact is a write error.
	Overwrite bool `mapstructure:"overwrite" yaml:"overwrite"`
	HTML      bool `mapstructure:"html" yaml:"html"`
	Workbook  bool `mapstructure:"workbook" yaml:"workbook"`
}

// AuditConfig holds data-quality thresholds
type AuditConfig struct {
	IQRMultiplier    float64 `mapstructure:"iqr_multiplier" yaml:"iqr_multiplier" validate:"gt=0"`
	MissingThreshold float64 `mapstructure:"missing_threshold" yaml:"missing_threshold" validate:"gte=0,lte=100"`
}

// CleaningConfig holds transform settings
type CleaningConfig struct {
	RevenueColumn   string `mapstructure:"revenue_column" yaml:"revenue_column" validate:"required"`
	DeliveryColumn  string `mapstructure:"delivery_column" yaml:"delivery_column" validate:"required"`
	CohortMonths    int    `mapstructure:"cohort_months" yaml:"cohort_months" validate:"min=1,max=12"`
	FastMaxDays     int    `mapstructure:"fast_max_days" yaml:"fast_max_days" validate:"gte=0"`
	StandardMaxDays int    `mapstructure:"standard_max_days" yaml:"standard_max_days" validate:"gtefield=FastMaxDays"`
}

// HypothesisConfig holds the decision rule for the test battery
type HypothesisConfig struct {
	Alpha            float64 `mapstructure:"alpha" yaml:"alpha" validate:"gt=0,lt=1"`
	MinExpectedCount float64 `mapstructure:"min_expected_count" yaml:"min_expected_count" validate:"gte=0"`
	TopBrands        int     `mapstructure:"top_brands" yaml:"top_brands" validate:"min=2"`
}

// LoggingConfig configures the slog logger
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

var defaults = map[string]interface{}{
	"input.csv_path":                "data/amazon_sales.csv",
	"input.key_column":              dataset.ColOrderID,
	"input.date_column":             dataset.ColOrderDate,
	"input.required_columns":        dataset.SalesSchema.Names(),
	"output.base_dir":               ".",
	"output.reports_dir":            "reports",
	"output.plots_dir":              "visuals/plots",
	"output.overwrite":              true,
	"output.html":                   true,
	"output.workbook":               true,
	"audit.iqr_multiplier":          1.5,
	"audit.missing_threshold":       0.0,
	"cleaning.revenue_column":       dataset.ColRevenue,
	"cleaning.delivery_column":      dataset.ColDeliveryDays,
	"cleaning.cohort_months":        3,
	"cleaning.fast_max_days":        2,
	"cleaning.standard_max_days":    5,
	"hypothesis.alpha":              0.05,
	"hypothesis.min_expected_count": 5.0,
	"hypothesis.top_brands":         15,
	"logging.level":                 "info",
	"logging.format":                "text",
}

// Default returns the built-in configuration
func Default() *Config {
	cfg, err := load(newViper())
	if err != nil {
		// defaults are static and always decode
		panic(err)
	}
	return cfg
}

// Load reads configuration from defaults, an optional YAML file, a .env file
// in the working directory and SALESAUDIT_* environment variables, then
// validates it. Precedence: env > config file > defaults.
func Load(cfgFile string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := newViper()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid,
				errors.Wrapf(err, "failed to read config file %s", cfgFile))
		}
	}

	cfg, err := load(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

func load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "failed to decode configuration"))
	}
	// the duplicate check cannot run without its key
	if cfg.Input.KeyColumn != "" && !containsString(cfg.Input.RequiredColumns, cfg.Input.KeyColumn) {
		cfg.Input.RequiredColumns = append(cfg.Input.RequiredColumns, cfg.Input.KeyColumn)
	}
	return &cfg, nil
}

// Validate checks field constraints and cross-field rules
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "configuration validation failed"))
	}
	return nil
}

// YAML renders the effective configuration
func (c *Config) YAML() (string, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal yaml: %w", err)
	}
	return string(b), nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
