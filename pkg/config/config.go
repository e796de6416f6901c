package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Salary sources accepted by SALARY_SOURCE / --salary-source
const (
	SalarySourceHoopshype = "hoopshype"
	SalarySourceESPN      = "espn"
)

type Config struct {
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Filesystem layout
	DataDir        string `mapstructure:"DATA_DIR"`
	ResultsDir     string `mapstructure:"RESULTS_DIR"`
	ModelConfigDir string `mapstructure:"MODEL_CONFIG_DIR"`

	// Seasons are identified by the calendar year they start in
	FirstSeason  int `mapstructure:"FIRST_SEASON"`
	LastSeason   int `mapstructure:"LAST_SEASON"`
	BaselineYear int `mapstructure:"BASELINE_YEAR"`

	SalarySource string   `mapstructure:"SALARY_SOURCE"`
	ModelNames   []string `mapstructure:"MODEL_NAMES"`

	// Source fetching
	GetData                 bool          `mapstructure:"GET_DATA"`
	FetchAttempts           int           `mapstructure:"FETCH_ATTEMPTS"`
	FetchDelay              time.Duration `mapstructure:"FETCH_DELAY"`
	FetchRatePerMinute      int           `mapstructure:"FETCH_RATE_PER_MINUTE"`
	HTTPTimeout             time.Duration `mapstructure:"HTTP_TIMEOUT"`
	CircuitBreakerThreshold int           `mapstructure:"CIRCUIT_BREAKER_THRESHOLD"`

	// Run store
	RunStoreEnabled bool   `mapstructure:"RUN_STORE_ENABLED"`
	RunStoreDriver  string `mapstructure:"RUN_STORE_DRIVER"` // "sqlite", "postgres"
	DatabaseURL     string `mapstructure:"DATABASE_URL"`
}

// RegisterFlags declares the command line surface on fs
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Bool("get-data", false, "fetch source tables before running the pipeline")
	fs.String("salary-source", SalarySourceHoopshype, "salary data source (hoopshype or espn)")
}

// LoadConfig reads defaults, an optional .env file, the environment and any
// flags registered on fs, in increasing order of precedence.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")

	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("RESULTS_DIR", "results")
	v.SetDefault("MODEL_CONFIG_DIR", "model_configs")
	v.SetDefault("FIRST_SEASON", 2000)
	v.SetDefault("LAST_SEASON", 2022)
	v.SetDefault("BASELINE_YEAR", 2000)
	v.SetDefault("SALARY_SOURCE", SalarySourceHoopshype)
	v.SetDefault("MODEL_NAMES", "model_1,model_2,model_3,model_4,model_5,model_6")

	v.SetDefault("GET_DATA", false)
	v.SetDefault("FETCH_ATTEMPTS", 3)
	v.SetDefault("FETCH_DELAY", "3s")
	v.SetDefault("FETCH_RATE_PER_MINUTE", 20) // basketball-reference bans above ~20/min
	v.SetDefault("HTTP_TIMEOUT", "30s")
	v.SetDefault("CIRCUIT_BREAKER_THRESHOLD", 5)

	v.SetDefault("RUN_STORE_ENABLED", true)
	v.SetDefault("RUN_STORE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "")

	v.AutomaticEnv()

	if fs != nil {
		if err := bindFlags(v, fs); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Parse model names from comma-separated string
	if names := v.GetString("MODEL_NAMES"); names != "" {
		config.ModelNames = nil
		for _, name := range strings.Split(names, ",") {
			if name = strings.TrimSpace(name); name != "" {
				config.ModelNames = append(config.ModelNames, name)
			}
		}
	}

	config.SalarySource = strings.ToLower(strings.TrimSpace(config.SalarySource))
	if config.DatabaseURL == "" && config.RunStoreDriver == "sqlite" {
		config.DatabaseURL = config.ResultsDir + "/model_runs.db"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	bindings := map[string]string{
		"GET_DATA":      "get-data",
		"SALARY_SOURCE": "salary-source",
	}
	for key, flag := range bindings {
		f := fs.Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// Validate checks cross-field constraints viper cannot express
func (c *Config) Validate() error {
	switch c.SalarySource {
	case SalarySourceHoopshype, SalarySourceESPN:
	default:
		return fmt.Errorf("invalid salary source %q: must be %s or %s", c.SalarySource, SalarySourceHoopshype, SalarySourceESPN)
	}
	if c.FirstSeason > c.LastSeason {
		return fmt.Errorf("FIRST_SEASON %d is after LAST_SEASON %d", c.FirstSeason, c.LastSeason)
	}
	if c.FetchAttempts < 1 {
		return fmt.Errorf("FETCH_ATTEMPTS must be at least 1, got %d", c.FetchAttempts)
	}
	switch c.RunStoreDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid RUN_STORE_DRIVER %q", c.RunStoreDriver)
	}
	return nil
}

// Seasons lists every configured season in ascending order
func (c *Config) Seasons() []int {
	seasons := make([]int, 0, c.LastSeason-c.FirstSeason+1)
	for s := c.FirstSeason; s <= c.LastSeason; s++ {
		seasons = append(seasons, s)
	}
	return seasons
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
