package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SearchFilters mirrors the recruitment platform's vacancy search parameters.
type SearchFilters struct {
	SalaryFloor    int    `yaml:"salary_floor"`
	Experience     string `yaml:"experience"`
	Employment     string `yaml:"employment"`
	Schedule       string `yaml:"schedule"`
	OnlyWithSalary bool   `yaml:"only_with_salary"`
	Area           string `yaml:"area"`
}

// Profile is the candidate snapshot injected into every oracle call.
type Profile struct {
	About      string   `yaml:"about"`
	Experience []string `yaml:"experience"`
	Skills     []string `yaml:"skills"`
	Telegram   string   `yaml:"telegram"`
	Email      string   `yaml:"email"`
}

// FileConfig is the optional YAML overlay: search queries, filters, decision
// thresholds and the candidate profile.
type FileConfig struct {
	Queries   []string      `yaml:"queries"`
	Filters   SearchFilters `yaml:"filters"`
	Profile   Profile       `yaml:"profile"`
	MinScore  *int          `yaml:"min_score"`
	AutoApply *bool         `yaml:"auto_apply"`

	PollInterval   *int `yaml:"poll_interval"`
	SearchInterval *int `yaml:"search_interval"`
	QueriesPerTick *int `yaml:"queries_per_tick"`
	SubmitDelay    *int `yaml:"submit_delay"`
}

type Config struct {
	DatabaseURL      string
	HHClientID       string
	HHClientSecret   string
	HHResumeID       string
	OpenRouterAPIKey string
	TelegramToken    string
	TelegramChatID   int64

	Queries   []string
	Filters   SearchFilters
	Profile   Profile
	MinScore  int
	AutoApply bool

	PollInterval    int // seconds between scheduler ticks
	SearchInterval  int // seconds between full search cycles
	QueriesPerTick  int // cap on queries per search cycle
	SubmitDelay     int // seconds between consecutive submissions
	ShutdownTimeout int // seconds
}

// Load reads configuration from environment variables and the optional YAML
// file pointed to by AUTOPILOT_CONFIG.
func Load() (*Config, error) {
	// Load .env file if exists (ignore error in production)
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	clientID := os.Getenv("HH_CLIENT_ID")
	clientSecret := os.Getenv("HH_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("HH_CLIENT_ID and HH_CLIENT_SECRET are required")
	}

	resumeID := os.Getenv("HH_RESUME_ID")
	if resumeID == "" {
		return nil, fmt.Errorf("HH_RESUME_ID is required")
	}

	openRouterAPIKey := os.Getenv("OPENROUTER_API_KEY")
	if openRouterAPIKey == "" {
		fmt.Println("Warning: OPENROUTER_API_KEY not set, vacancy scoring will not work")
	}

	cfg := &Config{
		DatabaseURL:      dbURL,
		HHClientID:       clientID,
		HHClientSecret:   clientSecret,
		HHResumeID:       resumeID,
		OpenRouterAPIKey: openRouterAPIKey,
		MinScore:         70,
		AutoApply:        true,
		PollInterval:     30, // check the loop every 30 seconds
		SearchInterval:   4 * 3600,
		QueriesPerTick:   3,
		SubmitDelay:      5,
		ShutdownTimeout:  30,
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		chatID := os.Getenv("TELEGRAM_CHAT_ID")
		if chatID == "" {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
		}
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramToken = token
		cfg.TelegramChatID = id
	}

	if path := os.Getenv("AUTOPILOT_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// applyFile overlays the YAML file config on top of env/defaults.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	c.Queries = fc.Queries
	c.Filters = fc.Filters
	c.Profile = fc.Profile
	if fc.MinScore != nil {
		c.MinScore = *fc.MinScore
	}
	if fc.AutoApply != nil {
		c.AutoApply = *fc.AutoApply
	}
	if fc.PollInterval != nil {
		c.PollInterval = *fc.PollInterval
	}
	if fc.SearchInterval != nil {
		c.SearchInterval = *fc.SearchInterval
	}
	if fc.QueriesPerTick != nil {
		c.QueriesPerTick = *fc.QueriesPerTick
	}
	if fc.SubmitDelay != nil {
		c.SubmitDelay = *fc.SubmitDelay
	}

	return nil
}
