package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" validate:"required"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Storage struct {
		Type string `yaml:"type" default:"file" validate:"oneof=file clickhouse"`
		Dir  string `yaml:"dir" default:"./results"`
	} `yaml:"storage"`
	ClickHouse struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port" default:"9000"`
		Database     string        `yaml:"database" default:"tickerpulse"`
		User         string        `yaml:"user" default:"default"`
		Password     string        `yaml:"password"`
		UseHTTP      bool          `yaml:"use_http"`
		DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"tickerpulse.runs"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"1s"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Cache struct {
		Type  string `yaml:"type" default:"memory" validate:"oneof=memory redis layered"`
		Redis struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		TTL struct {
			Lexicon   time.Duration `yaml:"lexicon" default:"24h"`
			HotStocks time.Duration `yaml:"hotstocks" default:"1m"`
		} `yaml:"ttl"`
	} `yaml:"cache"`
	Forum struct {
		BaseURL        string        `yaml:"base_url" default:"https://www.reddit.com"`
		Subreddit      string        `yaml:"subreddit" default:"wallstreetbets" validate:"required"`
		UserAgent      string        `yaml:"user_agent" default:"tickerpulse/1.0"`
		PostLimit      int           `yaml:"post_limit" default:"100"`
		MinUpvotes     int           `yaml:"min_upvotes" default:"3"`
		Window         time.Duration `yaml:"window" default:"24h"`
		CommentWorkers int           `yaml:"comment_workers" default:"4"`
		MaxRPS         float64       `yaml:"max_rps" default:"1"`
		Timeout        time.Duration `yaml:"timeout" default:"30s"`
	} `yaml:"forum"`
	Lexicon struct {
		NasdaqURL     string   `yaml:"nasdaq_url" default:"https://nasdaqtrader.com/dynamic/symdir/nasdaqlisted.txt"`
		NyseURL       string   `yaml:"nyse_url" default:"https://datahub.io/core/nyse-other-listings/r/nyse-listed.csv"`
		DollarSymbols []string `yaml:"dollar_symbols"`
	} `yaml:"lexicon"`
	Scan struct {
		Schedule      string `yaml:"schedule" default:"0 */6 * * *"`
		MinMentions   int    `yaml:"min_mentions" default:"10"`
		MinComments   int    `yaml:"min_comments" default:"3"`
		RelevanceMode string `yaml:"relevance_mode" default:"ordered" validate:"oneof=ordered tree"`
	} `yaml:"scan"`
	Sentiment struct {
		Enabled    bool          `yaml:"enabled"`
		ServiceURL string        `yaml:"service_url"`
		APIKey     string        `yaml:"api_key"`
		Model      string        `yaml:"model" default:"gemini-2.5-flash"`
		Timeout    time.Duration `yaml:"timeout" default:"60s"`
	} `yaml:"sentiment"`
	Reports struct {
		Dir  string `yaml:"dir" default:"./results/hotstocks-reports"`
		Keep int    `yaml:"keep" default:"30"`
	} `yaml:"reports"`
}

var validate = validator.New()

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SUBREDDIT"); v != "" {
		c.Forum.Subreddit = v
	}
	if v := os.Getenv("FORUM_USER_AGENT"); v != "" {
		c.Forum.UserAgent = v
	}
	if v := os.Getenv("SENTIMENT_API_KEY"); v != "" {
		c.Sentiment.APIKey = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Storage.Type == "clickhouse" && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when storage.type is clickhouse")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Sentiment.Enabled && c.Sentiment.ServiceURL == "" {
		return fmt.Errorf("sentiment.service_url is required when sentiment is enabled")
	}
	return nil
}
