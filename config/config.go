package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Path of the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" envDefault:"data/zap_rentals.sqlite"`

	// Port for the reporting API
	Port string `env:"PORT" envDefault:"5250"`

	// Run one capture and exit instead of starting the server
	RunOnce bool `env:"RUN_ONCE" envDefault:"false"`

	// Optional YAML file overriding the default neighborhood list
	NeighborhoodsFile string `env:"NEIGHBORHOODS_FILE"`

	Scraper struct {
		// Base URL of the upstream search API
		BaseURL string `env:"ZAP_API_URL" envDefault:"https://glue-api.zapimoveis.com.br/v3/listings"`

		// Listings requested per page (the API accepts up to 50)
		PageSize int `env:"PAGE_SIZE" envDefault:"50"`

		// HTTP request timeout in seconds
		RequestTimeout int `env:"REQUEST_TIMEOUT" envDefault:"30"`

		// Delay between consecutive page requests in milliseconds
		RequestDelayMs int `env:"REQUEST_DELAY_MS" envDefault:"1500"`

		// Maximum pages per neighborhood, 0 means no ceiling
		MaxPages int `env:"MAX_PAGES" envDefault:"0"`
	}

	Scheduler struct {
		// Hours between capture runs
		RunIntervalHours float64 `env:"RUN_INTERVAL_HOURS" envDefault:"24"`
	}

	BatchProcessing struct {
		// Number of page batches the listing queue can buffer
		QueueSize int `env:"BATCH_QUEUE_SIZE" envDefault:"32"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`
	}
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
