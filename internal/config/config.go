package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	AWS      AWSConfig      `json:"aws"`
	Map      MapConfig      `json:"map"`
	Logging  LoggingConfig  `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	User         string        `json:"user"`
	Password     string        `json:"password"`
	DBName       string        `json:"db_name"`
	SSLMode      string        `json:"ssl_mode"`
	MaxOpenConns int           `json:"max_open_conns"`
	MaxIdleConns int           `json:"max_idle_conns"`
	MaxLifetime  time.Duration `json:"max_lifetime"`
}

// AWSConfig covers the SES mailer and the export bucket. Empty S3Bucket
// disables uploads; empty SESSender disables the contact form mailer.
type AWSConfig struct {
	Region          string `json:"region"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	S3Bucket        string `json:"s3_bucket"`
	SESSender       string `json:"ses_sender"`
	SESRecipient    string `json:"ses_recipient"`
}

// MapConfig carries the tile-source catalog and the prefetch warmer settings.
type MapConfig struct {
	TileSources []TileSourceConfig `json:"tile_sources"`
	Prefetch    PrefetchConfig     `json:"prefetch"`
}

// TileSourceConfig is one named slippy-map tile server.
type TileSourceConfig struct {
	Name        string `json:"name"`
	URLTemplate string `json:"url_template"`
	Attribution string `json:"attribution"`
	MaxZoom     int    `json:"max_zoom"`
}

// PrefetchConfig controls the scheduled tile warmer.
type PrefetchConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule"`
	Zooms    []int  `json:"zooms"`
	MaxTiles int    `json:"max_tiles"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Default config
	config := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    os.Getenv("USER"),
			DBName:  "hollowbrook_portal",
			SSLMode: "disable",
		},
		AWS: AWSConfig{
			Region: "us-east-1",
		},
		Map: MapConfig{
			TileSources: []TileSourceConfig{
				{
					Name:        "openstreetmap",
					URLTemplate: "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
					Attribution: "© OpenStreetMap contributors",
					MaxZoom:     19,
				},
			},
			Prefetch: PrefetchConfig{
				Schedule: "0 3 * * *",
				Zooms:    []int{14, 15, 16},
				MaxTiles: 500,
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	overrideWithEnv(config)

	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbPort := os.Getenv("DATABASE_PORT"); dbPort != "" {
		if p, err := strconv.Atoi(dbPort); err == nil {
			config.Database.Port = p
		}
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		config.AWS.Region = region
	}
	if key := os.Getenv("AWS_ACCESS_KEY_ID"); key != "" {
		config.AWS.AccessKeyID = key
	}
	if secret := os.Getenv("AWS_SECRET_ACCESS_KEY"); secret != "" {
		config.AWS.SecretAccessKey = secret
	}
	if bucket := os.Getenv("EXPORTS_S3_BUCKET"); bucket != "" {
		config.AWS.S3Bucket = bucket
	}
	if sender := os.Getenv("SES_SENDER"); sender != "" {
		config.AWS.SESSender = sender
	}
	if recipient := os.Getenv("SES_RECIPIENT"); recipient != "" {
		config.AWS.SESRecipient = recipient
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if schedule := os.Getenv("TILE_PREFETCH_SCHEDULE"); schedule != "" {
		config.Map.Prefetch.Schedule = schedule
	}
	if enabled := os.Getenv("TILE_PREFETCH_ENABLED"); enabled != "" {
		config.Map.Prefetch.Enabled = strings.EqualFold(enabled, "true")
	}
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
