package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port         string `yaml:"port"`
		ReadTimeout  string `yaml:"readTimeout"`
		WriteTimeout string `yaml:"writeTimeout"`
	} `yaml:"server"`
	Frame struct {
		BaseURL       string `yaml:"baseURL"`
		PurchaseURL   string `yaml:"purchaseURL"`
		ShareHashtags string `yaml:"shareHashtags"`
	} `yaml:"frame"`
	Auth struct {
		JWTSecret string `yaml:"jwtSecret"`
		Issuer    string `yaml:"issuer"`
	} `yaml:"auth"`
	Store struct {
		Backend string `yaml:"backend"`
		Prefix  string `yaml:"prefix"`
	} `yaml:"store"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Bank struct {
		ID  string `yaml:"id"`
		TTL string `yaml:"ttl"`
	} `yaml:"bank"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Manifest Manifest `yaml:"manifest"`
}

// Manifest is the Farcaster mini-app manifest served at /.well-known/farcaster.json.
type Manifest struct {
	Version               string   `yaml:"version" json:"version"`
	Name                  string   `yaml:"name" json:"name"`
	HomeURL               string   `yaml:"homeUrl" json:"homeUrl"`
	IconURL               string   `yaml:"iconUrl" json:"iconUrl"`
	SplashImageURL        string   `yaml:"splashImageUrl" json:"splashImageUrl"`
	SplashBackgroundColor string   `yaml:"splashBackgroundColor" json:"splashBackgroundColor"`
	WebhookURL            string   `yaml:"webhookUrl" json:"webhookUrl"`
	Subtitle              string   `yaml:"subtitle" json:"subtitle"`
	Description           string   `yaml:"description" json:"description"`
	PrimaryCategory       string   `yaml:"primaryCategory" json:"primaryCategory"`
	ScreenshotURLs        []string `yaml:"screenshotUrls" json:"screenshotUrls"`
	HeroImageURL          string   `yaml:"heroImageUrl" json:"heroImageUrl"`
	Tags                  []string `yaml:"tags" json:"tags"`
	Tagline               string   `yaml:"tagline" json:"tagline"`
	OGTitle               string   `yaml:"ogTitle" json:"ogTitle"`
	OGDescription         string   `yaml:"ogDescription" json:"ogDescription"`
	OGImageURL            string   `yaml:"ogImageUrl" json:"ogImageUrl"`
	ImageURL              string   `yaml:"imageUrl" json:"imageUrl"`
	ButtonTitle           string   `yaml:"buttonTitle" json:"buttonTitle"`
	RequiredChains        []string `yaml:"requiredChains" json:"requiredChains"`
	CanonicalDomain       string   `yaml:"canonicalDomain" json:"canonicalDomain"`
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Load reads YAML config from path, then applies defaults and environment
// overrides. A .env file in the working directory is loaded first if present.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// Default returns a config with only defaults and environment overrides applied.
func Default() Config {
	_ = godotenv.Load()

	cfg := Config{}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyEnv() {
	overrides := []struct {
		env string
		dst *string
	}{
		{"PORT", &c.Server.Port},
		{"BASE_URL", &c.Frame.BaseURL},
		{"PURCHASE_URL", &c.Frame.PurchaseURL},
		{"JWT_SECRET", &c.Auth.JWTSecret},
		{"SCORE_STORE", &c.Store.Backend},
		{"REDIS_ADDR", &c.Redis.Addr},
		{"REDIS_PASSWORD", &c.Redis.Password},
		{"DATABASE_URL", &c.Postgres.URL},
		{"LOG_LEVEL", &c.Log.Level},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Frame.BaseURL == "" {
		c.Frame.BaseURL = "http://localhost:8080"
	}
	c.Frame.BaseURL = strings.TrimRight(c.Frame.BaseURL, "/")
	if c.Frame.PurchaseURL == "" {
		c.Frame.PurchaseURL = "https://www.clanker.world/clanker/0xee47670a6ed7501aeeb9733efd0bf7d93ed3cb07"
	}
	if c.Frame.ShareHashtags == "" {
		c.Frame.ShareHashtags = "#Longevity #DeSci #TableDAdrian"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = BackendMemory
	}
	if c.Bank.ID == "" {
		c.Bank.ID = "longevity"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Manifest.Version == "" {
		c.Manifest.Version = "1"
	}
	if c.Manifest.HomeURL == "" {
		c.Manifest.HomeURL = c.Frame.BaseURL
	}
	if c.Manifest.WebhookURL == "" {
		c.Manifest.WebhookURL = c.Frame.BaseURL + "/api/webhook"
	}
	if c.Manifest.ImageURL == "" {
		c.Manifest.ImageURL = c.Frame.BaseURL + "/image.png"
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
