package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	APIConfig struct {
		BaseURL        string
		Token          string
		Tenant         string
		RequestTimeout time.Duration
		CacheTTL       time.Duration
		RetryBaseDelay time.Duration
		RetryMaxDelay  time.Duration
		MaxRetries     int
	}

	ServerConfig struct {
		Host          string
		Addr          string
		JWTExpiration time.Duration
	}

	Config struct {
		AppName   string
		Env       string // DEV (default), TEST, QA, PROD
		Debug     bool
		TestMode  bool
		Build     string
		WorkDir   string
		SecretKey string

		DefaultFromEmailAddr string
		AdminEmailAddr       string
		SendgridApiKey       string
		RollbarToken         string

		API    APIConfig
		Server ServerConfig
	}
)

// NewConfig loads the configuration from the environment.
// A config/.env.<env> file is loaded first if it exists; actual env vars take precedence.
func NewConfig() *Config {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Shule")
	conf.SetDefault("secretKey", "w3mb0-t5x)dhs$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("apiBaseUrl", "http://localhost:8000")
	conf.SetDefault("apiRequestTimeout", 15*time.Second)
	conf.SetDefault("apiCacheTtl", 10*time.Second)
	conf.SetDefault("apiRetryBaseDelay", 500*time.Millisecond)
	conf.SetDefault("apiRetryMaxDelay", 8*time.Second)
	conf.SetDefault("apiMaxRetries", 2)
	conf.SetDefault("serverAddr", ":8000")
	conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd: %v", err)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		AppName:   conf.GetString("appName"),
		Env:       env,
		Debug:     conf.GetBool("debug"),
		TestMode:  conf.GetBool("testMode"),
		Build:     conf.GetString("build"),
		WorkDir:   wd,
		SecretKey: conf.GetString("secretKey"),

		DefaultFromEmailAddr: conf.GetString("defaultFromEmail"),
		AdminEmailAddr:       conf.GetString("adminEmail"),
		SendgridApiKey:       conf.GetString("sendgridApiKey"),
		RollbarToken:         conf.GetString("rollbarToken"),

		API: APIConfig{
			BaseURL:        conf.GetString("apiBaseUrl"),
			Token:          conf.GetString("apiToken"),
			Tenant:         conf.GetString("apiTenant"),
			RequestTimeout: conf.GetDuration("apiRequestTimeout"),
			CacheTTL:       conf.GetDuration("apiCacheTtl"),
			RetryBaseDelay: conf.GetDuration("apiRetryBaseDelay"),
			RetryMaxDelay:  conf.GetDuration("apiRetryMaxDelay"),
			MaxRetries:     conf.GetInt("apiMaxRetries"),
		},
		Server: ServerConfig{
			Host:          conf.GetString("serverHost"),
			Addr:          conf.GetString("serverAddr"),
			JWTExpiration: conf.GetDuration("jwtExpirationDelta"),
		},
	}
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.DefaultFromEmailAddr}
}

func (c *Config) AdminEmail() mail.Address {
	return mail.Address{Address: c.AdminEmailAddr}
}
