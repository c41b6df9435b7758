package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/EternisAI/silo-license/internal/api/http"
	"github.com/EternisAI/silo-license/internal/api/http/middleware"
	"github.com/EternisAI/silo-license/internal/credential"
	"github.com/EternisAI/silo-license/internal/db"
	"github.com/EternisAI/silo-license/internal/keygen"
	"github.com/EternisAI/silo-license/internal/licenses"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log      LogConfig
	Http     http.Config
	Database db.Config
	Token    credential.Config
	License  licenses.Config
	Admin    middleware.AdminConfig
}

var config Config

func setDefaults() {
	viper.SetDefault("log.level", LOG_LEVEL_INFO)
	viper.SetDefault("http.port", 8000)
	viper.SetDefault("http.tls.enabled", false)
	viper.SetDefault("http.tls.cert_file", "")
	viper.SetDefault("http.tls.key_file", "")
	viper.SetDefault("database.url", db.DefaultURL)
	viper.SetDefault("database.schema", "")
	viper.SetDefault("token.secret", credential.InsecureSecret)
	viper.SetDefault("token.algorithm", credential.DefaultAlgorithm)
	viper.SetDefault("license.prefix", keygen.DefaultPrefix)
	viper.SetDefault("license.body_length", keygen.DefaultBodyLength)
	viper.SetDefault("license.days_valid", 365)
	viper.SetDefault("license.max_key_attempts", keygen.DefaultMaxAttempts)
	viper.SetDefault("admin.api_key", "")
	viper.SetDefault("admin.username", "")
	viper.SetDefault("admin.password_hash", "")
}

func InitConfig() error {
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("application")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./cmd/silo-license-server")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	initLogger(config.Log.Level)

	if strings.ToUpper(config.Log.Level) == LOG_LEVEL_DEBUG {
		redacted := config
		redacted.Token.Secret = "***"
		redacted.Admin.APIKey = "***"
		redacted.Admin.PasswordHash = "***"
		configJSON, err := json.MarshalIndent(redacted, "", "  ")
		if err == nil {
			fmt.Println("Config loaded:")
			fmt.Println(string(configJSON))
		}
	}
	return nil
}
