// internal/config/config.go
package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"database"`
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	CORS struct {
		AllowedOrigins   []string `mapstructure:"allowed_origins"`
		AllowedMethods   []string `mapstructure:"allowed_methods"`
		AllowedHeaders   []string `mapstructure:"allowed_headers"`
		ExposedHeaders   []string `mapstructure:"exposed_headers"`
		AllowCredentials bool     `mapstructure:"allow_credentials"`
		MaxAge           int      `mapstructure:"max_age"`
	} `mapstructure:"cors"`
	App AppConfig `mapstructure:"app"`
}

type AppConfig struct {
	// 復習リストの最大件数
	ReviewLimit int `mapstructure:"review_limit"`
	// 標準クイズの既定出題数
	QuizQuestionCount int `mapstructure:"quiz_question_count"`
	// lightningセッションの制限時間（秒）
	LightningSeconds int `mapstructure:"lightning_seconds"`
	// ミックスセッションのモード間クールダウン（ミリ秒）
	MixedCooldownMs int `mapstructure:"mixed_cooldown_ms"`
}

var Cfg Config

func LoadConfig(path string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath(".")

	// 環境変数での上書き (例: APP_DATABASE_URL)
	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()
	viper.BindEnv("database.url", "DATABASE_URL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Warning: Config file not found. Using default settings or environment variables if available.")
		} else {
			log.Printf("Error reading config file: %s\n", err)
			return err
		}
	}

	if err := viper.Unmarshal(&Cfg); err != nil {
		log.Printf("Error unmarshalling config: %s\n", err)
		return err
	}

	// --- デフォルト値の設定 ---
	if Cfg.Server.Port == "" {
		log.Println("Server port not set, using default ':8080'")
		Cfg.Server.Port = ":8080"
	}
	if Cfg.App.ReviewLimit <= 0 {
		Cfg.App.ReviewLimit = 20
	}
	if Cfg.App.QuizQuestionCount <= 0 {
		Cfg.App.QuizQuestionCount = 10
	}
	if Cfg.App.LightningSeconds <= 0 {
		Cfg.App.LightningSeconds = 60
	}
	if Cfg.App.MixedCooldownMs <= 0 {
		Cfg.App.MixedCooldownMs = 2000
	}
	if Cfg.Database.URL == "" {
		log.Println("Warning: Database URL is not set in config.")
	}

	log.Println("Config loaded successfully")
	log.Printf("Server Port: %s", Cfg.Server.Port)
	log.Printf("Quiz Question Count: %d", Cfg.App.QuizQuestionCount)
	log.Printf("Lightning Seconds: %d", Cfg.App.LightningSeconds)

	return nil
}
