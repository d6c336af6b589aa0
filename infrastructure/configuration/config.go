package configuration

import (
	"fmt"
	"os"
	"strconv"

	"social-publisher/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	OAuth       OAuth       `json:"oauth"`
	Dispatch    Dispatch    `json:"dispatch"`
	Scheduling  Scheduling  `json:"scheduling"`
}

type App struct {
	Port      int    `json:"port"`
	SecretKey string `json:"secretKey"`
}

type Database struct {
	Psql Db `json:"psql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// OAuth holds per-platform client credentials used by the refresh flows.
type OAuth struct {
	YouTube   OAuthClient `json:"youtube"`
	Instagram OAuthClient `json:"instagram"`
	TikTok    OAuthClient `json:"tiktok"`
	Facebook  OAuthClient `json:"facebook"`
	Twitter   OAuthClient `json:"twitter"`
	LinkedIn  OAuthClient `json:"linkedin"`
}

type OAuthClient struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	RedirectURI  string `json:"redirectURI"`
}

// Dispatch configures the scheduled dispatch loop.
type Dispatch struct {
	IntervalSeconds  int `json:"intervalSeconds"`  // ticker interval
	StalenessMinutes int `json:"stalenessMinutes"` // posts older than this are not resurrected
	BatchSize        int `json:"batchSize"`
	Parallelism      int `json:"parallelism"`
}

// Scheduling configures the suggestion engine.
type Scheduling struct {
	HistoryDays     int `json:"historyDays"`
	MinSamples      int `json:"minSamples"`
	CacheTTLMinutes int `json:"cacheTTLMinutes"`
}

var C Config

func init() {
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initDispatch(&C)
	initScheduling(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	if env := os.Getenv("ENV"); env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	if C.Database.Psql.Name == "" {
		C.Database.Psql.Name = os.Getenv("DB_NAME")
	}
	if C.Database.Psql.Host == "" {
		C.Database.Psql.Host = os.Getenv("DB_HOST")
	}
	if C.Database.Psql.User == "" {
		C.Database.Psql.User = os.Getenv("DB_USER")
	}
	if C.Database.Psql.Password == "" {
		C.Database.Psql.Password = os.Getenv("DB_PASSWORD")
	}
	if C.Database.Psql.Port == "" {
		C.Database.Psql.Port = os.Getenv("DB_PORT")
	}
	if C.Database.Psql.Port == "" {
		C.Database.Psql.Port = "5432"
	}
}

func initApp(C *Config) {
	// SECRET_KEY from environment overrides the config file when provided.
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; JWT authentication will fail. Provide SECRET_KEY via environment.")
	}
}

func initDispatch(C *Config) {
	if C.Dispatch.IntervalSeconds == 0 {
		C.Dispatch.IntervalSeconds = 60
	}
	if C.Dispatch.StalenessMinutes == 0 {
		C.Dispatch.StalenessMinutes = 60
	}
	if C.Dispatch.BatchSize == 0 {
		C.Dispatch.BatchSize = 50
	}
	if C.Dispatch.Parallelism == 0 {
		C.Dispatch.Parallelism = 4
	}
}

func initScheduling(C *Config) {
	if C.Scheduling.HistoryDays == 0 {
		C.Scheduling.HistoryDays = 90
	}
	if C.Scheduling.MinSamples == 0 {
		C.Scheduling.MinSamples = 5
	}
	if C.Scheduling.CacheTTLMinutes == 0 {
		C.Scheduling.CacheTTLMinutes = 60
	}
}
