package configuration

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"tab-sweeper/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	RedisClient RedisClient `json:"redisClient"`
	YouTube     YouTube     `json:"youtube"`
	Browser     Browser     `json:"browser"`
	Sweeper     Sweeper     `json:"sweeper"`
}

type App struct {
	Port int `json:"port"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Addr returns host:port, or empty when Redis is not configured at all (the
// sweeper then falls back to the file-backed snapshot store).
func (r RedisClient) Addr() string {
	if r.Host == "" {
		return ""
	}
	port := r.Port
	if port == "" {
		port = "6379"
	}
	return fmt.Sprintf("%s:%s", r.Host, port)
}

type YouTube struct {
	APIKey       string `json:"apiKey"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Browser struct {
	// DevToolsURL is the remote debugging endpoint of the running browser,
	// e.g. http://localhost:9222. The browser must have been started with
	// --remote-debugging-port.
	DevToolsURL string `json:"devToolsURL"`
}

type Sweeper struct {
	// CacheFile is where the snapshot lives when Redis is not configured.
	CacheFile string `json:"cacheFile"`
	// NotifyChannel is the Redis PUB/SUB channel for sweep notifications.
	NotifyChannel string `json:"notifyChannel"`
	// ChunkTimeoutSeconds bounds each upstream metadata request.
	ChunkTimeoutSeconds int `json:"chunkTimeoutSeconds"`
}

// ChunkTimeout returns the per-chunk upstream timeout, defaulting to 10s.
func (s Sweeper) ChunkTimeout() time.Duration {
	if s.ChunkTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.ChunkTimeoutSeconds) * time.Second
}

var C Config

func init() {
	Reload()
}

// Reload re-reads the config file and reapplies environment overrides. Called
// again from main after env files are loaded, since init runs before them.
func Reload() {
	LoadConfig()
	initApp(&C)
	initRedis(&C)
	initYouTube(&C)
	initBrowser(&C)
	initSweeper(&C)
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

// LoadEnvFromFile merges KEY=VALUE files (e.g. .env) into the process
// environment via viper's dotenv support. Values already present in the OS
// environment are never overridden; missing files are skipped.
func LoadEnvFromFile(paths ...string) {
	for _, p := range paths {
		v := viper.New()
		v.SetConfigFile(p)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			continue
		}
		for _, key := range v.AllKeys() {
			name := strings.ToUpper(key)
			if _, exists := os.LookupEnv(name); !exists {
				_ = os.Setenv(name, v.GetString(key))
			}
		}
	}
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initApp(C *Config) {
	// Port resolution order (env overrides config): APP_PORT -> PORT -> config -> default 10080
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
		C.App.Port = 10080
	}
}

func initRedis(C *Config) {
	if C.RedisClient.Host == "" {
		C.RedisClient.Host = os.Getenv("REDIS_HOST")
	}
	if C.RedisClient.Port == "" {
		C.RedisClient.Port = os.Getenv("REDIS_PORT")
	}
	if C.RedisClient.Username == "" {
		C.RedisClient.Username = os.Getenv("REDIS_USERNAME")
	}
	if C.RedisClient.Password == "" {
		C.RedisClient.Password = os.Getenv("REDIS_PASSWORD")
	}
}

func initYouTube(C *Config) {
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		C.YouTube.APIKey = v
	}
	if v := os.Getenv("YOUTUBE_CLIENT_ID"); v != "" {
		C.YouTube.ClientID = v
	}
	if v := os.Getenv("YOUTUBE_CLIENT_SECRET"); v != "" {
		C.YouTube.ClientSecret = v
	}
	if v := os.Getenv("YOUTUBE_ACCESS_TOKEN"); v != "" {
		C.YouTube.AccessToken = v
	}
	if v := os.Getenv("YOUTUBE_REFRESH_TOKEN"); v != "" {
		C.YouTube.RefreshToken = v
	}
}

func initBrowser(C *Config) {
	if v := os.Getenv("BROWSER_DEVTOOLS_URL"); v != "" {
		C.Browser.DevToolsURL = v
	}
	if C.Browser.DevToolsURL == "" {
		C.Browser.DevToolsURL = "http://localhost:9222"
	}
}

func initSweeper(C *Config) {
	if v := os.Getenv("SWEEPER_CACHE_FILE"); v != "" {
		C.Sweeper.CacheFile = v
	}
	if C.Sweeper.CacheFile == "" {
		C.Sweeper.CacheFile = "video_cache.json"
	}
	if C.Sweeper.NotifyChannel == "" {
		C.Sweeper.NotifyChannel = "tabsweeper:notifications"
	}
}
