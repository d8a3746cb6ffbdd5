package api

import (
	"sync"
	"time"

	"github.com/alex-pricope/online-voting-system/logging"
	"github.com/spf13/viper"
)

const (
	StorageDriverDynamo = "dynamodb"
	StorageDriverMongo  = "mongodb"
	StorageDriverMemory = "memory"
)

type Config struct {
	StorageConfig
	ServerConfig
	CacheConfig
	AuthConfig
	SchedulerConfig
}

type StorageConfig struct {
	Driver         string
	Endpoint       string
	Region         string
	TableNamePolls string
	TableNameVotes string
	TableNameUsers string
	MongoURI       string
	MongoDatabase  string
}

type ServerConfig struct {
	Port       int
	CORSOrigin string
}

type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type AuthConfig struct {
	JWTSecret       string
	SessionTTL      time.Duration
	BootstrapAdmins []string
}

type SchedulerConfig struct {
	SchedulerEnabled  bool
	SchedulerInterval time.Duration
}

var settingsOnce sync.Once

func ReadConfig() *Config {
	conf := &Config{
		StorageConfig: StorageConfig{
			Driver:         getStringOrDefault("storage.driver", StorageDriverDynamo),
			Endpoint:       viper.GetString("storage.endpoint"),
			Region:         viper.GetString("storage.region"),
			TableNamePolls: getStringOrDefault("storage.TableNamePolls", "Polls"),
			TableNameVotes: getStringOrDefault("storage.TableNameVotes", "Votes"),
			TableNameUsers: getStringOrDefault("storage.TableNameUsers", "Users"),
			MongoURI:       viper.GetString("storage.mongoURI"),
			MongoDatabase:  getStringOrDefault("storage.mongoDatabase", "voting"),
		},
		ServerConfig: ServerConfig{
			Port:       getIntOrDefault("server.port", 8080),
			CORSOrigin: getStringOrDefault("server.corsOrigin", "*"),
		},
		CacheConfig: CacheConfig{
			RedisAddr:     getStringOrDefault("cache.redisAddr", "localhost:6379"),
			RedisPassword: viper.GetString("cache.redisPassword"),
			RedisDB:       viper.GetInt("cache.redisDB"),
		},
		AuthConfig: AuthConfig{
			JWTSecret:       getString("auth.jwtSecret"),
			SessionTTL:      getDurationOrDefault("auth.sessionTTL", 24*time.Hour),
			BootstrapAdmins: viper.GetStringSlice("auth.bootstrapAdmins"),
		},
		SchedulerConfig: SchedulerConfig{
			SchedulerEnabled:  getBoolOrDefault("scheduler.enabled", true),
			SchedulerInterval: getDurationOrDefault("scheduler.interval", time.Minute),
		},
	}

	settingsOnce.Do(func() {
		logging.Log.Printf("Reading settings! storage driver %s", conf.Driver)
	})

	return conf
}

func getString(name string) string {
	if viper.IsSet(name) {
		v := viper.GetString(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Fatalf("required environment variable '%s' is missing", name)
	return ""
}

func getIntOrDefault(name string, def int) int {
	if viper.IsSet(name) {
		v := viper.GetInt(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

func getBoolOrDefault(name string, def bool) bool {
	if viper.IsSet(name) {
		v := viper.GetBool(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

func getStringOrDefault(name string, def string) string {
	if viper.IsSet(name) {
		v := viper.GetString(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

func getDurationOrDefault(name string, def time.Duration) time.Duration {
	if viper.IsSet(name) {
		v := viper.GetDuration(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}
