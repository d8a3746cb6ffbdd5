// @title Online Voting System API
// @version 1.0
// @description Backend API for polls, weighted voting and user accounts

// @securityDefinitions.apikey BearerToken
// @in header
// @name Authorization
package main

import (
	"os"
	"strings"

	_ "github.com/alex-pricope/online-voting-system/docs"

	"github.com/alex-pricope/online-voting-system/api"
	"github.com/alex-pricope/online-voting-system/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func main() {
	// Optional .env for local runs
	_ = godotenv.Load()

	logging.BootstrapLogger(os.Getenv("LOG_LEVEL"), os.Getenv("APP_ENV") != "local")

	// Load env
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logging.Log.Errorf("Failed to read config file: %v", err)
		panic("Failed to read config file: " + err.Error())
	}

	// Read config
	config := api.ReadConfig()

	// Start the service (inside the lambda)
	service := api.NewServer(config)
	service.Start()
}
