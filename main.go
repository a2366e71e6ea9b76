package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"dev-overflow/authentication"
	"dev-overflow/database"
	"dev-overflow/environment"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	router = gin.Default()
)

// called BEFORE program execution (main)
// the order of package inits is undefined though!
func init() {
	// load config
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}
}

func main() {
	// connect to main database (mongoDB)
	err := database.OpenConnection()
	if err != nil {
		log.Fatal(err)
	}
	defer database.CloseConnection()

	// connect to JWT store (redis)
	err = authentication.OpenConnection()
	if err != nil {
		log.Fatal(err)
	}
	defer authentication.CloseConnection()

	// connect to view-dedupe cache (redis)
	err = database.OpenRedisConnection()
	if err != nil {
		log.Fatal(err)
	}
	defer database.CloseRedisConnection()

	// connect to analytics store (influxDB)
	if os.Getenv("USE_ANALYTICS") == "YES" {
		err = database.OpenInfluxConnection()
		if err != nil {
			log.Fatal(err)
		}
		defer database.CloseInfluxConnection()
	}

	// initialize the models
	environment.InitializeModels()

	// periodic housekeeping: drop aged view-registry entries and stale
	// action guards; replicate aged analytics counts once per hour
	go func() {
		flushTicker := time.NewTicker(5 * time.Minute)
		replicateTicker := time.NewTicker(1 * time.Hour)
		for {
			select {
			case <-flushTicker.C:
				environment.Env.Requests.Flush()
				environment.Env.Guard.Flush()
			case <-replicateTicker.C:
				if os.Getenv("USE_ANALYTICS") == "YES" {
					environment.Env.Tracker.Replicate()
				}
			}
		}
	}()

	fmt.Println("Dev-Overflow running...")
	handleRequests()
}
