package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	JWTSecret    string

	// Settlement behaviour
	SettlementCutoffWeekday time.Weekday
	DisputeWindow           time.Duration
	DedupWindow             time.Duration
	LockTimeout             time.Duration
	SchedulerInterval       time.Duration

	// Kafka event feeds
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaDeliveryTopic string
	KafkaWeightTopic   string
	KafkaGroupID       string

	// Rate limiting, e.g. "100-M" for 100 requests per minute
	RateLimit string
}

var weekdays = map[string]time.Weekday{
	"SUNDAY":    time.Sunday,
	"MONDAY":    time.Monday,
	"TUESDAY":   time.Tuesday,
	"WEDNESDAY": time.Wednesday,
	"THURSDAY":  time.Thursday,
	"FRIDAY":    time.Friday,
	"SATURDAY":  time.Saturday,
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("SETTLEMENT_CUTOFF_WEEKDAY", "FRIDAY")
	viper.SetDefault("DISPUTE_WINDOW", "168h")
	viper.SetDefault("DEDUP_WINDOW", "60s")
	viper.SetDefault("LOCK_TIMEOUT", "3s")
	viper.SetDefault("SCHEDULER_INTERVAL", "1h")
	viper.SetDefault("KAFKA_ENABLED", false)
	viper.SetDefault("KAFKA_BROKERS", "localhost:9092")
	viper.SetDefault("KAFKA_DELIVERY_TOPIC", "shipment-delivery-events")
	viper.SetDefault("KAFKA_WEIGHT_TOPIC", "carrier-weight-reconciliation")
	viper.SetDefault("KAFKA_GROUP_ID", "settlement-core")
	viper.SetDefault("RATE_LIMIT", "300-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" && cfg.IsProduction {
		log.Println("Warning: JWT_SECRET is the insecure default in production mode.")
	}

	cutoffStr := strings.ToUpper(viper.GetString("SETTLEMENT_CUTOFF_WEEKDAY"))
	cutoff, ok := weekdays[cutoffStr]
	if !ok {
		cutoff = time.Friday
		log.Printf("Warning: Invalid value for SETTLEMENT_CUTOFF_WEEKDAY ('%s'). Defaulting to FRIDAY.\n", cutoffStr)
	}
	cfg.SettlementCutoffWeekday = cutoff

	cfg.DisputeWindow = parseDurationOr("DISPUTE_WINDOW", 168*time.Hour)
	cfg.DedupWindow = parseDurationOr("DEDUP_WINDOW", 60*time.Second)
	cfg.LockTimeout = parseDurationOr("LOCK_TIMEOUT", 3*time.Second)
	cfg.SchedulerInterval = parseDurationOr("SCHEDULER_INTERVAL", time.Hour)

	cfg.KafkaEnabled = viper.GetBool("KAFKA_ENABLED")
	cfg.KafkaBrokers = strings.Split(viper.GetString("KAFKA_BROKERS"), ",")
	cfg.KafkaDeliveryTopic = viper.GetString("KAFKA_DELIVERY_TOPIC")
	cfg.KafkaWeightTopic = viper.GetString("KAFKA_WEIGHT_TOPIC")
	cfg.KafkaGroupID = viper.GetString("KAFKA_GROUP_ID")

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}
