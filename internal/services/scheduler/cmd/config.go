package main

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/LeonardoBeccarini/irrigation-scheduler/internal/allocation"
	"github.com/LeonardoBeccarini/irrigation-scheduler/internal/services/scheduler"
	"github.com/LeonardoBeccarini/irrigation-scheduler/pkg/rabbitmq"
)

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// Config is read from the environment first; flags override it.
type Config struct {
	LogLevel  string
	LogFormat string // text | json

	MaxFields    int
	MaxWater     int
	MaxWork      int
	OptimalSlots int // concurrent optimal runs per process

	HTTPPort         int
	GRPCPort         int
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration

	// MQTT is disabled when Rabbit.Host is empty.
	Rabbit       rabbitmq.RabbitMQConfig
	RequestTopic string
	DedupTTL     time.Duration
	DedupMax     int

	// Audit is disabled when InfluxURL is empty.
	InfluxURL       string
	InfluxToken     string
	InfluxOrg       string
	InfluxBucket    string
	AuditTimeout    time.Duration
	BreakerFailures int
	BreakerOpenFor  time.Duration
	ReadinessGrace  time.Duration
}

func loadConfig() Config {
	return Config{
		LogLevel:  envStr("LOG_LEVEL", "info"),
		LogFormat: envStr("LOG_FORMAT", "text"),

		MaxFields:    envInt("MAX_FIELDS", allocation.DefaultMaxFields),
		MaxWater:     envInt("MAX_WATER", allocation.DefaultMaxWater),
		MaxWork:      envInt("MAX_OPTIMAL_WORK", allocation.DefaultMaxWork),
		OptimalSlots: envInt("OPTIMAL_CONCURRENCY", runtime.NumCPU()),

		HTTPPort:         envInt("HTTP_PORT", 5000),
		GRPCPort:         envInt("GRPC_PORT", 50051),
		HTTPReadTimeout:  envDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		HTTPWriteTimeout: envDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),

		Rabbit: rabbitmq.RabbitMQConfig{
			Host:           envStr("RABBITMQ_HOST", ""),
			Port:           envInt("RABBITMQ_PORT", 1883),
			User:           envStr("RABBITMQ_USER", "guest"),
			Password:       envStr("RABBITMQ_PASSWORD", "guest"),
			ClientID:       envStr("HOSTNAME", "irrigation-scheduler"),
			MaxRetries:     envInt("RABBITMQ_MAX_RETRIES", 10),
			MaxElapsedTime: envDuration("RABBITMQ_MAX_ELAPSED", 2*time.Minute),
		},
		RequestTopic: envStr("SCHEDULE_REQUEST_TOPIC", scheduler.RequestSubscription),
		DedupTTL:     envDuration("DEDUP_TTL", 10*time.Minute),
		DedupMax:     envInt("DEDUP_MAX", 10000),

		InfluxURL:       envStr("INFLUX_URL", ""),
		InfluxToken:     os.Getenv("INFLUX_TOKEN"),
		InfluxOrg:       envStr("INFLUX_ORG", "sdcc"),
		InfluxBucket:    envStr("INFLUX_BUCKET", "scheduler"),
		AuditTimeout:    envDuration("AUDIT_TIMEOUT", 2*time.Second),
		BreakerFailures: envInt("AUDIT_BREAKER_FAILURES", 3),
		BreakerOpenFor:  envDuration("AUDIT_BREAKER_OPEN", 30*time.Second),
		ReadinessGrace:  envDuration("READINESS_GRACE", 30*time.Second),
	}
}

func (c *Config) limits() allocation.Limits {
	return allocation.Limits{MaxFields: c.MaxFields, MaxWater: c.MaxWater, MaxWork: c.MaxWork}
}

// addCommonFlags binds the settings every subcommand uses.
func (c *Config) addCommonFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "logrus level (debug, info, warn, error)")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log output format: text or json")
	fs.IntVar(&c.MaxFields, "max-fields", c.MaxFields, "largest field set a run accepts")
	fs.IntVar(&c.MaxWater, "max-water", c.MaxWater, "largest water budget the optimal strategy accepts")
	fs.IntVar(&c.MaxWork, "max-optimal-work", c.MaxWork, "largest search an optimal run may perform, in table steps")
	fs.StringVar(&c.InfluxURL, "influx-url", c.InfluxURL, "InfluxDB URL for run audit points; empty disables auditing")
	fs.StringVar(&c.InfluxOrg, "influx-org", c.InfluxOrg, "InfluxDB organisation")
	fs.StringVar(&c.InfluxBucket, "influx-bucket", c.InfluxBucket, "InfluxDB bucket")
	fs.DurationVar(&c.AuditTimeout, "audit-timeout", c.AuditTimeout, "timeout of one audit write")
}

func (c *Config) addServeFlags(fs *pflag.FlagSet) {
	fs.IntVar(&c.HTTPPort, "http-port", c.HTTPPort, "HTTP listen port")
	fs.IntVar(&c.GRPCPort, "grpc-port", c.GRPCPort, "gRPC listen port")
	fs.IntVar(&c.OptimalSlots, "optimal-concurrency", c.OptimalSlots, "optimal runs allowed at once; 0 means unbounded")
	fs.DurationVar(&c.HTTPReadTimeout, "http-read-timeout", c.HTTPReadTimeout, "HTTP request read timeout")
	fs.DurationVar(&c.HTTPWriteTimeout, "http-write-timeout", c.HTTPWriteTimeout, "HTTP response write timeout")
	fs.StringVar(&c.Rabbit.Host, "mqtt-host", c.Rabbit.Host, "MQTT broker host; empty disables the MQTT surface")
	fs.IntVar(&c.Rabbit.Port, "mqtt-port", c.Rabbit.Port, "MQTT broker port")
	fs.StringVar(&c.RequestTopic, "request-topic", c.RequestTopic, "topic filter for schedule requests")
	fs.DurationVar(&c.DedupTTL, "dedup-ttl", c.DedupTTL, "how long a request payload is remembered for redelivery detection")
	fs.IntVar(&c.BreakerFailures, "audit-breaker-failures", c.BreakerFailures, "consecutive audit failures before the breaker opens")
	fs.DurationVar(&c.BreakerOpenFor, "audit-breaker-open", c.BreakerOpenFor, "time the audit breaker stays open")
	fs.DurationVar(&c.ReadinessGrace, "readiness-grace", c.ReadinessGrace, "minimum age of the last audit error for readiness")
}
