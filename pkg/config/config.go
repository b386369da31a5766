package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// AWS holds the settings shared by every binary that talks to SQS.
type AWS struct {
	Region string
	// EndpointURL overrides the service endpoint, e.g. a LocalStack address.
	EndpointURL string `validate:"omitempty,url"`
}

// WorkerConfig configures the notification worker.
type WorkerConfig struct {
	AppEnv   string
	LogLevel string `validate:"omitempty,oneof=debug info warn error"`
	AWS      AWS

	QueueURL            string        `validate:"required,url"`
	WaitSeconds         int           `validate:"gte=1,lte=20"`
	MaxMessages         int           `validate:"gte=1,lte=10"`
	DispatchTimeout     time.Duration `validate:"gte=0"`
	ReceiveErrorBackoff time.Duration `validate:"gte=0"`

	BreakerMaxFailures int `validate:"gte=1"`
	BreakerOpenTimeout time.Duration

	OpsPort         string `validate:"required,numeric"`
	TracingEndpoint string
	ServiceName     string `validate:"required"`
}

// APIConfig configures the complaint ingestion API.
type APIConfig struct {
	AppEnv   string
	LogLevel string `validate:"omitempty,oneof=debug info warn error"`
	AWS      AWS

	QueueURL        string  `validate:"required,url"`
	AppPort         string  `validate:"required,numeric"`
	RateLimit       float64 `validate:"gt=0"`
	TracingEndpoint string
	ServiceName     string `validate:"required"`
}

func LoadWorker() *WorkerConfig {
	return &WorkerConfig{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		AWS:      loadAWS(),

		QueueURL:            getEnv("SQS_QUEUE_URL", ""),
		WaitSeconds:         getEnvInt("SQS_WAIT_SECONDS", 20),
		MaxMessages:         getEnvInt("SQS_MAX_MESSAGES", 1),
		DispatchTimeout:     getEnvDuration("DISPATCH_TIMEOUT", 30*time.Second),
		ReceiveErrorBackoff: getEnvDuration("RECEIVE_ERROR_BACKOFF", 2*time.Second),

		BreakerMaxFailures: getEnvInt("BREAKER_MAX_FAILURES", 5),
		BreakerOpenTimeout: getEnvDuration("BREAKER_OPEN_TIMEOUT", 30*time.Second),

		OpsPort:         getEnv("OPS_PORT", "9090"),
		TracingEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:     getEnv("SERVICE_NAME", "notification-worker"),
	}
}

func LoadAPI() *APIConfig {
	return &APIConfig{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		AWS:      loadAWS(),

		QueueURL:        getEnv("COMPLAINT_QUEUE_URL", ""),
		AppPort:         getEnv("APP_PORT", "8080"),
		RateLimit:       getEnvFloat("RATE_LIMIT", 200),
		TracingEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:     getEnv("SERVICE_NAME", "complaint-api"),
	}
}

// Validate reports every invalid field at once.
func (c *WorkerConfig) Validate() error { return validate(c) }

// Validate reports every invalid field at once.
func (c *APIConfig) Validate() error { return validate(c) }

func validate(cfg any) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, ", "))
}

func loadAWS() AWS {
	return AWS{
		Region:      getEnv("AWS_REGION", "us-east-1"),
		EndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
