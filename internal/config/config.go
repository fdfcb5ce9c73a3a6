package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Dispatch modes for the relay.
const (
	DispatchSerial     = "serial"
	DispatchConcurrent = "concurrent"
)

type Config struct {
	Port                  int
	ModelPath             string
	ConfigPath            string
	ConfidenceThreshold   float64
	MockProbability       float64
	DetectTimeout         time.Duration
	DispatchMode          string // serial (one detection in flight per session) or concurrent
	StaticDirectory       string
	LogDirectory          string
	SightingsDatabase     string // empty disables the sightings archive
	SightingBufferLimit   int
	SightingFlushInterval time.Duration
	SightingWindow        time.Duration
	HubClientBuffer       int
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over .env entries.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:                  getEnvAsInt("PORT", 3000),
		ModelPath:             getEnv("MODEL_PATH", filepath.Join(".", "models", "frozen_inference_graph.pb")),
		ConfigPath:            getEnv("CONFIG_PATH", filepath.Join(".", "models", "ssd_mobilenet_v1_coco_2017_11_17.pbtxt")),
		ConfidenceThreshold:   getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.5),
		MockProbability:       getEnvAsFloat("MOCK_PROBABILITY", 0.3),
		DetectTimeout:         getEnvAsMillis("DETECT_TIMEOUT_MS", 5000),
		DispatchMode:          getDispatchMode("DISPATCH_MODE", DispatchSerial),
		StaticDirectory:       getEnv("STATIC_DIR", "static"),
		LogDirectory:          getEnv("LOG_DIR", filepath.Join(".", "logs")),
		SightingsDatabase:     getEnv("SIGHTINGS_DB", ""),
		SightingBufferLimit:   getEnvAsInt("SIGHTING_BUFFER_LIMIT", 200),
		SightingFlushInterval: time.Duration(getEnvAsInt("SIGHTING_FLUSH_INTERVAL", 30)) * time.Second,
		SightingWindow:        getEnvAsMillis("SIGHTING_WINDOW_MS", 2000),
		HubClientBuffer:       getEnvAsInt("HUB_CLIENT_BUFFER", 64),
	}
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsMillis(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultValue)) * time.Millisecond
}

func getDispatchMode(key, defaultValue string) string {
	switch mode := getEnv(key, defaultValue); mode {
	case DispatchSerial, DispatchConcurrent:
		return mode
	default:
		return defaultValue
	}
}
