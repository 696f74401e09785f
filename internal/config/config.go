// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Configuration is the full process configuration.
type Configuration struct {
	Service       ServiceConfig
	API           APIConfig
	Interview     InterviewConfig
	STT           STTConfig
	TTS           TTSConfig
	Kafka         KafkaConfig
	Reports       ReportsConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Principal   string
	HTTPAddr    string
	MetricsAddr string
}

// APIConfig points at the remote interview service.
// A zero Timeout leaves the transport's own behaviour in place.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type InterviewConfig struct {
	DefaultRole        string
	DefaultTone        string
	MinTranscriptChars int
	AnnounceDelay      time.Duration
}

type STTConfig struct {
	Provider         string // mock, google, bridge, none
	LanguageCode     string
	SampleRateHz     int
	InterimResults   bool
	AudioFile        string
	SpeechEndTimeout time.Duration
}

type TTSConfig struct {
	Provider     string // log, bridge, none
	LanguageCode string
	Rate         float64
	Pitch        float64
}

type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	TopicSessions string
	TopicAnswers  string
	Principal     string
}

type ReportsConfig struct {
	Dir    string
	Format string // json, yaml
}

type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string
}

// Load reads the configuration. Unparseable values fall back to defaults.
func Load() *Configuration {
	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-interview-coach")

	return &Configuration{
		Service: ServiceConfig{
			Principal:   principal,
			HTTPAddr:    envOrDefault("HTTP_ADDR", ":8080"),
			MetricsAddr: envOrDefault("METRICS_ADDR", ":9090"),
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(envOrDefault("INTERVIEW_API_URL", "http://127.0.0.1:8000/api"), "/"),
			Timeout: envOrDefaultDuration("INTERVIEW_API_TIMEOUT", 0),
		},
		Interview: InterviewConfig{
			DefaultRole:        envOrDefault("INTERVIEW_DEFAULT_ROLE", "Software Engineer"),
			DefaultTone:        envOrDefault("INTERVIEW_DEFAULT_TONE", "professional"),
			MinTranscriptChars: envOrDefaultInt("INTERVIEW_MIN_TRANSCRIPT_CHARS", 5),
			AnnounceDelay:      envOrDefaultDuration("INTERVIEW_ANNOUNCE_DELAY", 500*time.Millisecond),
		},
		STT: STTConfig{
			Provider:         strings.ToLower(envOrDefault("STT_PROVIDER", "mock")),
			LanguageCode:     envOrDefault("STT_LANGUAGE_CODE", "en-US"),
			SampleRateHz:     envOrDefaultInt("STT_SAMPLE_RATE_HZ", 16000),
			InterimResults:   envOrDefaultBool("STT_INTERIM_RESULTS", true),
			AudioFile:        os.Getenv("STT_AUDIO_FILE"),
			SpeechEndTimeout: envOrDefaultDuration("STT_SPEECH_END_TIMEOUT", 3*time.Second),
		},
		TTS: TTSConfig{
			Provider:     strings.ToLower(envOrDefault("TTS_PROVIDER", "log")),
			LanguageCode: envOrDefault("TTS_LANGUAGE_CODE", "en-US"),
			Rate:         envOrDefaultFloat("TTS_RATE", 1),
			Pitch:        envOrDefaultFloat("TTS_PITCH", 1),
		},
		Kafka: KafkaConfig{
			Enabled:       envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:       envList("KAFKA_BROKERS"),
			TopicSessions: envOrDefault("KAFKA_TOPIC_SESSIONS", "interview.sessions"),
			TopicAnswers:  envOrDefault("KAFKA_TOPIC_ANSWERS", "interview.answers"),
			Principal:     envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		Reports: ReportsConfig{
			Dir:    envOrDefault("REPORTS_DIR", "results"),
			Format: strings.ToLower(envOrDefault("REPORTS_FORMAT", "json")),
		},
		Observability: ObservabilityConfig{
			LogLevel:  envOrDefault("LOG_LEVEL", "info"),
			LogFormat: envOrDefault("LOG_FORMAT", "json"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// envList splits a comma separated variable, dropping empty entries.
func envList(key string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
