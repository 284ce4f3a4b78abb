package internal

import (
	"fmt"
	"time"
)

// Config is the server configuration, read from the environment.
type Config struct {
	Host              string        `env:"HOST,default=0.0.0.0"`
	Port              int           `env:"PORT,default=50051"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	AuthSecret        string        `env:"AUTH_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`

	EventBufferSize        int           `env:"EVENT_BUFFER_SIZE,default=1024"`
	SubscriptionBufferSize int           `env:"SUBSCRIPTION_BUFFER_SIZE,default=64"`
	SinkTimeout            time.Duration `env:"SINK_TIMEOUT,default=200ms"`
	RestartInterval        time.Duration `env:"RESTART_INTERVAL,default=1s"`
	MonitorInterval        time.Duration `env:"MONITOR_INTERVAL,default=10s"`
	PressureThreshold      int           `env:"PRESSURE_THRESHOLD_PERCENT,default=80"`
	ShutdownTimeout        time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`

	DefaultPageSize    int           `env:"DEFAULT_PAGE_SIZE,default=20"`
	MaxPageSize        int           `env:"MAX_PAGE_SIZE,default=100"`
	RetryDelay         time.Duration `env:"RETRY_DELAY,default=50ms"`
	SummaryConcurrency int           `env:"SUMMARY_CONCURRENCY,default=8"`
	ParticipantCache   int64         `env:"PARTICIPANT_CACHE_SIZE,default=10000"`

	// Moderation is disabled when CensoredDir is empty.
	CensoredDir     string `env:"CENSORED_DIR"`
	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
