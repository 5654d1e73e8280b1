package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"replydesk/domain"
	"replydesk/errors"
)

var validate = validator.New()

// Config is the agent's environment contract, loaded with go-env at
// startup. Storage paths are the only hard requirements; a missing
// source credential just means that source starts on its simulator.
type Config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true" validate:"required"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true" validate:"required"`
	LogLevel       string `env:"LOG_LEVEL,default=info"`

	PollInterval     time.Duration `env:"POLL_INTERVAL,default=30s"`
	BackoffInterval  time.Duration `env:"BACKOFF_INTERVAL,default=60s"`
	ConnectTimeout   time.Duration `env:"CONNECT_TIMEOUT,default=15s"`
	RestartInterval  time.Duration `env:"RESTART_INTERVAL,default=5s"`
	MetricInterval   time.Duration `env:"METRIC_INTERVAL,default=30s"`
	NotifyTimeout    time.Duration `env:"NOTIFY_TIMEOUT,default=10s"`
	LatencyThreshold time.Duration `env:"LATENCY_THRESHOLD,default=2m"`
	BufferSize       int           `env:"BUFFER_SIZE,default=256" validate:"gt=0"`
	LimitMessages    *int          `env:"LIMIT_MESSAGES"`
	SearchPageSize   int           `env:"SEARCH_PAGE_SIZE,default=10" validate:"gt=0"`

	// EnabledSources restricts the connector fleet, comma separated.
	// Empty enables every known source.
	EnabledSources string `env:"ENABLED_SOURCES"`

	TelegramToken  string `env:"TELEGRAM_BOT_TOKEN"`
	GmailToken     string `env:"GMAIL_ACCESS_TOKEN"`
	LinkedinToken  string `env:"LINKEDIN_ACCESS_TOKEN"`
	FacebookToken  string `env:"FACEBOOK_PAGE_TOKEN"`
	InstagramToken string `env:"INSTAGRAM_ACCESS_TOKEN"`
	SlackToken     string `env:"SLACK_BOT_TOKEN"`
	SlackChannel   string `env:"SLACK_CHANNEL_ID"`
	SimulatorSeed  int64  `env:"SIMULATOR_SEED"`

	// RPMOverride replaces every per-source request budget when positive.
	RPMOverride int `env:"RATE_LIMIT_RPM" validate:"gte=0"`

	OpenAIKey      string `env:"OPENAI_API_KEY"`
	OpenAIModel    string `env:"OPENAI_MODEL,default=gpt-4o-mini"`
	DraftMaxTokens int    `env:"DRAFT_MAX_TOKENS,default=300" validate:"gt=0"`

	Operator          string        `env:"OPERATOR_NAME,default=operator"`
	OperatorHash      string        `env:"OPERATOR_PASSWORD_HASH"`
	AuthSecret        string        `env:"AUTH_SECRET"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=12h"`

	// NotifySource routes operator notifications through a connector
	// on top of the console. Empty keeps console notifications only.
	NotifySource    string `env:"NOTIFY_SOURCE"`
	NotifyRecipient string `env:"NOTIFY_RECIPIENT"`

	// DebugPort serves /debug/stats and /debug/queue. Zero disables it.
	DebugPort int `env:"DEBUG_PORT"`
}

// Validate applies the struct rules plus the cross-field constraints
// go-env cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.PollInterval < time.Second {
		return fmt.Errorf("POLL_INTERVAL must be at least 1s, got %s", c.PollInterval)
	}
	if c.OperatorHash != "" && c.AuthSecret == "" {
		return fmt.Errorf("OPERATOR_PASSWORD_HASH is set but AUTH_SECRET is empty")
	}
	if c.NotifySource != "" {
		if c.NotifyRecipient == "" {
			return fmt.Errorf("NOTIFY_SOURCE is set but NOTIFY_RECIPIENT is empty")
		}
		if !lo.Contains(domain.KnownSources(), domain.Source(c.NotifySource)) {
			return fmt.Errorf("%w: %q", errors.ErrUnknownSource, c.NotifySource)
		}
	}
	if _, err := c.Sources(); err != nil {
		return err
	}
	return nil
}

// Sources parses ENABLED_SOURCES into the restricted fleet.
// Nil means no restriction.
func (c *Config) Sources() ([]domain.Source, error) {
	if strings.TrimSpace(c.EnabledSources) == "" {
		return nil, nil
	}

	known := domain.KnownSources()
	var res []domain.Source
	for _, part := range strings.Split(c.EnabledSources, ",") {
		name := domain.Source(strings.ToLower(strings.TrimSpace(part)))
		if name == "" {
			continue
		}
		if !lo.Contains(known, name) {
			return nil, fmt.Errorf("%w: %q", errors.ErrUnknownSource, name)
		}
		res = append(res, name)
	}
	return res, nil
}
