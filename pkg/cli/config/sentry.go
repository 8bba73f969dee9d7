package config

import (
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/trm-lab/argus/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Sentry holds CLI flags for error capture configuration
type Sentry struct {
	dsn string `masq:"secret"`
	env string
}

// Flags returns CLI flags for Sentry configuration
func (s *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN for error capture (empty disables capture)",
			Category:    "Error capture",
			Sources:     cli.EnvVars("ARGUS_SENTRY_DSN"),
			Destination: &s.dsn,
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment tag",
			Category:    "Error capture",
			Value:       "production",
			Sources:     cli.EnvVars("ARGUS_SENTRY_ENV"),
			Destination: &s.env,
		},
	}
}

// IsConfigured reports whether a DSN is set
func (s *Sentry) IsConfigured() bool {
	return s.dsn != ""
}

// Configure initializes the process-wide Sentry client. Without a DSN
// nothing is installed and errutil.Handle skips capture. The returned
// closer flushes buffered events and must run at shutdown.
func (s *Sentry) Configure() (func(), error) {
	if !s.IsConfigured() {
		logging.Default().Info("Sentry not configured, error capture disabled")
		return func() {}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         s.dsn,
		Environment: s.env,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to initialize Sentry")
	}

	logging.Default().Info("Sentry error capture enabled", "environment", s.env)
	return func() {
		sentry.Flush(2 * time.Second)
	}, nil
}

// LogValue implements slog.LogValuer, masking the DSN
func (s Sentry) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("configured", s.dsn != ""),
		slog.String("environment", s.env),
	)
}
