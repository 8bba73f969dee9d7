package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/trm-lab/argus/pkg/service/notify"
	"github.com/trm-lab/argus/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Slack holds CLI flags for Slack notification configuration
type Slack struct {
	botToken string `masq:"secret"`
	channel  string
}

// Flags returns CLI flags for Slack configuration
func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot OAuth token for approval and breach notifications",
			Category:    "Notification",
			Sources:     cli.EnvVars("ARGUS_SLACK_BOT_TOKEN"),
			Destination: &s.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel for notifications (e.g. #vendor-risk)",
			Category:    "Notification",
			Sources:     cli.EnvVars("ARGUS_SLACK_CHANNEL"),
			Destination: &s.channel,
		},
	}
}

// IsConfigured reports whether a bot token is set
func (s *Slack) IsConfigured() bool {
	return s.botToken != ""
}

// Configure builds the notifier. Without a token the no-op notifier is
// returned and notifications are silently dropped.
func (s *Slack) Configure() (notify.Notifier, error) {
	if !s.IsConfigured() {
		logging.Default().Info("Slack not configured, notifications disabled")
		return notify.NewNoop(), nil
	}

	notifier, err := notify.NewSlack(s.botToken, s.channel)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize Slack notifier")
	}
	logging.Default().Info("Slack notifications enabled", "channel", s.channel)
	return notifier, nil
}

// LogValue implements slog.LogValuer, masking the token
func (s Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("configured", s.botToken != ""),
		slog.String("channel", s.channel),
	)
}
