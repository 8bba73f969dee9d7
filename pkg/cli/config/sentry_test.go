package config_test

import (
	"context"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/gt"
	"github.com/trm-lab/argus/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

func TestSentryConfigure(t *testing.T) {
	t.Run("without DSN capture stays disabled", func(t *testing.T) {
		var cfg config.Sentry
		cmd := &cli.Command{
			Flags: cfg.Flags(),
			Action: func(ctx context.Context, c *cli.Command) error {
				flush, err := cfg.Configure()
				gt.NoError(t, err).Required()
				gt.Bool(t, cfg.IsConfigured()).False()
				gt.Bool(t, sentry.CurrentHub().Client() != nil).False()
				flush()
				return nil
			},
		}
		gt.NoError(t, cmd.Run(context.Background(), []string{"argus"}))
	})

	t.Run("DSN installs a client and returns a flusher", func(t *testing.T) {
		var cfg config.Sentry
		cmd := &cli.Command{
			Flags: cfg.Flags(),
			Action: func(ctx context.Context, c *cli.Command) error {
				flush, err := cfg.Configure()
				gt.NoError(t, err).Required()
				gt.Bool(t, cfg.IsConfigured()).True()
				gt.Bool(t, sentry.CurrentHub().Client() != nil).True()
				flush()
				return nil
			},
		}
		gt.NoError(t, cmd.Run(context.Background(),
			[]string{"argus", "--sentry-dsn", "https://public@sentry.example.com/1"}))
	})

	t.Run("malformed DSN fails", func(t *testing.T) {
		var cfg config.Sentry
		cmd := &cli.Command{
			Flags: cfg.Flags(),
			Action: func(ctx context.Context, c *cli.Command) error {
				_, err := cfg.Configure()
				gt.Error(t, err)
				return nil
			},
		}
		gt.NoError(t, cmd.Run(context.Background(),
			[]string{"argus", "--sentry-dsn", "not-a-dsn"}))
	})
}
