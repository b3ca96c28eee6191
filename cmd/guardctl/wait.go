package main

import (
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/HandSonic/LLM-Security-Gateway/client"
)

func newWaitCmd(a *app) *cobra.Command {
	var maxWait time.Duration

	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Block until the gateway answers, retrying with exponential backoff",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 100 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			b.MaxElapsedTime = maxWait

			start := time.Now()
			attempts := 0
			op := func() error {
				attempts++
				_, err := c.GetStats(ctx)
				switch {
				case err == nil:
					return nil
				case errors.Is(err, client.ErrInvalidRequest), client.IsCanceled(err):
					return backoff.Permanent(err)
				default:
					return err
				}
			}
			notify := func(err error, next time.Duration) {
				log.Debug().Err(err).Dur("retry_in", next).Msg("gateway not ready")
			}
			if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
				return err
			}
			log.Debug().Int("attempts", attempts).Dur("elapsed", time.Since(start)).Msg("gateway ready")
			a.printer.Success("gateway ready at %s", c.URL("/"))
			return nil
		},
	}
	cmd.Flags().DurationVar(&maxWait, "max-wait", time.Minute, "Give up after this long")
	return cmd
}
