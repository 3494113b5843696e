package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/n0madic/go-chorus/internal/auth"
	"github.com/n0madic/go-chorus/internal/health"
	"github.com/n0madic/go-chorus/internal/render"
)

var errUnhealthy = errors.New("backend is not healthy")

func newHealthCommand(a *app) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check whether the backend is reachable and healthy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				return a.watchHealth(cmd.Context())
			}
			status, err := a.client.Health(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				if err := render.JSON(a.stdout, status); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(a.stdout, "%s: %s\n", a.client.BaseURL(), status.Status)
			}
			if !status.Healthy() {
				return errUnhealthy
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep polling and report every change")
	return cmd
}

// watchHealth prints connectivity changes until ctx ends.
func (a *app) watchHealth(ctx context.Context) error {
	poller := health.NewPoller(a.client, health.Options{
		Interval: a.cfg.HealthInterval,
		Timeout:  a.cfg.HealthTimeout,
		Logger:   a.logger,
		OnChange: func(connected bool) {
			state := "disconnected"
			if connected {
				state = "connected"
			}
			fmt.Fprintf(a.stdout, "%s %s %s\n", time.Now().Format(time.TimeOnly), a.client.BaseURL(), state)
		},
	})
	if !poller.Check(ctx) {
		fmt.Fprintf(a.stdout, "%s %s disconnected\n", time.Now().Format(time.TimeOnly), a.client.BaseURL())
	}
	poller.Start(ctx)
	<-ctx.Done()
	poller.Stop()
	return nil
}

func newInfoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the effective configuration and credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := a.stdout
			fmt.Fprintln(out, "Backend")
			fmt.Fprintf(out, "  • URL: %s\n", a.cfg.BaseURL)
			fmt.Fprintf(out, "  • Timeout: %s, upload stall timeout: %s\n", a.cfg.Timeout, a.cfg.UploadStallTimeout)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Credentials")
			switch {
			case a.cfg.AccessToken != "":
				fmt.Fprintln(out, "  • Static access token")
				claims, err := auth.ParseJWTClaims(a.cfg.AccessToken)
				if err != nil {
					fmt.Fprintln(out, "  • Token is opaque")
					break
				}
				if sub := claimString(claims, "email"); sub != "" {
					fmt.Fprintf(out, "  • Login: %s\n", sub)
				} else if sub := claimString(claims, "sub"); sub != "" {
					fmt.Fprintf(out, "  • Subject: %s\n", sub)
				}
				if exp, ok := auth.TokenExpiry(a.cfg.AccessToken); ok {
					if left := time.Until(exp); left > 0 {
						fmt.Fprintf(out, "  • Expires in: %s\n", left.Round(time.Second))
					} else {
						fmt.Fprintf(out, "  • Expired at: %s\n", exp.Local().Format("Jan 02, 2006 15:04 MST"))
					}
				}
			case !a.cfg.OAuth.Empty():
				fmt.Fprintln(out, "  • OAuth2 client credentials")
				fmt.Fprintf(out, "  • Client ID: %s\n", a.cfg.OAuth.ClientID)
				fmt.Fprintf(out, "  • Token URL: %s\n", a.cfg.OAuth.TokenURL)
			default:
				fmt.Fprintln(out, "  • None")
			}
			return nil
		},
	}
}

func claimString(claims map[string]any, key string) string {
	if claims == nil {
		return ""
	}
	v, _ := claims[key].(string)
	return v
}
