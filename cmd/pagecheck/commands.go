package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"browser-pages/internal/di"
	"browser-pages/internal/domain/entity"
	"browser-pages/internal/infrastructure/env"
	"browser-pages/internal/infrastructure/fixturesite"
	"browser-pages/internal/page"

	"github.com/spf13/cobra"
)

var errNoFlash = errors.New("no flash message shown after login")

func newRootCmd() *cobra.Command {
	return newRootCmdWith(di.NewDriver)
}

// newRootCmdWith builds the command tree with browser commands opening
// sessions through newDriver.
func newRootCmdWith(newDriver di.DriverFactory) *cobra.Command {
	var timeout time.Duration

	root := &cobra.Command{
		Use:           "pagecheck",
		Short:         "Drive page objects against a browser session",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().DurationVar(&timeout, "deadline", 2*time.Minute, "overall deadline for browser commands")

	root.AddCommand(
		newServeCmd(),
		newLoginCmd(&timeout, newDriver),
		newVisibleCmd(&timeout, newDriver),
	)
	return root
}

func newServeCmd() *cobra.Command {
	var (
		addr     string
		jsonLogs bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the fixture login site",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:              addr,
				Handler:           fixturesite.NewRouter(fixturesite.Config{JSONLogs: jsonLogs}),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "fixture site listening on %s\n", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&jsonLogs, "json", false, "log requests as JSON")
	return cmd
}

func newLoginCmd(timeout *time.Duration, newDriver di.DriverFactory) *cobra.Command {
	var username, password, baseURL string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in through the login page object and report the flash message",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd, *timeout, "login", newDriver, func(ctx context.Context, c *di.Container) error {
				if baseURL == "" {
					baseURL = c.Config.BaseURL
				}
				login, err := page.NewLogin(ctx, c.Driver, baseURL, page.WithLogger(c.Logger))
				if err != nil {
					return err
				}
				if err := login.With(ctx, username, password); err != nil {
					return err
				}

				ok, err := login.SuccessMessagePresent(ctx)
				if err != nil {
					return err
				}
				if ok {
					fmt.Fprintln(cmd.OutOrStdout(), "success")
					return nil
				}

				failed, err := login.FailureMessagePresent(ctx)
				if err != nil {
					return err
				}
				if failed {
					fmt.Fprintln(cmd.OutOrStdout(), "failure")
					return nil
				}
				return errNoFlash
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", fixturesite.Username, "login username")
	cmd.Flags().StringVar(&password, "password", fixturesite.Password, "login password")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "site root (defaults to BASE_URL)")
	return cmd
}

func newVisibleCmd(timeout *time.Duration, newDriver di.DriverFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "visible <url> <locator>",
		Short: "Report whether a locator is displayed on a page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			locator, err := entity.ParseLocator(args[1])
			if err != nil {
				return err
			}
			return withContainer(cmd, *timeout, "visible", newDriver, func(ctx context.Context, c *di.Container) error {
				p := page.New(c.Driver, page.WithLogger(c.Logger))
				if err := p.Visit(ctx, args[0]); err != nil {
					return err
				}
				shown, err := p.IsPresent(ctx, locator)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), shown)
				return nil
			})
		},
	}
}

func withContainer(cmd *cobra.Command, timeout time.Duration, name string, newDriver di.DriverFactory, run func(context.Context, *di.Container) error) error {
	cfg := di.LoadConfig(env.NewEnvService())
	cfg.LogName = name

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	c, err := di.NewContainerWith(ctx, cfg, newDriver)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := run(ctx, c); err != nil {
		c.Logger.Error("command failed", "command", name, "error", err)
		return err
	}
	return nil
}
