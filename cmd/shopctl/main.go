package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pcforge/storefront/internal/storefront"
	"github.com/pcforge/storefront/pkg/auth/session"
	"github.com/pcforge/storefront/pkg/config"
	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/shopapi"
)

const cliSessionID = "shopctl"

var (
	verbose bool
	asJSON  bool

	sess *storefront.Session
	logg *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:           "shopctl",
	Short:         "Browse the PC shop and manage your cart from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		_ = godotenv.Load()
		cfg, err := config.LoadCLI()
		if err != nil {
			return err
		}
		level := logger.ParseLevel("warn")
		if verbose {
			level = logger.ParseLevel("debug")
		}
		logg = logger.New(logger.Options{
			ServiceName: "shopctl",
			Level:       level,
			Format:      "console",
			Output:      cmd.ErrOrStderr(),
		})

		client, err := shopapi.NewClient(cfg.Upstream.BaseURL,
			shopapi.WithHTTPClient(&http.Client{Timeout: cfg.Upstream.Timeout}),
			shopapi.WithLogger(logg),
		)
		if err != nil {
			return err
		}
		sess, err = storefront.NewSession(storefront.SessionParams{
			ID:          cliSessionID,
			Client:      client,
			Persistence: session.NewFileStore(cfg.CLI.SessionFile),
			AssetHost:   cfg.Upstream.AssetHost,
			Logger:      logg,
		})
		if err != nil {
			return err
		}
		return sess.Restore(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print JSON instead of tables")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, catalogCmd, cartCmd, wishlistCmd, compareCmd, buildCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", userMessage(err))
		os.Exit(1)
	}
}

// userMessage prefers the message a shopper should see over the wrapped
// chain.
func userMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil && typed.Message() != "" {
		return typed.Message()
	}
	return err.Error()
}
