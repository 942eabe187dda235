// Package cli implements redirectctl, the operator command line of the redirector.
package cli

import (
	"context"
	"fmt"
	"io"

	"redirector/internal/app"
	"redirector/internal/config"
	"redirector/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// StoreOpener opens the destination table described by c.
type StoreOpener func(ctx context.Context, c *config.Config, sugar *zap.SugaredLogger) (app.Store, error)

type rootOptions struct {
	dsn        string
	configPath string
	envFile    string
	verbose    bool

	cfg   *config.Config
	sugar *zap.SugaredLogger
	open  StoreOpener
}

// NewRootCmd builds the redirectctl command tree writing to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	return newRootCmd(out, app.SelectStorage)
}

func newRootCmd(out io.Writer, open StoreOpener) *cobra.Command {
	opts := &rootOptions{open: open}

	root := &cobra.Command{
		Use:           "redirectctl",
		Short:         "Operate the LINE redirector",
		Long:          "redirectctl migrates and seeds the destination table and drives the deep-link resolver against a running server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return opts.load()
		},
	}
	root.SetOut(out)
	root.SetErr(out)

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.dsn, "dsn", "d", "", "database DSN (overrides DATABASE_DSN)")
	pf.StringVarP(&opts.configPath, "config", "c", "", "path to config file (json)")
	pf.StringVar(&opts.envFile, "env-file", ".env", "dotenv file")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(newMigrateCmd(opts), newTargetsCmd(opts), newResolveCmd(opts))
	return root
}

// load resolves the shared config the same way the server does.
func (o *rootOptions) load() error {
	args := []string{"-e", o.envFile}
	if o.configPath != "" {
		args = append(args, "-c", o.configPath)
	}
	if o.dsn != "" {
		args = append(args, "-d", o.dsn)
	}

	c := config.NewConfig()
	if err := config.Parse(c, args); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	o.cfg = c

	if !o.verbose {
		o.sugar = zap.NewNop().Sugar()
		return nil
	}
	sugar, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	o.sugar = sugar
	return nil
}
