package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"redirector/internal/client"
	"redirector/internal/deeplink"

	"github.com/spf13/cobra"
)

// Representative User-Agents per simulated platform.
var platformUA = map[string]string{
	"desktop": "Mozilla/5.0 (X11; Linux x86_64) redirectctl",
	"ios":     "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) redirectctl",
	"android": "Mozilla/5.0 (Linux; Android 14) redirectctl",
}

type resolveFlags struct {
	server        string
	token         string
	issue         bool
	platform      string
	userAgent     string
	stateFile     string
	appInstalled  bool
	download      bool
	returnAfter   bool
	detectTimeout time.Duration
}

func newResolveCmd(opts *rootOptions) *cobra.Command {
	var f resolveFlags
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Run the deep-link resolver against a server",
		Long: `Plays the resolution view in the terminal: redeems a token, then hands the
destination to a simulated browser that prints what it would do.

Pending handoffs are kept in --state-file, so a second run replays them the way
a browser reload would.

Example:
  redirectctl resolve --server=http://localhost:8080 --issue --platform=ios --app-installed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ua := f.userAgent
			if ua == "" {
				var ok bool
				if ua, ok = platformUA[f.platform]; !ok {
					return fmt.Errorf("unknown platform %q (desktop, ios, android)", f.platform)
				}
			}

			api := client.New(f.server)
			tok := f.token
			if f.issue {
				var err error
				if tok, err = api.IssueToken(cmd.Context(), nil); err != nil {
					return fmt.Errorf("issue token: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "token %s\n", tok)
			}

			browser := &consoleBrowser{out: cmd.OutOrStdout()}
			r := deeplink.NewResolver(ua, browser, deeplink.NewFileHandoffStore(f.stateFile), api,
				deeplink.WithDetectTimeout(f.detectTimeout),
				deeplink.WithLogger(opts.sugar))
			if f.appInstalled {
				browser.onNative = r.NotifyBlur
			}

			if err := r.Run(cmd.Context(), tok); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "state %s\n", r.State())

			if r.State() != deeplink.ShowDownloadFallback {
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fallback: download LINE at %s\n", r.StoreURL())
			if f.download {
				if err := r.Download(); err != nil {
					return err
				}
			}
			if f.returnAfter {
				if err := r.OnVisible(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "state %s\n", r.State())
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.server, "server", "s", "http://localhost:8080", "redirector base URL")
	fl.StringVarP(&f.token, "token", "t", "", "handoff token to redeem")
	fl.BoolVar(&f.issue, "issue", false, "issue a fresh token first")
	fl.StringVarP(&f.platform, "platform", "p", "desktop", "simulated platform: desktop, ios or android")
	fl.StringVar(&f.userAgent, "user-agent", "", "explicit User-Agent (overrides --platform)")
	fl.StringVar(&f.stateFile, "state-file", "redirectctl-state.json", "file keeping the pending handoff")
	fl.BoolVar(&f.appInstalled, "app-installed", false, "simulate the app taking focus on native open")
	fl.BoolVar(&f.download, "download", false, "press the download button when the fallback shows")
	fl.BoolVar(&f.returnAfter, "return", false, "simulate returning to the page after the fallback")
	fl.DurationVar(&f.detectTimeout, "detect-timeout", deeplink.DefaultDetectTimeout, "native-open detection window")
	return cmd
}

// consoleBrowser prints the navigation a real browser would perform.
type consoleBrowser struct {
	mu       sync.Mutex
	out      io.Writer
	onNative func()
}

func (b *consoleBrowser) Navigate(url string) error {
	return b.printf("navigate %s\n", url)
}

func (b *consoleBrowser) OpenNewContext(url string) error {
	return b.printf("open %s\n", url)
}

func (b *consoleBrowser) OpenNative(url string) error {
	if err := b.printf("native %s\n", url); err != nil {
		return err
	}
	if b.onNative != nil {
		b.onNative()
	}
	return nil
}

func (b *consoleBrowser) printf(format string, args ...any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := fmt.Fprintf(b.out, format, args...)
	return err
}
