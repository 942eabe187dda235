package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"redirector/internal/domain/models"
	"redirector/internal/storage"

	"github.com/spf13/cobra"
)

func newTargetsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "targets",
		Short: "Inspect and seed destinations",
	}
	cmd.AddCommand(newTargetsListCmd(opts), newTargetsAddCmd(opts))
	return cmd
}

func newTargetsListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active destinations in selection order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := opts.open(cmd.Context(), opts.cfg, opts.sugar)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			targets, err := st.ActiveTargets(cmd.Context())
			if err != nil {
				return fmt.Errorf("list targets: %w", err)
			}
			return printTargets(cmd.OutOrStdout(), targets)
		},
	}
}

type addFlags struct {
	url      string
	weight   int
	label    string
	category string
	inactive bool
}

func newTargetsAddCmd(opts *rootOptions) *cobra.Command {
	var f addFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a destination",
		Long: `Adds a destination after checking it against the allowed domains.

Example:
  redirectctl targets add --url=https://line.me/R/ti/p/@stocktrends --weight=70 --label=main`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := opts.open(cmd.Context(), opts.cfg, opts.sugar)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			t, err := addTarget(cmd.Context(), st, f, opts.cfg.AllowedDomains)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s -> %s (weight %d)\n", t.ID, t.URL, t.Weight)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.url, "url", "", "destination URL")
	cmd.Flags().IntVar(&f.weight, "weight", models.MaxWeight, "relative share of traffic (1-100)")
	cmd.Flags().StringVar(&f.label, "label", "", "label shown in listings")
	cmd.Flags().StringVar(&f.category, "category", "", "category tag (default general)")
	cmd.Flags().BoolVar(&f.inactive, "inactive", false, "add the destination switched off")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func addTarget(ctx context.Context, w storage.TargetWriter, f addFlags, domains []string) (models.RedirectTarget, error) {
	t := models.RedirectTarget{
		URL:      f.url,
		Weight:   f.weight,
		Label:    f.label,
		Category: f.category,
		Active:   !f.inactive,
	}
	if err := models.ValidateTarget(t, domains); err != nil {
		return models.RedirectTarget{}, fmt.Errorf("target %q: %w", f.url, err)
	}

	added, err := w.InsertTarget(ctx, t)
	if err != nil {
		return models.RedirectTarget{}, fmt.Errorf("add target: %w", err)
	}
	return added, nil
}

func printTargets(out io.Writer, targets []models.RedirectTarget) error {
	if len(targets) == 0 {
		_, err := fmt.Fprintln(out, "no active targets")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWEIGHT\tHITS\tLABEL\tURL")
	for _, t := range targets {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", t.ID, t.Weight, t.Hits, t.Label, t.URL)
	}
	return tw.Flush()
}
