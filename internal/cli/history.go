package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gigfinder/internal/service"
)

func historyCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print accepted jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			repo, closeRepo, err := openHistory(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			jobs := service.NewHistoryService(repo).Load(ctx)
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(jobs)
			}
			if len(jobs) == 0 {
				fmt.Fprintln(out, "No jobs accepted yet.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tCOMPANY\tLOCATION\tPAY\tEARNINGS")
			for _, j := range jobs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t$%.2f %s\t$%.2f\n",
					j.ID, j.Title, j.Company, j.Location, j.PayRate, j.PayType, j.Earnings())
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw JSON array")
	return cmd
}

func demandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demand",
		Short: "Fetch one demand map and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			gen, _, err := newGenerator(cfg, keyStore)
			if err != nil {
				return err
			}
			svc := service.NewDemandService(gen)
			if err := svc.Refresh(ctx); err != nil {
				return fmt.Errorf("%s: %w", service.DemandErrorMessage, err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LOCATION\tDEMAND\tLEVEL\tHOT")
			for _, e := range svc.Current().Entries {
				hot := ""
				if e.Hot {
					hot = "yes"
				}
				fmt.Fprintf(tw, "%s\t%.0f\t%d\t%s\n", e.Location, e.Demand, e.Level, hot)
			}
			return tw.Flush()
		},
	}
}
