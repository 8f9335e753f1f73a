package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/loykin/apiscenario/internal/constants"
	"github.com/loykin/apiscenario/internal/store"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded scenario runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if doc.Store.Disabled {
				return errors.New("history store is disabled")
			}
			st, err := store.Open(cmd.Context(), doc.StoreConfig())
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			runs, err := st.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "STARTED\tRESULT\tFEATURE\tSCENARIO\tDURATION\tFAILED STEP")
			for _, r := range runs {
				result := "PASS"
				if !r.Passed {
					result = "FAIL"
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.StartedAt.Local().Format(time.DateTime), result, r.Feature, r.Scenario,
					r.Duration.Round(time.Millisecond), r.FailedStep)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", constants.DefaultHistoryLimit, "show up to N latest runs (0 = all)")
	return cmd
}
