package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/loykin/apiscenario/internal/httpc"
	"github.com/loykin/apiscenario/internal/store"
	"github.com/loykin/apiscenario/pkg/request"
	"github.com/loykin/apiscenario/pkg/runner"
	"github.com/loykin/apiscenario/pkg/steps"
	"github.com/spf13/cobra"
)

// errScenariosFailed makes the process exit 1 after the report is printed.
var errScenariosFailed = errors.New("scenarios failed")

func newRunCmd() *cobra.Command {
	var noStore bool
	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Run feature files or directories (default: config features)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			paths := args
			if len(paths) == 0 {
				paths = doc.FeaturePaths()
			}
			features, err := runner.LoadFeatures(paths...)
			if err != nil {
				return err
			}
			reg := steps.Default()
			if err := validateAll(reg, features); err != nil {
				return err
			}

			hc := doc.HTTPClient()
			if err := hc.Wait(ctx, doc.Wait); err != nil {
				return err
			}
			headers, err := doc.DefaultHeaders(ctx)
			if err != nil {
				return err
			}

			opts := []runner.Option{
				runner.WithRegistry(reg),
				runner.WithRequestOptions(
					request.WithDefaultHeaders(headers),
					request.WithResourceRoot(doc.ResourceDir()),
				),
			}
			if !noStore && !doc.Store.Disabled {
				st, err := store.Open(ctx, doc.StoreConfig())
				if err != nil {
					return err
				}
				defer func() { _ = st.Close() }()
				opts = append(opts, runner.WithRecorder(st))
			}

			rep := runner.New(httpc.NewTransport(hc), opts...).Run(ctx, features...)
			printReport(cmd.OutOrStdout(), rep)
			if !rep.OK() {
				return fmt.Errorf("%w: %d of %d", errScenariosFailed, rep.Failed(), len(rep.Results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noStore, "no-store", false, "do not record results in the history store")
	return cmd
}

func printReport(w io.Writer, rep runner.Report) {
	for _, r := range rep.Results {
		if r.Passed {
			_, _ = fmt.Fprintf(w, "PASS  %s / %s (%d steps, %s)\n", r.Feature, r.Scenario, r.Steps, r.Duration.Round(time.Millisecond))
			continue
		}
		_, _ = fmt.Fprintf(w, "FAIL  %s / %s\n      step: %s\n      error: %v\n", r.Feature, r.Scenario, r.FailedStep, r.Err)
	}
	_, _ = fmt.Fprintf(w, "\n%d scenarios, %d passed, %d failed\n", len(rep.Results), rep.Passed(), rep.Failed())
}
