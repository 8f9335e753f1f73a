package main

import (
	"errors"
	"fmt"

	"github.com/loykin/apiscenario/pkg/runner"
	"github.com/loykin/apiscenario/pkg/steps"
	"github.com/spf13/cobra"
)

func validateAll(reg *steps.Registry, features []*runner.Feature) error {
	if len(features) == 0 {
		return errors.New("no feature files found")
	}
	var errs []error
	for _, f := range features {
		if err := f.Validate(reg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [paths...]",
		Short: "Parse feature files and check every step has a definition",
		RunE: func(cmd *cobra.Command, args []string) error {
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
			if err := validateAll(steps.Default(), features); err != nil {
				return err
			}
			n := 0
			for _, f := range features {
				n += len(f.Scenarios)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d features, %d scenarios: ok\n", len(features), n)
			return nil
		},
	}
}
