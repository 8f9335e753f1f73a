package main

import (
	"fmt"

	"github.com/loykin/apiscenario/pkg/steps"
	"github.com/spf13/cobra"
)

func newStepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "List the supported step sentences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, usage := range steps.Default().Definitions() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), usage); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
