package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jbweber/kiln/internal/console"
	"github.com/jbweber/kiln/internal/output"
	"github.com/jbweber/kiln/internal/status"
)

var reportFormat string

var upCmd = &cobra.Command{
	Use:     "up [machine...]",
	Aliases: []string{"provision"},
	Short:   "Provision machines",
	Long: `Provision the named machines, or every machine with autostart: true
when no names are given.

Machines run one at a time in the order given. For each machine, synced
folders are linked, provision steps run in declaration order, and the links
are removed again. The first failing step stops the whole run.

Report formats (printed after the run, even when it fails):
  -o table  Summary table
  -o yaml   ProvisionRun resources
  -o json   ProvisionRunList resource`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if reportFormat != "" {
			if err := output.ValidateFormat(reportFormat); err != nil {
				return err
			}
		}

		ctx, mgr, err := setup(cmd)
		if err != nil {
			return err
		}

		runs, runErr := mgr.Up(ctx, args)

		printer := console.New(os.Stdout)
		for _, run := range runs {
			if status.Succeeded(run) {
				printer.Success("%s provisioned (%d steps)", run.Spec.Machine, len(run.Status.Steps))
			}
		}

		if reportFormat != "" && len(runs) > 0 {
			formatter, err := output.NewFormatter(output.Options{Format: output.Format(reportFormat)})
			if err != nil {
				return err
			}
			result, err := formatter.FormatRuns(runs)
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), result)
		}

		return runErr
	},
}

func init() {
	upCmd.Flags().StringVarP(&reportFormat, "output", "o", "", "print a run report: table, yaml, or json")
}
