package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jbweber/kiln/internal/console"
	"github.com/jbweber/kiln/internal/loader"
	"github.com/jbweber/kiln/internal/output"
)

// Output flags shared by the reporting commands
var (
	configFormat string
	configOut    string
	listFormat   string
	planFormat   string
	noHeaders    bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the merged configuration",
	Long: `Print the configuration after includes are merged and machine
inheritance is flattened.

Output formats:
  -o yaml   YAML document (default)
  -o json   JSON document

With --out the configuration is written to a file instead; the file
extension (.yml, .yaml or .json) selects the format.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := output.ValidateFormat(configFormat); err != nil {
			return err
		}

		ctx, mgr, err := setup(cmd)
		if err != nil {
			return err
		}

		env, err := mgr.Load(ctx)
		if err != nil {
			return err
		}

		if configOut != "" {
			if err := loader.SaveToFile(env.Document, configOut); err != nil {
				return err
			}
			console.New(os.Stdout).Success("configuration written to %s", configOut)
			return nil
		}

		formatter, err := output.NewFormatter(output.Options{Format: output.Format(configFormat)})
		if err != nil {
			return err
		}
		result, err := formatter.FormatConfig(env.Document)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}

		fmt.Fprint(cmd.OutOrStdout(), result)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured machines",
	Long: `List every machine of the merged configuration after inheritance.

Output formats:
  -o table  Human-readable table (default)
  -o yaml   Machine definitions as YAML
  -o json   Machine definitions as JSON`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := output.ValidateFormat(listFormat); err != nil {
			return err
		}

		ctx, mgr, err := setup(cmd)
		if err != nil {
			return err
		}

		machines, err := mgr.List(ctx)
		if err != nil {
			return err
		}

		formatter, err := output.NewFormatter(output.Options{
			Format:    output.Format(listFormat),
			NoHeaders: noHeaders,
		})
		if err != nil {
			return err
		}
		result, err := formatter.FormatMachines(machines)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}

		fmt.Fprint(cmd.OutOrStdout(), result)
		return nil
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <jsonpath>",
	Short: "Query the merged configuration with JSONPath",
	Long: `Evaluate a JSONPath expression against the merged configuration and
print one result per line. Strings are printed as-is; other values as JSON.

Examples:
  kiln query '$.machines[*].name'
  kiln query '$.machines[?(@.autostart == true)].name'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, mgr, err := setup(cmd)
		if err != nil {
			return err
		}

		results, err := mgr.Query(ctx, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, r := range results {
			if s, ok := r.(string); ok {
				fmt.Fprintln(out, s)
				continue
			}
			data, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("failed to format result: %w", err)
			}
			fmt.Fprintln(out, string(data))
		}
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Merge the configuration, flatten inheritance, check it against the
schema and plan every machine's providers, without provisioning anything.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, mgr, err := setup(cmd)
		if err != nil {
			return err
		}

		env, err := mgr.Validate(ctx)
		if err != nil {
			return err
		}

		printer := console.New(cmd.OutOrStdout())
		for _, path := range env.Sources {
			printer.Detail("%s", path)
		}
		for _, chain := range env.Cycles {
			printer.Error("warning", "include cycle skipped: %v", chain)
		}
		printer.Success("configuration is valid: %d machines from %d documents",
			len(env.Config.Machines), len(env.Sources))
		return nil
	},
}

var planCmd = &cobra.Command{
	Use:   "plan <machine>",
	Short: "Show the provider plan of a machine",
	Long: `Translate a machine's provider and network sections into the settings a
hypervisor backend would apply: VBoxManage commands, VMware vmx entries,
Parallels settings or a libvirt domain.

Output formats:
  -o table  One row per provider (default)
  -o yaml   Full plan, including rendered domain XML
  -o json   Full plan, including rendered domain XML`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := output.ValidateFormat(planFormat); err != nil {
			return err
		}

		ctx, mgr, err := setup(cmd)
		if err != nil {
			return err
		}

		plan, err := mgr.Plan(ctx, args[0])
		if err != nil {
			return err
		}

		formatter, err := output.NewFormatter(output.Options{
			Format:    output.Format(planFormat),
			NoHeaders: noHeaders,
		})
		if err != nil {
			return err
		}
		result, err := formatter.FormatPlan(plan)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}

		fmt.Fprint(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	configCmd.Flags().StringVarP(&configFormat, "output", "o", "yaml", "output format: yaml or json")
	configCmd.Flags().StringVar(&configOut, "out", "", "write the configuration to a file")

	listCmd.Flags().StringVarP(&listFormat, "output", "o", "table", "output format: table, yaml, or json")
	listCmd.Flags().BoolVar(&noHeaders, "no-headers", false, "omit table headers")

	planCmd.Flags().StringVarP(&planFormat, "output", "o", "table", "output format: table, yaml, or json")
	planCmd.Flags().BoolVar(&noHeaders, "no-headers", false, "omit table headers")
}
