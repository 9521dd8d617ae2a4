package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jbweber/kiln/internal/config"
	"github.com/jbweber/kiln/internal/console"
	"github.com/jbweber/kiln/internal/ctxlog"
	"github.com/jbweber/kiln/internal/vm"
)

var (
	version = "dev"
	commit  = "unknown"
)

// Global flags
var (
	configRoots []string
	strict      bool
	timeoutFlag string
	verbose     bool
	logFormat   string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		console.New(os.Stderr).Error("", "Error: %v", err)
		stop()
		os.Exit(1)
	}
	stop()
}

var rootCmd = &cobra.Command{
	Use:   "kiln",
	Short: "Kiln - cascading machine configuration and local provisioning",
	Long: `Kiln resolves cascading machine configurations and provisions machines.

Configuration documents (YAML or JSON) include each other and are deep-merged
in include order. Machines inherit from other machines by name. Provisioning
runs file and shell steps for the selected machines, with synced folders
emulated through symbolic links.

Configuration roots come from --config, else KILN_CONFIGS (comma-separated),
else VAGRANT_CONFIGS, else ./vagrant.`,
	Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringSliceVarP(&configRoots, "config", "c", nil, "configuration root reference (repeatable; extension optional)")
	flags.BoolVar(&strict, "strict", false, "treat include cycles as errors")
	flags.StringVar(&timeoutFlag, "timeout", "", "bound each provision command, e.g. 10m or 600 (default: "+config.EnvTimeout+" or none)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&logFormat, "log-format", "text", "log format: text or json")

	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup builds the logger-carrying context and the Manager shared by every
// subcommand.
func setup(cmd *cobra.Command) (context.Context, *vm.Manager, error) {
	switch strings.ToLower(logFormat) {
	case "text", "json":
	default:
		return nil, nil, fmt.Errorf("invalid log format: %s (valid formats: text, json)", logFormat)
	}

	logger := ctxlog.New(os.Stderr, logFormat, verbose)
	ctx := ctxlog.WithLogger(cmd.Context(), logger)

	overrides := config.Overrides{Roots: configRoots, Strict: strict}
	if timeoutFlag != "" {
		d, err := config.ParseTimeout(timeoutFlag)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --timeout: %w", err)
		}
		overrides.Timeout = d
	}

	settings, err := config.Load(overrides)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Settings loaded", "roots", settings.Roots, "strict", settings.Strict, "timeout", settings.Timeout)

	mgr, err := vm.NewManager(settings, console.New(os.Stdout))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return ctx, mgr, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the kiln version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "kiln %s\n", rootCmd.Version)
	},
}
