// Command ebcutil inspects and extracts embedded bitcode.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/meigma/ebc"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalFlags holds flags shared by every subcommand.
type globalFlags struct {
	verbose bool
	tempDir string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	prof := &profileFlags{}
	root := &cobra.Command{
		Use:           "ebcutil",
		Short:         "Inspect and extract embedded bitcode",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return prof.start()
		},
	}
	prof.register(root)
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log pipeline diagnostics to stderr")
	root.PersistentFlags().StringVar(&g.tempDir, "temp-dir", "", "directory for intermediate files (default: system temp dir)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInfoCmd(g))
	root.AddCommand(newExtractCmd(g))
	for _, cmd := range root.Commands() {
		prof.wrap(cmd)
	}
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "ebcutil %s\n", version)
			return err
		},
	}
}

// containerOptions returns the library options selected by the global flags.
func (g *globalFlags) containerOptions(cmd *cobra.Command) []ebc.Option {
	opts := []ebc.Option{ebc.WithLogger(g.logger(cmd))}
	if g.tempDir != "" {
		opts = append(opts, ebc.WithTempDir(g.tempDir))
	}
	return opts
}

// logger returns a text logger on the command's stderr when --verbose is
// set, and nil otherwise.
func (g *globalFlags) logger(cmd *cobra.Command) *slog.Logger {
	if !g.verbose {
		return nil
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
}
