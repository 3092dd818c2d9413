// tokenshield scores the safety of crypto tokens using a remote risk
// service. It runs as a Teneo network agent (the default), as an HTTP API
// server, or as one-shot CLI commands.
//
// Usage:
//
//	tokenshield                         # agent with health server
//	tokenshield serve                   # HTTP API only
//	tokenshield analyze <address>       # one analysis, printed
//	tokenshield pool <address> --json   # raw JSON output
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"tokenshield/modules"
	"tokenshield/pkg/config"
	"tokenshield/pkg/version"
)

var rootFlags struct {
	configPath string
	json       bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tokenshield",
		Short: "Token safety analysis agent",
		Long: `TokenShield checks a token across honeypot, liquidity, contract, social,
developer and community signals from a risk service, weighs them into an
overall score and classifies it as SAFE, MODERATE, RISKY or DANGEROUS.

Without a subcommand it runs the Teneo agent.`,
		Version:       version.GetFullVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runAgent,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", "", "YAML config file (default: $"+config.EnvConfigFile+")")
	pf.BoolVar(&rootFlags.json, "json", false, "Print raw JSON instead of tables")

	root.AddCommand(
		agentCmd(),
		serveCmd(),
		loginCmd(),
		versionCmd(),
	)
	root.AddCommand(queryCmds()...)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withApp loads config, wires the app and runs fn with it.
func withApp(cmd *cobra.Command, opts appOptions, fn func(*app) error) error {
	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg, opts)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// printReply writes the rendered text, or the underlying data as JSON when
// --json is set.
func printReply(cmd *cobra.Command, reply modules.Reply) error {
	out := cmd.OutOrStdout()
	if rootFlags.json && reply.Data != nil {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(reply.Data)
	}
	text := reply.Text
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, err := fmt.Fprint(out, text)
	return err
}
