package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tokenshield/modules"
	"tokenshield/pkg/version"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rootFlags.json {
				return printReply(cmd, modules.Reply{Data: version.GetBuildInfo()})
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.GetFullVersionString())
			return err
		},
	}
}
