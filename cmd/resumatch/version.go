package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/resumatch/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version: %s\n", appName, version.String())
		},
	}
}
