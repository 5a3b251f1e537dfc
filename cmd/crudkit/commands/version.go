package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// buildInfo describes the running binary.
type buildInfo struct {
	version string
	commit  string
	built   string
}

func (b buildInfo) record() Record {
	return Record{
		"version":  b.version,
		"commit":   b.commit,
		"built":    b.built,
		"go":       runtime.Version(),
		"platform": runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	info := buildInfo{version: version, commit: commit, built: date}

	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display the crudkit CLI version with its commit, build date and Go runtime",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if short {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), info.version)

				return err
			}

			return printRecord(cmd.OutOrStdout(), info.record())
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")

	return cmd
}
