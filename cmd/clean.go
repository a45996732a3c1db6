package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bpineau/ghpages/pkg/run"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the cached working copies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := newConfig()
		if err != nil {
			return err
		}

		return run.Clean(conf)
	},
}
