package app

import (
	"github.com/spf13/cobra"

	"github.com/gocinema/gocinema/internal/daemon"
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().BoolVar(&fastShutDown, "fast-shutdown", false, "Skip the load balancer drain period on shutdown")

	rootCmd.AddCommand(startCmd)
}

var (
	fastShutDown bool

	startCmd = &cobra.Command{
		Use:     "start",
		Short:   "Start the GoCinema web service",
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := daemon.New(cmd.Context(), &cfg)
			if err != nil {
				return err //nolint:wrapcheck
			}

			d.Web().SetFastShutDown(fastShutDown || cfg.DevMode)

			return d.Start()
		},
	}
)
