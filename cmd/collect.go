package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func collectCmd(a *app) *cobra.Command {
	var cities []string

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Fetch and store current weather for every configured city once",
		Long: `Ensures the storage bucket exists, then for each city fetches current
conditions, prints them and saves the raw observation with a timestamp.
A failure for one city does not stop the others.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, err := a.buildComponents(ctx, os.Stdout)
			if err != nil {
				return err
			}
			defer func() {
				if err := c.close(); err != nil {
					a.log.Warn("Failed to close storage client", zap.Error(err))
				}
			}()

			if len(cities) > 0 {
				return a.reportRun(c.collector.RunCities(ctx, cities))
			}
			return a.reportRun(c.collector.Run(ctx))
		},
	}

	cmd.Flags().StringSliceVar(&cities, "city", nil, "city to collect instead of the configured list (repeatable)")

	return cmd
}
