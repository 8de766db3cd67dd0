package cmd

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/maastricht-university/edmo-interaction/orchestrator"
)

func newBatchCmd(a *app) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "batch <manifest.yaml>",
		Short: "Analyze every session listed in a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := orchestrator.LoadManifest(args[0])
			if err != nil {
				return err
			}
			if len(m.Sessions) == 0 {
				return fmt.Errorf("manifest %s lists no sessions", args[0])
			}
			if workers <= 0 {
				workers = a.conf.Batch.Workers
			}

			p, release, err := a.pipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			a.logger.WithFields(logrus.Fields{"sessions": len(m.Sessions), "workers": workers}).Info("batch started")
			results, err := p.Batch(cmd.Context(), m.Sessions, workers)
			for _, r := range results {
				if r != nil {
					fmt.Fprintln(cmd.OutOrStdout(), r.ReportPath)
				}
			}

			var be *orchestrator.BatchError
			if errors.As(err, &be) {
				idx := make([]int, 0, len(be.Failed))
				for i := range be.Failed {
					idx = append(idx, i)
				}
				sort.Ints(idx)
				for _, i := range idx {
					a.logger.WithFields(logrus.Fields{
						"index": i,
						"label": m.Sessions[i].Label,
					}).WithError(be.Failed[i]).Error("session failed")
				}
			}
			return err
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "sessions analyzed in parallel (default: batch.workers)")
	return cmd
}
