// Package cmd wires the edmo command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfg "github.com/maastricht-university/edmo-interaction/config"
	"github.com/maastricht-university/edmo-interaction/metrics"
	"github.com/maastricht-university/edmo-interaction/orchestrator"
)

// app holds what the persistent pre-run loads for subcommands.
type app struct {
	configPath string
	conf       *cfg.Root
	logger     *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "edmo",
		Short:         "Analyze recorded EDMO sessions",
		Long:          "edmo scores how two participants interact from diarized speech, person tracks and optional profiles.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default: config/$CONFIG_ENV/config.yaml)")

	root.AddCommand(newAnalyzeCmd(a), newBatchCmd(a), newVersionCmd())
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	boot := logrus.New()
	boot.SetOutput(cmd.ErrOrStderr())
	c, err := cfg.Load(a.configPath, boot)
	if err != nil {
		return err
	}
	a.conf = c
	a.logger = c.Logger()
	a.logger.SetOutput(cmd.ErrOrStderr())
	a.logger.WithFields(logrus.Fields{
		"file":    c.File,
		"outputs": c.Paths.Outputs,
	}).Debug("config loaded")
	return nil
}

// pipeline builds the orchestrator with metrics and, when configured, the
// AMQP publisher. The returned func releases the publisher.
func (a *app) pipeline(ctx context.Context) (*orchestrator.Pipeline, func(), error) {
	rec := metrics.New()
	opts := []orchestrator.Option{orchestrator.WithMetrics(rec)}
	release := func() {}

	if addr := a.conf.Metrics.Addr; addr != "" {
		go func() {
			if err := rec.Serve(ctx, addr, a.logger); err != nil {
				a.logger.WithError(err).Error("metrics endpoint stopped")
			}
		}()
	}
	if url := a.conf.Messaging.AMQPURL; url != "" {
		pub, err := orchestrator.NewAMQPPublisher(a.logger, url, a.conf.Messaging.Queue)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, orchestrator.WithPublisher(pub))
		release = func() {
			if err := pub.Close(); err != nil {
				a.logger.WithError(err).Warn("closing AMQP publisher")
			}
		}
	}

	p, err := orchestrator.NewPipeline(a.conf, a.logger, opts...)
	if err != nil {
		release()
		return nil, nil, err
	}
	return p, release, nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "edmo:", err)
		os.Exit(1)
	}
}
