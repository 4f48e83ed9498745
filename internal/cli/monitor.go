package cli

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xpanvictor/verbale/pkg/io/device"
)

func NewMonitorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:           "monitor",
		Short:         "Registra automaticamente le riunioni aperte nel browser",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := deps.App.Logger

			monitor, err := deps.App.Monitor()
			if errors.Is(err, device.ErrNotFound) {
				logger.Errorf("capture device %q not found", deps.App.Config.Audio.Device)
				return err
			}
			if err != nil {
				return fmt.Errorf("initializing monitor: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			monitor.Run(ctx)
			return nil
		},
	}
}
