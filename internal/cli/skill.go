package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func NewSkillCmd(deps *Dependencies) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:           "skill",
		Short:         "Espone l'endpoint HTTP della skill vocale",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := deps.App.Logger
			if addr == "" {
				addr = deps.App.Config.Skill.Addr
			}

			srv := &http.Server{
				Addr:    addr,
				Handler: deps.App.SkillRouter().Handler(),
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				logger.Infof("skill listening on %s", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			select {
			case err := <-errc:
				if err != nil {
					return fmt.Errorf("skill server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			// 5 secs then cancel
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Errorf("Shutdown err %v", err)
				return err
			}
			logger.Info("Shutdown system")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from skill.addr)")
	return cmd
}
