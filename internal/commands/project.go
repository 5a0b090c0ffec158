package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/conciliar/reconcile/internal/config"
	"github.com/conciliar/reconcile/internal/logger"
	"github.com/conciliar/reconcile/internal/runlog"
)

// project is the working directory a command runs against: its config, logger
// and run log.
type project struct {
	dir string
	cfg *config.Config
	log zerolog.Logger
}

func openProject(cmd *cobra.Command, dir string) (*project, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.LoadOrDefault(config.Path(absDir))
	if err != nil {
		return nil, err
	}
	return &project{dir: absDir, cfg: cfg, log: logger.FromContext(cmd.Context())}, nil
}

// record appends to the run log. Failures are logged, never returned.
func (p *project) record(command, target, details, runID string, runErr error) {
	e := runlog.Entry{
		Timestamp: time.Now(),
		Command:   command,
		Target:    target,
		Details:   details,
		RunID:     runID,
		Status:    runlog.StatusOK,
	}
	if runErr != nil {
		e.Status = runlog.StatusFailed
		if e.Details == "" {
			e.Details = runErr.Error()
		}
	}
	if err := runlog.Append(p.dir, e); err != nil {
		p.log.Warn().Err(err).Msg("failed to write run log")
	}
}

func addDirFlag(cmd *cobra.Command, dir *string) {
	cmd.Flags().StringVar(dir, "dir", ".", "project directory")
}
