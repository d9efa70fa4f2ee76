package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yigit/registrar/internal/bootstrap"
	"github.com/yigit/registrar/internal/config"
	"github.com/yigit/registrar/internal/pkg/apperrors"
)

var (
	cfgFile     string
	dumpMetrics bool
	deps        *bootstrap.Dependencies
	out         io.Writer = os.Stdout
)

var rootCmd = &cobra.Command{
	Use:   "registrar",
	Short: "Course catalog and enrollment administration",
	Long: `Manage departments, courses, prerequisites, terms, offerings and
student registrations stored in PostgreSQL.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !needsDependencies(cmd) {
			return nil
		}
		var overrides []func(*config.Config)
		if dumpMetrics {
			overrides = append(overrides, enableMetrics)
		}
		var err error
		deps, err = bootstrap.BuildDependencies(cmd.Context(), cfgFile, overrides...)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultPath, "config file")
	rootCmd.PersistentFlags().BoolVar(&dumpMetrics, "metrics", false, "print collected metrics to stderr on exit")
}

func enableMetrics(cfg *config.Config) {
	cfg.Metrics.Enabled = true
}

// shutdown releases dependencies once the command has finished, whether or
// not it failed. With --metrics the counters are written to errOut first.
func shutdown(errOut io.Writer) {
	if deps == nil {
		return
	}
	if dumpMetrics {
		if err := deps.WriteMetrics(errOut); err != nil {
			deps.Logger.Error().Err(err).Msg("Failed to write metrics")
		}
	}
	deps.Close()
	deps = nil
}

// needsDependencies reports whether cmd talks to the database. Cobra's
// generated help and completion commands do not.
func needsDependencies(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "help" || c.Name() == "completion" {
			return false
		}
	}
	return true
}

// printJSON writes v to the command output as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(flag, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError(fmt.Sprintf("--%s must be a UUID, got %q", flag, value))
	}
	return id, nil
}

// exitCode maps the error taxonomy onto distinct process exit statuses.
func exitCode(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return 2
	case errors.Is(err, apperrors.ErrNotFound):
		return 3
	case errors.Is(err, apperrors.ErrDuplicate):
		return 4
	case errors.Is(err, apperrors.ErrEligibility):
		return 5
	case errors.Is(err, apperrors.ErrCapacityExceeded):
		return 6
	case errors.Is(err, apperrors.ErrInvalidState):
		return 7
	case errors.Is(err, apperrors.ErrAuthentication):
		return 8
	}
	return 1
}
