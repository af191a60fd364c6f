// Package scheduler builds batch job scripts for Slurm and PBS
package scheduler

import (
	"strings"
)

// SchedulerType represents the type of job scheduler
type SchedulerType string

const (
	SchedulerUnknown SchedulerType = ""
	SchedulerSLURM   SchedulerType = "SLURM"
	SchedulerPBS     SchedulerType = "PBS"
)

// Scheduler is the per-variant behaviour needed to write and submit a script.
// Adding a scheduler means adding an implementation and registering it.
type Scheduler interface {
	// Type returns the variant tag
	Type() SchedulerType

	// Directives returns the directive lines (without shebang) for r.
	// r has already been validated.
	Directives(r Resources) ([]string, error)

	// ArrayIndexVar is the shell expression holding the array task index
	ArrayIndexVar() string

	// SubmitCommand is the executable that submits a script (sbatch, qsub)
	SubmitCommand() string

	// ScriptExt is the extension used for auto-named job files
	ScriptExt() string
}

// ParseType converts a user-supplied name ("slurm", "PBS", ...) to a SchedulerType.
func ParseType(name string) (SchedulerType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "slurm":
		return SchedulerSLURM, nil
	case "pbs":
		return SchedulerPBS, nil
	default:
		return SchedulerUnknown, NewInvalidArgument("scheduler",
			"platform %q not recognized; must be one of [slurm, pbs]", name)
	}
}

// String returns the lowercase name used in config files and flags
func (t SchedulerType) String() string {
	return strings.ToLower(string(t))
}

// MarshalText writes the lowercase name so config files round-trip through ParseType
func (t SchedulerType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts any spelling ParseType accepts
func (t *SchedulerType) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
