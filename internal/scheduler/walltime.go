package scheduler

import (
	"fmt"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// FormatWalltime formats a walltime in minutes as [D-]HH:MM:SS.
// The day field is present only for walltimes of 24 hours or more and seconds are always 00.
//
//	FormatWalltime(60)   -> "01:00:00"
//	FormatWalltime(1440) -> "1-00:00:00"
func FormatWalltime(mins int) (string, error) {
	if mins < 0 {
		return "", NewInvalidArgument("walltime", "walltime must be non-negative, got %d minutes", mins)
	}
	days := mins / minutesPerDay
	hours := (mins % minutesPerDay) / 60
	minutes := mins % 60
	if days == 0 {
		return fmt.Sprintf("%02d:%02d:00", hours, minutes), nil
	}
	return fmt.Sprintf("%d-%02d:%02d:00", days, hours, minutes), nil
}

// ParseWalltime parses a walltime back into whole minutes.
// Accepts plain minutes ("90"), HH:MM, HH:MM:SS, D-HH, D-HH:MM and D-HH:MM:SS.
// Two fields are hours and minutes, not Slurm's minutes and seconds. Seconds are truncated.
func ParseWalltime(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, NewInvalidArgument("walltime", "empty walltime")
	}

	days := 0
	d, rest, hasDays := strings.Cut(s, "-")
	if hasDays {
		n, err := strconv.Atoi(d)
		if err != nil || n < 0 {
			return 0, NewInvalidArgument("walltime", "invalid day field in %q", s)
		}
		days = n
		s = rest
	}

	parts := strings.Split(s, ":")
	fields := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, NewInvalidArgument("walltime", "invalid walltime %q", s)
		}
		fields[i] = n
	}

	var hours, minutes int
	switch len(fields) {
	case 1:
		if hasDays {
			hours = fields[0]
		} else {
			minutes = fields[0]
		}
	case 2, 3:
		hours, minutes = fields[0], fields[1]
	default:
		return 0, NewInvalidArgument("walltime", "invalid walltime %q (use D-HH:MM:SS, HH:MM:SS, HH:MM or minutes)", s)
	}

	return days*minutesPerDay + hours*60 + minutes, nil
}
