package scheduler

import (
	"fmt"
	"strings"
)

const shebang = "#!/bin/bash"

// Job is everything needed to assemble a job script.
// Exactly one of Command and Array must be set.
type Job struct {
	Command   *string  // Single command to run
	Array     []string // One command per array task, task i runs Array[i-1]
	Prefix    string   // Setup commands placed between header and body
	Resources Resources
}

// Header returns the shebang and directive block for r, ending with a newline.
func Header(r Resources) (string, error) {
	sched, err := For(r.Scheduler)
	if err != nil {
		return "", err
	}
	if err := r.Validate(); err != nil {
		return "", err
	}
	directives, err := sched.Directives(r)
	if err != nil {
		return "", err
	}
	return shebang + "\n" + strings.Join(directives, "\n") + "\n", nil
}

// CaseBody returns a case statement running cmds[i-1] when indexVar is i.
func CaseBody(indexVar string, cmds []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "case %s in\n", indexVar)
	for i, cmd := range cmds {
		fmt.Fprintf(&b, "%d)\n%s\n;;\n", i+1, cmd)
	}
	b.WriteString("\nesac")
	return b.String()
}

// Parallel joins commands so they run concurrently inside one job: "a & b & wait".
func Parallel(cmds []string) string {
	return strings.Join(append(append([]string{}, cmds...), "wait"), " & ")
}

// JobString assembles header, prefix and body into the full script text.
// For array jobs the array length is taken from len(j.Array).
func JobString(j Job) (string, error) {
	const op = "job string"
	if j.Command == nil && j.Array == nil {
		return "", NewInvalidArgument(op, "must specify either a command or a job array")
	}
	if j.Command != nil && j.Array != nil {
		return "", NewInvalidArgument(op, "cannot specify both a command and a job array")
	}

	r := j.Resources
	var body string
	if j.Command != nil {
		body = *j.Command
	} else {
		if len(j.Array) == 0 {
			return "", NewInvalidArgument(op, "job array must contain at least one command")
		}
		sched, err := For(r.Scheduler)
		if err != nil {
			return "", err
		}
		r = r.WithArrayLen(len(j.Array))
		body = CaseBody(sched.ArrayIndexVar(), j.Array)
	}

	header, err := Header(r)
	if err != nil {
		return "", err
	}
	return header + "\n" + j.Prefix + "\n" + body + "\n", nil
}
