package scheduler

// Resources describes what a job asks the scheduler for.
type Resources struct {
	JobName      string        // Job name
	Allocation   string        // Account/allocation to charge
	WalltimeMins int           // Walltime in minutes
	Nodes        int           // Number of nodes
	CPUs         int           // CPUs per node
	MemGB        int           // Memory per node in GB
	GPUs         int           // GPUs per node (0 = none)
	GPUMemGB     *int          // Memory per GPU in GB (nil = not requested)
	ArrayLen     *int          // Number of array tasks (nil = not an array job)
	OutputDir    string        // Directory for scheduler log files ("" = unset)
	Scheduler    SchedulerType // Target scheduler
}

// DefaultResources returns the defaults used when a field is not given.
func DefaultResources() Resources {
	return Resources{
		WalltimeMins: 180,
		Nodes:        1,
		CPUs:         1,
		MemGB:        16,
		GPUs:         0,
		Scheduler:    SchedulerSLURM,
	}
}

// WithArrayLen returns a copy of r with ArrayLen set to n.
func (r Resources) WithArrayLen(n int) Resources {
	r.ArrayLen = &n
	return r
}

// WithOutputDir returns a copy of r with OutputDir set to dir.
func (r Resources) WithOutputDir(dir string) Resources {
	r.OutputDir = dir
	return r
}

// IsArray reports whether r describes an array job.
func (r Resources) IsArray() bool {
	return r.ArrayLen != nil
}

// Validate checks field ranges. It does not check scheduler-specific requirements.
func (r Resources) Validate() error {
	const op = "resources"
	switch {
	case r.JobName == "":
		return NewInvalidArgument(op, "job name is required")
	case r.Allocation == "":
		return NewInvalidArgument(op, "allocation is required")
	case r.WalltimeMins < 0:
		return NewInvalidArgument(op, "walltime must be non-negative, got %d", r.WalltimeMins)
	case r.Nodes < 1:
		return NewInvalidArgument(op, "nodes must be at least 1, got %d", r.Nodes)
	case r.CPUs < 1:
		return NewInvalidArgument(op, "cpus must be at least 1, got %d", r.CPUs)
	case r.MemGB < 1:
		return NewInvalidArgument(op, "memory must be at least 1 GB, got %d", r.MemGB)
	case r.GPUs < 0:
		return NewInvalidArgument(op, "gpus must be non-negative, got %d", r.GPUs)
	case r.GPUMemGB != nil && *r.GPUMemGB < 1:
		return NewInvalidArgument(op, "gpu memory must be at least 1 GB, got %d", *r.GPUMemGB)
	case r.ArrayLen != nil && *r.ArrayLen < 1:
		return NewInvalidArgument(op, "array length must be at least 1, got %d", *r.ArrayLen)
	}
	return nil
}
