package scheduler

var registry = map[SchedulerType]Scheduler{
	SchedulerSLURM: SlurmScheduler{},
	SchedulerPBS:   PbsScheduler{},
}

// For returns the Scheduler implementation for t.
func For(t SchedulerType) (Scheduler, error) {
	s, ok := registry[t]
	if !ok {
		return nil, NewInvalidArgument("scheduler", "unsupported scheduler type %q", string(t))
	}
	return s, nil
}

// Types lists the registered scheduler types in a stable order.
func Types() []SchedulerType {
	return []SchedulerType{SchedulerSLURM, SchedulerPBS}
}
