package connection

// Role classifies what a connection means to the task that declares it.
type Role int

const (
	// RoleInput is an ordinary per-quantum input. A candidate quantum
	// missing a required input is dropped, not escalated.
	RoleInput Role = iota + 1

	// RolePrerequisiteInput is an input assumed to be supplied from
	// outside the pipeline. Its absence is a configuration error, not a
	// pipeline gap, and fails the candidate hard.
	RolePrerequisiteInput

	// RoleOutput is a per-quantum output persisted after task logic runs.
	RoleOutput

	// RoleInitInput is a task-scoped input consumed once at task
	// initialization, independent of any quantum.
	RoleInitInput

	// RoleInitOutput is a task-scoped output written once at task
	// initialization, independent of any quantum.
	RoleInitOutput
)

// String returns the role name used in declarations, logs and errors.
func (r Role) String() string {
	switch r {
	case RoleInput:
		return "input"
	case RolePrerequisiteInput:
		return "prerequisiteInput"
	case RoleOutput:
		return "output"
	case RoleInitInput:
		return "initInput"
	case RoleInitOutput:
		return "initOutput"
	default:
		return "unknown"
	}
}

// IsInit reports whether the role is task-scoped rather than
// quantum-scoped. Init connections never carry dimensions.
func (r Role) IsInit() bool {
	return r == RoleInitInput || r == RoleInitOutput
}

// IsInput reports whether values flow into the task for this role.
func (r Role) IsInput() bool {
	return r == RoleInput || r == RolePrerequisiteInput || r == RoleInitInput
}

// valid reports whether r is one of the declared Role constants.
func (r Role) valid() bool {
	return r >= RoleInput && r <= RoleInitOutput
}
