package sandbox

// Status classifies the outcome of one command run.
type Status string

const (
	// StatusOK is a zero exit.
	StatusOK Status = "ok"
	// StatusNonZeroExit is a command-reported failure. Stderr is always
	// populated alongside the code so the caller can self-correct.
	StatusNonZeroExit Status = "nonzero_exit"
	// StatusTimeout means the deadline elapsed and the process was
	// killed. Partial output is discarded, never a truncated success.
	StatusTimeout Status = "timeout"
	// StatusSetupFailure means the isolated context itself could not be
	// constructed, distinct from the user command failing.
	StatusSetupFailure Status = "setup_failure"
)

// Result is the outcome of one sandboxed command.
type Result struct {
	ID        string `json:"id"`
	Status    Status `json:"status"`
	ExitCode  int    `json:"exit_code"`
	Stdout    string `json:"stdout"`
	Stderr    string `json:"stderr"`
	Truncated bool   `json:"truncated"`
}
