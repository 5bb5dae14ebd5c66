// pkg/engine/report.go
package engine

import (
	"time"
)

// OverallStatus is the pipeline-level outcome of a run.
type OverallStatus int

const (
	// OverallSucceeded means every node succeeded (trivially true for an
	// empty recipe).
	OverallSucceeded OverallStatus = iota
	// OverallPartialFailure means some nodes failed or were skipped while
	// independent branches completed.
	OverallPartialFailure
	// OverallAborted means a preflight failed and no module ran.
	OverallAborted
)

// String returns the string representation of the OverallStatus value.
func (s OverallStatus) String() string {
	return [...]string{"Succeeded", "PartialFailure", "Aborted"}[s]
}

// ExitCode maps the run outcome to the CLI exit code contract: 0 only on
// full success.
func (s OverallStatus) ExitCode() int {
	switch s {
	case OverallSucceeded:
		return 0
	case OverallAborted:
		return 3
	default:
		return 1
	}
}

// NodeResult is the terminal record of one node after a run.
type NodeResult struct {
	ID         string
	ModuleType string
	Preflight  bool
	Status     Status
	Err        error
	// Cause is the human-readable reason a node was skipped, naming the
	// failed ancestor.
	Cause     string
	StartTime time.Time
	EndTime   time.Time
	Output    interface{}
}

// RunReport is the final report of a recipe run: every node's terminal
// status in declaration order plus the pipeline-level outcome.
type RunReport struct {
	RunID     string
	Recipe    string
	Overall   OverallStatus
	StartTime time.Time
	EndTime   time.Time
	Nodes     []NodeResult
}

// Err returns the error that best represents a non-successful run: the
// first failed preflight for an aborted run, the first failed module for a
// partial failure, nil on success. The returned error carries an engine
// error code suitable for ExitCode mapping.
func (r *RunReport) Err() error {
	if r.Overall == OverallSucceeded {
		return nil
	}
	for _, n := range r.Nodes {
		if n.Status == StatusFailed && n.Err != nil {
			return n.Err
		}
	}
	if r.Overall == OverallAborted {
		return ErrPreflightFailed
	}
	return ErrModuleFailed
}
