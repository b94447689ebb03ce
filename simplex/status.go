package simplex

import "fmt"

type Status int

const (
	StatusOptimal Status = iota
	// StatusMilpFailure marks a branch-and-bound node that was cut off. It
	// never leaves the branch-and-bound driver.
	StatusMilpFailure
	StatusInfeasible
	StatusUnbounded
	StatusFailure
	StatusRunning
	// StatusBreak is returned when the search was aborted before any
	// acceptable solution was found.
	StatusBreak
	// StatusSuboptimal is returned when the search was aborted after an
	// integer solution was found; that solution is reported.
	StatusSuboptimal
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusMilpFailure:
		return "MILP_FAIL"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusUnbounded:
		return "UNBOUNDED"
	case StatusFailure:
		return "FAILURE"
	case StatusRunning:
		return "RUNNING"
	case StatusBreak:
		return "BREAK"
	case StatusSuboptimal:
		return "SUBOPTIMAL"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// HasSolution reports whether a solution vector accompanies the status.
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusSuboptimal
}
