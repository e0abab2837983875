package transfer

// Status of a transfer request. The lifecycle runs through two sequential
// approval gates:
//
//	Submitted          ──► SupervisorApproved | SupervisorChangesRequested | SupervisorRejected
//	SupervisorApproved ──► ManagerApproved    | ManagerChangesRequested    | ManagerRejected
//
// Either changes-requested state returns to Submitted on resubmission.
// SupervisorRejected, ManagerApproved and ManagerRejected are terminal.
type Status string

const (
	StatusDraft                      Status = "Draft"
	StatusSubmitted                  Status = "Submitted"
	StatusSupervisorApproved         Status = "SupervisorApproved"
	StatusSupervisorChangesRequested Status = "SupervisorChangesRequested"
	StatusSupervisorRejected         Status = "SupervisorRejected"
	StatusManagerApproved            Status = "ManagerApproved"
	StatusManagerChangesRequested    Status = "ManagerChangesRequested"
	StatusManagerRejected            Status = "ManagerRejected"
)

// AllStatuses lists every status, for enumeration and filter validation.
var AllStatuses = []Status{
	StatusDraft,
	StatusSubmitted,
	StatusSupervisorApproved,
	StatusSupervisorChangesRequested,
	StatusSupervisorRejected,
	StatusManagerApproved,
	StatusManagerChangesRequested,
	StatusManagerRejected,
}

// allowedTransitions is the authoritative workflow graph. Requests are
// created directly in Submitted; Draft stays in the enum for
// forward-compatibility.
var allowedTransitions = map[Status][]Status{
	StatusDraft:                      {StatusSubmitted},
	StatusSubmitted:                  {StatusSupervisorApproved, StatusSupervisorChangesRequested, StatusSupervisorRejected},
	StatusSupervisorApproved:         {StatusManagerApproved, StatusManagerChangesRequested, StatusManagerRejected},
	StatusSupervisorChangesRequested: {StatusSubmitted},
	StatusSupervisorRejected:         {},
	StatusManagerApproved:            {},
	StatusManagerChangesRequested:    {StatusSubmitted},
	StatusManagerRejected:            {},
}

// ParseStatus converts a raw string to a Status, reporting whether the
// value is known.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	_, ok := allowedTransitions[st]
	return st, ok
}

func (s Status) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// Terminal reports whether the status has no outbound transitions.
func (s Status) Terminal() bool {
	targets, ok := allowedTransitions[s]
	return ok && len(targets) == 0
}

// CanTransition reports whether from → to appears in the workflow graph.
func CanTransition(from, to Status) bool {
	for _, t := range allowedTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// The gates below are the per-operation source sets. An approver may also
// decide a request that is parked in their own changes-requested state, so
// these are wider than the graph's decision edges for approve/reject.

// SupervisorActionable reports whether a supervisor may decide (approve or
// reject) the request in its current status.
func SupervisorActionable(s Status) bool {
	return s == StatusSubmitted || s == StatusSupervisorChangesRequested
}

// ManagerActionable reports whether a manager may decide the request in its
// current status.
func ManagerActionable(s Status) bool {
	return s == StatusSupervisorApproved || s == StatusManagerChangesRequested
}

// CanResubmitFrom limits resubmission to the two changes-requested states.
// Both return to Submitted: a manager-stage rework re-enters the supervisor
// gate and is re-validated in full.
func CanResubmitFrom(s Status) bool {
	return (s == StatusSupervisorChangesRequested || s == StatusManagerChangesRequested) &&
		CanTransition(s, StatusSubmitted)
}

// CanAssignManagerIn allows manager assignment at any point before the
// manager gate has been decided.
func CanAssignManagerIn(s Status) bool {
	return s == StatusSubmitted || s == StatusSupervisorApproved || s == StatusSupervisorChangesRequested
}
