package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_FullEnumeration(t *testing.T) {
	allowed := map[[2]Status]bool{
		{StatusDraft, StatusSubmitted}:                                  true,
		{StatusSubmitted, StatusSupervisorApproved}:                     true,
		{StatusSubmitted, StatusSupervisorChangesRequested}:             true,
		{StatusSubmitted, StatusSupervisorRejected}:                     true,
		{StatusSupervisorApproved, StatusManagerApproved}:               true,
		{StatusSupervisorApproved, StatusManagerChangesRequested}:       true,
		{StatusSupervisorApproved, StatusManagerRejected}:               true,
		{StatusSupervisorChangesRequested, StatusSubmitted}:             true,
		{StatusManagerChangesRequested, StatusSubmitted}:                true,
	}

	for _, from := range AllStatuses {
		for _, to := range AllStatuses {
			want := allowed[[2]Status{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	terminal := map[Status]bool{
		StatusSupervisorRejected: true,
		StatusManagerApproved:    true,
		StatusManagerRejected:    true,
	}

	for _, s := range AllStatuses {
		assert.Equal(t, terminal[s], s.Terminal(), "status %s", s)
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range AllStatuses {
		parsed, ok := ParseStatus(string(s))
		assert.True(t, ok)
		assert.Equal(t, s, parsed)
	}

	_, ok := ParseStatus("Unknown")
	assert.False(t, ok)

	// Status values are case sensitive.
	_, ok = ParseStatus("submitted")
	assert.False(t, ok)
}

func TestSupervisorActionable(t *testing.T) {
	actionable := map[Status]bool{
		StatusSubmitted:                  true,
		StatusSupervisorChangesRequested: true,
	}
	for _, s := range AllStatuses {
		assert.Equal(t, actionable[s], SupervisorActionable(s), "status %s", s)
	}
}

func TestManagerActionable(t *testing.T) {
	actionable := map[Status]bool{
		StatusSupervisorApproved:      true,
		StatusManagerChangesRequested: true,
	}
	for _, s := range AllStatuses {
		assert.Equal(t, actionable[s], ManagerActionable(s), "status %s", s)
	}
}

func TestCanResubmitFrom(t *testing.T) {
	resubmittable := map[Status]bool{
		StatusSupervisorChangesRequested: true,
		StatusManagerChangesRequested:    true,
	}
	for _, s := range AllStatuses {
		assert.Equal(t, resubmittable[s], CanResubmitFrom(s), "status %s", s)
	}
}

func TestCanAssignManagerIn(t *testing.T) {
	assignable := map[Status]bool{
		StatusSubmitted:                  true,
		StatusSupervisorApproved:         true,
		StatusSupervisorChangesRequested: true,
	}
	for _, s := range AllStatuses {
		assert.Equal(t, assignable[s], CanAssignManagerIn(s), "status %s", s)
	}
}
