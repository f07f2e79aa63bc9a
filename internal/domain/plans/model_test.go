package plans

import "testing"

func TestStatusTransitions(t *testing.T) {
	all := []Status{StatusDraft, StatusApproved, StatusInProgress, StatusCompleted, StatusCancelled}

	allowed := map[[2]Status]bool{
		{StatusDraft, StatusApproved}:       true,
		{StatusDraft, StatusCancelled}:      true,
		{StatusApproved, StatusInProgress}:  true,
		{StatusApproved, StatusCancelled}:   true,
		{StatusInProgress, StatusCompleted}: true,
		{StatusInProgress, StatusCancelled}: true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]Status{from, to}]
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("%s -> %s = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, tc := range []struct {
		s    Status
		want bool
	}{
		{StatusDraft, false},
		{StatusApproved, false},
		{StatusInProgress, false},
		{StatusCompleted, true},
		{StatusCancelled, true},
	} {
		if got := tc.s.Terminal(); got != tc.want {
			t.Errorf("%s.Terminal() = %v, want %v", tc.s, got, tc.want)
		}
	}
}

func TestStatusValid(t *testing.T) {
	if !StatusDraft.Valid() {
		t.Error("draft must be valid")
	}
	if Status("archived").Valid() {
		t.Error("unknown status must be invalid")
	}
}
