package jobs

import "testing"

func TestStatusTerminal(t *testing.T) {
	cases := []struct {
		status Status
		want   bool
	}{
		{StatusPending, false},
		{StatusProcessing, false},
		{StatusCompleted, true},
		{StatusFailed, true},
	}
	for _, tc := range cases {
		if got := tc.status.Terminal(); got != tc.want {
			t.Fatalf("%s.Terminal() = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestTierPro(t *testing.T) {
	if TierAnonymous.Pro() || TierFree.Pro() {
		t.Fatal("anonymous/free must not be pro")
	}
	if !TierPro.Pro() {
		t.Fatal("pro tier should be pro")
	}
}
