package tasks

import "testing"

// TestMemberCountName verifies the member-count channel name format
func TestMemberCountName(t *testing.T) {
	if got := memberCountName(423); got != "Member count 423" {
		t.Errorf("memberCountName(423) = %v, want %v", got, "Member count 423")
	}

	if got := memberCountName(0); got != "Member count 0" {
		t.Errorf("memberCountName(0) = %v, want %v", got, "Member count 0")
	}
}
