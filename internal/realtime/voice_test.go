package realtime

import (
	"reflect"
	"testing"
)

func TestCoordinatorJoinLeavesPreviousChannel(t *testing.T) {
	coordinator := NewCoordinator()

	coordinator.Join("c1", "vc-a", "r1", "")
	left := coordinator.Join("c1", "vc-b", "r1", "vc-a")

	want := []VoiceMembership{{ChannelID: "vc-a", RoomID: "r1"}}
	if !reflect.DeepEqual(left, want) {
		t.Fatalf("Join: want departures %v got %v", want, left)
	}
	if got := coordinator.Members("vc-a"); len(got) != 0 {
		t.Fatalf("Members(vc-a): want empty got %v", got)
	}
	if got, want := coordinator.Members("vc-b"), []string{"c1"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Members(vc-b): want %v got %v", want, got)
	}
	channelID, ok := coordinator.ChannelOf("c1")
	if !ok || channelID != "vc-b" {
		t.Fatalf("ChannelOf(c1): want vc-b got %q ok=%t", channelID, ok)
	}
}

func TestCoordinatorJoinLeavesTrackedChannelWithoutClientHint(t *testing.T) {
	coordinator := NewCoordinator()

	coordinator.Join("c1", "vc-a", "r1", "")
	// Client omits the previous channel; the coordinator's own record wins.
	left := coordinator.Join("c1", "vc-b", "r1", "")

	if len(left) != 1 || left[0].ChannelID != "vc-a" {
		t.Fatalf("Join: want departure from vc-a got %v", left)
	}
	if got := coordinator.Members("vc-a"); len(got) != 0 {
		t.Fatalf("Members(vc-a): want empty got %v", got)
	}
}

func TestCoordinatorLeave(t *testing.T) {
	coordinator := NewCoordinator()

	coordinator.Join("c1", "vc-a", "r1", "")
	released := coordinator.Leave("c1", "vc-a")

	if released.RoomID != "r1" {
		t.Fatalf("Leave: want room r1 got %q", released.RoomID)
	}
	if _, ok := coordinator.ChannelOf("c1"); ok {
		t.Fatalf("ChannelOf(c1): want absent after leave")
	}
}

func TestCoordinatorLeaveUnknownChannel(t *testing.T) {
	coordinator := NewCoordinator()

	released := coordinator.Leave("c1", "vc-a")
	if released.ChannelID != "vc-a" || released.RoomID != "" {
		t.Fatalf("Leave: want bare vc-a membership got %+v", released)
	}
}

func TestCoordinatorLeaveAllClearsEveryChannel(t *testing.T) {
	coordinator := NewCoordinator()

	coordinator.Join("c1", "vc-a", "r1", "")
	// Simulate stale memberships a connection erroneously accumulated.
	coordinator.tracker.Join("c1", "vc-b")
	coordinator.tracker.Join("c1", "vc-c")

	left := coordinator.LeaveAll("c1")
	if len(left) != 3 {
		t.Fatalf("LeaveAll: want 3 departures got %v", left)
	}
	for _, channelID := range []string{"vc-a", "vc-b", "vc-c"} {
		if got := coordinator.Members(channelID); len(got) != 0 {
			t.Fatalf("Members(%s): want empty got %v", channelID, got)
		}
	}
	if _, ok := coordinator.ChannelOf("c1"); ok {
		t.Fatalf("ChannelOf(c1): want absent after LeaveAll")
	}
}
