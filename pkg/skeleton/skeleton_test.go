package skeleton

import "testing"

func TestSkeleton_ValidIndex(t *testing.T) {
	s := New("root", "spine", "head")

	if s.Count() != 3 {
		t.Fatalf("expected 3 bones, got %d", s.Count())
	}

	tests := []struct {
		index    int32
		expected bool
	}{
		{0, true},
		{2, true},
		{3, false},
		{-1, false},
	}
	for _, tc := range tests {
		if s.ValidIndex(tc.index) != tc.expected {
			t.Errorf("ValidIndex(%d) = %v, expected %v", tc.index, !tc.expected, tc.expected)
		}
	}
}

func TestSkeleton_Parents(t *testing.T) {
	s := New("root", "spine")
	if s.Bones[0].Parent != -1 {
		t.Errorf("root parent = %d, expected -1", s.Bones[0].Parent)
	}
	if s.Bones[1].Parent != 0 {
		t.Errorf("spine parent = %d, expected 0", s.Bones[1].Parent)
	}
}

func TestUsageTracker(t *testing.T) {
	tr := NewUsageTracker()

	tr.MarkUsed(3)
	tr.MarkUsed(3) // idempotent
	tr.MarkUsedByAttachment(7)
	tr.MarkUsed(9)
	tr.MarkUsedByAttachment(9)

	if got := tr.UsageBitmask(3); got != UsageMeshWeight {
		t.Errorf("bone 3 bitmask = %b, expected %b", got, UsageMeshWeight)
	}
	if got := tr.UsageBitmask(7); got != UsageAttachment {
		t.Errorf("bone 7 bitmask = %b, expected %b", got, UsageAttachment)
	}
	if got := tr.UsageBitmask(9); got != UsageMeshWeight|UsageAttachment {
		t.Errorf("bone 9 bitmask = %b, expected both categories", got)
	}
	if tr.UsageBitmask(0) != 0 {
		t.Error("unreferenced bone should report zero bitmask")
	}

	if !tr.Used(7) || tr.Used(0) {
		t.Error("Used flags wrong")
	}

	bones := tr.UsedBones()
	want := []int32{3, 7, 9}
	if len(bones) != len(want) {
		t.Fatalf("UsedBones = %v, expected %v", bones, want)
	}
	for i := range want {
		if bones[i] != want[i] {
			t.Fatalf("UsedBones = %v, expected %v", bones, want)
		}
	}
}
