package skeleton

import "sort"

// Usage bitmask categories reported to the skeleton writer.
const (
	// UsageMeshWeight marks a bone referenced by at least one mesh vertex.
	UsageMeshWeight uint8 = 1 << 0
	// UsageAttachment marks a bone referenced by a dummy/attach point.
	UsageAttachment uint8 = 1 << 1
)

// UsageTracker accumulates which global bones a conversion actually
// references, so unused bones can be flagged in the exported skeleton.
// State is scoped to one export; it is purely additive and never fails.
type UsageTracker struct {
	flags map[int32]uint8
}

// NewUsageTracker returns an empty tracker.
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{flags: make(map[int32]uint8)}
}

// MarkUsed records a mesh-weight reference to the bone.
func (t *UsageTracker) MarkUsed(bone int32) {
	t.flags[bone] |= UsageMeshWeight
}

// MarkUsedByAttachment records a dummy/attach-point reference to the bone.
func (t *UsageTracker) MarkUsedByAttachment(bone int32) {
	t.flags[bone] |= UsageAttachment
}

// UsageBitmask returns the accumulated usage categories for the bone,
// zero if it was never referenced.
func (t *UsageTracker) UsageBitmask(bone int32) uint8 {
	return t.flags[bone]
}

// Used reports whether the bone was referenced in any category.
func (t *UsageTracker) Used(bone int32) bool {
	return t.flags[bone] != 0
}

// UsedBones returns all referenced bone indices in ascending order.
func (t *UsageTracker) UsedBones() []int32 {
	out := make([]int32, 0, len(t.flags))
	for bone := range t.flags {
		out = append(out, bone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
