package transcode

import (
	"errors"
	"fmt"
)

// Conversion errors. All are fatal to the current split/merge call: the
// caller receives one structured error and no partial output. Structured
// types below wrap these sentinels, so errors.Is works on both.
var (
	ErrInvalidFaceTopology       = errors.New("invalid face topology")
	ErrExcessiveBoneWeights      = errors.New("vertex weighted to more than 4 bones")
	ErrUnresolvableBoneWeighting = errors.New("unresolvable bone weighting")
	ErrMissingAttributeLayer     = errors.New("required attribute layer missing")
	ErrBonePaletteOverflow       = errors.New("bone palette exceeds ceiling")
	ErrOutOfRangeBoneReference   = errors.New("bone reference out of range")
	ErrMismatchedLoopArrays      = errors.New("mismatched loop array lengths")
	ErrUnknownMaterialSlot       = errors.New("face references material slot with no descriptor")
)

// TopologyError reports a face that is not a proper triangle: its three
// corners collapse onto fewer than three distinct vertices, or a corner
// references an invalid loop. Triangulation is an upstream responsibility.
type TopologyError struct {
	Face            int
	DistinctCorners int
}

func (e *TopologyError) Error() string {
	return fmt.Sprintf("face %d has %d distinct corners, want 3", e.Face, e.DistinctCorners)
}

func (e *TopologyError) Unwrap() error { return ErrInvalidFaceTopology }

// BoneWeightError reports a vertex carrying more distinct weighted bones
// than the four native slots can hold.
type BoneWeightError struct {
	Vertex int
	Bones  int
}

func (e *BoneWeightError) Error() string {
	return fmt.Sprintf("vertex %d weighted to %d distinct bones, limit 4", e.Vertex, e.Bones)
}

func (e *BoneWeightError) Unwrap() error { return ErrExcessiveBoneWeights }

// WeightingError reports a vertex whose bone binding cannot be resolved:
// no weights in a skinned layout, no weights in a rigid layout when the
// sole-bone fallback does not apply, or multiple bones in a rigid layout.
type WeightingError struct {
	Vertex int
	Reason string
}

func (e *WeightingError) Error() string {
	return fmt.Sprintf("vertex %d: %s", e.Vertex, e.Reason)
}

func (e *WeightingError) Unwrap() error { return ErrUnresolvableBoneWeighting }

// MissingLayerError reports a UV/color layer a descriptor requires but the
// unified mesh does not carry.
type MissingLayerError struct {
	MaterialID string
	Kind       string // "uv", "color" or "tangent"
	Layer      string
}

func (e *MissingLayerError) Error() string {
	return fmt.Sprintf("material %q requires %s layer %q not present in mesh", e.MaterialID, e.Kind, e.Layer)
}

func (e *MissingLayerError) Unwrap() error { return ErrMissingAttributeLayer }

// PaletteOverflowError reports a partition whose bone palette exceeds the
// configured ceiling. Surfacing one means the splitter itself is buggy,
// except for the degenerate case of a single face needing more bones than
// the ceiling allows.
type PaletteOverflowError struct {
	MaterialID string
	Size       int
	Limit      int
}

func (e *PaletteOverflowError) Error() string {
	return fmt.Sprintf("material %q: bone palette size %d exceeds limit %d", e.MaterialID, e.Size, e.Limit)
}

func (e *PaletteOverflowError) Unwrap() error { return ErrBonePaletteOverflow }

// BoneRangeError reports a bone index that resolves to nothing: a vertex
// weight outside the skeleton during split, or a palette entry or
// palette-local index outside range during merge.
type BoneRangeError struct {
	Submesh int // -1 when raised during split
	Vertex  int // -1 when not vertex-specific
	Bone    int32
	Limit   int
}

func (e *BoneRangeError) Error() string {
	if e.Submesh >= 0 {
		return fmt.Sprintf("submesh %d: bone index %d out of range (limit %d)", e.Submesh, e.Bone, e.Limit)
	}
	return fmt.Sprintf("vertex %d: bone index %d out of range (limit %d)", e.Vertex, e.Bone, e.Limit)
}

func (e *BoneRangeError) Unwrap() error { return ErrOutOfRangeBoneReference }

// LoopArrayError reports parallel arrays of differing lengths within one
// submesh, or a face index outside its vertex buffer. Defensive: indicates
// an upstream encoding bug, not bad artist data.
type LoopArrayError struct {
	Submesh int
	Field   string
	Want    int
	Got     int
}

func (e *LoopArrayError) Error() string {
	return fmt.Sprintf("submesh %d: %s length %d, want %d", e.Submesh, e.Field, e.Got, e.Want)
}

func (e *LoopArrayError) Unwrap() error { return ErrMismatchedLoopArrays }

// SlotError reports a face whose material slot has no descriptor.
type SlotError struct {
	Face int
	Slot int32
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("face %d references material slot %d with no descriptor", e.Face, e.Slot)
}

func (e *SlotError) Unwrap() error { return ErrUnknownMaterialSlot }
