package transcode

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Grimrukh/meshkit/pkg/mesh"
	"github.com/Grimrukh/meshkit/pkg/skeleton"
)

// testSubmesh builds a one-triangle skinned submesh bound entirely to
// palette slot 0, with one UV layer named layerName.
func testSubmesh(material, layerName string, palette []int32, offset float32) *Submesh {
	s := &Submesh{
		MaterialID:   material,
		BonePalette:  palette,
		UVLayerNames: []string{layerName},
		UVs:          make([][][2]float32, 1),
	}
	uvs := [][2]float32{{0, 0}, {1, 0}, {0, 1}}
	for i := 0; i < 3; i++ {
		s.Positions = append(s.Positions, [3]float32{offset + float32(i), 0, 0})
		s.BoneWeights = append(s.BoneWeights, [4]float32{1, 0, 0, 0})
		s.BoneIndices = append(s.BoneIndices, [4]int32{})
		s.Normals = append(s.Normals, [3]float32{0, 0, 1})
		s.NormalWs = append(s.NormalWs, 0)
		s.UVs[0] = append(s.UVs[0], uvs[i])
	}
	s.Faces = [][3]int32{{0, 1, 2}}
	return s
}

func mustMerge(t *testing.T, subs []*Submesh, skel *skeleton.Skeleton, opts MergeOptions) *mesh.Mesh {
	t.Helper()
	m, err := NewMerger(skel, opts).Merge(subs)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("merged mesh invalid: %v", err)
	}
	return m
}

func TestMerge_PaletteRemapsToGlobal(t *testing.T) {
	s := testSubmesh("mat0", "uv0", []int32{5}, 0)
	m := mustMerge(t, []*Submesh{s}, testSkeleton(8), MergeOptions{})

	if len(m.Vertices) != 3 {
		t.Fatalf("expected 3 vertices, got %d", len(m.Vertices))
	}
	for vi, v := range m.Vertices {
		if len(v.Weights) != 1 || v.Weights[0].Bone != 5 || v.Weights[0].Weight != 1 {
			t.Errorf("vertex %d: weights %v, expected global bone 5 weight 1", vi, v.Weights)
		}
	}
	if len(m.Materials) != 1 || m.Materials[0] != "mat0" {
		t.Errorf("materials = %v, expected [mat0]", m.Materials)
	}
}

func TestMerge_LayerUnionZeroFill(t *testing.T) {
	a := testSubmesh("mat0", "uv0", []int32{0}, 0)
	b := testSubmesh("mat1", "uv1", []int32{1}, 10)
	m := mustMerge(t, []*Submesh{a, b}, testSkeleton(2), MergeOptions{})

	if len(m.UVLayers) != 2 || m.UVLayers[0] != "uv0" || m.UVLayers[1] != "uv1" {
		t.Fatalf("UV layers = %v, expected ordered union [uv0 uv1]", m.UVLayers)
	}
	// First face's loops came from a: uv1 is zero-filled.
	for _, li := range m.Faces[0].Loops {
		if m.Loops[li].UVs[1] != (mgl32.Vec2{}) {
			t.Errorf("loop %d: absent uv1 should be zero, got %v", li, m.Loops[li].UVs[1])
		}
	}
	// Second face's loops came from b: uv0 is zero-filled, uv1 carries data.
	for c, li := range m.Faces[1].Loops {
		if m.Loops[li].UVs[0] != (mgl32.Vec2{}) {
			t.Errorf("loop %d: absent uv0 should be zero, got %v", li, m.Loops[li].UVs[0])
		}
		if c == 1 && m.Loops[li].UVs[1] != (mgl32.Vec2{1, 0}) {
			t.Errorf("loop %d: uv1 = %v, expected (1,0)", li, m.Loops[li].UVs[1])
		}
	}
}

func TestMerge_WeldVersusConcatenate(t *testing.T) {
	a := testSubmesh("mat0", "uv0", []int32{0}, 0)
	b := testSubmesh("mat0", "uv0", []int32{0}, 0) // same positions, same binding
	skel := testSkeleton(1)

	welded := mustMerge(t, []*Submesh{a, b}, skel, MergeOptions{WeldVertices: true})
	if len(welded.Vertices) != 3 {
		t.Errorf("welded: expected 3 shared vertices, got %d", len(welded.Vertices))
	}
	if len(welded.Loops) != 6 {
		t.Errorf("welded: loops must stay per-corner, got %d", len(welded.Loops))
	}

	concat := mustMerge(t, []*Submesh{a, b}, skel, MergeOptions{})
	if len(concat.Vertices) != 6 {
		t.Errorf("concatenated: expected 6 vertices, got %d", len(concat.Vertices))
	}
}

func TestMerge_WeldKeyRespectsBinding(t *testing.T) {
	// Identical positions but different bones must not weld.
	a := testSubmesh("mat0", "uv0", []int32{0}, 0)
	b := testSubmesh("mat0", "uv0", []int32{1}, 0)
	m := mustMerge(t, []*Submesh{a, b}, testSkeleton(2), MergeOptions{WeldVertices: true})
	if len(m.Vertices) != 6 {
		t.Errorf("expected 6 vertices (no cross-bone welding), got %d", len(m.Vertices))
	}
}

func TestMerge_FoldedNormalWReconstruction(t *testing.T) {
	s := testSubmesh("mat0", "uv0", []int32{3, 6}, 0)
	s.RigidWeighting = true
	s.FoldedNormalWBone = true
	s.NormalWs = []uint8{1, 1, 1} // palette slot 1 = global bone 6
	for vi := range s.BoneWeights {
		s.BoneWeights[vi] = [4]float32{}
		s.BoneIndices[vi] = [4]int32{}
	}

	m := mustMerge(t, []*Submesh{s}, testSkeleton(8), MergeOptions{})
	for vi, v := range m.Vertices {
		if len(v.Weights) != 1 || v.Weights[0].Bone != 6 || v.Weights[0].Weight != 1 {
			t.Errorf("vertex %d: weights %v, expected bone 6 weight 1", vi, v.Weights)
		}
	}
	// The folded byte is a bone index, not loop shading data.
	for li := range m.Loops {
		if m.Loops[li].NormalW != 0 {
			t.Errorf("loop %d: normal_w = %d, expected 0 after unfolding", li, m.Loops[li].NormalW)
		}
	}
}

func TestMerge_RigidReconstruction(t *testing.T) {
	s := testSubmesh("mat0", "uv0", []int32{4}, 0)
	s.RigidWeighting = true
	for vi := range s.BoneWeights {
		s.BoneWeights[vi] = [4]float32{} // rigid submeshes ship zero weights
	}

	m := mustMerge(t, []*Submesh{s}, testSkeleton(5), MergeOptions{})
	for vi, v := range m.Vertices {
		if len(v.Weights) != 1 || v.Weights[0].Bone != 4 || v.Weights[0].Weight != 1 {
			t.Errorf("vertex %d: weights %v, expected bone 4 weight 1", vi, v.Weights)
		}
	}
}

func TestMerge_OutOfRangePaletteBone(t *testing.T) {
	s := testSubmesh("mat0", "uv0", []int32{99}, 0)
	_, err := NewMerger(testSkeleton(3), MergeOptions{}).Merge([]*Submesh{s})
	if !errors.Is(err, ErrOutOfRangeBoneReference) {
		t.Fatalf("expected ErrOutOfRangeBoneReference, got %v", err)
	}
}

func TestMerge_MismatchedArrays(t *testing.T) {
	s := testSubmesh("mat0", "uv0", []int32{0}, 0)
	s.Normals = s.Normals[:2]
	_, err := NewMerger(testSkeleton(1), MergeOptions{}).Merge([]*Submesh{s})
	if !errors.Is(err, ErrMismatchedLoopArrays) {
		t.Fatalf("expected ErrMismatchedLoopArrays, got %v", err)
	}

	var lae *LoopArrayError
	if !errors.As(err, &lae) || lae.Field != "normals" {
		t.Errorf("expected structured error naming normals, got %v", err)
	}
}

func TestMerge_MaterialSlotHints(t *testing.T) {
	a := testSubmesh("mat0", "uv0", []int32{0}, 0)
	b := testSubmesh("mat0", "uv0", []int32{0}, 10)
	m := mustMerge(t, []*Submesh{a, b}, testSkeleton(1),
		MergeOptions{MaterialSlotHints: []int{0, 0}})

	if len(m.Materials) != 1 {
		t.Fatalf("expected folded single material slot, got %v", m.Materials)
	}
	for fi, f := range m.Faces {
		if f.MaterialSlot != 0 {
			t.Errorf("face %d slot = %d, expected 0", fi, f.MaterialSlot)
		}
	}

	if _, err := NewMerger(testSkeleton(1), MergeOptions{MaterialSlotHints: []int{0}}).
		Merge([]*Submesh{a, b}); err == nil {
		t.Error("expected error for slot hints length mismatch")
	}
}
