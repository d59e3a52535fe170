// Package transcode converts between the unified editable mesh and the
// game-native representation: per-material submeshes, each bound to a capped
// local bone palette. Splitting and merging are pure, synchronous batch
// computations; run conversions for different models on separate goroutines
// if parallelism is wanted, one model per goroutine.
package transcode

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Grimrukh/meshkit/pkg/mesh"
	"github.com/Grimrukh/meshkit/pkg/skeleton"
)

// unusedBoneSlot marks an empty native bone slot during the uniqueness scan.
// Emitted submeshes pad unused slots with 0, per format convention.
const unusedBoneSlot = int32(-1)

// Options configures a Splitter.
type Options struct {
	// NormalTangentDotThreshold is the dot-product threshold deciding
	// whether two loops on the same vertex may share a native vertex.
	// A dot >= threshold (for the normal and every tangent layer) shares;
	// below it splits. Exactly-at-threshold counts as shared.
	NormalTangentDotThreshold float64

	// MaxSubmeshVertexCount closes a partition before its local vertex
	// buffer exceeds this count. Zero means unlimited; targets with 16-bit
	// face indices use 65535.
	MaxSubmeshVertexCount int

	// OnMissingLayer decides whether an absent required UV/color layer
	// aborts the conversion or is zero-filled.
	OnMissingLayer MissingLayerPolicy

	// CorrectTangentSigns flips loop tangents on faces with mirrored UV
	// winding before vertex deduplication. The correction is applied to the
	// input mesh in place.
	CorrectTangentSigns bool
}

// DefaultOptions returns the splitter defaults.
func DefaultOptions() Options {
	return Options{
		NormalTangentDotThreshold: 0.999,
		OnMissingLayer:            MissingLayerFail,
		CorrectTangentSigns:       true,
	}
}

// Splitter partitions one unified mesh into native submeshes.
type Splitter struct {
	skel *skeleton.Skeleton
	opts Options
}

// NewSplitter returns a splitter over the given global skeleton.
func NewSplitter(skel *skeleton.Skeleton, opts Options) *Splitter {
	return &Splitter{skel: skel, opts: opts}
}

// Split consumes m and produces one or more submeshes per material slot
// referenced by at least one face. descriptors[i] configures material slot
// i. Every bone referenced by an emitted vertex is recorded in tracker
// (pass nil to skip usage tracking). On error no submeshes are returned.
//
// Faces are walked in their existing order within each material bucket; a
// partition closes greedily when adding a face would exceed the
// descriptor's bone ceiling or the vertex-count ceiling. This keeps
// visually coherent face ranges together at O(faces) cost rather than
// chasing a globally optimal palette packing.
func (sp *Splitter) Split(m *mesh.Mesh, descriptors []SubmeshDescriptor, tracker *skeleton.UsageTracker) ([]*Submesh, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid unified mesh: %w", err)
	}
	if sp.opts.MaxSubmeshVertexCount != 0 && sp.opts.MaxSubmeshVertexCount < 3 {
		return nil, fmt.Errorf("max submesh vertex count %d cannot hold a triangle", sp.opts.MaxSubmeshVertexCount)
	}
	if tracker == nil {
		tracker = skeleton.NewUsageTracker()
	}

	if sp.opts.CorrectTangentSigns {
		m.CorrectTangentSigns()
	}

	// Bucket faces by material slot, preserving face order.
	buckets := make([][]int, len(descriptors))
	for fi := range m.Faces {
		f := &m.Faces[fi]
		if f.MaterialSlot < 0 || int(f.MaterialSlot) >= len(descriptors) {
			return nil, &SlotError{Face: fi, Slot: f.MaterialSlot}
		}
		if n := distinctCorners(m, f); n != 3 {
			return nil, &TopologyError{Face: fi, DistinctCorners: n}
		}
		buckets[f.MaterialSlot] = append(buckets[f.MaterialSlot], fi)
	}

	var out []*Submesh
	for slot := range descriptors {
		if len(buckets[slot]) == 0 {
			continue
		}
		subs, err := sp.splitBucket(m, &descriptors[slot], buckets[slot], tracker)
		if err != nil {
			return nil, err
		}
		out = append(out, subs...)
	}
	return out, nil
}

// distinctCorners counts the distinct unified vertices behind a face's
// three loops.
func distinctCorners(m *mesh.Mesh, f *mesh.Face) int {
	v0 := m.Loops[f.Loops[0]].Vertex
	v1 := m.Loops[f.Loops[1]].Vertex
	v2 := m.Loops[f.Loops[2]].Vertex
	switch {
	case v0 == v1 && v1 == v2:
		return 1
	case v0 == v1 || v1 == v2 || v0 == v2:
		return 2
	}
	return 3
}

// layerMapping resolves a descriptor's layer names to unified-mesh layer
// positions. -1 marks a zero-filled absent layer.
type layerMapping struct {
	uv      []int
	color   []int
	tangent []int
}

func (sp *Splitter) resolveLayers(m *mesh.Mesh, d *SubmeshDescriptor) (layerMapping, error) {
	var lm layerMapping
	for _, name := range d.Layout.UVLayers {
		idx := m.UVLayerIndex(name)
		if idx < 0 && sp.opts.OnMissingLayer == MissingLayerFail {
			return lm, &MissingLayerError{MaterialID: d.MaterialID, Kind: "uv", Layer: name}
		}
		lm.uv = append(lm.uv, idx)
	}
	for _, name := range d.Layout.ColorLayers {
		idx := m.ColorLayerIndex(name)
		if idx < 0 && sp.opts.OnMissingLayer == MissingLayerFail {
			return lm, &MissingLayerError{MaterialID: d.MaterialID, Kind: "color", Layer: name}
		}
		lm.color = append(lm.color, idx)
	}
	for _, name := range d.Layout.TangentLayers {
		idx := m.TangentLayerIndex(name)
		if idx < 0 && sp.opts.OnMissingLayer == MissingLayerFail {
			return lm, &MissingLayerError{MaterialID: d.MaterialID, Kind: "tangent", Layer: name}
		}
		lm.tangent = append(lm.tangent, idx)
	}
	return lm, nil
}

// resolvedBones is a vertex's bone binding packed into the native four-slot
// form, still holding global indices and -1 padding.
type resolvedBones struct {
	indices  [4]int32
	weights  [4]float32
	distinct []int32
}

// resolveVertexBones packs a vertex's weights into the four native slots.
// Rigid layouts bind exactly one bone across all four slots with zero
// weight; a weightless vertex falls back to the sole skeleton bone only
// when the layout is rigid and exactly one bone exists.
func (sp *Splitter) resolveVertexBones(m *mesh.Mesh, vi int32, d *SubmeshDescriptor) (*resolvedBones, error) {
	weighted := m.Vertices[vi].WeightedBones()
	if len(weighted) > 4 {
		return nil, &BoneWeightError{Vertex: int(vi), Bones: len(weighted)}
	}
	for _, w := range weighted {
		if !sp.skel.ValidIndex(w.Bone) {
			return nil, &BoneRangeError{Submesh: -1, Vertex: int(vi), Bone: w.Bone, Limit: sp.skel.Count()}
		}
	}

	rb := &resolvedBones{
		indices: [4]int32{unusedBoneSlot, unusedBoneSlot, unusedBoneSlot, unusedBoneSlot},
	}

	if d.Layout.RigidWeighting {
		var bone int32
		switch len(weighted) {
		case 0:
			if sp.skel.Count() != 1 {
				return nil, &WeightingError{Vertex: int(vi), Reason: "no bone weights and sole-bone fallback requires a single-bone skeleton"}
			}
			bone = 0
		case 1:
			bone = weighted[0].Bone
		default:
			return nil, &WeightingError{Vertex: int(vi), Reason: fmt.Sprintf("rigid layout but weighted to %d bones", len(weighted))}
		}
		rb.indices = [4]int32{bone, bone, bone, bone}
		rb.distinct = []int32{bone}
		return rb, nil
	}

	if len(weighted) == 0 {
		return nil, &WeightingError{Vertex: int(vi), Reason: "skinned vertex has no bone weights"}
	}
	for i, w := range weighted {
		rb.indices[i] = w.Bone
		rb.weights[i] = w.Weight
		rb.distinct = append(rb.distinct, w.Bone)
	}
	return rb, nil
}

// localVertex is one entry of a partition's native vertex buffer, with bone
// indices still global until the partition is emitted.
type localVertex struct {
	source    int32
	position  mgl32.Vec3
	bones     *resolvedBones
	normal    mgl32.Vec3
	normalW   uint8
	tangents  []mgl32.Vec4
	bitangent mgl32.Vec4
	colors    []mgl32.Vec4
	uvs       []mgl32.Vec2
}

// corner is a face corner resolved through a descriptor's layer mapping,
// ready to match against or join the local vertex buffer.
type corner struct {
	vertex localVertex
	// local is the matched local vertex index, or -1 when the corner needs
	// a fresh one. Filled per plan.
	local int32
}

// partitionBuilder accumulates one submesh-in-progress for a material
// bucket.
type partitionBuilder struct {
	palette    []int32
	paletteIdx map[int32]int32
	verts      []localVertex
	byVertex   map[int32][]int32
	faces      [][3]int32
	source     []int
	bounds     mesh.Bounds
}

func newPartitionBuilder() *partitionBuilder {
	return &partitionBuilder{
		paletteIdx: make(map[int32]int32),
		byVertex:   make(map[int32][]int32),
		bounds:     mesh.NewBounds(),
	}
}

// splitBucket walks one material bucket's faces in order, packing them into
// partitions under the bone and vertex ceilings, and emits one submesh per
// partition.
func (sp *Splitter) splitBucket(m *mesh.Mesh, d *SubmeshDescriptor, faceIdxs []int, tracker *skeleton.UsageTracker) ([]*Submesh, error) {
	lm, err := sp.resolveLayers(m, d)
	if err != nil {
		return nil, err
	}

	// Bone resolution is per unified vertex, not per partition; cache it
	// across the bucket.
	boneCache := make(map[int32]*resolvedBones)
	resolve := func(vi int32) (*resolvedBones, error) {
		if rb, ok := boneCache[vi]; ok {
			return rb, nil
		}
		rb, err := sp.resolveVertexBones(m, vi, d)
		if err != nil {
			return nil, err
		}
		boneCache[vi] = rb
		return rb, nil
	}

	var out []*Submesh
	pb := newPartitionBuilder()

	emit := func() error {
		if len(pb.faces) == 0 {
			return nil
		}
		sub, err := sp.emitPartition(pb, d)
		if err != nil {
			return err
		}
		out = append(out, sub)
		pb = newPartitionBuilder()
		return nil
	}

	for _, fi := range faceIdxs {
		f := &m.Faces[fi]
		var corners [3]corner
		for c := 0; c < 3; c++ {
			loop := &m.Loops[f.Loops[c]]
			rb, err := resolve(loop.Vertex)
			if err != nil {
				return nil, err
			}
			corners[c].vertex = sp.buildLocalVertex(m, loop, rb, lm)
		}

		// Greedy budget checks: close the current partition when this face
		// would overflow it, then retry against a fresh one.
		newBones := pb.planBones(&corners)
		newVerts := sp.planVertices(pb, &corners)
		overflowBones := d.MaxBonesPerSubmesh > 0 && len(pb.palette)+len(newBones) > d.MaxBonesPerSubmesh
		overflowVerts := sp.opts.MaxSubmeshVertexCount > 0 && len(pb.verts)+newVerts > sp.opts.MaxSubmeshVertexCount
		if (overflowBones || overflowVerts) && len(pb.faces) > 0 {
			if err := emit(); err != nil {
				return nil, err
			}
			newBones = pb.planBones(&corners)
			newVerts = sp.planVertices(pb, &corners)
		}
		if d.MaxBonesPerSubmesh > 0 && len(newBones) > d.MaxBonesPerSubmesh {
			// A single face needs more distinct bones than the ceiling
			// allows; no partitioning can satisfy it.
			return nil, &PaletteOverflowError{MaterialID: d.MaterialID, Size: len(newBones), Limit: d.MaxBonesPerSubmesh}
		}

		pb.commitFace(fi, &corners, tracker)
	}
	if err := emit(); err != nil {
		return nil, err
	}
	return out, nil
}

// buildLocalVertex projects a loop through the descriptor's layer mapping
// into native vertex form.
func (sp *Splitter) buildLocalVertex(m *mesh.Mesh, loop *mesh.Loop, rb *resolvedBones, lm layerMapping) localVertex {
	lv := localVertex{
		source:   loop.Vertex,
		position: m.Vertices[loop.Vertex].Position,
		bones:    rb,
		normal:   loop.Normal,
		normalW:  loop.NormalW,
	}
	if n := len(lm.uv); n > 0 {
		lv.uvs = make([]mgl32.Vec2, n)
		for i, src := range lm.uv {
			if src >= 0 {
				lv.uvs[i] = loop.UVs[src]
			}
		}
	}
	if n := len(lm.color); n > 0 {
		lv.colors = make([]mgl32.Vec4, n)
		for i, src := range lm.color {
			if src >= 0 {
				lv.colors[i] = loop.Colors[src]
			}
		}
	}
	if n := len(lm.tangent); n > 0 {
		lv.tangents = make([]mgl32.Vec4, n)
		for i, src := range lm.tangent {
			if src >= 0 {
				lv.tangents[i] = loop.Tangents[src]
			}
		}
	}
	if m.HasBitangent {
		lv.bitangent = loop.Bitangent
	}
	return lv
}

// planBones returns the distinct global bones the face's corners reference
// that are not yet in the partition palette.
func (pb *partitionBuilder) planBones(corners *[3]corner) []int32 {
	var added []int32
	for c := 0; c < 3; c++ {
		for _, bone := range corners[c].vertex.bones.distinct {
			if _, ok := pb.paletteIdx[bone]; ok {
				continue
			}
			seen := false
			for _, a := range added {
				if a == bone {
					seen = true
					break
				}
			}
			if !seen {
				added = append(added, bone)
			}
		}
	}
	return added
}

// planVertices fills each corner's local index (or -1) and returns how many
// fresh local vertices the face would add. Corners of one face always sit
// on distinct unified vertices (degenerate faces were rejected), so each
// unmatched corner is one fresh vertex.
func (sp *Splitter) planVertices(pb *partitionBuilder, corners *[3]corner) int {
	added := 0
	for c := 0; c < 3; c++ {
		corners[c].local = pb.matchVertex(&corners[c].vertex, sp.opts.NormalTangentDotThreshold)
		if corners[c].local < 0 {
			added++
		}
	}
	return added
}

// matchVertex finds an existing local vertex this corner may share, or -1.
func (pb *partitionBuilder) matchVertex(lv *localVertex, threshold float64) int32 {
	for _, idx := range pb.byVertex[lv.source] {
		if sharesVertex(&pb.verts[idx], lv, threshold) {
			return idx
		}
	}
	return -1
}

// sharesVertex reports whether two loops on the same unified vertex may
// share one native vertex: identical UVs, colors and normal_w, and a
// normal/tangent dot product at or above the threshold on every layer.
// Below-threshold divergence forces a duplicate so hard edges and UV seams
// render correctly.
func sharesVertex(a, b *localVertex, threshold float64) bool {
	if a.source != b.source || a.normalW != b.normalW {
		return false
	}
	for i := range a.uvs {
		if a.uvs[i] != b.uvs[i] {
			return false
		}
	}
	for i := range a.colors {
		if a.colors[i] != b.colors[i] {
			return false
		}
	}
	if float64(a.normal.Dot(b.normal)) < threshold {
		return false
	}
	for i := range a.tangents {
		dot := a.tangents[i][0]*b.tangents[i][0] +
			a.tangents[i][1]*b.tangents[i][1] +
			a.tangents[i][2]*b.tangents[i][2]
		if float64(dot) < threshold {
			return false
		}
	}
	return true
}

// commitFace adds the face and any fresh palette entries and local vertices
// to the partition. Budgets were already checked by the caller.
func (pb *partitionBuilder) commitFace(faceIdx int, corners *[3]corner, tracker *skeleton.UsageTracker) {
	var local [3]int32
	for c := 0; c < 3; c++ {
		lv := &corners[c].vertex
		for _, bone := range lv.bones.distinct {
			if _, ok := pb.paletteIdx[bone]; !ok {
				pb.paletteIdx[bone] = int32(len(pb.palette))
				pb.palette = append(pb.palette, bone)
			}
		}
		idx := corners[c].local
		if idx < 0 {
			idx = int32(len(pb.verts))
			pb.verts = append(pb.verts, *lv)
			pb.byVertex[lv.source] = append(pb.byVertex[lv.source], idx)
			pb.bounds.Extend(lv.position)
			for _, bone := range lv.bones.distinct {
				tracker.MarkUsed(bone)
			}
		}
		corners[c].local = idx
		local[c] = idx
	}
	pb.faces = append(pb.faces, local)
	pb.source = append(pb.source, faceIdx)
}

// emitPartition freezes one partition into an immutable submesh, remapping
// bone indices to palette-local positions and padding unused slots with 0.
func (sp *Splitter) emitPartition(pb *partitionBuilder, d *SubmeshDescriptor) (*Submesh, error) {
	if d.MaxBonesPerSubmesh > 0 && len(pb.palette) > d.MaxBonesPerSubmesh {
		// Partition budgeting failed; splitter bug.
		return nil, &PaletteOverflowError{MaterialID: d.MaterialID, Size: len(pb.palette), Limit: d.MaxBonesPerSubmesh}
	}

	n := len(pb.verts)
	sub := &Submesh{
		MaterialID:        d.MaterialID,
		Descriptor:        d,
		BonePalette:       append([]int32(nil), pb.palette...),
		Positions:         make([][3]float32, n),
		BoneWeights:       make([][4]float32, n),
		BoneIndices:       make([][4]int32, n),
		Normals:           make([][3]float32, n),
		NormalWs:          make([]uint8, n),
		UVLayerNames:      append([]string(nil), d.Layout.UVLayers...),
		ColorLayerNames:   append([]string(nil), d.Layout.ColorLayers...),
		TangentLayerNames: append([]string(nil), d.Layout.TangentLayers...),
		RigidWeighting:    d.Layout.RigidWeighting,
		FoldedNormalWBone: d.Layout.RigidWeighting && d.Layout.FoldRigidBoneIntoNormalW,
		Faces:             append([][3]int32(nil), pb.faces...),
		SourceFaces:       append([]int(nil), pb.source...),
		Bounds:            pb.bounds,
	}
	sub.UVs = make([][][2]float32, len(d.Layout.UVLayers))
	for i := range sub.UVs {
		sub.UVs[i] = make([][2]float32, n)
	}
	sub.Colors = make([][][4]float32, len(d.Layout.ColorLayers))
	for i := range sub.Colors {
		sub.Colors[i] = make([][4]float32, n)
	}
	sub.Tangents = make([][][4]float32, len(d.Layout.TangentLayers))
	for i := range sub.Tangents {
		sub.Tangents[i] = make([][4]float32, n)
	}
	if d.Layout.HasBitangent {
		sub.Bitangents = make([][4]float32, n)
	}

	folded := d.Layout.RigidWeighting && d.Layout.FoldRigidBoneIntoNormalW
	for i := range pb.verts {
		lv := &pb.verts[i]
		sub.Positions[i] = [3]float32(lv.position)
		sub.Normals[i] = [3]float32(lv.normal)

		if folded {
			sub.NormalWs[i] = uint8(pb.paletteIdx[lv.bones.distinct[0]])
		} else {
			sub.NormalWs[i] = lv.normalW
			for s := 0; s < 4; s++ {
				g := lv.bones.indices[s]
				if g == unusedBoneSlot {
					sub.BoneIndices[i][s] = 0
					continue
				}
				sub.BoneIndices[i][s] = pb.paletteIdx[g]
				sub.BoneWeights[i][s] = lv.bones.weights[s]
			}
		}

		for li := range sub.UVs {
			sub.UVs[li][i] = [2]float32(lv.uvs[li])
		}
		for li := range sub.Colors {
			sub.Colors[li][i] = [4]float32(lv.colors[li])
		}
		for li := range sub.Tangents {
			sub.Tangents[li][i] = [4]float32(lv.tangents[li])
		}
		if sub.Bitangents != nil {
			sub.Bitangents[i] = [4]float32(lv.bitangent)
		}
	}
	return sub, nil
}
