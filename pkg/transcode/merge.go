package transcode

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Grimrukh/meshkit/pkg/mesh"
	"github.com/Grimrukh/meshkit/pkg/skeleton"
)

// MergeOptions configures a Merger.
type MergeOptions struct {
	// WeldVertices unifies source vertices with identical position, bone
	// weights and bone indices into one shared vertex, keeping their
	// distinct loop attributes as separate corners. Welding costs import
	// time but yields an edit-friendly connected mesh; without it,
	// submesh buffers are concatenated and former submesh boundaries stay
	// disconnected.
	WeldVertices bool

	// MaterialSlotHints maps each input submesh to a unified material
	// slot, letting the caller fold submeshes that share a material+layout
	// signature into one slot. Nil assigns one slot per submesh. That
	// folding policy itself lives with the caller.
	MaterialSlotHints []int
}

// Merger rebuilds one unified mesh from native submeshes.
type Merger struct {
	skel *skeleton.Skeleton
	opts MergeOptions
}

// NewMerger returns a merger over the given global skeleton.
func NewMerger(skel *skeleton.Skeleton, opts MergeOptions) *Merger {
	return &Merger{skel: skel, opts: opts}
}

// weldKey identifies structurally identical vertices across submeshes:
// same position and same canonicalized global bone binding.
type weldKey struct {
	pos     [3]float32
	bones   [4]int32
	weights [4]float32
}

// Merge consumes the ordered submesh list and produces one unified mesh.
// Submesh-local bone indices are remapped to global skeleton indices via
// each palette; the merged UV/color layer set is the ordered union of every
// submesh's layer names, with absent layers zero-filled. On error no mesh
// is returned.
func (mg *Merger) Merge(subs []*Submesh) (*mesh.Mesh, error) {
	for i, s := range subs {
		if err := s.validate(i); err != nil {
			return nil, err
		}
		for _, bone := range s.BonePalette {
			if !mg.skel.ValidIndex(bone) {
				return nil, &BoneRangeError{Submesh: i, Vertex: -1, Bone: bone, Limit: mg.skel.Count()}
			}
		}
	}

	out := &mesh.Mesh{}

	// Ordered union of layer names across all submeshes.
	for _, s := range subs {
		for _, name := range s.UVLayerNames {
			if out.UVLayerIndex(name) < 0 {
				out.UVLayers = append(out.UVLayers, name)
			}
		}
		for _, name := range s.ColorLayerNames {
			if out.ColorLayerIndex(name) < 0 {
				out.ColorLayers = append(out.ColorLayers, name)
			}
		}
		for _, name := range s.TangentLayerNames {
			if out.TangentLayerIndex(name) < 0 {
				out.TangentLayers = append(out.TangentLayers, name)
			}
		}
		if s.Bitangents != nil {
			out.HasBitangent = true
		}
	}

	// Material slot assignment.
	slots := mg.opts.MaterialSlotHints
	if slots == nil {
		slots = make([]int, len(subs))
		for i := range slots {
			slots[i] = i
		}
	} else if len(slots) != len(subs) {
		return nil, fmt.Errorf("material slot hints length %d, want %d", len(slots), len(subs))
	}
	maxSlot := -1
	for _, s := range slots {
		if s > maxSlot {
			maxSlot = s
		}
	}
	out.Materials = make([]string, maxSlot+1)
	for i, s := range subs {
		if out.Materials[slots[i]] == "" {
			out.Materials[slots[i]] = s.MaterialID
		}
	}

	welded := make(map[weldKey]int32)

	for si, s := range subs {
		// Per-submesh layer position mapping into the union lists.
		uvMap := make([]int, len(s.UVLayerNames))
		for i, name := range s.UVLayerNames {
			uvMap[i] = out.UVLayerIndex(name)
		}
		colorMap := make([]int, len(s.ColorLayerNames))
		for i, name := range s.ColorLayerNames {
			colorMap[i] = out.ColorLayerIndex(name)
		}
		tangentMap := make([]int, len(s.TangentLayerNames))
		for i, name := range s.TangentLayerNames {
			tangentMap[i] = out.TangentLayerIndex(name)
		}

		// Remap every local vertex to a unified vertex.
		toUnified := make([]int32, s.VertexCount())
		for vi := 0; vi < s.VertexCount(); vi++ {
			weights, err := mg.resolveGlobalWeights(s, si, vi)
			if err != nil {
				return nil, err
			}
			if mg.opts.WeldVertices {
				key := makeWeldKey(s.Positions[vi], weights)
				if idx, ok := welded[key]; ok {
					toUnified[vi] = idx
					continue
				}
				idx := mg.appendVertex(out, s.Positions[vi], weights)
				welded[key] = idx
				toUnified[vi] = idx
			} else {
				toUnified[vi] = mg.appendVertex(out, s.Positions[vi], weights)
			}
		}

		// Faces: one loop per corner, attributes spread into union layers.
		for _, face := range s.Faces {
			var loopIdx [3]int32
			for c := 0; c < 3; c++ {
				vi := face[c]
				loop := mesh.Loop{
					Vertex: toUnified[vi],
					Normal: mgl32.Vec3(s.Normals[vi]),
					UVs:    make([]mgl32.Vec2, len(out.UVLayers)),
					Colors: make([]mgl32.Vec4, len(out.ColorLayers)),
				}
				if len(out.TangentLayers) > 0 {
					loop.Tangents = make([]mgl32.Vec4, len(out.TangentLayers))
				}
				if !s.FoldedNormalWBone {
					// A folded normal_w is a bone index, not loop data.
					loop.NormalW = s.NormalWs[vi]
				}
				for li, dst := range uvMap {
					loop.UVs[dst] = mgl32.Vec2(s.UVs[li][vi])
				}
				for li, dst := range colorMap {
					loop.Colors[dst] = mgl32.Vec4(s.Colors[li][vi])
				}
				for li, dst := range tangentMap {
					loop.Tangents[dst] = mgl32.Vec4(s.Tangents[li][vi])
				}
				if s.Bitangents != nil {
					loop.Bitangent = mgl32.Vec4(s.Bitangents[vi])
				}
				loopIdx[c] = int32(len(out.Loops))
				out.Loops = append(out.Loops, loop)
			}
			out.AppendTriangle(loopIdx[0], loopIdx[1], loopIdx[2], int32(slots[si]))
		}
	}
	return out, nil
}

// resolveGlobalWeights maps one local vertex's bone binding back to global
// skeleton indices via the submesh palette.
func (mg *Merger) resolveGlobalWeights(s *Submesh, si, vi int) ([]mesh.VertexWeight, error) {
	palette := s.BonePalette
	if s.FoldedNormalWBone {
		local := int32(s.NormalWs[vi])
		if int(local) >= len(palette) {
			return nil, &BoneRangeError{Submesh: si, Vertex: vi, Bone: local, Limit: len(palette)}
		}
		return []mesh.VertexWeight{{Bone: palette[local], Weight: 1}}, nil
	}
	if s.RigidWeighting {
		local := s.BoneIndices[vi][0]
		if local < 0 || int(local) >= len(palette) {
			return nil, &BoneRangeError{Submesh: si, Vertex: vi, Bone: local, Limit: len(palette)}
		}
		return []mesh.VertexWeight{{Bone: palette[local], Weight: 1}}, nil
	}
	var out []mesh.VertexWeight
	for slot := 0; slot < 4; slot++ {
		w := s.BoneWeights[vi][slot]
		if w == 0 {
			continue
		}
		local := s.BoneIndices[vi][slot]
		if local < 0 || int(local) >= len(palette) {
			return nil, &BoneRangeError{Submesh: si, Vertex: vi, Bone: local, Limit: len(palette)}
		}
		out = append(out, mesh.VertexWeight{Bone: palette[local], Weight: w})
	}
	return out, nil
}

func (mg *Merger) appendVertex(out *mesh.Mesh, pos [3]float32, weights []mesh.VertexWeight) int32 {
	idx := int32(len(out.Vertices))
	out.Vertices = append(out.Vertices, mesh.Vertex{
		Position: mgl32.Vec3(pos),
		Weights:  weights,
	})
	return idx
}

// makeWeldKey canonicalizes a vertex's bone binding (sorted by bone index,
// -1 padded) so identical vertices weld regardless of slot order.
func makeWeldKey(pos [3]float32, weights []mesh.VertexWeight) weldKey {
	sorted := append([]mesh.VertexWeight(nil), weights...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Bone < sorted[j].Bone })
	key := weldKey{
		pos:   pos,
		bones: [4]int32{unusedBoneSlot, unusedBoneSlot, unusedBoneSlot, unusedBoneSlot},
	}
	for i, w := range sorted {
		if i >= 4 {
			break
		}
		key.bones[i] = w.Bone
		key.weights[i] = w.Weight
	}
	return key
}
