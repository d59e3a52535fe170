// Package mesh defines the unified editable mesh: one vertex array with
// arbitrary per-vertex bone weights, per-corner loop attributes (normals,
// tangents, UVs, colors), and triangular faces bound to material slots.
package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexWeight binds a vertex to one global skeleton bone.
type VertexWeight struct {
	Bone   int32
	Weight float32
}

// Vertex is one deduplicated mesh vertex. Weights are unbounded here; the
// native four-slot cap is enforced when the mesh is split into submeshes.
type Vertex struct {
	Position mgl32.Vec3
	Weights  []VertexWeight
}

// WeightedBones returns the distinct bones carrying nonzero weight, in
// first-appearance order. Duplicate entries for the same bone are summed.
func (v *Vertex) WeightedBones() []VertexWeight {
	var out []VertexWeight
	for _, w := range v.Weights {
		if w.Weight == 0 {
			continue
		}
		merged := false
		for i := range out {
			if out[i].Bone == w.Bone {
				out[i].Weight += w.Weight
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, w)
		}
	}
	return out
}

// Loop is a face-corner attribute record. The Tangents, Colors and UVs
// slices are parallel to the owning mesh's TangentLayers, ColorLayers and
// UVLayers name lists.
type Loop struct {
	Vertex    int32
	Normal    mgl32.Vec3
	NormalW   uint8
	Tangents  []mgl32.Vec4
	Bitangent mgl32.Vec4
	Colors    []mgl32.Vec4
	UVs       []mgl32.Vec2
}

// Face is a triangle: three loop indices plus a material-slot index.
type Face struct {
	Loops        [3]int32
	MaterialSlot int32
}

// Mesh is the unified editable mesh.
type Mesh struct {
	Vertices []Vertex
	Loops    []Loop
	Faces    []Face

	// Materials holds one opaque material identity per slot. Face
	// MaterialSlot values index into it.
	Materials []string

	// Layer name lists. Loop attribute slices are parallel to these.
	UVLayers    []string
	ColorLayers []string
	// TangentLayers names the UV layers that carry a tangent. Each entry
	// must also appear in UVLayers.
	TangentLayers []string
	HasBitangent  bool
}

// UVLayerIndex returns the position of the named UV layer, or -1.
func (m *Mesh) UVLayerIndex(name string) int {
	return layerIndex(m.UVLayers, name)
}

// ColorLayerIndex returns the position of the named color layer, or -1.
func (m *Mesh) ColorLayerIndex(name string) int {
	return layerIndex(m.ColorLayers, name)
}

// TangentLayerIndex returns the position of the named tangent layer, or -1.
func (m *Mesh) TangentLayerIndex(name string) int {
	return layerIndex(m.TangentLayers, name)
}

func layerIndex(layers []string, name string) int {
	for i, n := range layers {
		if n == name {
			return i
		}
	}
	return -1
}

// AppendTriangle adds a face from three loop indices.
func (m *Mesh) AppendTriangle(l0, l1, l2 int32, materialSlot int32) {
	m.Faces = append(m.Faces, Face{Loops: [3]int32{l0, l1, l2}, MaterialSlot: materialSlot})
}

// Validate performs structural checks: every loop points at a valid vertex,
// every face at valid loops, and every loop carries one attribute per
// declared layer. Mismatches indicate an upstream encoding bug.
func (m *Mesh) Validate() error {
	for i := range m.Loops {
		l := &m.Loops[i]
		if l.Vertex < 0 || int(l.Vertex) >= len(m.Vertices) {
			return fmt.Errorf("loop %d references vertex %d of %d", i, l.Vertex, len(m.Vertices))
		}
		if len(l.UVs) != len(m.UVLayers) {
			return fmt.Errorf("loop %d has %d UVs, mesh declares %d UV layers", i, len(l.UVs), len(m.UVLayers))
		}
		if len(l.Colors) != len(m.ColorLayers) {
			return fmt.Errorf("loop %d has %d colors, mesh declares %d color layers", i, len(l.Colors), len(m.ColorLayers))
		}
		if len(l.Tangents) != len(m.TangentLayers) {
			return fmt.Errorf("loop %d has %d tangents, mesh declares %d tangent layers", i, len(l.Tangents), len(m.TangentLayers))
		}
	}
	for i := range m.Faces {
		for _, li := range m.Faces[i].Loops {
			if li < 0 || int(li) >= len(m.Loops) {
				return fmt.Errorf("face %d references loop %d of %d", i, li, len(m.Loops))
			}
		}
	}
	for _, name := range m.TangentLayers {
		if m.UVLayerIndex(name) < 0 {
			return fmt.Errorf("tangent layer %q has no matching UV layer", name)
		}
	}
	return nil
}

// MaterialSlotCount returns the number of material slots referenced by faces
// (highest slot index + 1), regardless of the Materials list length.
func (m *Mesh) MaterialSlotCount() int {
	max := -1
	for i := range m.Faces {
		if int(m.Faces[i].MaterialSlot) > max {
			max = int(m.Faces[i].MaterialSlot)
		}
	}
	return max + 1
}
