// Package interchange reads and writes the JSON document format meshtool
// uses to carry unified meshes, skeletons, descriptors and native submeshes
// between pipeline stages.
package interchange

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Grimrukh/meshkit/pkg/mesh"
	"github.com/Grimrukh/meshkit/pkg/skeleton"
	"github.com/Grimrukh/meshkit/pkg/transcode"
)

// Bone is the JSON form of one skeleton bone.
type Bone struct {
	Name   string `json:"name"`
	Parent int32  `json:"parent"`
}

// VertexWeight is the JSON form of one bone weight.
type VertexWeight struct {
	Bone   int32   `json:"bone"`
	Weight float32 `json:"weight"`
}

// Vertex is the JSON form of one unified-mesh vertex.
type Vertex struct {
	Position [3]float32     `json:"position"`
	Weights  []VertexWeight `json:"weights,omitempty"`
}

// Loop is the JSON form of one face corner.
type Loop struct {
	Vertex    int32        `json:"vertex"`
	Normal    [3]float32   `json:"normal"`
	NormalW   uint8        `json:"normal_w,omitempty"`
	Tangents  [][4]float32 `json:"tangents,omitempty"`
	Bitangent *[4]float32  `json:"bitangent,omitempty"`
	Colors    [][4]float32 `json:"colors,omitempty"`
	UVs       [][2]float32 `json:"uvs,omitempty"`
}

// Face is the JSON form of one triangle. Loops must hold exactly three
// corner indices; other counts are rejected on load.
type Face struct {
	Loops        []int32 `json:"loops"`
	MaterialSlot int32   `json:"material_slot"`
}

// Mesh is the JSON form of a unified mesh.
type Mesh struct {
	Vertices      []Vertex `json:"vertices"`
	Loops         []Loop   `json:"loops"`
	Faces         []Face   `json:"faces"`
	Materials     []string `json:"materials,omitempty"`
	UVLayers      []string `json:"uv_layers,omitempty"`
	ColorLayers   []string `json:"color_layers,omitempty"`
	TangentLayers []string `json:"tangent_layers,omitempty"`
	HasBitangent  bool     `json:"has_bitangent,omitempty"`
}

// Document is one interchange file: a skeleton plus either a unified mesh
// with descriptors (export input) or a native submesh list (import input).
type Document struct {
	Skeleton    []Bone                        `json:"skeleton,omitempty"`
	Mesh        *Mesh                         `json:"mesh,omitempty"`
	Descriptors []transcode.SubmeshDescriptor `json:"descriptors,omitempty"`
	Submeshes   []*transcode.Submesh          `json:"submeshes,omitempty"`
}

// Load reads and decodes a document from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return doc, nil
}

// Save encodes and writes a document to disk.
func Save(path string, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BuildSkeleton converts the document's bone list.
func (d *Document) BuildSkeleton() *skeleton.Skeleton {
	s := &skeleton.Skeleton{Bones: make([]skeleton.Bone, len(d.Skeleton))}
	for i, b := range d.Skeleton {
		s.Bones[i] = skeleton.Bone{Name: b.Name, Parent: b.Parent}
	}
	return s
}

// BuildMesh converts the document's unified mesh, validating face corner
// counts and structural invariants.
func (d *Document) BuildMesh() (*mesh.Mesh, error) {
	if d.Mesh == nil {
		return nil, fmt.Errorf("document carries no unified mesh")
	}
	src := d.Mesh
	m := &mesh.Mesh{
		Vertices:      make([]mesh.Vertex, len(src.Vertices)),
		Loops:         make([]mesh.Loop, len(src.Loops)),
		Materials:     append([]string(nil), src.Materials...),
		UVLayers:      append([]string(nil), src.UVLayers...),
		ColorLayers:   append([]string(nil), src.ColorLayers...),
		TangentLayers: append([]string(nil), src.TangentLayers...),
		HasBitangent:  src.HasBitangent,
	}
	for i, v := range src.Vertices {
		weights := make([]mesh.VertexWeight, len(v.Weights))
		for wi, w := range v.Weights {
			weights[wi] = mesh.VertexWeight{Bone: w.Bone, Weight: w.Weight}
		}
		m.Vertices[i] = mesh.Vertex{Position: mgl32.Vec3(v.Position), Weights: weights}
	}
	for i, l := range src.Loops {
		loop := mesh.Loop{
			Vertex:  l.Vertex,
			Normal:  mgl32.Vec3(l.Normal),
			NormalW: l.NormalW,
		}
		loop.Tangents = make([]mgl32.Vec4, len(l.Tangents))
		for ti, t := range l.Tangents {
			loop.Tangents[ti] = mgl32.Vec4(t)
		}
		loop.Colors = make([]mgl32.Vec4, len(l.Colors))
		for ci, c := range l.Colors {
			loop.Colors[ci] = mgl32.Vec4(c)
		}
		loop.UVs = make([]mgl32.Vec2, len(l.UVs))
		for ui, uv := range l.UVs {
			loop.UVs[ui] = mgl32.Vec2(uv)
		}
		if l.Bitangent != nil {
			loop.Bitangent = mgl32.Vec4(*l.Bitangent)
		}
		m.Loops[i] = loop
	}
	for i, f := range src.Faces {
		if len(f.Loops) != 3 {
			return nil, fmt.Errorf("face %d has %d corners, want 3 (triangulate upstream)", i, len(f.Loops))
		}
		m.AppendTriangle(f.Loops[0], f.Loops[1], f.Loops[2], f.MaterialSlot)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mesh document: %w", err)
	}
	return m, nil
}

// FromMesh converts a unified mesh into its JSON form.
func FromMesh(m *mesh.Mesh) *Mesh {
	out := &Mesh{
		Vertices:      make([]Vertex, len(m.Vertices)),
		Loops:         make([]Loop, len(m.Loops)),
		Faces:         make([]Face, len(m.Faces)),
		Materials:     append([]string(nil), m.Materials...),
		UVLayers:      append([]string(nil), m.UVLayers...),
		ColorLayers:   append([]string(nil), m.ColorLayers...),
		TangentLayers: append([]string(nil), m.TangentLayers...),
		HasBitangent:  m.HasBitangent,
	}
	for i := range m.Vertices {
		v := &m.Vertices[i]
		weights := make([]VertexWeight, len(v.Weights))
		for wi, w := range v.Weights {
			weights[wi] = VertexWeight{Bone: w.Bone, Weight: w.Weight}
		}
		out.Vertices[i] = Vertex{Position: [3]float32(v.Position), Weights: weights}
	}
	for i := range m.Loops {
		l := &m.Loops[i]
		loop := Loop{
			Vertex:  l.Vertex,
			Normal:  [3]float32(l.Normal),
			NormalW: l.NormalW,
		}
		for _, t := range l.Tangents {
			loop.Tangents = append(loop.Tangents, [4]float32(t))
		}
		for _, c := range l.Colors {
			loop.Colors = append(loop.Colors, [4]float32(c))
		}
		for _, uv := range l.UVs {
			loop.UVs = append(loop.UVs, [2]float32(uv))
		}
		if m.HasBitangent {
			bt := [4]float32(l.Bitangent)
			loop.Bitangent = &bt
		}
		out.Loops[i] = loop
	}
	for i := range m.Faces {
		f := &m.Faces[i]
		out.Faces[i] = Face{
			Loops:        []int32{f.Loops[0], f.Loops[1], f.Loops[2]},
			MaterialSlot: f.MaterialSlot,
		}
	}
	return out
}

// FromSkeleton converts a skeleton into its JSON form.
func FromSkeleton(s *skeleton.Skeleton) []Bone {
	out := make([]Bone, len(s.Bones))
	for i, b := range s.Bones {
		out[i] = Bone{Name: b.Name, Parent: b.Parent}
	}
	return out
}
