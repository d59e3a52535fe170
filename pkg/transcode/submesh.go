package transcode

import "github.com/Grimrukh/meshkit/pkg/mesh"

// Submesh is one native mesh partition: a single material, a capped local
// bone palette, and parallel per-vertex attribute arrays the binary writer
// consumes as-is. Submeshes are never mutated once produced.
type Submesh struct {
	MaterialID string `json:"material_id"`

	// Descriptor is the configuration this submesh was produced under.
	Descriptor *SubmeshDescriptor `json:"-"`

	// BonePalette lists the distinct global bone indices this submesh
	// references, in first-seen order. Vertex bone indices are positions
	// into this palette.
	BonePalette []int32 `json:"bone_palette"`

	// Per-vertex parallel arrays.
	Positions   [][3]float32 `json:"positions"`
	BoneWeights [][4]float32 `json:"bone_weights"`
	BoneIndices [][4]int32   `json:"bone_indices"`
	Normals     [][3]float32 `json:"normals"`
	NormalWs    []uint8      `json:"normal_ws"`
	// Tangents and UVs hold one array per layer name, outer index parallel
	// to TangentLayerNames / UVLayerNames.
	Tangents   [][][4]float32 `json:"tangents,omitempty"`
	Bitangents [][4]float32   `json:"bitangents,omitempty"`
	Colors     [][][4]float32 `json:"colors,omitempty"`
	UVs        [][][2]float32 `json:"uvs,omitempty"`

	UVLayerNames      []string `json:"uv_layers,omitempty"`
	ColorLayerNames   []string `json:"color_layers,omitempty"`
	TangentLayerNames []string `json:"tangent_layers,omitempty"`

	// RigidWeighting and FoldedNormalWBone mirror the descriptor layout
	// flags so a submesh read back from native data can be merged without
	// its descriptor: rigid vertices bind one bone, and folded ones carry
	// the palette-local bone index in normal_w.
	RigidWeighting    bool `json:"rigid_weighting,omitempty"`
	FoldedNormalWBone bool `json:"folded_normal_w_bone,omitempty"`

	// Faces holds triangles as local vertex index triplets.
	Faces [][3]int32 `json:"faces"`

	// SourceFaces records the unified-mesh face index behind each local
	// face, for coverage auditing. Not part of the binary contract.
	SourceFaces []int `json:"-"`

	Bounds mesh.Bounds `json:"bounds"`
}

// VertexCount returns the local vertex buffer length.
func (s *Submesh) VertexCount() int {
	return len(s.Positions)
}

// validate checks the parallel-array and index invariants the merger relies
// on. idx is the submesh's position in the input list, for error reporting.
func (s *Submesh) validate(idx int) error {
	n := len(s.Positions)
	check := func(field string, got int) *LoopArrayError {
		if got != n {
			return &LoopArrayError{Submesh: idx, Field: field, Want: n, Got: got}
		}
		return nil
	}
	if err := check("bone_weights", len(s.BoneWeights)); err != nil {
		return err
	}
	if err := check("bone_indices", len(s.BoneIndices)); err != nil {
		return err
	}
	if err := check("normals", len(s.Normals)); err != nil {
		return err
	}
	if err := check("normal_ws", len(s.NormalWs)); err != nil {
		return err
	}
	if len(s.UVs) != len(s.UVLayerNames) {
		return &LoopArrayError{Submesh: idx, Field: "uv layer arrays", Want: len(s.UVLayerNames), Got: len(s.UVs)}
	}
	for li, layer := range s.UVs {
		if err := check("uvs["+s.UVLayerNames[li]+"]", len(layer)); err != nil {
			return err
		}
	}
	if len(s.Tangents) != len(s.TangentLayerNames) {
		return &LoopArrayError{Submesh: idx, Field: "tangent layer arrays", Want: len(s.TangentLayerNames), Got: len(s.Tangents)}
	}
	for li, layer := range s.Tangents {
		if err := check("tangents["+s.TangentLayerNames[li]+"]", len(layer)); err != nil {
			return err
		}
	}
	if len(s.Colors) != len(s.ColorLayerNames) {
		return &LoopArrayError{Submesh: idx, Field: "color layer arrays", Want: len(s.ColorLayerNames), Got: len(s.Colors)}
	}
	for li, layer := range s.Colors {
		if err := check("colors["+s.ColorLayerNames[li]+"]", len(layer)); err != nil {
			return err
		}
	}
	if len(s.Bitangents) != 0 {
		if err := check("bitangents", len(s.Bitangents)); err != nil {
			return err
		}
	}
	for fi, face := range s.Faces {
		for _, vi := range face {
			if vi < 0 || int(vi) >= n {
				return &LoopArrayError{Submesh: idx, Field: "faces", Want: n, Got: fi}
			}
		}
	}
	return nil
}

// UnionBounds returns the AABB enclosing every submesh in the list.
func UnionBounds(submeshes []*Submesh) mesh.Bounds {
	union := mesh.NewBounds()
	for _, s := range submeshes {
		union = union.Union(s.Bounds)
	}
	return union
}
