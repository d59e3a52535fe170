package transcode

// MissingLayerPolicy decides what Split does when a descriptor requires a
// UV/color layer the unified mesh does not carry.
type MissingLayerPolicy int

const (
	// MissingLayerFail aborts the conversion with MissingLayerError.
	MissingLayerFail MissingLayerPolicy = iota
	// MissingLayerZeroFill substitutes zeroes for the absent layer.
	MissingLayerZeroFill
)

// AttributeLayout declares which loop attributes a material's submeshes
// carry and how vertices are bound to bones.
type AttributeLayout struct {
	// UVLayers lists required UV layer names, in output order.
	UVLayers []string `json:"uv_layers,omitempty"`
	// ColorLayers lists required color layer names, in output order.
	ColorLayers []string `json:"color_layers,omitempty"`
	// TangentLayers lists the UV layers whose tangents are written. Must be
	// a subset of UVLayers.
	TangentLayers []string `json:"tangent_layers,omitempty"`
	// HasBitangent folds a second tangent into the bitangent slot
	// (only some format versions).
	HasBitangent bool `json:"has_bitangent,omitempty"`

	// RigidWeighting marks the map-piece layout: every vertex is bound to
	// exactly one bone, duplicated across all four index slots with zero
	// weight.
	RigidWeighting bool `json:"rigid_weighting,omitempty"`
	// FoldRigidBoneIntoNormalW writes the palette-local bone index of a
	// rigid vertex into the normal_w byte, bypassing the weight/index
	// arrays. Newer format versions only; requires RigidWeighting.
	FoldRigidBoneIntoNormalW bool `json:"fold_rigid_bone_into_normal_w,omitempty"`
}

// SubmeshDescriptor is the per-material export configuration. One
// descriptor corresponds to one unified-mesh material slot; splitting may
// still divide a slot into several submeshes to honor the bone ceiling.
type SubmeshDescriptor struct {
	// MaterialID is opaque to the transcoder and carried through to the
	// binary writer.
	MaterialID string `json:"material_id"`

	Layout AttributeLayout `json:"layout"`

	UseBackfaceCulling bool `json:"use_backface_culling,omitempty"`
	// DefaultBoneIndex fills unused native bone slots and rigid fallbacks.
	DefaultBoneIndex int32 `json:"default_bone_index,omitempty"`
	// LODFaceSetCount is how many face sets the writer will emit for this
	// submesh (all duplicating the same triangle list).
	LODFaceSetCount int `json:"lod_face_set_count,omitempty"`

	// MaxBonesPerSubmesh is the hard palette ceiling for the target format
	// version (e.g. 38). Zero means unlimited.
	MaxBonesPerSubmesh int `json:"max_bones_per_submesh,omitempty"`
}
