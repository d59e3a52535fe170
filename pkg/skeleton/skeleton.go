// Package skeleton provides bone identity and bone-usage tracking for mesh
// conversion. Transform math lives with the host; this package only knows
// bone names, parentage and index ranges.
package skeleton

// Bone is one skeleton bone. Parent is an index into the owning skeleton's
// bone list, or -1 for a root bone.
type Bone struct {
	Name   string
	Parent int32
}

// Skeleton is the global bone list referenced by mesh vertices.
type Skeleton struct {
	Bones []Bone
}

// New builds a skeleton from bone names, all parented to the root.
func New(names ...string) *Skeleton {
	s := &Skeleton{Bones: make([]Bone, len(names))}
	for i, name := range names {
		parent := int32(-1)
		if i > 0 {
			parent = 0
		}
		s.Bones[i] = Bone{Name: name, Parent: parent}
	}
	return s
}

// Count returns the number of bones.
func (s *Skeleton) Count() int {
	return len(s.Bones)
}

// ValidIndex reports whether i is a valid global bone index.
func (s *Skeleton) ValidIndex(i int32) bool {
	return i >= 0 && int(i) < len(s.Bones)
}
