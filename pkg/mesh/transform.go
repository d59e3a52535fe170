package mesh

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// zeroNormalTolerance is the squared length below which a normal is treated
// as zero and left untouched by NormalizeNormals.
const zeroNormalTolerance = 1e-12

// SwapAxisConvention swaps the Y and Z components of every vertex position,
// converting between Y-up and Z-up coordinate systems. Tangents and
// bitangents are swapped too when requested.
func (m *Mesh) SwapAxisConvention(applyToTangents, applyToBitangents bool) {
	for i := range m.Vertices {
		p := &m.Vertices[i].Position
		p[1], p[2] = p[2], p[1]
	}
	if !applyToTangents && !applyToBitangents {
		return
	}
	for i := range m.Loops {
		l := &m.Loops[i]
		if applyToTangents {
			for t := range l.Tangents {
				l.Tangents[t][1], l.Tangents[t][2] = l.Tangents[t][2], l.Tangents[t][1]
			}
		}
		if applyToBitangents && m.HasBitangent {
			l.Bitangent[1], l.Bitangent[2] = l.Bitangent[2], l.Bitangent[1]
		}
	}
}

// InvertUV flips UV components per axis flag, applied to every UV layer
// uniformly (u -> 1-u, v -> 1-v).
func (m *Mesh) InvertUV(invertU, invertV bool) {
	if !invertU && !invertV {
		return
	}
	for i := range m.Loops {
		for u := range m.Loops[i].UVs {
			uv := &m.Loops[i].UVs[u]
			if invertU {
				uv[0] = 1 - uv[0]
			}
			if invertV {
				uv[1] = 1 - uv[1]
			}
		}
	}
}

// NormalizeNormals renormalizes every loop normal to unit length.
// Zero-length normals are left unchanged rather than producing NaN.
func (m *Mesh) NormalizeNormals() {
	for i := range m.Loops {
		n := m.Loops[i].Normal
		lenSq := n.Dot(n)
		if lenSq < zeroNormalTolerance {
			continue
		}
		inv := float32(1 / gomath.Sqrt(float64(lenSq)))
		m.Loops[i].Normal = n.Mul(inv)
	}
}

// CorrectTangentSigns flips the tangent direction on every face whose UV
// winding is mirrored (negative UV-edge determinant), per tangent layer.
// Loops are face-corner records, so the flip never leaks across faces.
// Mirrored neighbours end up with opposing tangents, which forces the vertex
// split that UV seams need.
func (m *Mesh) CorrectTangentSigns() {
	for ti, layer := range m.TangentLayers {
		uvIdx := m.UVLayerIndex(layer)
		if uvIdx < 0 {
			continue
		}
		for fi := range m.Faces {
			f := &m.Faces[fi]
			a := m.Loops[f.Loops[0]].UVs[uvIdx]
			b := m.Loops[f.Loops[1]].UVs[uvIdx]
			c := m.Loops[f.Loops[2]].UVs[uvIdx]
			if uvDeterminant(a, b, c) >= 0 {
				continue
			}
			for _, li := range f.Loops {
				t := &m.Loops[li].Tangents[ti]
				t[0] = -t[0]
				t[1] = -t[1]
				t[2] = -t[2]
			}
		}
	}
}

// uvDeterminant returns the signed area factor of the face's UV triangle.
func uvDeterminant(a, b, c mgl32.Vec2) float32 {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	return e1[0]*e2[1] - e2[0]*e1[1]
}
