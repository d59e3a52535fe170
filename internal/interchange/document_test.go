package interchange

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Grimrukh/meshkit/pkg/mesh"
	"github.com/Grimrukh/meshkit/pkg/skeleton"
)

func sampleMesh() *mesh.Mesh {
	m := &mesh.Mesh{
		Materials:     []string{"mat0"},
		UVLayers:      []string{"uv0"},
		TangentLayers: []string{"uv0"},
	}
	for i, p := range []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}} {
		m.Vertices = append(m.Vertices, mesh.Vertex{
			Position: p,
			Weights:  []mesh.VertexWeight{{Bone: int32(i % 2), Weight: 1}},
		})
		m.Loops = append(m.Loops, mesh.Loop{
			Vertex:   int32(i),
			Normal:   mgl32.Vec3{0, 0, 1},
			Tangents: []mgl32.Vec4{{1, 0, 0, 1}},
			UVs:      []mgl32.Vec2{{float32(i), 0}},
		})
	}
	m.AppendTriangle(0, 1, 2, 0)
	return m
}

func TestDocument_MeshRoundtrip(t *testing.T) {
	src := sampleMesh()
	doc := &Document{
		Skeleton: FromSkeleton(skeleton.New("root", "child")),
		Mesh:     FromMesh(src),
	}

	path := filepath.Join(t.TempDir(), "doc.json")
	if err := Save(path, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	skel := loaded.BuildSkeleton()
	if skel.Count() != 2 || skel.Bones[1].Name != "child" || skel.Bones[1].Parent != 0 {
		t.Errorf("skeleton did not round-trip: %+v", skel.Bones)
	}

	m, err := loaded.BuildMesh()
	if err != nil {
		t.Fatalf("BuildMesh failed: %v", err)
	}
	if len(m.Vertices) != 3 || len(m.Loops) != 3 || len(m.Faces) != 1 {
		t.Fatalf("mesh shape drifted: %d verts %d loops %d faces",
			len(m.Vertices), len(m.Loops), len(m.Faces))
	}
	if m.Vertices[1].Position != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("position drifted: %v", m.Vertices[1].Position)
	}
	if m.Vertices[1].Weights[0] != (mesh.VertexWeight{Bone: 1, Weight: 1}) {
		t.Errorf("weights drifted: %v", m.Vertices[1].Weights)
	}
	if m.Loops[2].UVs[0] != (mgl32.Vec2{2, 0}) {
		t.Errorf("UV drifted: %v", m.Loops[2].UVs[0])
	}
	if m.Loops[0].Tangents[0] != (mgl32.Vec4{1, 0, 0, 1}) {
		t.Errorf("tangent drifted: %v", m.Loops[0].Tangents[0])
	}
	if m.UVLayers[0] != "uv0" || m.TangentLayers[0] != "uv0" {
		t.Errorf("layer names drifted: %v / %v", m.UVLayers, m.TangentLayers)
	}
}

func TestDocument_RejectsNonTriangleFace(t *testing.T) {
	doc := &Document{
		Mesh: &Mesh{
			Vertices: []Vertex{{Position: [3]float32{0, 0, 0}}},
			Loops: []Loop{
				{Vertex: 0}, {Vertex: 0}, {Vertex: 0}, {Vertex: 0},
			},
			Faces: []Face{{Loops: []int32{0, 1, 2, 3}}},
		},
	}
	_, err := doc.BuildMesh()
	if err == nil {
		t.Fatal("expected error for quad face")
	}
	if !strings.Contains(err.Error(), "corners") {
		t.Errorf("unexpected error text: %v", err)
	}
}

func TestDocument_BuildMeshWithoutMesh(t *testing.T) {
	doc := &Document{}
	if _, err := doc.BuildMesh(); err == nil {
		t.Error("expected error for document without a mesh")
	}
}

func TestDocument_LoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing document")
	}
}
