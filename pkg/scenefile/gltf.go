package scenefile

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/diorama/pkg/geometry"
	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/scene"
)

// ImportGLTF reads the node hierarchy of a glTF or GLB file. Each node's
// matrix (or TRS) becomes its local transform. Nodes with a mesh become cubes
// colored by the base color factor of their first primitive's material;
// nodes without a mesh become pivots. Mesh geometry itself is not read.
func ImportGLTF(path string) (*scene.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	s, err := fromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return s, nil
}

func fromDocument(doc *gltf.Document) (*scene.Scene, error) {
	s := scene.New()
	visited := make([]bool, len(doc.Nodes))

	var add func(idx int, parent scene.Handle) error
	add = func(idx int, parent scene.Handle) error {
		if idx < 0 || idx >= len(doc.Nodes) {
			return fmt.Errorf("node index %d out of range", idx)
		}
		if visited[idx] {
			return fmt.Errorf("node %d: %w", idx, scene.ErrCycle)
		}
		visited[idx] = true

		n := doc.Nodes[idx]
		spec := scene.NodeSpec{
			Name:   uniqueName(s, n.Name, idx),
			Local:  nodeLocal(n),
			Color:  DefaultColor,
			Parent: parent,
			Shape:  scene.ShapePivot,
		}
		if n.Mesh != nil {
			spec.Shape = scene.ShapeCube
			spec.Color = meshColor(doc, *n.Mesh)
		}
		h, err := s.Add(spec)
		if err != nil {
			return fmt.Errorf("node %d: %w", idx, err)
		}
		for _, c := range n.Children {
			if err := add(c, h); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range rootNodes(doc) {
		if err := add(root, scene.Nil); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// rootNodes returns the nodes of the default scene, or every node that is
// nobody's child when the document has no scenes.
func rootNodes(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		i := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			i = *doc.Scene
		}
		return doc.Scenes[i].Nodes
	}

	child := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(child) {
				child[c] = true
			}
		}
	}
	var roots []int
	for i, isChild := range child {
		if !isChild {
			roots = append(roots, i)
		}
	}
	return roots
}

func nodeLocal(n *gltf.Node) math3d.Mat4 {
	m := math3d.Mat4(n.Matrix)
	if m != (math3d.Mat4{}) && m != math3d.Identity() {
		return m
	}
	scale := math3d.FromArray(n.Scale)
	if scale == (math3d.Vec3{}) {
		scale = math3d.One3()
	}
	q := n.Rotation
	return math3d.Translate(math3d.FromArray(n.Translation)).
		Mul(math3d.FromQuat(q[0], q[1], q[2], q[3])).
		Mul(math3d.Scale(scale))
}

func meshColor(doc *gltf.Document, mesh int) scene.Color {
	if mesh < 0 || mesh >= len(doc.Meshes) || len(doc.Meshes[mesh].Primitives) == 0 {
		return DefaultColor
	}
	mat := doc.Meshes[mesh].Primitives[0].Material
	if mat == nil || *mat < 0 || *mat >= len(doc.Materials) {
		return DefaultColor
	}
	pbr := doc.Materials[*mat].PBRMetallicRoughness
	if pbr == nil || pbr.BaseColorFactor == nil {
		return DefaultColor
	}
	f := pbr.BaseColorFactor
	return scene.RGB(f[0], f[1], f[2])
}

// uniqueName keeps glTF names that are free in s and renames clashes, since
// glTF does not require unique names.
func uniqueName(s *scene.Scene, name string, idx int) string {
	if name == "" {
		return ""
	}
	if _, taken := s.Lookup(name); !taken {
		return name
	}
	for i := idx; ; i++ {
		candidate := fmt.Sprintf("%s.%d", name, i)
		if _, taken := s.Lookup(candidate); !taken {
			return candidate
		}
	}
}

// ExportGLTF writes the node hierarchy of s. Cube nodes share one unit cube
// geometry; each distinct color gets its own mesh and material. A .glb path
// writes a binary file, anything else a .gltf with a sidecar .bin buffer.
func ExportGLTF(path string, s *scene.Scene) error {
	doc, err := toDocument(s)
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}

	if format(path) == ".glb" {
		err = gltf.SaveBinary(doc, path)
	} else {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		for _, b := range doc.Buffers {
			b.URI = base + ".bin"
		}
		err = gltf.Save(doc, path)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

func toDocument(s *scene.Scene) (*gltf.Document, error) {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "diorama"

	// Node indices follow scene insertion order.
	index := make(map[scene.Handle]int, s.Len())
	for n := range s.All() {
		index[n.Handle()] = len(index)
	}

	var cube *gltf.Primitive
	meshes := make(map[scene.Color]int)
	meshFor := func(c scene.Color) int {
		if i, ok := meshes[c]; ok {
			return i
		}
		if cube == nil {
			cube = writeCube(doc)
		}
		doc.Materials = append(doc.Materials, &gltf.Material{
			Name: fmt.Sprintf("color-%d", len(doc.Materials)),
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &[4]float64{c.R, c.G, c.B, 1},
			},
		})
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name: fmt.Sprintf("cube-%d", len(doc.Meshes)),
			Primitives: []*gltf.Primitive{{
				Attributes: cube.Attributes,
				Indices:    cube.Indices,
				Material:   gltf.Index(len(doc.Materials) - 1),
			}},
		})
		meshes[c] = len(doc.Meshes) - 1
		return meshes[c]
	}

	var roots []int
	for n := range s.All() {
		node := &gltf.Node{
			Name:   n.Name(),
			Matrix: [16]float64(n.Local()),
		}
		if n.Shape() == scene.ShapeCube {
			node.Mesh = gltf.Index(meshFor(n.Color()))
		}
		for _, c := range s.Children(n.Handle()) {
			node.Children = append(node.Children, index[c])
		}
		if _, ok := s.Node(n.Parent()); !ok {
			roots = append(roots, index[n.Handle()])
		}
		doc.Nodes = append(doc.Nodes, node)
	}
	if len(roots) == 0 && s.Len() > 0 {
		return nil, fmt.Errorf("no root node: %w", scene.ErrCycle)
	}
	doc.Scenes[0].Nodes = roots
	return doc, nil
}

// writeCube stores the unit cube's vertex and index data in doc and returns
// a primitive template referencing them.
func writeCube(doc *gltf.Document) *gltf.Primitive {
	mesh := geometry.MakeCube(1)
	positions := make([][3]float32, mesh.VertexCount())
	normals := make([][3]float32, mesh.VertexCount())
	for i := range mesh.VertexCount() {
		p, n := mesh.GetVertex(i)
		positions[i] = [3]float32{float32(p.X), float32(p.Y), float32(p.Z)}
		normals[i] = [3]float32{float32(n.X), float32(n.Y), float32(n.Z)}
	}
	indices := make([]uint16, 0, mesh.TriangleCount()*3)
	for i := range mesh.TriangleCount() {
		for _, v := range mesh.GetFace(i) {
			indices = append(indices, uint16(v))
		}
	}

	return &gltf.Primitive{
		Attributes: map[string]int{
			gltf.POSITION: modeler.WritePosition(doc, positions),
			gltf.NORMAL:   modeler.WriteNormal(doc, normals),
		},
		Indices: gltf.Index(modeler.WriteIndices(doc, indices)),
	}
}
