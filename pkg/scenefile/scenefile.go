// Package scenefile reads and writes scenes: a TOML description format, glTF
// node hierarchies, and a watcher for live reloading a scene file.
package scenefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/scene"
)

var (
	ErrUnknownParent = errors.New("unknown parent")
	ErrUnknownFormat = errors.New("unknown scene file format")
)

// File is the TOML document: an ordered list of [[node]] tables.
type File struct {
	Nodes []NodeDef `toml:"node"`
}

// NodeDef is one [[node]] table. When Matrix is set it is the node's local
// transform (16 numbers, column-major) and the TRS fields are ignored.
type NodeDef struct {
	Name      string       `toml:"name"`
	Shape     string       `toml:"shape,omitempty"`
	Parent    string       `toml:"parent,omitempty"`
	Translate *[3]float64  `toml:"translate,omitempty"`
	Rotate    *[3]float64  `toml:"rotate,omitempty"` // Euler degrees, X then Y then Z
	Scale     *[3]float64  `toml:"scale,omitempty"`
	Color     *[3]float64  `toml:"color,omitempty"`
	Matrix    *[16]float64 `toml:"matrix,omitempty"`
}

// DefaultColor is used for nodes that do not set a color.
var DefaultColor = scene.RGB(1, 1, 1)

// Local returns the local transform described by d.
func (d NodeDef) Local() math3d.Mat4 {
	if d.Matrix != nil {
		return math3d.Mat4(*d.Matrix)
	}
	t, r, s := math3d.Zero3(), math3d.Zero3(), math3d.One3()
	if d.Translate != nil {
		t = math3d.FromArray(*d.Translate)
	}
	if d.Rotate != nil {
		r = math3d.FromArray(*d.Rotate)
	}
	if d.Scale != nil {
		s = math3d.FromArray(*d.Scale)
	}
	return math3d.TRS(t, r, s)
}

// Build creates a scene from the node definitions. Parents must be defined
// before their children.
func (f *File) Build() (*scene.Scene, error) {
	s := scene.New()
	for i, d := range f.Nodes {
		if err := addNode(s, d); err != nil {
			return nil, fmt.Errorf("node %d (%q): %w", i, d.Name, err)
		}
	}
	return s, nil
}

func addNode(s *scene.Scene, d NodeDef) error {
	shape, err := scene.ParseShape(d.Shape)
	if err != nil {
		return err
	}
	spec := scene.NodeSpec{
		Name:  d.Name,
		Local: d.Local(),
		Color: DefaultColor,
		Shape: shape,
	}
	if d.Color != nil {
		spec.Color = scene.ColorFromArray(*d.Color)
	}
	if d.Parent != "" {
		p, ok := s.Lookup(d.Parent)
		if !ok {
			return fmt.Errorf("%w %q", ErrUnknownParent, d.Parent)
		}
		spec.Parent = p
	}
	_, err = s.Add(spec)
	return err
}

// Decode reads a TOML scene.
func Decode(r io.Reader) (*scene.Scene, error) {
	var f File
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("decode scene at %d:%d: %w", row, col, err)
		}
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return f.Build()
}

// Load reads a TOML scene file.
func Load(path string) (*scene.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scene: %w", err)
	}
	s, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// FromScene describes s as a File. Nodes are listed parents first and store
// their local transform as a matrix, so accumulated rotations survive.
// Unnamed nodes get generated names.
func FromScene(s *scene.Scene) (*File, error) {
	names := make(map[scene.Handle]string, s.Len())
	taken := make(map[string]bool, s.Len())
	for n := range s.All() {
		if n.Name() != "" {
			taken[n.Name()] = true
		}
	}
	i := 0
	for n := range s.All() {
		name := n.Name()
		for name == "" {
			i++
			if candidate := fmt.Sprintf("node%d", i); !taken[candidate] {
				name = candidate
			}
		}
		taken[name] = true
		names[n.Handle()] = name
	}

	f := &File{Nodes: make([]NodeDef, 0, s.Len())}
	err := s.Walk(func(n *scene.Node, _ int) error {
		m := [16]float64(n.Local())
		c := n.Color().Array()
		d := NodeDef{
			Name:   names[n.Handle()],
			Matrix: &m,
			Color:  &c,
		}
		if n.Shape() != scene.ShapeCube {
			d.Shape = n.Shape().String()
		}
		if p, ok := s.Node(n.Parent()); ok {
			d.Parent = names[p.Handle()]
		}
		f.Nodes = append(f.Nodes, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(f.Nodes) != s.Len() {
		return nil, fmt.Errorf("encode scene: %d nodes unreachable from a root: %w", s.Len()-len(f.Nodes), scene.ErrCycle)
	}
	return f, nil
}

// Encode writes s as TOML.
func Encode(w io.Writer, s *scene.Scene) error {
	f, err := FromScene(s)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(w).Encode(f); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	return nil
}

// Save writes s to path, choosing the format from the extension.
func Save(path string, s *scene.Scene) error {
	switch format(path) {
	case ".toml":
		var buf bytes.Buffer
		if err := Encode(&buf, s); err != nil {
			return err
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("save scene: %w", err)
		}
		return nil
	case ".gltf", ".glb":
		return ExportGLTF(path, s)
	}
	return fmt.Errorf("save %s: %w", path, ErrUnknownFormat)
}

// Open loads a scene from a .toml, .gltf or .glb file.
func Open(path string) (*scene.Scene, error) {
	switch format(path) {
	case ".toml":
		return Load(path)
	case ".gltf", ".glb":
		return ImportGLTF(path)
	}
	return nil, fmt.Errorf("open %s: %w", path, ErrUnknownFormat)
}

func format(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
