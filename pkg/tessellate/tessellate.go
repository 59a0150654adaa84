// Package tessellate evaluates a model graph with a geometry kernel and
// produces one triangle mesh per model.
package tessellate

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/chazu/blockmesh/pkg/collision"
	"github.com/chazu/blockmesh/pkg/geom"
	"github.com/chazu/blockmesh/pkg/graph"
	"github.com/chazu/blockmesh/pkg/kernel"
	"github.com/chazu/blockmesh/pkg/surface"
)

// Options control how a graph is tessellated. The zero value uses the
// process-wide surface registry and sprite table and skips collision boxes.
type Options struct {
	Surfaces  *surface.Registry
	Sprites   *surface.SpriteTable
	Collision bool // derive boxes for models that ask for them
	Logger    *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Surfaces == nil {
		o.Surfaces = surface.Default
	}
	if o.Sprites == nil {
		o.Sprites = surface.Sprites
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Tessellate validates g and builds one mesh per model root, in root order.
// The graph is never mutated.
func Tessellate(g *graph.ModelGraph, k kernel.Kernel, opts Options) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}
	if r := graph.ValidateAll(g); !r.OK() {
		return nil, fmt.Errorf("tessellate: invalid graph: %w", r.Errors[0])
	}

	w := &walker{g: g, k: k, opts: opts.withDefaults(), solids: make(map[graph.NodeID]kernel.Solid)}
	var meshes []*kernel.Mesh
	for _, model := range g.Models() {
		m, err := w.model(model)
		if err != nil {
			return nil, fmt.Errorf("tessellate: model %q: %w", model.Name, err)
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

type walker struct {
	g      *graph.ModelGraph
	k      kernel.Kernel
	opts   Options
	solids map[graph.NodeID]kernel.Solid
}

func (w *walker) model(n *graph.Node) (*kernel.Mesh, error) {
	var s kernel.Solid
	for _, child := range w.g.Children(n) {
		cs, err := w.solid(child)
		if err != nil {
			return nil, err
		}
		if s == nil {
			s = cs
		} else {
			s = w.k.Union(s, cs)
		}
	}

	m, err := w.k.ToMesh(s)
	if err != nil {
		return nil, fmt.Errorf("ToMesh: %w", err)
	}
	m.ModelName = n.Name

	md, _ := n.Data.(graph.ModelData)
	if md.Collision && w.opts.Collision {
		if v, ok := w.k.(kernel.Voxelizer); ok {
			m.Boxes = collision.FindBoxes(v.Occupancy(s))
		} else {
			w.opts.Logger.Warn("kernel cannot voxelize, skipping collision boxes",
				zap.String("model", n.Name), zap.String("kernel", fmt.Sprintf("%T", w.k)))
		}
	}

	w.opts.Logger.Debug("model tessellated",
		zap.String("model", n.Name),
		zap.Int("triangles", m.TriangleCount()),
		zap.Int("boxes", len(m.Boxes)))
	return m, nil
}

// solid evaluates n bottom-up. Shared subgraphs are built once.
func (w *walker) solid(n *graph.Node) (kernel.Solid, error) {
	if s, ok := w.solids[n.ID]; ok {
		return s, nil
	}

	var s kernel.Solid
	switch n.Kind {
	case graph.NodePrimitive:
		var err error
		if s, err = w.primitive(n); err != nil {
			return nil, err
		}

	case graph.NodeBoolean:
		bd := n.Data.(graph.BooleanData)
		children := w.g.Children(n)
		a, err := w.solid(children[0])
		if err != nil {
			return nil, err
		}
		b, err := w.solid(children[1])
		if err != nil {
			return nil, err
		}
		switch bd.Op {
		case graph.OpUnion:
			s = w.k.Union(a, b)
		case graph.OpDifference:
			s = w.k.Difference(a, b)
		case graph.OpIntersection:
			s = w.k.Intersection(a, b)
		default:
			return nil, fmt.Errorf("node %s: unknown boolean op %v", n.ID.Short(), bd.Op)
		}

	case graph.NodeTransform:
		td := n.Data.(graph.TransformData)
		child, err := w.solid(w.g.Children(n)[0])
		if err != nil {
			return nil, err
		}
		s = child
		// Rotation first, then translation.
		if td.Rotation != nil && !td.Rotation.IsZero() {
			s = w.k.Rotate(s, td.Rotation.X, td.Rotation.Y, td.Rotation.Z)
		}
		if td.Translation != nil && !td.Translation.IsZero() {
			s = w.k.Translate(s, td.Translation.X, td.Translation.Y, td.Translation.Z)
		}

	default:
		return nil, fmt.Errorf("node %s: %s cannot be used as geometry", n.ID.Short(), n.Kind)
	}

	w.solids[n.ID] = s
	return s, nil
}

func (w *walker) primitive(n *graph.Node) (kernel.Solid, error) {
	switch data := n.Data.(type) {
	case graph.BoxData:
		p, err := w.paint(data.Paint)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID.Short(), err)
		}
		return w.k.Box(data.Min.Array(), data.Max.Array(), p), nil
	case graph.CylinderData:
		p, err := w.paint(data.Paint)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID.Short(), err)
		}
		return w.k.Cylinder(data.Slices, p), nil
	default:
		return nil, fmt.Errorf("primitive node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}
}

// paint resolves surface and sprite names to handles.
func (w *walker) paint(ps graph.PaintSpec) (kernel.Paint, error) {
	rot, err := geom.RotationFromDegrees(ps.Rotation)
	if err != nil {
		return kernel.Paint{}, err
	}
	var h surface.Handle
	if ps.Surface != "" {
		h, err = w.opts.Surfaces.Intern(&surface.Surface{Name: ps.Surface, Topology: surface.Tiled})
		if err != nil {
			return kernel.Paint{}, err
		}
	}
	return kernel.Paint{
		Surface:  h,
		Color:    ps.Color,
		Rotation: rot,
		LockUV:   ps.LockUV,
		Emissive: ps.Emissive,
		Sprite:   w.opts.Sprites.Intern(ps.Sprite),
	}, nil
}
