package engine

import (
	"fmt"

	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/multierr"

	"github.com/chazu/blockmesh/pkg/graph"
)

// builtinFunc is the zygomys user function signature.
type builtinFunc = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// builder adds nodes to the graph under construction. Anonymous node IDs
// come from per-kind counters, so the same source always yields the same
// IDs.
type builder struct {
	g      *graph.ModelGraph
	counts map[string]int
}

// registerBuiltins installs the model DSL into env. Every builtin adds to g.
// Source must go through preprocessSource first so keywords arrive as
// marked strings.
func registerBuiltins(env *zygo.Zlisp, g *graph.ModelGraph) {
	b := &builder{g: g, counts: map[string]int{}}

	env.AddFunction("vec3", b.vec3)
	env.AddFunction("box", b.box)
	env.AddFunction("cylinder", b.cylinder)
	for _, op := range []graph.BoolOp{graph.OpUnion, graph.OpDifference, graph.OpIntersection} {
		env.AddFunction(op.String(), b.boolean(op))
	}
	env.AddFunction("translate", b.transform("translate"))
	env.AddFunction("rotate", b.transform("rotate"))
	env.AddFunction("part", b.part)
	env.AddFunction("model", b.model)
}

// add assigns n an ID and stores it. Names must be unique.
func (b *builder) add(kind string, n *graph.Node) (*nodeRef, error) {
	if n.Name != "" {
		if b.g.Lookup(n.Name) != nil {
			return nil, fmt.Errorf("%s: name %q is already defined", kind, n.Name)
		}
		n.ID = graph.NewNodeID(kind + "/" + n.Name)
	} else {
		b.counts[kind]++
		n.ID = graph.NewNodeID(fmt.Sprintf("%s/_anon_%d", kind, b.counts[kind]))
	}
	b.g.AddNode(n)
	return &nodeRef{id: n.ID, name: n.Name}, nil
}

// (vec3 x y z)
func (b *builder) vec3(_ *zygo.Zlisp, _ string, in []zygo.Sexp) (zygo.Sexp, error) {
	if len(in) != 3 {
		return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(in))
	}
	var xyz [3]float64
	for i, s := range in {
		f, err := asFloat(s)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
		}
		xyz[i] = f
	}
	return &vec3Value{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

// primitive finishes a box or cylinder: paint, name and node.
func (b *builder) primitive(a *args, data func(graph.PaintSpec) graph.NodeData) (zygo.Sexp, error) {
	p, err := a.paint()
	if err != nil {
		return zygo.SexpNull, err
	}
	name, err := a.name()
	if err != nil {
		return zygo.SexpNull, err
	}
	ref, err := b.add(a.fn, &graph.Node{Kind: graph.NodePrimitive, Name: name, Data: data(p)})
	if err != nil {
		return zygo.SexpNull, err
	}
	return ref, nil
}

// (box :min (vec3 0 0 0) :max (vec3 1 0.5 1) :surface "top" ...)
func (b *builder) box(_ *zygo.Zlisp, _ string, in []zygo.Sexp) (zygo.Sexp, error) {
	a := splitArgs("box", in)
	bd := graph.BoxData{PrimKind: graph.PrimBox, Max: graph.Vec3{X: 1, Y: 1, Z: 1}}
	if err := opt(a, "min", asVec3, &bd.Min); err != nil {
		return zygo.SexpNull, err
	}
	if err := opt(a, "max", asVec3, &bd.Max); err != nil {
		return zygo.SexpNull, err
	}
	return b.primitive(a, func(p graph.PaintSpec) graph.NodeData {
		bd.Paint = p
		return bd
	})
}

// (cylinder :slices 16 :surface "log")
func (b *builder) cylinder(_ *zygo.Zlisp, _ string, in []zygo.Sexp) (zygo.Sexp, error) {
	a := splitArgs("cylinder", in)
	cd := graph.CylinderData{PrimKind: graph.PrimCylinder}
	if err := opt(a, "slices", asInt, &cd.Slices); err != nil {
		return zygo.SexpNull, err
	}
	return b.primitive(a, func(p graph.PaintSpec) graph.NodeData {
		cd.Paint = p
		return cd
	})
}

// boolean returns the builtin for op. More than two operands fold from the
// left, so (difference a b c) is (difference (difference a b) c), and
// :name lands on the outermost node.
func (b *builder) boolean(op graph.BoolOp) builtinFunc {
	kind := op.String()
	return func(_ *zygo.Zlisp, _ string, in []zygo.Sexp) (zygo.Sexp, error) {
		a := splitArgs(kind, in)
		ids, err := asNodes(a.pos)
		if err != nil {
			return zygo.SexpNull, a.errorf("%w", err)
		}
		if len(ids) < 2 {
			return zygo.SexpNull, fmt.Errorf("%s requires at least 2 solids, got %d", kind, len(ids))
		}
		name, err := a.name()
		if err != nil {
			return zygo.SexpNull, err
		}

		acc := ids[0]
		var ref *nodeRef
		for i, id := range ids[1:] {
			n := &graph.Node{
				Kind:     graph.NodeBoolean,
				Children: []graph.NodeID{acc, id},
				Data:     graph.BooleanData{Op: op},
			}
			if i == len(ids)-2 {
				n.Name = name
			}
			if ref, err = b.add(kind, n); err != nil {
				return zygo.SexpNull, err
			}
			acc = ref.id
		}
		return ref, nil
	}
}

// transform returns the builtin for (translate child :by v) or
// (rotate child :by v).
func (b *builder) transform(kind string) builtinFunc {
	return func(_ *zygo.Zlisp, _ string, in []zygo.Sexp) (zygo.Sexp, error) {
		a := splitArgs(kind, in)
		if len(a.pos) != 1 {
			return zygo.SexpNull, fmt.Errorf("%s requires exactly one solid, got %d", kind, len(a.pos))
		}
		child, err := asNode(a.pos[0])
		if err != nil {
			return zygo.SexpNull, a.errorf("%w", err)
		}
		if _, ok := a.kw["by"]; !ok {
			return zygo.SexpNull, fmt.Errorf("%s requires :by", kind)
		}
		var by graph.Vec3
		if err := opt(a, "by", asVec3, &by); err != nil {
			return zygo.SexpNull, err
		}
		name, err := a.name()
		if err != nil {
			return zygo.SexpNull, err
		}

		td := graph.TransformData{}
		if kind == "translate" {
			td.Translation = &by
		} else {
			td.Rotation = &by
		}
		ref, err := b.add(kind, &graph.Node{
			Kind:     graph.NodeTransform,
			Name:     name,
			Children: []graph.NodeID{child},
			Data:     td,
		})
		if err != nil {
			return zygo.SexpNull, err
		}
		return ref, nil
	}
}

// (part "name") refers back to a named node.
func (b *builder) part(_ *zygo.Zlisp, _ string, in []zygo.Sexp) (zygo.Sexp, error) {
	if len(in) != 1 {
		return zygo.SexpNull, fmt.Errorf("part requires a name argument")
	}
	name, err := asString(in[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("part: %w", err)
	}
	n := b.g.Lookup(name)
	if n == nil {
		return zygo.SexpNull, fmt.Errorf("part: no node named %q", name)
	}
	return &nodeRef{id: n.ID, name: name}, nil
}

// (model "slab" solids... :collision true :description "...")
func (b *builder) model(_ *zygo.Zlisp, _ string, in []zygo.Sexp) (zygo.Sexp, error) {
	a := splitArgs("model", in)
	if len(a.pos) < 1 {
		return zygo.SexpNull, fmt.Errorf("model requires a name argument")
	}
	name, err := asString(a.pos[0])
	if err != nil {
		return zygo.SexpNull, a.errorf("name: %w", err)
	}
	if name == "" {
		return zygo.SexpNull, fmt.Errorf("model: name must not be empty")
	}
	a.fn = fmt.Sprintf("model %q", name)

	children, err := asNodes(a.pos[1:])
	if err != nil {
		return zygo.SexpNull, a.errorf("%w", err)
	}
	if len(children) == 0 {
		return zygo.SexpNull, fmt.Errorf("model %q has no geometry", name)
	}

	var md graph.ModelData
	if err := multierr.Combine(
		opt(a, "collision", asBool, &md.Collision),
		opt(a, "description", asString, &md.Description),
	); err != nil {
		return zygo.SexpNull, err
	}

	ref, err := b.add("model", &graph.Node{
		Kind:     graph.NodeModel,
		Name:     name,
		Children: children,
		Data:     md,
	})
	if err != nil {
		return zygo.SexpNull, err
	}
	b.g.AddRoot(ref.id)
	return ref, nil
}
