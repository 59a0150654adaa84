package engine

import (
	"fmt"
	"strconv"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/multierr"

	"github.com/chazu/blockmesh/pkg/graph"
)

// nodeRef carries a graph node from one builtin to another.
type nodeRef struct {
	id   graph.NodeID
	name string
}

func (n *nodeRef) SexpString(*zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(part %q)", n.name)
	}
	return fmt.Sprintf("(node %s)", n.id.Short())
}

func (n *nodeRef) Type() *zygo.RegisteredType { return nil }

// vec3Value is the result of (vec3 x y z).
type vec3Value graph.Vec3

func (v *vec3Value) SexpString(*zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.X, v.Y, v.Z)
}

func (v *vec3Value) Type() *zygo.RegisteredType { return nil }

// args is a builtin's argument list split into positional values and
// keyword values. A keyword followed by another keyword, or by nothing,
// is a flag and maps to SexpNull.
type args struct {
	fn  string
	pos []zygo.Sexp
	kw  map[string]zygo.Sexp
}

func splitArgs(fn string, in []zygo.Sexp) *args {
	a := &args{fn: fn, kw: map[string]zygo.Sexp{}}
	for i := 0; i < len(in); i++ {
		key, ok := keyword(in[i])
		if !ok {
			a.pos = append(a.pos, in[i])
			continue
		}
		a.kw[key] = zygo.SexpNull
		if i+1 < len(in) {
			if _, flag := keyword(in[i+1]); !flag {
				a.kw[key] = in[i+1]
				i++
			}
		}
	}
	return a
}

// keyword reports whether s is a keyword left by preprocessSource.
func keyword(s zygo.Sexp) (string, bool) {
	if str, ok := s.(*zygo.SexpStr); ok && strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

func (a *args) errorf(format string, v ...any) error {
	return fmt.Errorf("%s: %w", a.fn, fmt.Errorf(format, v...))
}

// opt converts keyword key into *dst when it is present.
func opt[T any](a *args, key string, conv func(zygo.Sexp) (T, error), dst *T) error {
	v, ok := a.kw[key]
	if !ok {
		return nil
	}
	x, err := conv(v)
	if err != nil {
		return a.errorf("%s: %w", key, err)
	}
	*dst = x
	return nil
}

// name reads the optional :name keyword.
func (a *args) name() (string, error) {
	var s string
	err := opt(a, "name", asString, &s)
	return s, err
}

// paint reads the paint keywords shared by every primitive.
func (a *args) paint() (graph.PaintSpec, error) {
	p := graph.DefaultPaint()
	err := multierr.Combine(
		opt(a, "surface", asString, &p.Surface),
		opt(a, "color", asColor, &p.Color),
		opt(a, "rotation", asInt, &p.Rotation),
		opt(a, "lock-uv", asBool, &p.LockUV),
		opt(a, "emissive", asBool, &p.Emissive),
		opt(a, "sprite", asString, &p.Sprite),
	)
	return p, err
}

func describe(s zygo.Sexp) string {
	return fmt.Sprintf("%T (%s)", s, s.SexpString(nil))
}

func asFloat(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", describe(s))
}

func asInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %s", describe(s))
}

func asString(s zygo.Sexp) (string, error) {
	if v, ok := s.(*zygo.SexpStr); ok {
		return v.S, nil
	}
	return "", fmt.Errorf("expected string, got %s", describe(s))
}

// asBool accepts true, false or a bare flag keyword.
func asBool(s zygo.Sexp) (bool, error) {
	if v, ok := s.(*zygo.SexpBool); ok {
		return v.Val, nil
	}
	if s == zygo.SexpNull {
		return true, nil
	}
	return false, fmt.Errorf("expected true or false, got %s", describe(s))
}

// asColor accepts an integer 0xAARRGGBB or a "#RRGGBB" / "#AARRGGBB"
// string. Six-digit colors are opaque.
func asColor(s zygo.Sexp) (uint32, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		if v.Val < 0 || v.Val > 0xFFFFFFFF {
			return 0, fmt.Errorf("color %d out of range", v.Val)
		}
		return uint32(v.Val), nil
	case *zygo.SexpStr:
		digits := strings.TrimPrefix(v.S, "#")
		c, err := strconv.ParseUint(digits, 16, 32)
		if err != nil || (len(digits) != 6 && len(digits) != 8) {
			return 0, fmt.Errorf("invalid color %q, expected #RRGGBB or #AARRGGBB", v.S)
		}
		if len(digits) == 6 {
			c |= 0xFF000000
		}
		return uint32(c), nil
	}
	return 0, fmt.Errorf("expected color, got %s", describe(s))
}

func asNode(s zygo.Sexp) (graph.NodeID, error) {
	if ref, ok := s.(*nodeRef); ok {
		return ref.id, nil
	}
	return graph.ZeroID, fmt.Errorf("expected solid, got %s", describe(s))
}

func asVec3(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*vec3Value); ok {
		return graph.Vec3(*v), nil
	}
	return graph.Vec3{}, fmt.Errorf("expected vec3, got %s", describe(s))
}

// asNodes collects solids from positional arguments, flattening lists and
// arrays.
func asNodes(in []zygo.Sexp) ([]graph.NodeID, error) {
	var ids []graph.NodeID
	for i, s := range in {
		var items []zygo.Sexp
		switch v := s.(type) {
		case *nodeRef:
			ids = append(ids, v.id)
			continue
		case *zygo.SexpPair:
			var err error
			if items, err = zygo.ListToArray(v); err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
		case *zygo.SexpArray:
			items = v.Val
		default:
			if s != zygo.SexpNull {
				return nil, fmt.Errorf("argument %d: expected solid, got %s", i, describe(s))
			}
		}
		nested, err := asNodes(items)
		if err != nil {
			return nil, err
		}
		ids = append(ids, nested...)
	}
	return ids, nil
}
