package engine

import (
	"strings"
	"testing"

	"github.com/chazu/blockmesh/pkg/graph"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(box :surface "top")`,
			expect: `(box "__kw_surface" "top")`,
		},
		{
			name:   "multiple keywords",
			input:  `(cylinder :slices 16 :rotation 90)`,
			expect: `(cylinder "__kw_slices" 16 "__kw_rotation" 90)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(def half-slab 1)`,
			expect: `(def half_slab 1)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative number preserved",
			input:  `(vec3 0 -1 0)`,
			expect: `(vec3 0 -1 0)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:lock-uv`,
			expect: `"__kw_lock-uv"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// evalOK evaluates source and fails the test on any error.
func evalOK(t *testing.T, source string) *graph.ModelGraph {
	t.Helper()
	g, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if g == nil {
		t.Fatal("expected non-nil graph")
	}
	return g
}

// evalFails evaluates source and returns the eval errors, failing the
// test if there are none.
func evalFails(t *testing.T, source string) []EvalError {
	t.Helper()
	g, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if g != nil {
		t.Fatal("expected nil graph on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}
	return evalErrs
}

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

func TestSimpleModel(t *testing.T) {
	g := evalOK(t, `
(model "half-slab"
  (box :max (vec3 1 0.5 1) :name "slab"))
`)
	if g.NodeCount() != 2 {
		t.Fatalf("expected 2 nodes, got %d", g.NodeCount())
	}
	models := g.Models()
	if len(models) != 1 || models[0].Name != "half-slab" {
		t.Fatalf("models = %v", models)
	}

	slab := g.Lookup("slab")
	if slab == nil {
		t.Fatal("expected node named 'slab'")
	}
	if slab.Kind != graph.NodePrimitive {
		t.Errorf("expected NodePrimitive, got %s", slab.Kind)
	}
	bd, ok := slab.Data.(graph.BoxData)
	if !ok {
		t.Fatalf("expected BoxData, got %T", slab.Data)
	}
	if bd.Min != (graph.Vec3{}) || bd.Max != (graph.Vec3{X: 1, Y: 0.5, Z: 1}) {
		t.Errorf("box extents %v..%v", bd.Min, bd.Max)
	}
	if bd.Paint != graph.DefaultPaint() {
		t.Errorf("expected default paint, got %+v", bd.Paint)
	}
	if models[0].Children[0] != slab.ID {
		t.Error("model child is not the slab")
	}
}

func TestBoxDefaultsToFullBlock(t *testing.T) {
	g := evalOK(t, `(model "cube" (box :name "b"))`)
	bd := g.MustLookup("b").Data.(graph.BoxData)
	if bd.Min != (graph.Vec3{}) || bd.Max != (graph.Vec3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("box extents %v..%v, want the unit block", bd.Min, bd.Max)
	}
}

func TestPaintKeywords(t *testing.T) {
	g := evalOK(t, `
(model "painted"
  (box :name "b" :surface "top" :color "#ff8800" :rotation 90
       :lock-uv true :emissive :sprite "stone_top"))
`)
	bd := g.MustLookup("b").Data.(graph.BoxData)
	want := graph.PaintSpec{
		Surface:  "top",
		Color:    0xFFFF8800,
		Rotation: 90,
		LockUV:   true,
		Emissive: true,
		Sprite:   "stone_top",
	}
	if bd.Paint != want {
		t.Errorf("paint = %+v, want %+v", bd.Paint, want)
	}
}

func TestColorFormats(t *testing.T) {
	tests := []struct {
		src  string
		want uint32
	}{
		{`"#336699"`, 0xFF336699},
		{`"#80336699"`, 0x80336699},
		{`"336699"`, 0xFF336699},
		{`255`, 0x000000FF},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			g := evalOK(t, `(model "m" (box :name "b" :color `+tt.src+`))`)
			if got := g.MustLookup("b").Data.(graph.BoxData).Paint.Color; got != tt.want {
				t.Errorf("color = %#x, want %#x", got, tt.want)
			}
		})
	}
	evalFails(t, `(model "m" (box :color "#12345"))`)
}

func TestCylinder(t *testing.T) {
	g := evalOK(t, `(model "log" (cylinder :slices 12 :surface "bark" :name "c"))`)
	cd, ok := g.MustLookup("c").Data.(graph.CylinderData)
	if !ok {
		t.Fatalf("expected CylinderData")
	}
	if cd.Slices != 12 || cd.Paint.Surface != "bark" {
		t.Errorf("cylinder = %+v", cd)
	}
}

func TestVariableReference(t *testing.T) {
	g := evalOK(t, `
(def h 0.25)
(def lid (box :min (vec3 0 (- 1 h) 0) :name "cap"))
(model "capped" lid)
`)
	bd := g.MustLookup("cap").Data.(graph.BoxData)
	if bd.Min.Y != 0.75 {
		t.Errorf("expected min y = 0.75 (from variable), got %f", bd.Min.Y)
	}
}

func TestVec3(t *testing.T) {
	g := evalOK(t, `(model "m" (translate (box) :by (vec3 1 2.5 -3) :name "t"))`)
	td := g.MustLookup("t").Data.(graph.TransformData)
	if td.Translation == nil || *td.Translation != (graph.Vec3{X: 1, Y: 2.5, Z: -3}) {
		t.Errorf("translation = %v", td.Translation)
	}
	if td.Rotation != nil {
		t.Errorf("translate set a rotation")
	}
	evalFails(t, `(vec3 1 2)`)
	evalFails(t, `(vec3 1 2 "three")`)
}

// ---------------------------------------------------------------------------
// Booleans and transforms
// ---------------------------------------------------------------------------

func TestBooleans(t *testing.T) {
	g := evalOK(t, `
(model "post"
  (difference
    (box :name "block")
    (cylinder :name "hole")
    :name "drilled"))
`)
	n := g.MustLookup("drilled")
	if n.Kind != graph.NodeBoolean {
		t.Fatalf("expected NodeBoolean, got %s", n.Kind)
	}
	if n.Data.(graph.BooleanData).Op != graph.OpDifference {
		t.Errorf("op = %s", n.Data.(graph.BooleanData).Op)
	}
	if len(n.Children) != 2 || n.Children[0] != g.MustLookup("block").ID || n.Children[1] != g.MustLookup("hole").ID {
		t.Errorf("children out of order: %v", n.Children)
	}
}

func TestBooleanFoldsLeft(t *testing.T) {
	g := evalOK(t, `(model "m" (union (box :name "a") (box :name "b") (box :name "c") :name "abc"))`)
	top := g.MustLookup("abc")
	if top.Children[1] != g.MustLookup("c").ID {
		t.Fatal("last operand should be the right child of the outer union")
	}
	inner := g.Get(top.Children[0])
	if inner == nil || inner.Kind != graph.NodeBoolean {
		t.Fatal("left child should be the inner union")
	}
	if inner.Children[0] != g.MustLookup("a").ID || inner.Children[1] != g.MustLookup("b").ID {
		t.Error("inner union children wrong")
	}
}

func TestBooleanNeedsTwoSolids(t *testing.T) {
	errs := evalFails(t, `(model "m" (intersection (box)))`)
	if !strings.Contains(errs[0].Message, "at least 2") {
		t.Errorf("unexpected message %q", errs[0].Message)
	}
}

func TestListChildrenFlattened(t *testing.T) {
	g := evalOK(t, `(model "m" (list (box :name "a") (box :name "b")))`)
	if got := len(g.Models()[0].Children); got != 2 {
		t.Errorf("model has %d children, want 2", got)
	}
}

func TestRotate(t *testing.T) {
	g := evalOK(t, `(model "stair" (rotate (box :max (vec3 1 0.5 1)) :by (vec3 0 90 0) :name "r"))`)
	td := g.MustLookup("r").Data.(graph.TransformData)
	if td.Rotation == nil || *td.Rotation != (graph.Vec3{Y: 90}) {
		t.Errorf("rotation = %v", td.Rotation)
	}
	evalFails(t, `(rotate (box))`)
}

func TestPartLookup(t *testing.T) {
	g := evalOK(t, `
(box :name "shared" :max (vec3 1 0.25 1))
(model "one" (part "shared"))
(model "two" (translate (part "shared") :by (vec3 0 0.5 0)))
`)
	if len(g.Models()) != 2 {
		t.Fatalf("expected 2 models")
	}

	errs := evalFails(t, `(model "m" (part "nope"))`)
	if !strings.Contains(errs[0].Message, "nope") {
		t.Errorf("error should name the missing part: %q", errs[0].Message)
	}
}

func TestDuplicateNameRejected(t *testing.T) {
	evalFails(t, `(box :name "a") (box :name "a")`)
	evalFails(t, `(model "m" (box)) (model "m" (box))`)
}

func TestModelFlags(t *testing.T) {
	g := evalOK(t, `(model "m" (box) :collision true :description "a full block")`)
	md := g.Models()[0].Data.(graph.ModelData)
	if !md.Collision || md.Description != "a full block" {
		t.Errorf("model data = %+v", md)
	}
	evalFails(t, `(model "empty")`)
	evalFails(t, `(model (box))`)
}

func TestAnonymousIDsDeterministic(t *testing.T) {
	src := `(model "m" (union (box :max (vec3 1 0.5 1)) (box :min (vec3 0 0.5 0))))`
	a := evalOK(t, src)
	b := evalOK(t, src)
	if a.NodeCount() != b.NodeCount() {
		t.Fatal("node counts differ")
	}
	for id := range a.Nodes {
		if b.Get(id) == nil {
			t.Errorf("node %s missing from second evaluation", id.Short())
		}
	}
}

// ---------------------------------------------------------------------------
// Run
// ---------------------------------------------------------------------------

func TestRunValidates(t *testing.T) {
	eng := NewEngine()

	res, err := eng.Run(`(model "ok" (box :max (vec3 1 1.5 1)))`)
	if err != nil {
		t.Fatal(err)
	}
	if !res.OK() {
		t.Fatalf("unexpected errors %v", res.Errors)
	}
	if len(res.Warnings) == 0 || !strings.Contains(res.Warnings[0].Message, "outside the block") {
		t.Errorf("expected an outside-the-block warning, got %v", res.Warnings)
	}

	res, err = eng.Run(`(model "bad" (box :min (vec3 0 1 0) :max (vec3 1 0 1)))`)
	if err != nil {
		t.Fatal(err)
	}
	if res.OK() || res.Graph != nil {
		t.Fatal("inverted box should fail validation")
	}

	res, err = eng.Run(`(model "bad" (box :rotation 45))`)
	if err != nil {
		t.Fatal(err)
	}
	if res.OK() {
		t.Fatal("rotation 45 should fail validation")
	}
}

// ---------------------------------------------------------------------------
// Regressions
// ---------------------------------------------------------------------------

func TestEmptySourceStillWorks(t *testing.T) {
	g := evalOK(t, "")
	if g.NodeCount() != 0 {
		t.Errorf("expected empty graph, got %d nodes", g.NodeCount())
	}
}

func TestArithmeticStillWorks(t *testing.T) {
	g := evalOK(t, "(+ 1 2)")
	if g.NodeCount() != 0 {
		t.Errorf("expected empty graph, got %d nodes", g.NodeCount())
	}
}
