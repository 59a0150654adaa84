package engine

import (
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestEvaluateWithoutGeometry(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t  \n  "},
		{"comment", ";; just a note"},
		{"arithmetic", "(+ 1 2)"},
		{"defs", "(def x 10)\n(def y 20)\n(+ x y)"},
	}
	eng := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, evalErrs, err := eng.Evaluate(tt.source)
			if err != nil {
				t.Fatalf("fatal error: %v", err)
			}
			if len(evalErrs) > 0 {
				t.Fatalf("eval errors: %v", evalErrs)
			}
			if g == nil || g.NodeCount() != 0 {
				t.Fatalf("want an empty graph, got %v", g)
			}
		})
	}
}

func TestEvaluateSourceErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unclosed", `(model "m" (box)`},
		{"undefined symbol", "(+ 1 undefined-symbol)"},
		{"second line", "(+ 1 2)\n(+ 3"},
		{"bad builtin args", `(box :max 7)`},
	}
	eng := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, evalErrs, err := eng.Evaluate(tt.source)
			if err != nil {
				t.Fatalf("want eval errors, got fatal: %v", err)
			}
			if g != nil {
				t.Error("graph returned alongside errors")
			}
			if len(evalErrs) == 0 || evalErrs[0].Message == "" {
				t.Fatalf("errors = %v", evalErrs)
			}
			if evalErrs[0].Line < 0 {
				t.Errorf("negative line %d", evalErrs[0].Line)
			}
		})
	}
}

func TestEvalErrorString(t *testing.T) {
	if s := (EvalError{Line: 5, Message: "bad slab"}).Error(); s != "line 5: bad slab" {
		t.Errorf("Error() = %q", s)
	}
	if s := (EvalError{Message: "no location"}).Error(); s != "no location" {
		t.Errorf("Error() = %q", s)
	}
}

func TestRunKeepsWarnings(t *testing.T) {
	res, err := NewEngine().Run(`(box :name "loose") (model "m" (box))`)
	if err != nil {
		t.Fatal(err)
	}
	if !res.OK() {
		t.Fatalf("errors = %v", res.Errors)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w.Message, `"loose"`) {
			found = true
		}
	}
	if !found {
		t.Errorf("no warning for the unreferenced box: %v", res.Warnings)
	}
}

func TestRunSourceErrorHasNoGraph(t *testing.T) {
	res, err := NewEngine().Run(`(model "m" (part "missing"))`)
	if err != nil {
		t.Fatal(err)
	}
	if res.OK() || res.Graph != nil || len(res.Errors) == 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestWaitTimesOut(t *testing.T) {
	eng := NewEngine(WithTimeout(50 * time.Millisecond))
	eng.generation = 1

	start := time.Now()
	_, _, err := eng.wait(make(chan evalResult), 1)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	if !strings.Contains(err.Error(), "50ms") {
		t.Errorf("timeout not reported: %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("wait overran its timeout")
	}
}

func TestWaitDiscardsStale(t *testing.T) {
	eng := NewEngine()
	eng.generation = 2

	ch := make(chan evalResult, 1)
	ch <- evalResult{}
	if _, _, err := eng.wait(ch, 1); !errors.Is(err, ErrSuperseded) {
		t.Errorf("err = %v, want ErrSuperseded", err)
	}
}

func TestWithTimeout(t *testing.T) {
	if got := NewEngine().timeout; got != EvalTimeout {
		t.Errorf("default timeout = %s, want %s", got, EvalTimeout)
	}
	if got := NewEngine(WithTimeout(time.Second)).timeout; got != time.Second {
		t.Errorf("timeout = %s, want 1s", got)
	}
	if got := NewEngine(WithTimeout(-1)).timeout; got != EvalTimeout {
		t.Errorf("negative timeout not ignored: %s", got)
	}
}

func TestEvaluateLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	eng := NewEngine(WithLogger(zap.New(core)), WithLogger(nil))

	if _, _, err := eng.Evaluate(`(model "cube" (box))`); err != nil {
		t.Fatal(err)
	}
	entries := logs.FilterMessage("evaluated").All()
	if len(entries) != 1 {
		t.Fatalf("got %d evaluated entries", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["models"] != int64(1) || fields["nodes"] != int64(2) {
		t.Errorf("fields = %v", fields)
	}

	if _, _, err := eng.Evaluate("(+ 1"); err != nil {
		t.Fatal(err)
	}
	if logs.FilterMessage("evaluation errors").Len() != 1 {
		t.Error("source errors not logged")
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"error on line", "Error on line 5: unexpected token\n", 5, "unexpected token"},
		{"lowercase", "error on line 12: missing paren", 12, "missing paren"},
		{"short form", "line 3: bad vec3", 3, "bad vec3"},
		{"no line", "some generic error", 0, "some generic error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errors.New(tt.msg))
			if len(errs) != 1 {
				t.Fatalf("got %d errors", len(errs))
			}
			if errs[0].Line != tt.wantLine || errs[0].Message != tt.wantMsg {
				t.Errorf("got line %d %q, want line %d %q", errs[0].Line, errs[0].Message, tt.wantLine, tt.wantMsg)
			}
		})
	}
}
