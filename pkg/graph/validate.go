package graph

import (
	"fmt"
	"sort"
)

// ValidationSeverity tells blocking findings from advisory ones.
type ValidationSeverity int

const (
	SeverityError ValidationSeverity = iota
	SeverityWarning
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	}
	return fmt.Sprintf("ValidationSeverity(%d)", int(s))
}

// ValidationError is one finding. NodeID is zero for graph-level problems.
type ValidationError struct {
	NodeID   NodeID
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationResult splits findings by severity.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// checker accumulates findings while visiting nodes in ID order, so the
// same graph always yields the same report.
type checker struct {
	g     *ModelGraph
	ids   []NodeID
	found []ValidationError
}

func newChecker(g *ModelGraph) *checker {
	ids := make([]NodeID, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return &checker{g: g, ids: ids}
}

func (c *checker) errorf(id NodeID, format string, args ...any) {
	c.found = append(c.found, ValidationError{NodeID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
}

func (c *checker) warnf(id NodeID, format string, args ...any) {
	c.found = append(c.found, ValidationError{NodeID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
}

// each calls fn for every node in ID order.
func (c *checker) each(fn func(n *Node)) {
	for _, id := range c.ids {
		fn(c.g.Nodes[id])
	}
}

// Validate runs the structural checks: acyclicity, child references, the
// name index, roots and reachability, and per-kind arity. It never mutates g.
func Validate(g *ModelGraph) []ValidationError {
	c := newChecker(g)
	c.cycles()
	c.references()
	c.names()
	c.roots()
	c.arity()
	return c.found
}

// ValidateAll runs Validate plus the geometry and paint checks.
func ValidateAll(g *ModelGraph) ValidationResult {
	c := newChecker(g)
	c.cycles()
	c.references()
	c.names()
	c.roots()
	c.arity()
	c.geometry()

	var r ValidationResult
	for _, f := range c.found {
		if f.Severity == SeverityWarning {
			r.Warnings = append(r.Warnings, f)
		} else {
			r.Errors = append(r.Errors, f)
		}
	}
	return r
}

// cycles reports the first cycle found by depth-first search.
func (c *checker) cycles() {
	const (
		unseen = iota
		onPath
		done
	)
	state := make(map[NodeID]int, len(c.ids))

	var visit func(id NodeID) bool
	visit = func(id NodeID) bool {
		switch state[id] {
		case done:
			return false
		case onPath:
			c.errorf(id, "cycle detected: node %s is part of a cycle", id.Short())
			return true
		}
		state[id] = onPath
		if n := c.g.Nodes[id]; n != nil {
			for _, child := range n.Children {
				if visit(child) {
					return true
				}
			}
		}
		state[id] = done
		return false
	}

	for _, id := range c.ids {
		if state[id] == unseen && visit(id) {
			return
		}
	}
}

func (c *checker) references() {
	c.each(func(n *Node) {
		for _, child := range n.Children {
			if c.g.Nodes[child] == nil {
				c.errorf(n.ID, "child reference %s does not exist", child.Short())
			}
		}
	})
}

// names requires every index entry to resolve and every name to be unique.
func (c *checker) names() {
	names := make([]string, 0, len(c.g.NameIndex))
	for name := range c.g.NameIndex {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if id := c.g.NameIndex[name]; c.g.Nodes[id] == nil {
			c.errorf("", "name index entry %q references non-existent node %s", name, id.Short())
		}
	}

	count := map[string]int{}
	c.each(func(n *Node) {
		if n.Name == "" {
			return
		}
		count[n.Name]++
		if count[n.Name] == 2 {
			c.errorf(n.ID, "duplicate name %q", n.Name)
		}
	})
}

// roots requires roots to be existing models and warns about nodes no
// model reaches.
func (c *checker) roots() {
	reached := map[NodeID]bool{}
	var mark func(id NodeID)
	mark = func(id NodeID) {
		if reached[id] {
			return
		}
		reached[id] = true
		if n := c.g.Nodes[id]; n != nil {
			for _, child := range n.Children {
				mark(child)
			}
		}
	}

	for _, id := range c.g.Roots {
		n := c.g.Nodes[id]
		if n == nil {
			c.errorf("", "root reference %s does not exist", id.Short())
			continue
		}
		if n.Kind != NodeModel {
			c.errorf(id, "root is %s, not model", n.Kind)
		}
		mark(id)
	}

	c.each(func(n *Node) {
		if reached[n.ID] {
			return
		}
		name := n.Name
		if name == "" {
			name = n.ID.Short()
		}
		c.warnf(n.ID, "node %q is not reachable from any root (orphan)", name)
	})
}

// arity checks child counts and that payloads match node kinds.
func (c *checker) arity() {
	c.each(func(n *Node) {
		switch n.Kind {
		case NodePrimitive:
			switch n.Data.(type) {
			case BoxData, CylinderData:
			default:
				c.errorf(n.ID, "primitive has %T data", n.Data)
			}
			if len(n.Children) != 0 {
				c.errorf(n.ID, "primitive has %d children, want 0", len(n.Children))
			}
		case NodeBoolean:
			if _, ok := n.Data.(BooleanData); !ok {
				c.errorf(n.ID, "boolean has %T data", n.Data)
			}
			if len(n.Children) != 2 {
				c.errorf(n.ID, "boolean has %d children, want 2", len(n.Children))
			}
		case NodeTransform:
			if _, ok := n.Data.(TransformData); !ok {
				c.errorf(n.ID, "transform has %T data", n.Data)
			}
			if len(n.Children) != 1 {
				c.errorf(n.ID, "transform has %d children, want 1", len(n.Children))
			}
		case NodeModel:
			if _, ok := n.Data.(ModelData); !ok {
				c.errorf(n.ID, "model has %T data", n.Data)
			}
			if n.Name == "" {
				c.errorf(n.ID, "model has no name")
			}
			if len(n.Children) == 0 {
				c.errorf(n.ID, "model %q has no geometry", n.Name)
			}
		default:
			c.errorf(n.ID, "unknown node kind %d", int(n.Kind))
		}

		for _, id := range n.Children {
			if child := c.g.Nodes[id]; child != nil && child.Kind == NodeModel {
				c.errorf(n.ID, "model %q used as geometry", child.Name)
			}
		}
	})
}
