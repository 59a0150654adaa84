package graph

import (
	"crypto/sha256"
	"encoding/hex"
)

// NodeKind enumerates the types of nodes in the model graph.
type NodeKind int

const (
	NodePrimitive NodeKind = iota // geometric primitive (box, cylinder)
	NodeBoolean                   // union, difference or intersection of two children
	NodeTransform                 // translation and rotation of one child
	NodeModel                     // named block model, a root
)

func (k NodeKind) String() string {
	switch k {
	case NodePrimitive:
		return "primitive"
	case NodeBoolean:
		return "boolean"
	case NodeTransform:
		return "transform"
	case NodeModel:
		return "model"
	default:
		return "unknown"
	}
}

// NodeID is a content-addressed identifier derived from a node's path.
type NodeID string

// ZeroID is the empty node ID.
const ZeroID NodeID = ""

// NewNodeID hashes a node path such as "model/slab" into an ID.
func NewNodeID(path string) NodeID {
	sum := sha256.Sum256([]byte(path))
	return NodeID(hex.EncodeToString(sum[:16]))
}

// IsZero reports whether id is unset.
func (id NodeID) IsZero() bool { return id == ZeroID }

// Short returns the first eight characters of id for messages.
func (id NodeID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// Node is the fundamental element of the model graph.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}
