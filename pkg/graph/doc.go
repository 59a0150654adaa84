// Package graph defines the model graph for blockmesh.
// The model graph is an immutable DAG of primitives, boolean operations,
// transforms and models that describes how block models are built.
package graph
