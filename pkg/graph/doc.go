// Package graph defines the node graph document model, its JSON input
// contract, structural/semantic validation, and deterministic
// linearization. The graph is an immutable input: validation and
// linearization are read-only passes that produce new artifacts.
package graph
