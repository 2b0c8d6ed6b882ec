// Package types defines the core data model shared across relato packages.
//
// The model is intentionally small: a Node carries retrievable content
// (text, metadata, optional embedding) and an Edge is a directed, typed,
// weighted relation between two nodes. Multiple edges between the same
// ordered pair of nodes are allowed, so the graph is a directed multigraph.
//
// Packages that operate on the graph (pkg/graph, pkg/search) exchange these
// types by value-copy semantics: a Node or Edge returned from the store is a
// clone that the caller owns outright, including its embedding slice.
package types
