// Package search implements bounded-depth graph traversal and the hybrid
// scoring pipeline that merges vector-search hits with graph reachability
// into one ranked result set.
//
// Traversal is a multi-source breadth-first expansion over the store's
// adjacency indices. Edge weights never influence expansion order, only
// scoring; hop count alone decides which path discovers a node first, and
// ties are broken by seed order and then index order so repeated runs over
// an unchanged store are reproducible.
package search
