// Package graph implements the in-memory entity store: a directed
// multigraph of nodes and edges with per-node adjacency indices and JSON
// snapshot persistence.
//
// The store follows a single-writer, multiple-reader discipline backed by a
// sync.RWMutex: mutations are exclusive while reads and traversals may
// proceed concurrently. All operations are in-memory and O(1) or O(degree)
// except Save and Load, which perform file I/O.
//
// With AutoPersist enabled every mutation triggers a snapshot write after it
// completes. That turns each mutation into a synchronous file write, so bulk
// imports should disable it and call Save once at the end.
package graph
