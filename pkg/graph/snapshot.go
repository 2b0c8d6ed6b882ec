package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/soundprediction/relato/pkg/types"
)

// snapshot is the on-disk artifact layout. Nodes and edges are emitted in
// creation order so that a loaded store rebuilds identical adjacency
// indices.
type snapshot struct {
	Nodes []*types.Node `json:"nodes"`
	Edges []*types.Edge `json:"edges"`
}

// Save serializes the full store to path. The write is atomic: data goes to
// a temporary file in the same directory which is then renamed over the
// target, so a crash mid-write never corrupts an existing snapshot. An
// empty path falls back to the configured SnapshotPath.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	snap := s.snapshotLocked()
	s.mu.RUnlock()

	return writeSnapshot(s.resolvePath(path), snap)
}

// Load replaces the in-memory state from a snapshot at path. Parsing and
// integrity checks happen against a staging state first; the live store is
// swapped only after the whole snapshot validates, so a failed load leaves
// prior state untouched.
func (s *Store) Load(path string) error {
	path = s.resolvePath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load snapshot %s: %w", path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("load snapshot %s: %v: %w", path, err, types.ErrCorruptSnapshot)
	}

	staged, err := buildState(&snap)
	if err != nil {
		return fmt.Errorf("load snapshot %s: %w", path, err)
	}

	s.mu.Lock()
	s.nodes = staged.nodes
	s.edges = staged.edges
	s.outgoing = staged.outgoing
	s.incoming = staged.incoming
	s.nodeOrder = staged.nodeOrder
	s.edgeOrder = staged.edgeOrder
	s.mu.Unlock()
	return nil
}

// state is the staging area built during Load before the swap.
type state struct {
	nodes     map[string]*types.Node
	edges     map[string]*types.Edge
	outgoing  map[string][]string
	incoming  map[string][]string
	nodeOrder []string
	edgeOrder []string
}

func buildState(snap *snapshot) (*state, error) {
	st := &state{
		nodes:    make(map[string]*types.Node, len(snap.Nodes)),
		edges:    make(map[string]*types.Edge, len(snap.Edges)),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}

	for _, node := range snap.Nodes {
		if node.ID == "" {
			return nil, fmt.Errorf("node with empty id: %w", types.ErrCorruptSnapshot)
		}
		if _, ok := st.nodes[node.ID]; ok {
			return nil, fmt.Errorf("duplicate node id %q: %w", node.ID, types.ErrCorruptSnapshot)
		}
		st.nodes[node.ID] = node.Clone()
		st.nodeOrder = append(st.nodeOrder, node.ID)
	}

	for _, edge := range snap.Edges {
		if edge.ID == "" {
			return nil, fmt.Errorf("edge with empty id: %w", types.ErrCorruptSnapshot)
		}
		if _, ok := st.edges[edge.ID]; ok {
			return nil, fmt.Errorf("duplicate edge id %q: %w", edge.ID, types.ErrCorruptSnapshot)
		}
		if _, ok := st.nodes[edge.Source]; !ok {
			return nil, fmt.Errorf("edge %q references missing source %q: %w", edge.ID, edge.Source, types.ErrCorruptSnapshot)
		}
		if _, ok := st.nodes[edge.Target]; !ok {
			return nil, fmt.Errorf("edge %q references missing target %q: %w", edge.ID, edge.Target, types.ErrCorruptSnapshot)
		}
		if edge.Weight < 0 {
			return nil, fmt.Errorf("edge %q has negative weight %v: %w", edge.ID, edge.Weight, types.ErrCorruptSnapshot)
		}
		st.edges[edge.ID] = edge.Clone()
		st.edgeOrder = append(st.edgeOrder, edge.ID)
		st.outgoing[edge.Source] = append(st.outgoing[edge.Source], edge.ID)
		st.incoming[edge.Target] = append(st.incoming[edge.Target], edge.ID)
	}

	return st, nil
}

// snapshotLocked copies current state into a serializable snapshot. Caller
// must hold at least the read lock.
func (s *Store) snapshotLocked() *snapshot {
	snap := &snapshot{
		Nodes: make([]*types.Node, 0, len(s.nodeOrder)),
		Edges: make([]*types.Edge, 0, len(s.edgeOrder)),
	}
	for _, id := range s.nodeOrder {
		snap.Nodes = append(snap.Nodes, s.nodes[id].Clone())
	}
	for _, id := range s.edgeOrder {
		snap.Edges = append(snap.Edges, s.edges[id].Clone())
	}
	return snap
}

func writeSnapshot(path string, snap *snapshot) error {
	if path == "" {
		return fmt.Errorf("save snapshot: no path configured: %w", types.ErrInvalidArgument)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save snapshot %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, ".relato-snapshot-*")
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("save snapshot %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("save snapshot %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save snapshot %s: %w", path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save snapshot %s: %w", path, err)
	}
	return nil
}

// autoPersistLocked writes a snapshot after a mutation when AutoPersist is
// enabled. The in-memory mutation remains applied even when the write
// fails; the error only reports that durability was not achieved. Caller
// must hold the write lock.
func (s *Store) autoPersistLocked() error {
	if !s.opts.AutoPersist {
		return nil
	}
	if err := writeSnapshot(s.resolvePath(""), s.snapshotLocked()); err != nil {
		return fmt.Errorf("auto-persist: %w", err)
	}
	return nil
}

func (s *Store) resolvePath(path string) string {
	if path != "" {
		return path
	}
	return s.opts.SnapshotPath
}

// LoadIfExists loads the configured snapshot when the file is present and
// returns false without error when it is not. Used at startup so a first
// run starts from an empty store.
func (s *Store) LoadIfExists() (bool, error) {
	path := s.resolvePath("")
	if path == "" {
		return false, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err := s.Load(path); err != nil {
		return false, err
	}
	return true, nil
}
