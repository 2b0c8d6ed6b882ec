package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/soundprediction/relato/pkg/types"
)

func buildSampleStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(Options{})

	_, err := s.CreateNode(NodeInput{
		ID:        "a",
		Text:      "alpha",
		Metadata:  map[string]interface{}{"kind": "person"},
		Embedding: []float32{0.1, 0.2},
	})
	require.NoError(t, err)
	_, err = s.CreateNode(NodeInput{ID: "b", Text: "beta"})
	require.NoError(t, err)
	_, err = s.CreateNode(NodeInput{ID: "c", Text: "gamma"})
	require.NoError(t, err)

	_, err = s.CreateEdge("a", "b", "knows", 1.0)
	require.NoError(t, err)
	_, err = s.CreateEdge("b", "c", "knows", 0.5)
	require.NoError(t, err)
	_, err = s.CreateEdge("a", "a", "self", 0.25)
	require.NoError(t, err)

	return s
}

func TestSnapshotRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	original := buildSampleStore(t)
	require.NoError(t, original.Save(path))

	restored := NewStore(Options{})
	require.NoError(t, restored.Load(path))

	assert.Equal(t, original.Stats(), restored.Stats())

	node, err := restored.GetNode("a")
	require.NoError(t, err)
	assert.Equal(t, "alpha", node.Text)
	assert.Equal(t, "person", node.Metadata["kind"])
	assert.Equal(t, []float32{0.1, 0.2}, node.Embedding)

	// Adjacency order survives the roundtrip.
	origEdges, err := original.Neighbors("a", types.DirectionOut)
	require.NoError(t, err)
	restEdges, err := restored.Neighbors("a", types.DirectionOut)
	require.NoError(t, err)
	assert.Equal(t, edgeIDs(origEdges), edgeIDs(restEdges))
}

func TestSaveIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap.json")
	s := buildSampleStore(t)
	require.NoError(t, s.Save(path))

	// No temp files are left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "snap.json", entries[0].Name())
}

func TestSaveCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "snap.json")
	s := buildSampleStore(t)
	require.NoError(t, s.Save(path))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestLoadCorruptJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := buildSampleStore(t)
	err := s.Load(path)
	require.ErrorIs(t, err, types.ErrCorruptSnapshot)

	// Prior state is untouched.
	assert.Equal(t, 3, s.Stats().Nodes)
}

func TestLoadDanglingEdge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	payload := `{
  "nodes": [{"id": "a", "text": "alpha"}],
  "edges": [{"id": "e1", "source": "a", "target": "ghost", "type": "knows", "weight": 1}]
}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	s := NewStore(Options{})
	err := s.Load(path)
	require.ErrorIs(t, err, types.ErrCorruptSnapshot)
	assert.Zero(t, s.Stats().Nodes)
}

func TestLoadDuplicateNodeID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	payload := `{
  "nodes": [{"id": "a"}, {"id": "a"}],
  "edges": []
}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	err := NewStore(Options{}).Load(path)
	require.ErrorIs(t, err, types.ErrCorruptSnapshot)
}

func TestLoadNegativeWeight(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	payload := `{
  "nodes": [{"id": "a"}, {"id": "b"}],
  "edges": [{"id": "e1", "source": "a", "target": "b", "type": "knows", "weight": -1}]
}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	err := NewStore(Options{}).Load(path)
	require.ErrorIs(t, err, types.ErrCorruptSnapshot)
}

func TestLoadMissingFile(t *testing.T) {
	s := buildSampleStore(t)
	err := s.Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, types.ErrCorruptSnapshot)
	assert.Equal(t, 3, s.Stats().Nodes)
}

func TestLoadIfExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap.json")

	s := NewStore(Options{SnapshotPath: path})
	loaded, err := s.LoadIfExists()
	require.NoError(t, err)
	assert.False(t, loaded)

	require.NoError(t, buildSampleStore(t).Save(path))

	loaded, err = s.LoadIfExists()
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, 3, s.Stats().Nodes)
}

func TestAutoPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	s := NewStore(Options{SnapshotPath: path, AutoPersist: true})

	_, err := s.CreateNode(NodeInput{ID: "a"})
	require.NoError(t, err)

	// Every mutation leaves a fresh snapshot on disk.
	restored := NewStore(Options{})
	require.NoError(t, restored.Load(path))
	assert.Equal(t, 1, restored.Stats().Nodes)

	_, err = s.CreateNode(NodeInput{ID: "b"})
	require.NoError(t, err)
	_, err = s.CreateEdge("a", "b", "knows", 1.0)
	require.NoError(t, err)

	require.NoError(t, restored.Load(path))
	assert.Equal(t, types.GraphStats{Nodes: 2, Edges: 1}, restored.Stats())
}

func TestSaveWithoutPath(t *testing.T) {
	s := NewStore(Options{})
	err := s.Save("")
	require.ErrorIs(t, err, types.ErrInvalidArgument)
}
