// Package relato provides a hybrid retrieval engine for Go.
//
// Relato keeps a directed multigraph of entities in memory, persists it
// through atomic JSON snapshots, and answers queries by blending vector
// similarity with graph relevance: vector hits seed a bounded breadth-first
// expansion and every reached node is scored from both signals.
//
// # Basic Usage
//
// Create a client with an in-memory vector index:
//
//	client := relato.NewClient(nil, nil, &relato.Config{
//		SnapshotPath: "graph.json",
//	}, logger)
//	defer client.Close(ctx)
//
//	// Build the graph
//	node, err := client.CreateNode(ctx, graph.NodeInput{
//		ID:        "alice",
//		Text:      "Alice leads the storage team",
//		Embedding: embedding,
//	}, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	_, err = client.CreateEdge(ctx, "alice", "storage-team", "leads", 1.0)
//
// # Searching
//
// Hybrid search takes a query vector and returns ranked results:
//
//	results, err := client.Search(ctx, queryVector, &search.HybridOptions{
//		TopK:     10,
//		MaxDepth: 2,
//	})
//	for _, r := range results {
//		fmt.Printf("%s final=%.3f vector=%.3f graph=%.3f\n",
//			r.ID, r.FinalScore, r.VectorScore, r.GraphScore)
//	}
//
// With an embedding client configured, SearchText embeds the query first:
//
//	results, err := client.SearchText(ctx, "who runs storage?", nil)
//
// # Persistence
//
// The whole graph round-trips through a single JSON snapshot written
// atomically. Load validates the file before replacing any in-memory state,
// so a corrupt snapshot never destroys the running graph:
//
//	if err := client.Save(ctx); err != nil {
//		log.Fatal(err)
//	}
package relato
