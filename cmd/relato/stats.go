package relato

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/soundprediction/relato/pkg/graph"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats [snapshot]",
	Short: "Print node and edge counts for a snapshot",
	Long: `Load a snapshot file and print its node and edge counts.

The snapshot path defaults to ./relato_snapshot.json when not given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

var statsJSON bool

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Emit stats as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	path := "./relato_snapshot.json"
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("snapshot %s: %w", path, err)
	}

	store := graph.NewStore(graph.Options{})
	if err := store.Load(path); err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	stats := store.Stats()
	if statsJSON {
		out, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("snapshot: %s\n", path)
	fmt.Printf("nodes:    %d\n", stats.Nodes)
	fmt.Printf("edges:    %d\n", stats.Edges)
	return nil
}
