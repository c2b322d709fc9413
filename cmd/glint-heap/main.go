// Glint heap tool - inspect persisted heap snapshots
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/glintmedia/glint/avm/snapshot"
	"github.com/glintmedia/glint/config"
)

func main() {
	configDir := flag.String("config", ".", "Directory containing glint.toml")
	storePath := flag.String("store", "", "Snapshot store path (overrides glint.toml)")
	list := flag.Bool("list", false, "List stored snapshots")
	show := flag.String("show", "", "Show object counts for the snapshot with the given ID")
	remove := flag.String("delete", "", "Delete the snapshot with the given ID")
	verbosity := flag.Int("v", -1, "Logging verbosity (overrides glint.toml)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: glint-heap [options]\n\n")
		fmt.Fprintf(os.Stderr, "Inspects heap snapshots captured by the Glint runtime.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  glint-heap -list                 # List snapshots in the configured store\n")
		fmt.Fprintf(os.Stderr, "  glint-heap -show <id>            # Per-kind object counts for one snapshot\n")
		fmt.Fprintf(os.Stderr, "  glint-heap -store heap.db -list  # Use an explicit store file\n")
	}
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		if *storePath == "" {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		cfg = config.Default()
	}

	v := cfg.Log.Verbosity
	if *verbosity >= 0 {
		v = *verbosity
	}
	commonlog.Configure(v, nil)

	path := cfg.Snapshot.StorePath
	if *storePath != "" {
		path = *storePath
	}

	store, err := snapshot.OpenStore(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening snapshot store %s: %v\n", path, err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case *list:
		if err := listSnapshots(store); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case *show != "":
		if err := showSnapshot(store, *show); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case *remove != "":
		if err := store.Delete(*remove); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Deleted %s\n", *remove)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func listSnapshots(store *snapshot.Store) error {
	metas, err := store.List()
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		fmt.Println("No snapshots.")
		return nil
	}
	for _, m := range metas {
		fmt.Printf("%s  %s  %8d bytes  %s\n",
			m.ID, m.CapturedAt.Format("2006-01-02 15:04:05"), m.Size, m.Hash[:12])
	}
	return nil
}

func showSnapshot(store *snapshot.Store, id string) error {
	snap, err := store.Load(id)
	if err != nil {
		return err
	}

	kinds := make(map[string]int)
	listeners := 0
	for _, rec := range snap.Objects {
		kinds[rec.Kind]++
		listeners += rec.Listeners
	}

	fmt.Printf("Snapshot %s (captured %s)\n", snap.ID, snap.CapturedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  objects: %d\n", len(snap.Objects))
	for _, kind := range []string{"script", "dispatch", "stage", "function", "unknown"} {
		if n := kinds[kind]; n > 0 {
			fmt.Printf("  %-10s %d\n", kind, n)
		}
	}
	fmt.Printf("  listener registrations: %d\n", listeners)
	return nil
}
