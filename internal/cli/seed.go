package cli

import (
	"context"
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"dorm2mcp/internal/seed"
	"dorm2mcp/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the dormitory database and fill it with sample data",
	RunE:  runSeed,
}

var (
	seedFloors        int
	seedRoomsPerFloor int
	seedCapacity      int
	seedStudents      int
	seedCheckedOut    int
	seedMaintenance   int
	seedRNG           int64
)

func init() {
	seedCmd.Flags().IntVar(&seedFloors, "floors", 3, "number of floors")
	seedCmd.Flags().IntVar(&seedRoomsPerFloor, "rooms-per-floor", 5, "rooms on each floor")
	seedCmd.Flags().IntVar(&seedCapacity, "capacity", 4, "beds per room")
	seedCmd.Flags().IntVar(&seedStudents, "students", 40, "number of students")
	seedCmd.Flags().IntVar(&seedCheckedOut, "checked-out", 0, "students marked Checked Out (0 = default share)")
	seedCmd.Flags().IntVar(&seedMaintenance, "maintenance", 15, "number of maintenance requests")
	seedCmd.Flags().Int64Var(&seedRNG, "rng-seed", 0, "random seed (0 = nondeterministic)")
}

func runSeed(_ *cobra.Command, _ []string) error {
	dbPath, err := resolveDBPath()
	if err != nil {
		exitWith(ExitConfigInvalid, "ERROR: "+err.Error())
	}

	opts := seed.Options{
		Floors:        seedFloors,
		RoomsPerFloor: seedRoomsPerFloor,
		Capacity:      seedCapacity,
		Students:      seedStudents,
		CheckedOut:    seedCheckedOut,
		Maintenance:   seedMaintenance,
	}
	summary, err := seedDatabase(context.Background(), dbPath, opts, seedRNG)
	if err != nil {
		exitWith(ExitStoreFailure, "ERROR: "+err.Error())
	}

	st := newStyles(os.Stdout)
	fmt.Println(st.sectionHeader("Seeded " + dbPath))
	fmt.Println(st.kv("Rooms", fmt.Sprintf("%d", summary.Rooms)))
	fmt.Println(st.kv("Students", fmt.Sprintf("%d (%d active, %d checked out)", summary.Students, summary.Active, summary.CheckedOut)))
	fmt.Println(st.kv("Maintenance", fmt.Sprintf("%d", summary.Maintenance)))
	return nil
}

func seedDatabase(ctx context.Context, dbPath string, opts seed.Options, rngSeed int64) (store.Summary, error) {
	db := store.NewSQLiteStore(dbPath)
	defer func() { _ = db.Close() }()

	if err := db.Init(ctx); err != nil {
		return store.Summary{}, fmt.Errorf("initializing database: %w", err)
	}

	var rng *rand.Rand
	if rngSeed != 0 {
		rng = rand.New(rand.NewSource(rngSeed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	gen := seed.NewGenerator(rng, opts)
	if err := gen.Apply(ctx, db); err != nil {
		return store.Summary{}, fmt.Errorf("seeding database: %w", err)
	}
	return db.Summarize(ctx)
}
