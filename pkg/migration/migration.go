// Package migration applies and tracks versioned changes to the document
// store: index builds, backfills and the like.
//
// Usage (in database/migrations):
//
//	func init() {
//	    migration.Register("20260101000000_users_email_unique", &UsersEmailUnique{})
//	}
//
//	type UsersEmailUnique struct{}
//	func (m *UsersEmailUnique) Up(ctx context.Context, db *mongo.Database) error {
//	    _, err := db.Collection("users").Indexes().CreateOne(ctx, ...)
//	    return err
//	}
//	func (m *UsersEmailUnique) Down(ctx context.Context, db *mongo.Database) error {
//	    _, err := db.Collection("users").Indexes().DropOne(ctx, "email_unique")
//	    return err
//	}
//
// Run from CLI:
//
//	tradebridge migrate             // run all pending
//	tradebridge migrate:rollback    // roll back the last batch
//	tradebridge migrate:status
package migration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tradebridge/tradebridge/pkg/logger"
)

// Collection is where applied migrations are recorded.
const Collection = "migrations"

// Migration is the interface every migration must implement.
type Migration interface {
	// Up applies the migration.
	Up(ctx context.Context, db *mongo.Database) error
	// Down reverses the migration.
	Down(ctx context.Context, db *mongo.Database) error
}

// Record is the document stored per applied migration.
type Record struct {
	Name  string    `bson:"name"`
	Batch int       `bson:"batch"`
	RunAt time.Time `bson:"runAt"`
}

// ------------------- Registry -------------------

// Entry is a named migration.
type Entry struct {
	Name string
	M    Migration
}

var registry []Entry

// Register adds a migration to the global registry.
// name should be a timestamp-prefixed string, e.g. "20260101000000_users_email_unique".
func Register(name string, m Migration) {
	registry = append(registry, Entry{Name: name, M: m})
}

// Registered returns the registered migrations sorted by name.
func Registered() []Entry {
	out := append([]Entry(nil), registry...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ------------------- Runner -------------------

// Runner executes and tracks migrations.
type Runner struct {
	db      *mongo.Database
	entries []Entry
	out     io.Writer
}

// New creates a Runner over the registered migrations. Progress lines are
// written to out.
func New(db *mongo.Database, out io.Writer) *Runner {
	return NewWith(db, out, Registered())
}

// NewWith creates a Runner over an explicit migration list.
func NewWith(db *mongo.Database, out io.Writer, entries []Entry) *Runner {
	sorted := append([]Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &Runner{db: db, entries: sorted, out: out}
}

func (r *Runner) col() *mongo.Collection { return r.db.Collection(Collection) }

func (r *Runner) applied(ctx context.Context) (map[string]Record, error) {
	cur, err := r.col().Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	var recs []Record
	if err := cur.All(ctx, &recs); err != nil {
		return nil, err
	}
	out := make(map[string]Record, len(recs))
	for _, rec := range recs {
		out[rec.Name] = rec
	}
	return out, nil
}

// Pending returns the migrations that have not yet been run, in name order.
func (r *Runner) Pending(ctx context.Context) ([]Entry, error) {
	ran, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}

	var pending []Entry
	for _, e := range r.entries {
		if _, ok := ran[e.Name]; !ok {
			pending = append(pending, e)
		}
	}
	return pending, nil
}

// Run executes all pending migrations in a single batch.
func (r *Runner) Run(ctx context.Context) error {
	pending, err := r.Pending(ctx)
	if err != nil {
		return fmt.Errorf("migration: fetch pending: %w", err)
	}

	if len(pending) == 0 {
		logger.Info("migration: nothing to migrate")
		fmt.Fprintln(r.out, "Nothing to migrate.")
		return nil
	}

	batch, err := r.lastBatch(ctx)
	if err != nil {
		return fmt.Errorf("migration: last batch: %w", err)
	}
	batch++

	for _, e := range pending {
		logger.Info("migration: running", "name", e.Name)
		fmt.Fprintf(r.out, "  ▶ Migrating: %s\n", e.Name)

		if err := e.M.Up(ctx, r.db); err != nil {
			return fmt.Errorf("migration: %s up: %w", e.Name, err)
		}

		rec := Record{Name: e.Name, Batch: batch, RunAt: time.Now().UTC()}
		if _, err := r.col().InsertOne(ctx, rec); err != nil {
			return fmt.Errorf("migration: record %s: %w", e.Name, err)
		}

		fmt.Fprintf(r.out, "  ✅ Migrated:  %s\n", e.Name)
	}

	logger.Info("migration: done", "ran", len(pending), "batch", batch)
	return nil
}

// Rollback reverses all migrations from the most recent batch.
func (r *Runner) Rollback(ctx context.Context) error {
	batch, err := r.lastBatch(ctx)
	if err != nil {
		return fmt.Errorf("migration: last batch: %w", err)
	}
	if batch == 0 {
		fmt.Fprintln(r.out, "Nothing to roll back.")
		return nil
	}

	cur, err := r.col().Find(ctx, bson.D{{Key: "batch", Value: batch}},
		options.Find().SetSort(bson.D{{Key: "name", Value: -1}}))
	if err != nil {
		return err
	}
	var recs []Record
	if err := cur.All(ctx, &recs); err != nil {
		return err
	}

	byName := make(map[string]Migration, len(r.entries))
	for _, e := range r.entries {
		byName[e.Name] = e.M
	}

	for _, rec := range recs {
		m, ok := byName[rec.Name]
		if !ok {
			return fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}

		fmt.Fprintf(r.out, "  ◀ Rolling back: %s\n", rec.Name)
		logger.Info("migration: rolling back", "name", rec.Name)

		if err := m.Down(ctx, r.db); err != nil {
			return fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		if _, err := r.col().DeleteOne(ctx, bson.D{{Key: "name", Value: rec.Name}}); err != nil {
			return err
		}

		fmt.Fprintf(r.out, "  ✅ Rolled back:  %s\n", rec.Name)
	}
	return nil
}

// Status prints all migrations and whether each has been run.
func (r *Runner) Status(ctx context.Context) error {
	ran, err := r.applied(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "%-60s  %-8s  %s\n", "Migration", "Status", "Batch")
	for _, e := range r.entries {
		if rec, ok := ran[e.Name]; ok {
			fmt.Fprintf(r.out, "%-60s  %-8s  %d\n", e.Name, "Ran", rec.Batch)
		} else {
			fmt.Fprintf(r.out, "%-60s  %-8s  -\n", e.Name, "Pending")
		}
	}
	return nil
}

func (r *Runner) lastBatch(ctx context.Context) (int, error) {
	var rec Record
	err := r.col().FindOne(ctx, bson.D{},
		options.FindOne().SetSort(bson.D{{Key: "batch", Value: -1}})).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rec.Batch, nil
}
