package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeTx satisfies pgx.Tx far enough for the WithTx join path, which must
// never finalize the transaction it joins.
type fakeTx struct {
	commits   int
	rollbacks int
}

func (f *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return f, nil }
func (f *fakeTx) Commit(ctx context.Context) error          { f.commits++; return nil }
func (f *fakeTx) Rollback(ctx context.Context) error        { f.rollbacks++; return nil }
func (f *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (f *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (f *fakeTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (f *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (f *fakeTx) Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (f *fakeTx) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return nil, nil
}
func (f *fakeTx) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return nil
}
func (f *fakeTx) Conn() *pgx.Conn { return nil }

func TestTxFromContext_Empty(t *testing.T) {
	if tx := TxFromContext(context.Background()); tx != nil {
		t.Errorf("expected nil tx, got %v", tx)
	}
}

func TestTxFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), txKey, "not a tx")
	if tx := TxFromContext(ctx); tx != nil {
		t.Errorf("expected nil tx for wrong type, got %v", tx)
	}
}

func TestWithTx_JoinsBoundTransaction(t *testing.T) {
	tx := &fakeTx{}
	ctx := context.WithValue(context.Background(), txKey, pgx.Tx(tx))

	var seen pgx.Tx
	// nil pool: the join path must not begin a new transaction.
	err := WithTx(ctx, nil, func(ctx context.Context) error {
		seen = TxFromContext(ctx)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if seen != pgx.Tx(tx) {
		t.Error("fn did not run under the already-bound transaction")
	}
	if tx.commits != 0 || tx.rollbacks != 0 {
		t.Errorf("joined transaction was finalized: commits=%d rollbacks=%d", tx.commits, tx.rollbacks)
	}
}

func TestWithTx_JoinPropagatesError(t *testing.T) {
	tx := &fakeTx{}
	ctx := context.WithValue(context.Background(), txKey, pgx.Tx(tx))

	boom := errors.New("boom")
	err := WithTx(ctx, nil, func(ctx context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if tx.rollbacks != 0 {
		t.Error("outer transaction must stay open for its owner to roll back")
	}
}

func TestLoadMigrations_OrderAndFiltering(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"002_patients.sql": "CREATE TABLE patient ();",
		"001_catalogs.sql": "CREATE TABLE nationality ();",
		"010_assets.sql":   "CREATE TABLE maternity_asset ();",
		"notes.txt":        "ignore me",
		"README.sql":       "no version prefix",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatal(err)
	}

	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}
	wantOrder := []int{1, 2, 10}
	for i, mig := range migrations {
		if mig.Version != wantOrder[i] {
			t.Errorf("position %d: version = %d, want %d", i, mig.Version, wantOrder[i])
		}
	}
	if migrations[0].Name != "001_catalogs.sql" {
		t.Errorf("first migration = %s", migrations[0].Name)
	}
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	m := NewMigrator(nil, "/nonexistent/migrations")
	if _, err := m.LoadMigrations(); err == nil {
		t.Error("expected error for missing directory")
	}
}
