package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"CamarillaBacktester/internal/model"
)

const timestampLayout = "2006-01-02 15:04:05"

// SQLiteRecorder persists backtest runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so history reads do not block while a run is being saved.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	if _, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS backtests (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp  TEXT NOT NULL,
		test_type  TEXT NOT NULL,
		test_name  TEXT NOT NULL DEFAULT 'Untitled',
		pattern    TEXT NOT NULL,
		parameters TEXT,
		results    TEXT NOT NULL,
		notes      TEXT,
		share_uuid TEXT UNIQUE
	)`); err != nil {
		return fmt.Errorf("create backtests: %w", err)
	}

	// Databases created before notes and sharing existed lack these columns.
	existing, err := r.columns("backtests")
	if err != nil {
		return err
	}
	if !existing["notes"] {
		if _, err := r.db.Exec(`ALTER TABLE backtests ADD COLUMN notes TEXT`); err != nil {
			return fmt.Errorf("add notes: %w", err)
		}
	}
	if !existing["share_uuid"] {
		// SQLite cannot add a UNIQUE column, so uniqueness comes from an index.
		if _, err := r.db.Exec(`ALTER TABLE backtests ADD COLUMN share_uuid TEXT`); err != nil {
			return fmt.Errorf("add share_uuid: %w", err)
		}
	}
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_backtests_share ON backtests(share_uuid)`,
		`CREATE INDEX IF NOT EXISTS idx_backtests_ts ON backtests(timestamp)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s, err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) columns(table string) (map[string]bool, error) {
	rows, err := r.db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("table info: %w", err)
	}
	defer rows.Close()
	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

func (r *SQLiteRecorder) Save(ctx context.Context, b *model.Backtest) (int64, error) {
	params, err := json.Marshal(b.Parameters)
	if err != nil {
		return 0, fmt.Errorf("encode parameters: %w", err)
	}
	results, err := json.Marshal(b.Results)
	if err != nil {
		return 0, fmt.Errorf("encode results: %w", err)
	}
	ts := b.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	name := b.TestName
	if name == "" {
		name = "Untitled"
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, `INSERT INTO backtests
		(timestamp, test_type, test_name, pattern, parameters, results, notes)
		VALUES (?,?,?,?,?,?,?)`,
		ts.Format(timestampLayout), string(b.TestType), name, b.Pattern,
		string(params), string(results), b.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("insert backtest: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	b.ID = id
	return id, nil
}

const selectBacktest = `SELECT id, timestamp, test_type, test_name, pattern,
	parameters, results, notes, share_uuid FROM backtests`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBacktest(s rowScanner) (*model.Backtest, error) {
	var (
		b                      model.Backtest
		ts, testType           string
		params, notes, shareID sql.NullString
		results                string
	)
	if err := s.Scan(&b.ID, &ts, &testType, &b.TestName, &b.Pattern,
		&params, &results, &notes, &shareID); err != nil {
		return nil, err
	}
	t, err := time.ParseInLocation(timestampLayout, ts, time.Local)
	if err != nil {
		return nil, fmt.Errorf("backtest %d timestamp: %w", b.ID, err)
	}
	b.Timestamp = t
	b.TestType = model.TestType(testType)
	b.Notes = notes.String
	b.ShareUUID = shareID.String
	if params.Valid && params.String != "" {
		if err := json.Unmarshal([]byte(params.String), &b.Parameters); err != nil {
			return nil, fmt.Errorf("backtest %d parameters: %w", b.ID, err)
		}
	}
	if err := json.Unmarshal([]byte(results), &b.Results); err != nil {
		return nil, fmt.Errorf("backtest %d results: %w", b.ID, err)
	}
	return &b, nil
}

func (r *SQLiteRecorder) getOne(ctx context.Context, where string, arg any) (*model.Backtest, error) {
	b, err := scanBacktest(r.db.QueryRowContext(ctx, selectBacktest+" WHERE "+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

func (r *SQLiteRecorder) Get(ctx context.Context, id int64) (*model.Backtest, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *SQLiteRecorder) GetByShareID(ctx context.Context, shareID string) (*model.Backtest, error) {
	if shareID == "" {
		return nil, ErrNotFound
	}
	return r.getOne(ctx, "share_uuid = ?", shareID)
}

func (r *SQLiteRecorder) List(ctx context.Context) ([]*model.Backtest, error) {
	rows, err := r.db.QueryContext(ctx, selectBacktest+" ORDER BY timestamp DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("list backtests: %w", err)
	}
	defer rows.Close()

	var out []*model.Backtest
	for rows.Next() {
		b, err := scanBacktest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Share(ctx context.Context, id int64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var existing sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT share_uuid FROM backtests WHERE id = ?`, id).Scan(&existing)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup share id: %w", err)
	}
	if existing.Valid && existing.String != "" {
		return existing.String, nil
	}

	shareID := uuid.NewString()
	if _, err := r.db.ExecContext(ctx, `UPDATE backtests SET share_uuid = ? WHERE id = ?`, shareID, id); err != nil {
		return "", fmt.Errorf("set share id: %w", err)
	}
	return shareID, nil
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
