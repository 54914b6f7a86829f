package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
)

// timeLayout is fixed width in UTC so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store is the SQLite database behind the case log, evidence ledger and
// scheduler state.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates kyc.db in dataDir and applies migrations.
// An empty dataDir means ~/.kyc/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".kyc", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "kyc.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// CaseLog returns the case log backed by this store.
func (s *Store) CaseLog() *CaseLog {
	return &CaseLog{store: s}
}

// EvidenceLedger returns the evidence ledger backed by this store.
func (s *Store) EvidenceLedger() *EvidenceLedger {
	return &EvidenceLedger{store: s}
}

// SchedulerStore returns the scheduler state store backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &SchedulerStore{db: s.db}
}

// migrate applies every NNN_*.up.sql newer than the recorded version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}

	return nil
}

// Version returns the highest applied migration.
func (s *Store) Version(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	return v, err
}

// ==================== Case Log ====================

// CaseLog implements driven.CaseLog over the case_log table.
type CaseLog struct {
	store *Store
}

var _ driven.CaseLog = (*CaseLog)(nil)

// Append inserts one case fingerprint.
func (l *CaseLog) Append(ctx context.Context, sig domain.CaseSignature) error {
	jurisdictions, err := encodeList(sig.Jurisdictions)
	if err != nil {
		return err
	}
	industries, err := encodeList(sig.Industries)
	if err != nil {
		return err
	}
	regulations, err := encodeList(sig.RegulationsTriggered)
	if err != nil {
		return err
	}

	_, err = l.store.db.ExecContext(ctx, `
		INSERT INTO case_log (client_id, recorded_at, client_type, risk_level, risk_score,
			confidence_grade, contradictions, jurisdictions, industries, regulations)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sig.ClientID, formatTime(sig.Timestamp), string(sig.ClientType), string(sig.RiskLevel), sig.RiskScore,
		string(sig.ConfidenceGrade), sig.ContradictionsCount, jurisdictions, industries, regulations)
	if err != nil {
		return fmt.Errorf("appending case log: %w", err)
	}
	return nil
}

// Since returns fingerprints recorded at or after t, oldest first.
func (l *CaseLog) Since(ctx context.Context, t time.Time) ([]domain.CaseSignature, error) {
	sigs, err := collect(ctx, l.store.db, scanSignature, `
		SELECT client_id, recorded_at, client_type, risk_level, risk_score,
			confidence_grade, contradictions, jurisdictions, industries, regulations
		FROM case_log
		WHERE recorded_at >= ?
		ORDER BY recorded_at, id
	`, formatTime(t))
	if err != nil {
		return nil, fmt.Errorf("reading case log: %w", err)
	}
	return sigs, nil
}

func scanSignature(row rowScanner) (domain.CaseSignature, error) {
	var (
		sig                                   domain.CaseSignature
		recordedAt, clientType, level, grade  string
		jurisdictions, industries, regulation string
	)
	if err := row.Scan(&sig.ClientID, &recordedAt, &clientType, &level, &sig.RiskScore,
		&grade, &sig.ContradictionsCount, &jurisdictions, &industries, &regulation); err != nil {
		return sig, err
	}
	sig.Timestamp = parseTime(recordedAt)
	sig.ClientType = domain.ClientType(clientType)
	sig.RiskLevel = domain.RiskLevel(level)
	sig.ConfidenceGrade = domain.Grade(grade)
	sig.Jurisdictions = decodeList(jurisdictions)
	sig.Industries = decodeList(industries)
	sig.RegulationsTriggered = decodeList(regulation)
	return sig, nil
}

// ==================== Evidence Ledger ====================

// EvidenceLedger implements driven.EvidenceSink over the evidence_ledger table.
type EvidenceLedger struct {
	store *Store
}

var _ driven.EvidenceSink = (*EvidenceLedger)(nil)

// Record appends a run's records. Recording the same run again replaces it.
func (l *EvidenceLedger) Record(ctx context.Context, runID, clientID string, records []domain.EvidenceRecord) error {
	tx, err := l.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger write: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM evidence_ledger WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("clearing run %s: %w", runID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO evidence_ledger (run_id, seq, client_id, evidence_id, source_kind, source_name,
			subject, evidence_class, disposition, confidence, record, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing ledger insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", r.EvidenceID, err)
		}
		if _, err := stmt.ExecContext(ctx, runID, i, clientID, r.EvidenceID, string(r.SourceKind), r.SourceName,
			r.Subject, string(r.EvidenceClass), string(r.Disposition), string(r.Confidence),
			string(data), formatTime(r.Timestamp)); err != nil {
			return fmt.Errorf("recording %s: %w", r.EvidenceID, err)
		}
	}

	return tx.Commit()
}

// Run returns the records stored for a run in insertion order.
func (l *EvidenceLedger) Run(ctx context.Context, runID string) ([]domain.EvidenceRecord, error) {
	return l.query(ctx, "SELECT record FROM evidence_ledger WHERE run_id = ? ORDER BY seq", runID)
}

// ForClient returns every record ever stored for a client, oldest run first.
func (l *EvidenceLedger) ForClient(ctx context.Context, clientID string) ([]domain.EvidenceRecord, error) {
	return l.query(ctx,
		"SELECT record FROM evidence_ledger WHERE client_id = ? ORDER BY recorded_at, run_id, seq", clientID)
}

func (l *EvidenceLedger) query(ctx context.Context, query string, arg string) ([]domain.EvidenceRecord, error) {
	records, err := collect(ctx, l.store.db, scanRecord, query, arg)
	if err != nil {
		return nil, fmt.Errorf("reading evidence ledger: %w", err)
	}
	return records, nil
}

func scanRecord(row rowScanner) (domain.EvidenceRecord, error) {
	var (
		r    domain.EvidenceRecord
		data string
	)
	if err := row.Scan(&data); err != nil {
		return r, err
	}
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return r, fmt.Errorf("decoding ledger record: %w", err)
	}
	return r, nil
}

// ==================== Helper Functions ====================

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// collect runs query and maps every row through scan. No rows yields a nil
// slice.
func collect[T any](ctx context.Context, db *sql.DB, scan func(rowScanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encoding list: %w", err)
	}
	return string(data), nil
}

func decodeList(s string) []string {
	var values []string
	if err := json.Unmarshal([]byte(s), &values); err != nil || len(values) == 0 {
		return nil
	}
	return values
}
