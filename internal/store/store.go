// Package store handles the SQLite certificate register.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/ramancert/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout keeps a fixed fraction width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when a certificate id is not in the register.
var ErrNotFound = errors.New("certificate not found")

// Store wraps SQLite access for issued certificates.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS certificates (
			id TEXT PRIMARY KEY,
			issued_at TEXT NOT NULL,
			serial INTEGER NOT NULL,
			model TEXT NOT NULL,
			type TEXT NOT NULL,
			wavelength TEXT NOT NULL,
			operator TEXT NOT NULL,
			source TEXT NOT NULL,
			row_count INTEGER NOT NULL,
			max_intensity REAL NOT NULL,
			peak_position REAL NOT NULL,
			result TEXT NOT NULL,
			document_path TEXT NOT NULL,
			chart_path TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_certificates_issued_at ON certificates(issued_at);`,
		`CREATE INDEX IF NOT EXISTS idx_certificates_serial ON certificates(serial);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertCertificate stores an issued certificate.
func (s *Store) InsertCertificate(ctx context.Context, rec model.CertificateRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("certificate id is empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO certificates (id, issued_at, serial, model, type, wavelength, operator, source, row_count, max_intensity, peak_position, result, document_path, chart_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.IssuedAt.UTC().Format(timeLayout),
		rec.Device.Serial,
		rec.Device.Model,
		rec.Device.Type,
		rec.Device.Wavelength,
		rec.Operator,
		rec.Source,
		rec.Rows,
		rec.MaxIntensity,
		rec.PeakPosition,
		rec.Result,
		rec.DocumentPath,
		rec.ChartPath,
	)
	return err
}

const selectColumns = `id, issued_at, serial, model, type, wavelength, operator, source, row_count, max_intensity, peak_position, result, document_path, chart_path`

// GetCertificate returns a certificate by id.
func (s *Store) GetCertificate(ctx context.Context, id string) (model.CertificateRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM certificates WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CertificateRecord{}, ErrNotFound
	}
	return rec, err
}

// ListCertificates returns certificates matching the filter, oldest first.
// Last keeps only the most recent rows.
func (s *Store) ListCertificates(ctx context.Context, filter model.HistoryFilter) ([]model.CertificateRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Serial > 0 {
		clauses = append(clauses, "serial = ?")
		args = append(args, filter.Serial)
	}
	if filter.Since != nil {
		clauses = append(clauses, "issued_at >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT %s FROM certificates WHERE %s ORDER BY issued_at DESC`, selectColumns, strings.Join(clauses, " AND "))
	if filter.Last > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Last)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.CertificateRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (model.CertificateRecord, error) {
	var rec model.CertificateRecord
	var issuedAt string
	if err := row.Scan(
		&rec.ID,
		&issuedAt,
		&rec.Device.Serial,
		&rec.Device.Model,
		&rec.Device.Type,
		&rec.Device.Wavelength,
		&rec.Operator,
		&rec.Source,
		&rec.Rows,
		&rec.MaxIntensity,
		&rec.PeakPosition,
		&rec.Result,
		&rec.DocumentPath,
		&rec.ChartPath,
	); err != nil {
		return model.CertificateRecord{}, err
	}
	parsed, err := time.Parse(timeLayout, issuedAt)
	if err != nil {
		return model.CertificateRecord{}, err
	}
	rec.IssuedAt = parsed
	return rec, nil
}
