package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/keyward/internal/keyward/domain"
	"github.com/aussiebroadwan/keyward/internal/keyward/store"
	"github.com/aussiebroadwan/keyward/internal/keyward/store/drivers/sqlite/gen"
	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Store struct {
	db  *sql.DB
	q   *gen.Queries
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Every connection to ":memory:" is a separate database.
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		q:   gen.New(db),
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Licenses() store.Licenses { return &licensesRepo{q: s.q} }
func (s *Store) Audit() store.Audit       { return &auditRepo{q: s.q} }
func (s *Store) APIKeys() store.APIKeys   { return &apiKeysRepo{q: s.q} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapConstraint turns unique and primary key violations into ErrAlreadyExists.
func mapConstraint(err error) error {
	var se *sqlitedrv.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return store.ErrAlreadyExists
		}
	}
	return err
}

// requireRow maps a zero-row update to ErrNotFound.
func requireRow(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

// Timestamps are stored as unix milliseconds so SQL comparisons are numeric.
func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func mapNullMillis(n sql.NullInt64) *time.Time {
	if n.Valid {
		t := fromMillis(n.Int64)
		return &t
	}
	return nil
}

func mapMillisNull(t time.Time) sql.NullInt64 {
	return sql.NullInt64{Int64: toMillis(t), Valid: true}
}

func mapLicense(row gen.License) domain.License {
	return domain.License{
		ID:                row.ID,
		Key:               row.LicenseKey,
		LookupID:          row.LookupID,
		Checksum:          row.Checksum,
		Format:            row.Format,
		OwnerID:           mapNullString(row.OwnerID),
		Status:            domain.LicenseStatus(row.Status),
		GameType:          mapNullString(row.GameType),
		ExpiresAt:         fromMillis(row.ExpiresAt),
		HWID:              mapNullString(row.Hwid),
		HWIDLocked:        row.HwidLocked,
		FailedAttempts:    int(row.FailedAttempts),
		LastFailedAttempt: mapNullMillis(row.LastFailedAttempt),
		CreatedAt:         fromMillis(row.CreatedAt),
		UpdatedAt:         fromMillis(row.UpdatedAt),
	}
}

func mapLicenses(rows []gen.License) []domain.License {
	out := make([]domain.License, len(rows))
	for i, row := range rows {
		out[i] = mapLicense(row)
	}
	return out
}

func mapAuditEntry(row gen.AuditEntry) domain.AuditEntry {
	return domain.AuditEntry{
		ID:        row.ID,
		LicenseID: mapNullString(row.LicenseID),
		Action:    domain.AuditAction(row.Action),
		IPAddress: row.IpAddress,
		UserAgent: row.UserAgent,
		HWID:      row.Hwid,
		Success:   row.Success,
		Message:   row.Message,
		CreatedAt: fromMillis(row.CreatedAt),
	}
}

func mapAPIKey(row gen.ApiKey) domain.APIKey {
	return domain.APIKey{
		ID:              row.ID,
		Name:            row.Name,
		SecretEncrypted: row.SecretEncrypted,
		Revoked:         row.Revoked,
		RPM:             int(row.Rpm),
		CreatedAt:       fromMillis(row.CreatedAt),
		UpdatedAt:       fromMillis(row.UpdatedAt),
		LastRotatedAt:   mapNullMillis(row.LastRotatedAt),
	}
}
