// Package sqlite implements the appointment store on an embedded SQLite
// database via the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/sunrise-assist/server/internal/store"
	logx "github.com/sunrise-assist/server/pkg/logger"
)

const createTableStmt = `CREATE TABLE IF NOT EXISTS appointments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	appointment_date TEXT NOT NULL,
	appointment_time TEXT NOT NULL,
	patient_name TEXT NOT NULL,
	phone_number TEXT,
	email TEXT,
	city TEXT,
	message TEXT,
	event_id TEXT,
	thread_id TEXT,
	department TEXT,
	doctor TEXT
)`

// Store persists appointments in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies migrations.
// Use ":memory:" for an ephemeral database in tests.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// modernc's driver serializes writes per connection; a single connection
	// avoids SQLITE_BUSY between concurrent workers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the appointments table and adds columns introduced after
// the initial schema. Existing rows keep NULL in the new columns, so the
// migration is additive and safe to run on old databases.
func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableStmt); err != nil {
		return fmt.Errorf("create appointments table: %w", err)
	}

	existing, err := s.columnNames(ctx)
	if err != nil {
		return err
	}
	for _, col := range []string{"department", "doctor"} {
		if existing[col] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE appointments ADD COLUMN %s TEXT", col)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("add column %s: %w", col, err)
		}
		logx.Info().Str("column", col).Msg("added appointments column")
	}
	return nil
}

func (s *Store) columnNames(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, "PRAGMA table_info(appointments)")
	if err != nil {
		return nil, fmt.Errorf("read table info: %w", err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return nil, fmt.Errorf("scan table info: %w", err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// Create inserts a new appointment record.
func (s *Store) Create(ctx context.Context, appt *store.Appointment) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO appointments
		(appointment_date, appointment_time, patient_name, phone_number, email, city, message, event_id, thread_id, department, doctor)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		appt.Date, appt.Time, appt.PatientName, appt.Phone, appt.Email,
		appt.City, appt.Message, appt.EventID, appt.ThreadID,
		appt.Department, appt.Doctor,
	)
	if err != nil {
		return 0, fmt.Errorf("insert appointment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read insert id: %w", err)
	}
	return id, nil
}

// GetByEventID returns the record with the given calendar event id.
func (s *Store) GetByEventID(ctx context.Context, eventID string) (*store.Appointment, error) {
	row := s.db.QueryRowContext(ctx, selectStmt+" WHERE event_id = ?", eventID)
	appt, err := scanAppointment(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query appointment: %w", err)
	}
	return appt, nil
}

// UpdateTimeByEventID rewrites the record's date and time inside a
// transaction so a concurrent cancel cannot interleave between the lookup
// and the write.
func (s *Store) UpdateTimeByEventID(ctx context.Context, eventID, newDate, newTime string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE appointments SET appointment_date = ?, appointment_time = ? WHERE event_id = ?",
			newDate, newTime, eventID)
		if err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

// DeleteByEventID removes the record with the given calendar event id.
func (s *Store) DeleteByEventID(ctx context.Context, eventID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM appointments WHERE event_id = ?", eventID)
		if err != nil {
			return fmt.Errorf("delete appointment: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

// ListOrdered returns every record ordered by date then time.
func (s *Store) ListOrdered(ctx context.Context) ([]store.Appointment, error) {
	rows, err := s.db.QueryContext(ctx, selectStmt+" ORDER BY appointment_date, appointment_time")
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	appts := []store.Appointment{}
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, *appt)
	}
	return appts, rows.Err()
}

// DeleteAll removes every appointment record.
func (s *Store) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM appointments"); err != nil {
		return fmt.Errorf("clear appointments: %w", err)
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const selectStmt = `SELECT id, appointment_date, appointment_time, patient_name,
	COALESCE(phone_number, ''), COALESCE(email, ''), COALESCE(city, ''),
	COALESCE(message, ''), COALESCE(event_id, ''), COALESCE(thread_id, ''),
	COALESCE(department, ''), COALESCE(doctor, '')
	FROM appointments`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (*store.Appointment, error) {
	var a store.Appointment
	err := row.Scan(&a.ID, &a.Date, &a.Time, &a.PatientName, &a.Phone,
		&a.Email, &a.City, &a.Message, &a.EventID, &a.ThreadID,
		&a.Department, &a.Doctor)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

var _ store.AppointmentStore = (*Store)(nil)
