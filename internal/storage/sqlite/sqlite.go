// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// The table layout matches the SCHOOL_MANAGEMENT table written by earlier
// versions of the application, so an existing SchoolManagement.db file
// opens without conversion.
//
// Importing go-sqlite3 registers the "sqlite3" driver with database/sql;
// its exported error codes are used to spot type mismatches.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/school-management/internal/config"
	"github.com/aanand-mishra/school-management/internal/storage"
	"github.com/aanand-mishra/school-management/internal/types"

	"github.com/mattn/go-sqlite3"
)

// SQLite is the concrete database/sql implementation of storage.Storage.
type SQLite struct {
	Db *sql.DB
}

var _ storage.Storage = (*SQLite)(nil)

// New opens the SQLite database at cfg.StoragePath, creates the records
// table if it does not already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	// sql.Open does NOT open a real connection yet — it just validates
	// the driver name and data source name (DSN).
	db, err := sql.Open("sqlite3", cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// One shared connection: every statement runs in auto-commit mode on
	// the same handle, in the order the controller issues them.
	db.SetMaxOpenConns(1)

	s := &SQLite{Db: db}
	if err := s.CreateTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: %w", err)
	}

	return s, nil
}

// CreateTable runs CREATE TABLE IF NOT EXISTS, which is idempotent — safe
// to run on every startup.
//
// Schema:
//
//	STUDENT_ID — integer primary key, auto-incremented by SQLite
//	NAME, EMAIL, PHONE_NO, GENDER, STREAM — free text
//	DOB — date of birth as YYYY-MM-DD text
func (s *SQLite) CreateTable() error {
	_, err := s.Db.Exec(`
		CREATE TABLE IF NOT EXISTS SCHOOL_MANAGEMENT (
			STUDENT_ID INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
			NAME       TEXT,
			EMAIL      TEXT,
			PHONE_NO   TEXT,
			GENDER     TEXT,
			DOB        TEXT,
			STREAM     TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("CreateTable: exec: %w", err)
	}

	return nil
}

// CreateStudent inserts a new row with a prepared statement, so field
// values are sent separately from the SQL and never parsed as syntax.
func (s *SQLite) CreateStudent(student types.Student) (int64, error) {
	stmt, err := s.Db.Prepare(
		"INSERT INTO SCHOOL_MANAGEMENT (NAME, EMAIL, PHONE_NO, GENDER, DOB, STREAM) VALUES (?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(
		student.Name,
		student.Email,
		student.Phone,
		student.Gender,
		types.FormatDate(student.DOB),
		student.Stream,
	)
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: exec: %w", classify(err))
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: last insert id: %w", err)
	}

	return lastID, nil
}

// GetStudents returns all rows, oldest first. STUDENT_ID is an
// AUTOINCREMENT key, so ordering by it is insertion order.
func (s *SQLite) GetStudents() ([]types.Student, error) {
	stmt, err := s.Db.Prepare(
		"SELECT STUDENT_ID, NAME, EMAIL, PHONE_NO, GENDER, DOB, STREAM FROM SCHOOL_MANAGEMENT ORDER BY STUDENT_ID",
	)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.Query()
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close()

	students := make([]types.Student, 0)

	for rows.Next() {
		var (
			student types.Student
			dob     string
		)

		if err := rows.Scan(
			&student.ID,
			&student.Name,
			&student.Email,
			&student.Phone,
			&student.Gender,
			&dob,
			&student.Stream,
		); err != nil {
			return nil, fmt.Errorf("GetStudents: scan row: %w", err)
		}

		student.DOB, err = types.ParseDate(dob)
		if err != nil {
			return nil, fmt.Errorf("GetStudents: row %d: %w", student.ID, err)
		}

		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStudents: rows iteration: %w", err)
	}

	return students, nil
}

// DeleteStudentByID removes a row by primary key. A missing ID affects
// zero rows, which is not reported as an error.
func (s *SQLite) DeleteStudentByID(id int64) error {
	stmt, err := s.Db.Prepare("DELETE FROM SCHOOL_MANAGEMENT WHERE STUDENT_ID = ?")
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(id); err != nil {
		return fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}

	return nil
}

// Close closes the database handle.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// classify maps driver errors that mean "wrong kind of value for this
// column" onto storage.ErrTypeMismatch, keeping the driver error in the
// chain.
func classify(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrMismatch {
		return fmt.Errorf("%w: %w", storage.ErrTypeMismatch, err)
	}
	return err
}
