// Package storage defines the Storage interface — the record store
// contract that any database backend must satisfy.
//
// The form controller only knows about this interface, so the SQLite and
// GORM backends are interchangeable and tests can run the controller
// against either one.
package storage

import (
	"errors"

	"github.com/aanand-mishra/school-management/internal/types"
)

// ErrTypeMismatch is wrapped by CreateStudent when the engine rejects a
// value because its type does not fit the target column.
var ErrTypeMismatch = errors.New("value type does not match column")

// Storage is the record store contract.
type Storage interface {
	// CreateTable creates the student records table if it is absent.
	// Calling it on an existing table does nothing.
	CreateTable() error

	// CreateStudent appends a new record and returns the auto-assigned ID.
	// student.ID is ignored.
	CreateStudent(student types.Student) (int64, error)

	// GetStudents returns every record in insertion order.
	// Returns an empty slice (not nil) if there are no records.
	GetStudents() ([]types.Student, error)

	// DeleteStudentByID removes the record with the given ID.
	// Deleting an ID that does not exist is not an error.
	DeleteStudentByID(id int64) error

	// Close releases the underlying database connection.
	Close() error
}
