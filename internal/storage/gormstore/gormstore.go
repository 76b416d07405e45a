// Package gormstore implements storage.Storage on top of GORM and its
// SQLite dialector. It reads and writes the same SCHOOL_MANAGEMENT table
// as the database/sql backend, so either backend can open the other's
// database file.
package gormstore

import (
	"errors"
	"fmt"

	"github.com/aanand-mishra/school-management/internal/config"
	"github.com/aanand-mishra/school-management/internal/storage"
	"github.com/aanand-mishra/school-management/internal/types"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// record is the GORM model of one table row. DOB stays text in the
// database; conversion to time.Time happens at the boundary.
type record struct {
	StudentID int64  `gorm:"column:STUDENT_ID;primaryKey;autoIncrement"`
	Name      string `gorm:"column:NAME"`
	Email     string `gorm:"column:EMAIL"`
	Phone     string `gorm:"column:PHONE_NO"`
	Gender    string `gorm:"column:GENDER"`
	DOB       string `gorm:"column:DOB"`
	Stream    string `gorm:"column:STREAM"`
}

func (record) TableName() string { return "SCHOOL_MANAGEMENT" }

func fromStudent(s types.Student) record {
	return record{
		Name:   s.Name,
		Email:  s.Email,
		Phone:  s.Phone,
		Gender: s.Gender,
		DOB:    types.FormatDate(s.DOB),
		Stream: s.Stream,
	}
}

func (r record) toStudent() (types.Student, error) {
	dob, err := types.ParseDate(r.DOB)
	if err != nil {
		return types.Student{}, err
	}

	return types.Student{
		ID:     r.StudentID,
		Name:   r.Name,
		Email:  r.Email,
		Phone:  r.Phone,
		Gender: r.Gender,
		DOB:    dob,
		Stream: r.Stream,
	}, nil
}

// Store is the GORM-backed record store.
type Store struct {
	DB *gorm.DB
}

var _ storage.Storage = (*Store)(nil)

// New opens cfg.StoragePath through GORM and makes sure the table exists.
func New(cfg *config.Config) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(cfg.StoragePath), &gorm.Config{
		// The application logs through slog; GORM's own logger stays quiet.
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("gormstore.New: open db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gormstore.New: sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	s := &Store{DB: db}
	if err := s.CreateTable(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("gormstore.New: %w", err)
	}

	return s, nil
}

// CreateTable creates SCHOOL_MANAGEMENT when it is missing. An existing
// table is left untouched; no columns are added or altered.
func (s *Store) CreateTable() error {
	if s.DB.Migrator().HasTable(&record{}) {
		return nil
	}
	if err := s.DB.Migrator().CreateTable(&record{}); err != nil {
		return fmt.Errorf("CreateTable: %w", err)
	}
	return nil
}

// CreateStudent inserts one row and returns its auto-assigned ID.
func (s *Store) CreateStudent(student types.Student) (int64, error) {
	row := fromStudent(student)

	if err := s.DB.Create(&row).Error; err != nil {
		return 0, fmt.Errorf("CreateStudent: %w", classify(err))
	}

	return row.StudentID, nil
}

// GetStudents returns every row ordered by STUDENT_ID.
func (s *Store) GetStudents() ([]types.Student, error) {
	var rows []record
	if err := s.DB.Order("STUDENT_ID").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("GetStudents: %w", err)
	}

	students := make([]types.Student, 0, len(rows))
	for _, r := range rows {
		student, err := r.toStudent()
		if err != nil {
			return nil, fmt.Errorf("GetStudents: row %d: %w", r.StudentID, err)
		}
		students = append(students, student)
	}

	return students, nil
}

// DeleteStudentByID deletes by primary key. Zero affected rows is fine.
func (s *Store) DeleteStudentByID(id int64) error {
	if err := s.DB.Delete(&record{}, id).Error; err != nil {
		return fmt.Errorf("DeleteStudentByID: %w", err)
	}
	return nil
}

// Close closes the pooled connection behind the GORM handle.
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func classify(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrMismatch {
		return fmt.Errorf("%w: %w", storage.ErrTypeMismatch, err)
	}
	return err
}
