// Package storagetest holds the behavioural checks every storage.Storage
// backend has to pass. Backend packages call Run from their own tests.
package storagetest

import (
	"testing"
	"time"

	"github.com/aanand-mishra/school-management/internal/storage"
	"github.com/aanand-mishra/school-management/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Alice is the sample record used across the test suites.
func Alice() types.Student {
	return types.Student{
		Name:   "Alice",
		Email:  "a@x.com",
		Phone:  "5551234",
		Gender: types.GenderFemale,
		DOB:    time.Date(2001, time.May, 3, 0, 0, 0, 0, time.UTC),
		Stream: "Science",
	}
}

// Bob is a second sample record.
func Bob() types.Student {
	return types.Student{
		Name:   "Bob",
		Email:  "b@x.com",
		Phone:  "5559876",
		Gender: types.GenderMale,
		DOB:    time.Date(1999, time.December, 31, 0, 0, 0, 0, time.UTC),
		Stream: "Commerce",
	}
}

// Run exercises a fresh store returned by open for each subtest.
func Run(t *testing.T, open func(t *testing.T) storage.Storage) {
	t.Run("EmptyStoreListsNothing", func(t *testing.T) {
		s := open(t)

		students, err := s.GetStudents()
		require.NoError(t, err)
		assert.NotNil(t, students)
		assert.Empty(t, students)
	})

	t.Run("CreateTableIsIdempotent", func(t *testing.T) {
		s := open(t)

		_, err := s.CreateStudent(Alice())
		require.NoError(t, err)

		require.NoError(t, s.CreateTable())
		require.NoError(t, s.CreateTable())

		students, err := s.GetStudents()
		require.NoError(t, err)
		assert.Len(t, students, 1)
	})

	t.Run("InsertThenDeleteExample", func(t *testing.T) {
		s := open(t)

		id, err := s.CreateStudent(Alice())
		require.NoError(t, err)
		assert.Equal(t, int64(1), id)

		students, err := s.GetStudents()
		require.NoError(t, err)
		require.Len(t, students, 1)

		want := Alice()
		want.ID = 1
		assert.Equal(t, want, students[0])

		require.NoError(t, s.DeleteStudentByID(1))

		students, err = s.GetStudents()
		require.NoError(t, err)
		assert.Empty(t, students)
	})

	t.Run("InsertAssignsUnusedIDs", func(t *testing.T) {
		s := open(t)

		seen := map[int64]bool{}
		for i := 0; i < 5; i++ {
			before, err := s.GetStudents()
			require.NoError(t, err)

			id, err := s.CreateStudent(Bob())
			require.NoError(t, err)
			assert.False(t, seen[id], "id %d reused", id)
			seen[id] = true

			after, err := s.GetStudents()
			require.NoError(t, err)
			assert.Len(t, after, len(before)+1)
		}
	})

	t.Run("InsertIgnoresCallerID", func(t *testing.T) {
		s := open(t)

		student := Alice()
		student.ID = 42

		id, err := s.CreateStudent(student)
		require.NoError(t, err)
		assert.Equal(t, int64(1), id)
	})

	t.Run("IDsAreNotReusedAfterDelete", func(t *testing.T) {
		s := open(t)

		first, err := s.CreateStudent(Alice())
		require.NoError(t, err)
		require.NoError(t, s.DeleteStudentByID(first))

		second, err := s.CreateStudent(Bob())
		require.NoError(t, err)
		assert.Greater(t, second, first)
	})

	t.Run("ListIsInInsertionOrder", func(t *testing.T) {
		s := open(t)

		for _, st := range []types.Student{Bob(), Alice(), Bob()} {
			_, err := s.CreateStudent(st)
			require.NoError(t, err)
		}

		students, err := s.GetStudents()
		require.NoError(t, err)
		require.Len(t, students, 3)
		assert.Equal(t, []string{"Bob", "Alice", "Bob"},
			[]string{students[0].Name, students[1].Name, students[2].Name})
		assert.Less(t, students[0].ID, students[1].ID)
		assert.Less(t, students[1].ID, students[2].ID)
	})

	t.Run("DeleteRemovesOnlyThatRow", func(t *testing.T) {
		s := open(t)

		aliceID, err := s.CreateStudent(Alice())
		require.NoError(t, err)
		bobID, err := s.CreateStudent(Bob())
		require.NoError(t, err)

		require.NoError(t, s.DeleteStudentByID(aliceID))

		students, err := s.GetStudents()
		require.NoError(t, err)
		require.Len(t, students, 1)
		assert.Equal(t, bobID, students[0].ID)
	})

	t.Run("DeleteMissingIDIsNoOp", func(t *testing.T) {
		s := open(t)

		_, err := s.CreateStudent(Alice())
		require.NoError(t, err)

		require.NoError(t, s.DeleteStudentByID(999))

		students, err := s.GetStudents()
		require.NoError(t, err)
		assert.Len(t, students, 1)
	})

	t.Run("TextFieldsAreStoredVerbatim", func(t *testing.T) {
		s := open(t)

		odd := Alice()
		odd.Name = "O'Brien; DROP TABLE SCHOOL_MANAGEMENT; --"
		odd.Phone = "not-a-number"

		_, err := s.CreateStudent(odd)
		require.NoError(t, err)

		students, err := s.GetStudents()
		require.NoError(t, err)
		require.Len(t, students, 1)
		assert.Equal(t, odd.Name, students[0].Name)
		assert.Equal(t, odd.Phone, students[0].Phone)
	})
}
