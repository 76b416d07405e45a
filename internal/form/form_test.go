package form

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/aanand-mishra/school-management/internal/config"
	"github.com/aanand-mishra/school-management/internal/storage"
	"github.com/aanand-mishra/school-management/internal/storage/sqlite"
	"github.com/aanand-mishra/school-management/internal/storage/storagetest"
	"github.com/aanand-mishra/school-management/internal/types"
	"github.com/aanand-mishra/school-management/internal/utils/message"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notice struct {
	kind, title, text string
}

type fakeView struct {
	notices  []notice
	rendered []types.Student
	renders  int
}

func (v *fakeView) ShowError(title, text string) {
	v.notices = append(v.notices, notice{"error", title, text})
}

func (v *fakeView) ShowInfo(title, text string) {
	v.notices = append(v.notices, notice{"info", title, text})
}

func (v *fakeView) Render(rows []types.Student) {
	v.rendered = rows
	v.renders++
}

func (v *fakeView) last() notice {
	if len(v.notices) == 0 {
		return notice{}
	}
	return v.notices[len(v.notices)-1]
}

var today = time.Date(2026, time.October, 19, 15, 4, 5, 0, time.UTC)

func setup(t *testing.T) (*Controller, *fakeView, storage.Storage) {
	t.Helper()

	store, err := sqlite.New(&config.Config{StoragePath: filepath.Join(t.TempDir(), "school.db")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	view := &fakeView{}
	c := New(store, view, WithClock(func() time.Time { return today }))
	require.NoError(t, c.Refresh())
	return c, view, store
}

func fill(t *testing.T, c *Controller, s types.Student) {
	t.Helper()

	require.NoError(t, c.SetField("name", s.Name))
	require.NoError(t, c.SetField("email", s.Email))
	require.NoError(t, c.SetField("phone", s.Phone))
	require.NoError(t, c.SetField("gender", s.Gender))
	require.NoError(t, c.SetField("dob", types.FormatDate(s.DOB)))
	require.NoError(t, c.SetField("stream", s.Stream))
}

func count(t *testing.T, store storage.Storage) int {
	t.Helper()

	students, err := store.GetStudents()
	require.NoError(t, err)
	return len(students)
}

func TestNewStartsIdleWithTodaysDate(t *testing.T) {
	c, view, _ := setup(t)

	assert.Equal(t, Idle, c.State())
	assert.Equal(t, FormState{DOB: time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)}, c.Form())
	assert.Empty(t, view.rendered)
	assert.Equal(t, 1, view.renders)
}

func TestAddInsertsAndRefreshes(t *testing.T) {
	c, view, store := setup(t)

	fill(t, c, storagetest.Alice())
	require.NoError(t, c.Add())

	assert.Equal(t, 1, count(t, store))
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, notice{"info", "Record added", "Record of Alice was successfully added"}, view.last())

	require.Len(t, view.rendered, 1)
	want := storagetest.Alice()
	want.ID = 1
	assert.Equal(t, want, view.rendered[0])

	// Fields are cleared after a successful submit.
	assert.Equal(t, FormState{DOB: types.DateOnly(today)}, c.Form())
}

func TestAddWithBlankFieldIsRejected(t *testing.T) {
	for _, field := range Fields() {
		t.Run(field, func(t *testing.T) {
			c, view, store := setup(t)

			fill(t, c, storagetest.Alice())
			require.NoError(t, c.SetField(field, ""))

			err := c.Add()

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Error(), field)

			assert.Equal(t, 0, count(t, store))
			assert.Equal(t, Idle, c.State())
			assert.Equal(t, "error", view.last().kind)
			assert.Equal(t, message.TitleError, view.last().title)

			// The rest of the form is kept for correction.
			if field != "name" {
				assert.Equal(t, "Alice", c.Form().Name)
			}
		})
	}
}

func TestAddRejectsUnknownGender(t *testing.T) {
	c, _, store := setup(t)

	alice := storagetest.Alice()
	alice.Gender = "Other"
	fill(t, c, alice)

	var verr *ValidationError
	require.ErrorAs(t, c.Add(), &verr)
	assert.Equal(t, 0, count(t, store))
}

type mismatchStore struct {
	storage.Storage
}

func (mismatchStore) CreateStudent(types.Student) (int64, error) {
	return 0, storage.ErrTypeMismatch
}

func TestAddReportsTypeMismatch(t *testing.T) {
	_, _, store := setup(t)

	view := &fakeView{}
	c := New(mismatchStore{store}, view, WithClock(func() time.Time { return today }))
	fill(t, c, storagetest.Alice())

	err := c.Add()
	require.ErrorIs(t, err, storage.ErrTypeMismatch)
	assert.Equal(t, message.TitleWrongType, view.last().title)
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, "Alice", c.Form().Name)
}

func TestAddAssignsFreshIDs(t *testing.T) {
	c, view, _ := setup(t)

	seen := map[int64]bool{}
	for i := 0; i < 3; i++ {
		fill(t, c, storagetest.Bob())
		require.NoError(t, c.Add())

		id := view.rendered[len(view.rendered)-1].ID
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Len(t, view.rendered, 3)
}

func TestViewRequiresSelection(t *testing.T) {
	c, view, _ := setup(t)

	require.ErrorIs(t, c.View(), ErrNoSelection)
	assert.Equal(t, notice{"error", "Error!", "Please select an item from the database"}, view.last())
	assert.Equal(t, Idle, c.State())
}

func TestViewPopulatesFormFromSelectedRow(t *testing.T) {
	c, _, store := setup(t)

	_, err := store.CreateStudent(storagetest.Bob())
	require.NoError(t, err)
	id, err := store.CreateStudent(storagetest.Alice())
	require.NoError(t, err)
	require.NoError(t, c.Refresh())

	require.NoError(t, c.Select(id))
	require.NoError(t, c.View())

	assert.Equal(t, FieldsPopulated, c.State())
	alice := storagetest.Alice()
	assert.Equal(t, FormState{
		Name:   alice.Name,
		Email:  alice.Email,
		Phone:  alice.Phone,
		Gender: alice.Gender,
		DOB:    alice.DOB,
		Stream: alice.Stream,
	}, c.Form())

	// View only copies values: the stored row is unchanged and a
	// resubmit creates a new record.
	require.NoError(t, c.Add())
	assert.Equal(t, 3, count(t, store))
}

func TestSelectRejectsRowsNotOnDisplay(t *testing.T) {
	c, _, store := setup(t)

	id, err := store.CreateStudent(storagetest.Alice())
	require.NoError(t, err)

	// Inserted behind the controller's back: not displayed yet.
	require.ErrorIs(t, c.Select(id), ErrNotDisplayed)

	require.NoError(t, c.Refresh())
	require.NoError(t, c.Select(id))
	assert.Equal(t, id, c.Selected())
}

func TestDeleteRequiresSelection(t *testing.T) {
	c, view, _ := setup(t)

	require.ErrorIs(t, c.Delete(), ErrNoSelection)
	assert.Equal(t, "error", view.last().kind)
}

func TestDeleteRemovesSelectedRow(t *testing.T) {
	c, view, store := setup(t)

	aliceID, err := store.CreateStudent(storagetest.Alice())
	require.NoError(t, err)
	bobID, err := store.CreateStudent(storagetest.Bob())
	require.NoError(t, err)
	require.NoError(t, c.Refresh())

	require.NoError(t, c.Select(aliceID))
	require.NoError(t, c.View())
	require.NoError(t, c.Delete())

	assert.Equal(t, Idle, c.State())
	assert.Equal(t, int64(0), c.Selected())
	assert.Equal(t, notice{"info", "Done", "The record you wanted deleted was successfully deleted."}, view.last())

	require.Len(t, view.rendered, 1)
	assert.Equal(t, bobID, view.rendered[0].ID)
	assert.Equal(t, 1, count(t, store))
}

func TestRefreshDropsStaleSelection(t *testing.T) {
	c, _, store := setup(t)

	id, err := store.CreateStudent(storagetest.Alice())
	require.NoError(t, err)
	require.NoError(t, c.Refresh())
	require.NoError(t, c.Select(id))

	require.NoError(t, store.DeleteStudentByID(id))
	require.NoError(t, c.Refresh())

	assert.Equal(t, int64(0), c.Selected())
	require.ErrorIs(t, c.Delete(), ErrNoSelection)
}

func TestResetFields(t *testing.T) {
	c, _, _ := setup(t)

	fill(t, c, storagetest.Bob())
	c.ResetFields()

	assert.Equal(t, Idle, c.State())
	assert.Equal(t, FormState{DOB: types.DateOnly(today)}, c.Form())
}

func TestResetDisplayKeepsStore(t *testing.T) {
	c, view, store := setup(t)

	fill(t, c, storagetest.Alice())
	require.NoError(t, c.Add())
	require.NoError(t, c.Select(view.rendered[0].ID))
	fill(t, c, storagetest.Bob())

	c.ResetDisplay()

	assert.Empty(t, c.Rows())
	assert.Empty(t, view.rendered)
	assert.Equal(t, int64(0), c.Selected())
	assert.Equal(t, FormState{DOB: types.DateOnly(today)}, c.Form())
	assert.Equal(t, 1, count(t, store))

	require.NoError(t, c.Refresh())
	assert.Len(t, c.Rows(), 1)
}

func TestDisplayMatchesStoreAfterMutations(t *testing.T) {
	c, view, store := setup(t)

	for _, s := range []types.Student{storagetest.Alice(), storagetest.Bob(), storagetest.Alice()} {
		fill(t, c, s)
		require.NoError(t, c.Add())
	}

	require.NoError(t, c.Select(view.rendered[1].ID))
	require.NoError(t, c.Delete())

	fill(t, c, storagetest.Bob())
	require.NoError(t, c.Add())

	stored, err := store.GetStudents()
	require.NoError(t, err)
	assert.Equal(t, stored, view.rendered)
	assert.Equal(t, stored, c.Rows())
}

func TestSetFieldErrors(t *testing.T) {
	c, _, _ := setup(t)

	require.ErrorIs(t, c.SetField("age", "12"), ErrUnknownField)
	assert.Error(t, c.SetField("dob", "03/05/2001"))

	require.NoError(t, c.SetField("dob", "2001-05-03"))
	assert.Equal(t, time.Date(2001, time.May, 3, 0, 0, 0, 0, time.UTC), c.Form().DOB)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "fields-populated", FieldsPopulated.String())
	assert.Equal(t, "submitting", Submitting.String())
}
