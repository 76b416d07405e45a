// Package form contains the controller behind the student records form.
//
// The controller owns everything a desktop form would keep in widget
// variables: the values typed into the form, the list of records on
// display, and which of those records is selected. A front end forwards
// user actions (Add, Delete, View, Reset Fields, Reset Display) to the
// controller and implements View to show the results.
//
// Every action runs synchronously: validate, call the store, repaint the
// whole list from a fresh full scan. There is no cache to go stale.
package form

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aanand-mishra/school-management/internal/storage"
	"github.com/aanand-mishra/school-management/internal/types"
	"github.com/aanand-mishra/school-management/internal/utils/message"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNoSelection is returned by View and Delete when no row is selected.
	ErrNoSelection = errors.New("no record selected")

	// ErrNotDisplayed is returned by Select for an ID that is not in the
	// displayed list.
	ErrNotDisplayed = errors.New("record is not displayed")

	// ErrUnknownField is returned by SetField for a name with no mutator.
	ErrUnknownField = errors.New("unknown form field")
)

// ValidationError reports the form fields that failed validation on Add.
type ValidationError struct {
	Errs validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	return message.ValidationError(e.Errs).Text
}

func (e *ValidationError) Unwrap() error {
	return e.Errs
}

// State is the controller's position in the form state machine.
type State int

const (
	Idle State = iota
	FieldsPopulated
	Submitting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FieldsPopulated:
		return "fields-populated"
	case Submitting:
		return "submitting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// View is what a front end implements to show the controller's output.
type View interface {
	// ShowError reports a failed action to the user.
	ShowError(title, text string)

	// ShowInfo reports a successful action to the user.
	ShowInfo(title, text string)

	// Render replaces the displayed list with rows.
	Render(rows []types.Student)
}

// FormState holds the current value of every input on the form.
type FormState struct {
	Name   string
	Email  string
	Phone  string
	Gender string
	DOB    time.Time
	Stream string
}

// Student converts the form into a record ready for insertion.
func (f FormState) Student() types.Student {
	return types.Student{
		Name:   f.Name,
		Email:  f.Email,
		Phone:  f.Phone,
		Gender: f.Gender,
		DOB:    f.DOB,
		Stream: f.Stream,
	}
}

// fieldSetters maps each form field name to the function that assigns it
// from text input.
var fieldSetters = map[string]func(f *FormState, value string) error{
	"name":   func(f *FormState, v string) error { f.Name = v; return nil },
	"email":  func(f *FormState, v string) error { f.Email = v; return nil },
	"phone":  func(f *FormState, v string) error { f.Phone = v; return nil },
	"gender": func(f *FormState, v string) error { f.Gender = v; return nil },
	"stream": func(f *FormState, v string) error { f.Stream = v; return nil },
	"dob": func(f *FormState, v string) error {
		if v == "" {
			f.DOB = time.Time{}
			return nil
		}
		dob, err := types.ParseDate(v)
		if err != nil {
			return err
		}
		f.DOB = dob
		return nil
	},
}

// Fields returns the names accepted by SetField, in form order.
func Fields() []string {
	return []string{"name", "email", "phone", "gender", "dob", "stream"}
}

// Controller binds form state to a record store and a view.
// It is not safe for concurrent use; a front end drives it from one
// goroutine, one action at a time.
type Controller struct {
	store    storage.Storage
	view     View
	now      func() time.Time
	validate *validator.Validate

	state    State
	form     FormState
	rows     []types.Student
	selected int64
}

// Option customises a Controller.
type Option func(*Controller)

// WithClock sets the clock used to reset the date of birth field.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New returns a controller with blank fields and an empty display. Call
// Refresh to load the list from the store.
func New(store storage.Storage, view View, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		view:     view,
		now:      time.Now,
		validate: validator.New(),
		rows:     []types.Student{},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.ResetFields()
	return c
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Form returns a copy of the current field values.
func (c *Controller) Form() FormState { return c.form }

// Selected returns the selected record's ID, or 0 when nothing is selected.
func (c *Controller) Selected() int64 { return c.selected }

// Rows returns a copy of the displayed list.
func (c *Controller) Rows() []types.Student {
	rows := make([]types.Student, len(c.rows))
	copy(rows, c.rows)
	return rows
}

// SetField assigns one form field from text input.
func (c *Controller) SetField(name, value string) error {
	set, ok := fieldSetters[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if err := set(&c.form, value); err != nil {
		return fmt.Errorf("field %s: %w", name, err)
	}
	return nil
}

// Select marks a displayed record as the current selection.
func (c *Controller) Select(id int64) error {
	if _, ok := c.find(id); !ok {
		return fmt.Errorf("%w: id %d", ErrNotDisplayed, id)
	}
	c.selected = id
	return nil
}

// Refresh rebuilds the displayed list from a full scan of the store.
func (c *Controller) Refresh() error {
	students, err := c.store.GetStudents()
	if err != nil {
		slog.Error("error listing students", slog.String("error", err.Error()))
		msg := message.GeneralError(err)
		c.view.ShowError(msg.Title, msg.Text)
		return fmt.Errorf("Refresh: %w", err)
	}

	c.rows = students
	if _, ok := c.find(c.selected); !ok {
		c.selected = 0
	}

	slog.Debug("display refreshed", slog.Int("rows", len(students)))
	c.view.Render(c.Rows())
	return nil
}

// Add validates the form and inserts it as a new record. On success the
// fields are reset and the list refreshed; on any failure nothing is
// written and the form keeps its values.
func (c *Controller) Add() error {
	c.state = Submitting
	defer func() { c.state = Idle }()

	student := c.form.Student()

	if err := c.validate.Struct(student); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return fmt.Errorf("Add: validate: %w", err)
		}

		verr := &ValidationError{Errs: errs}
		slog.Info("student rejected", slog.String("reason", verr.Error()))
		msg := message.ValidationError(errs)
		c.view.ShowError(msg.Title, msg.Text)
		return verr
	}

	id, err := c.store.CreateStudent(student)
	if err != nil {
		slog.Error("error creating student", slog.String("error", err.Error()))

		msg := message.GeneralError(err)
		if errors.Is(err, storage.ErrTypeMismatch) {
			msg = message.WrongType()
		}
		c.view.ShowError(msg.Title, msg.Text)
		return fmt.Errorf("Add: %w", err)
	}

	slog.Info("student created", slog.Int64("id", id))

	msg := message.RecordAdded(student.Name)
	c.view.ShowInfo(msg.Title, msg.Text)

	c.ResetFields()
	return c.Refresh()
}

// View copies the selected record into the form fields.
func (c *Controller) View() error {
	row, ok := c.find(c.selected)
	if !ok {
		msg := message.NoSelection()
		c.view.ShowError(msg.Title, msg.Text)
		return ErrNoSelection
	}

	c.form = FormState{
		Name:   row.Name,
		Email:  row.Email,
		Phone:  row.Phone,
		Gender: row.Gender,
		DOB:    row.DOB,
		Stream: row.Stream,
	}
	c.state = FieldsPopulated

	slog.Debug("student loaded into form", slog.Int64("id", row.ID))
	return nil
}

// Delete removes the selected record from the store and refreshes.
func (c *Controller) Delete() error {
	c.state = Idle

	if _, ok := c.find(c.selected); !ok {
		msg := message.NoSelection()
		c.view.ShowError(msg.Title, msg.Text)
		return ErrNoSelection
	}

	id := c.selected
	if err := c.store.DeleteStudentByID(id); err != nil {
		slog.Error("error deleting student",
			slog.Int64("id", id),
			slog.String("error", err.Error()))
		msg := message.GeneralError(err)
		c.view.ShowError(msg.Title, msg.Text)
		return fmt.Errorf("Delete: %w", err)
	}

	slog.Info("student deleted", slog.Int64("id", id))
	c.selected = 0

	msg := message.RecordDeleted()
	c.view.ShowInfo(msg.Title, msg.Text)

	return c.Refresh()
}

// ResetFields blanks every text field and sets the date of birth to today.
func (c *Controller) ResetFields() {
	c.form = FormState{DOB: types.DateOnly(c.now())}
	c.state = Idle
}

// ResetDisplay clears the displayed list, the selection and the form.
// Stored records are not touched; the next Refresh shows them again.
func (c *Controller) ResetDisplay() {
	c.rows = []types.Student{}
	c.selected = 0
	c.view.Render(c.Rows())
	c.ResetFields()

	slog.Debug("display reset")
}

func (c *Controller) find(id int64) (types.Student, bool) {
	if id == 0 {
		return types.Student{}, false
	}
	for _, row := range c.rows {
		if row.ID == id {
			return row, true
		}
	}
	return types.Student{}, false
}
