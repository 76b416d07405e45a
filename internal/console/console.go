// Package console is a line-oriented terminal front end for the student
// records form. It reads one command per line, forwards it to the form
// controller, and doubles as the controller's View by printing notices
// and the records table.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/aanand-mishra/school-management/internal/form"
	"github.com/aanand-mishra/school-management/internal/types"
)

const help = `commands:
  set <field> <value>   set a form field (name, email, phone, gender, dob, stream)
  add                   submit the form as a new record
  select <id>           select a displayed record
  view                  copy the selected record into the form
  delete                delete the selected record
  reset                 clear the form fields
  reset-display         clear the displayed list and the form
  list                  reload the list from the database
  form                  show the current form
  help                  show this help
  quit                  exit
`

// Console implements form.View on top of an io.Writer.
type Console struct {
	out    io.Writer
	prompt string
}

var _ form.View = (*Console)(nil)

// New returns a Console that writes to out and shows prompt before
// reading each command.
func New(out io.Writer, prompt string) *Console {
	return &Console{out: out, prompt: prompt}
}

// ShowError prints a failed action.
func (c *Console) ShowError(title, text string) {
	fmt.Fprintf(c.out, "ERROR [%s] %s\n", title, text)
}

// ShowInfo prints a successful action.
func (c *Console) ShowInfo(title, text string) {
	fmt.Fprintf(c.out, "INFO  [%s] %s\n", title, text)
}

// Render prints the full records table.
func (c *Console) Render(rows []types.Student) {
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tName\tEmail\tPhone\tGender\tDOB\tStream")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Name, r.Email, r.Phone, r.Gender, types.FormatDate(r.DOB), r.Stream)
	}
	w.Flush()

	if len(rows) == 0 {
		fmt.Fprintln(c.out, "(no records)")
	}
}

// Run reads commands from in until EOF, a quit command, or ctx is done.
// Each command runs to completion before the next line is read.
func (c *Console) Run(ctx context.Context, in io.Reader, ctrl *form.Controller) error {
	scanner := bufio.NewScanner(in)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(c.out, c.prompt)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("console: read: %w", err)
			}
			fmt.Fprintln(c.out)
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if quit := c.dispatch(line, ctrl); quit {
			return nil
		}
	}
}

// dispatch runs one command line and reports whether it asked to quit.
//
// Errors from add, view and delete are already shown through the View,
// so they are not printed again here.
func (c *Console) dispatch(line string, ctrl *form.Controller) bool {
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(verb) {
	case "set":
		field, value, _ := strings.Cut(rest, " ")
		if err := ctrl.SetField(strings.ToLower(field), strings.TrimSpace(value)); err != nil {
			c.printErr(err)
		}
	case "add":
		_ = ctrl.Add()
	case "select":
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			c.printErr(fmt.Errorf("invalid id %q: must be an integer", rest))
			return false
		}
		if err := ctrl.Select(id); err != nil {
			c.printErr(err)
			return false
		}
		fmt.Fprintf(c.out, "selected %d\n", id)
	case "view":
		if err := ctrl.View(); err == nil {
			c.printForm(ctrl.Form())
		}
	case "delete":
		_ = ctrl.Delete()
	case "reset":
		ctrl.ResetFields()
		c.printForm(ctrl.Form())
	case "reset-display":
		ctrl.ResetDisplay()
	case "list":
		_ = ctrl.Refresh()
	case "form":
		c.printForm(ctrl.Form())
	case "help", "?":
		fmt.Fprint(c.out, help)
	case "quit", "exit":
		return true
	default:
		c.printErr(fmt.Errorf("unknown command %q (try \"help\")", verb))
	}

	return false
}

func (c *Console) printForm(f form.FormState) {
	dob := ""
	if !f.DOB.IsZero() {
		dob = types.FormatDate(f.DOB)
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 1, ' ', 0)
	fmt.Fprintf(w, "name:\t%s\n", f.Name)
	fmt.Fprintf(w, "email:\t%s\n", f.Email)
	fmt.Fprintf(w, "phone:\t%s\n", f.Phone)
	fmt.Fprintf(w, "gender:\t%s\n", f.Gender)
	fmt.Fprintf(w, "dob:\t%s\n", dob)
	fmt.Fprintf(w, "stream:\t%s\n", f.Stream)
	w.Flush()
}

func (c *Console) printErr(err error) {
	fmt.Fprintf(c.out, "error: %s\n", err)
}
