// Package message builds the user-facing notices the front end shows
// after each action.
//
// Every notice has the same shape — a short title and a sentence of text —
// so a front end only needs two ways to display them: as an error or as
// information.
package message

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Message is the envelope handed to the front end.
type Message struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Titles used across the application. Constants instead of raw literals
// so a typo is caught by the compiler.
const (
	TitleError       = "Error!"
	TitleWrongType   = "Wrong type"
	TitleStorage     = "Storage error"
	TitleRecordAdded = "Record added"
	TitleDone        = "Done"
)

// NoSelection is shown when View or Delete runs without a selected row.
func NoSelection() Message {
	return Message{Title: TitleError, Text: "Please select an item from the database"}
}

// RecordAdded confirms a successful insert.
func RecordAdded(name string) Message {
	return Message{
		Title: TitleRecordAdded,
		Text:  fmt.Sprintf("Record of %s was successfully added", name),
	}
}

// RecordDeleted confirms a successful delete.
func RecordDeleted() Message {
	return Message{Title: TitleDone, Text: "The record you wanted deleted was successfully deleted."}
}

// WrongType is shown when the store rejects a value for its column.
func WrongType() Message {
	return Message{
		Title: TitleWrongType,
		Text:  "The type of the values entered is not accurate. Please note that the contact field can only contain numbers",
	}
}

// GeneralError wraps any other error into a Message.
func GeneralError(err error) Message {
	return Message{Title: TitleStorage, Text: err.Error()}
}

// ValidationError converts validator.FieldError values into one
// readable Message.
//
// Example output:
//
//	Please fill all the missing fields: name, phone
//
// Fields that are present but hold an unexpected value (gender outside
// the two selector options) are listed after the missing ones.
func ValidationError(errs validator.ValidationErrors) Message {
	var missing, invalid []string

	for _, e := range errs {
		field := strings.ToLower(e.Field())

		switch e.ActualTag() {
		// "required" tag — field was empty or zero-valued
		case "required":
			missing = append(missing, field)
		// "oneof" tag — field is not one of the listed options
		case "oneof":
			invalid = append(invalid,
				fmt.Sprintf("%s must be one of %s", field, strings.Join(strings.Fields(e.Param()), ", ")))
		default:
			invalid = append(invalid, fmt.Sprintf("%s is invalid", field))
		}
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "Please fill all the missing fields: "+strings.Join(missing, ", "))
	}
	parts = append(parts, invalid...)

	return Message{Title: TitleError, Text: strings.Join(parts, "; ")}
}
