package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/tutorial-records/pkg/errors"
)

// Envelope is the wire shape of one command line.
type Envelope struct {
	Command string          `json:"command"`
	Args    json.RawMessage `json:"args"`
}

var factories = map[string]func() Command{
	"add_person":         func() Command { return &AddPerson{} },
	"edit_person":        func() Command { return &EditPerson{} },
	"delete_person":      func() Command { return &DeletePerson{} },
	"find_person":        func() Command { return &FindPerson{} },
	"filter_tag":         func() Command { return &FilterTag{} },
	"list_persons":       func() Command { return &ListPersons{} },
	"add_class":          func() Command { return &AddClass{} },
	"edit_class":         func() Command { return &EditClass{} },
	"delete_class":       func() Command { return &DeleteClass{} },
	"list_classes":       func() Command { return &ListClasses{} },
	"add_student":        func() Command { return &AddStudent{} },
	"delete_student":     func() Command { return &DeleteStudent{} },
	"move_student":       func() Command { return &MoveStudent{} },
	"list_students":      func() Command { return &ListStudents{} },
	"mark":               func() Command { return &Mark{} },
	"unmark":             func() Command { return &Unmark{} },
	"add_comment":        func() Command { return &AddComment{} },
	"view_comment":       func() Command { return &ViewComment{} },
	"delete_comment":     func() Command { return &DeleteComment{} },
	"list_attendance":    func() Command { return &ListAttendance{} },
	"attendance_summary": func() Command { return &AttendanceSummary{} },
	"add_assessment":     func() Command { return &AddAssessment{} },
	"delete_assessment":  func() Command { return &DeleteAssessment{} },
	"add_result":         func() Command { return &AddResult{} },
	"edit_result":        func() Command { return &EditResult{} },
	"view_results":       func() Command { return &ViewResults{} },
	"export":             func() Command { return &Export{} },
	"exit":               func() Command { return &Exit{} },
}

// Words lists the known command words in sorted order.
func Words() []string {
	words := make([]string, 0, len(factories))
	for word := range factories {
		words = append(words, word)
	}
	sort.Strings(words)
	return words
}

// Decoder turns JSON command lines into validated commands.
type Decoder struct {
	validator *validator.Validate
}

// NewDecoder constructs a Decoder. A nil validator gets a default one.
func NewDecoder(validate *validator.Validate) *Decoder {
	if validate == nil {
		validate = validator.New()
	}
	return &Decoder{validator: validate}
}

// Decode parses a single line. Unknown words, unknown fields and failed tag
// checks are validation errors.
func (d *Decoder) Decode(line []byte) (Command, error) {
	var env Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "malformed command line")
	}
	word := strings.ToLower(strings.TrimSpace(env.Command))
	factory, ok := factories[word]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown command %q", env.Command))
	}
	cmd := factory()
	if len(bytes.TrimSpace(env.Args)) > 0 && !bytes.Equal(bytes.TrimSpace(env.Args), []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(env.Args))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cmd); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, fmt.Sprintf("invalid arguments for %s", word))
		}
	}
	if err := d.validator.Struct(cmd); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, fmt.Sprintf("invalid arguments for %s: %s", word, describe(err)))
	}
	return cmd, nil
}

func describe(err error) string {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return err.Error()
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(f.Field()), f.Tag()))
	}
	return strings.Join(parts, ", ")
}
