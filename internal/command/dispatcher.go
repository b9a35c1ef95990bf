package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorial-records/internal/models"
	"github.com/noah-isme/tutorial-records/internal/service"
	appErrors "github.com/noah-isme/tutorial-records/pkg/errors"
)

type reportExporter interface {
	ExportAttendance(tutorial models.TutorialName, format service.ReportFormat) (string, error)
	ExportResults(assessment models.AssessmentName, tutorial models.TutorialName, format service.ReportFormat) (string, error)
}

type commandObserver interface {
	ObserveCommand(command string, err error, duration time.Duration)
}

// Result is the outcome of one executed command.
type Result struct {
	ID       string
	Command  string
	Feedback string
	// Mutated is set when the command changed the records and a save is due.
	Mutated bool
	Exit    bool
}

// Dispatcher executes decoded commands against the model.
type Dispatcher struct {
	model   *service.Model
	reports reportExporter
	metrics commandObserver
	logger  *zap.Logger
	newID   func() string
}

// NewDispatcher constructs a Dispatcher. reports and metrics may be nil.
func NewDispatcher(model *service.Model, reports reportExporter, metrics commandObserver, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		model:   model,
		reports: reports,
		metrics: metrics,
		logger:  logger,
		newID:   func() string { return uuid.NewString() },
	}
}

// Execute runs cmd and reports its feedback. Failed commands leave the
// records untouched.
func (d *Dispatcher) Execute(ctx context.Context, cmd Command) (Result, error) {
	if cmd == nil {
		return Result{}, appErrors.Clone(appErrors.ErrValidation, "no command given")
	}
	id := d.newID()
	start := time.Now()
	res, err := d.execute(ctx, cmd)
	duration := time.Since(start)
	if d.metrics != nil {
		d.metrics.ObserveCommand(cmd.Word(), err, duration)
	}
	res.ID = id
	res.Command = cmd.Word()
	if err != nil {
		appErr := appErrors.FromError(err)
		d.logger.Warn("command failed",
			zap.String("command_id", id),
			zap.String("command", cmd.Word()),
			zap.String("code", appErr.Code),
			zap.Error(err),
		)
		return res, err
	}
	d.logger.Debug("command executed",
		zap.String("command_id", id),
		zap.String("command", cmd.Word()),
		zap.Bool("mutated", res.Mutated),
		zap.Duration("duration", duration),
	)
	return res, nil
}

func (d *Dispatcher) execute(ctx context.Context, cmd Command) (Result, error) {
	m := d.model
	switch c := cmd.(type) {
	case *AddPerson:
		p, err := parsePerson(c)
		if err != nil {
			return Result{}, err
		}
		if err := m.Persons.Add(ctx, p); err != nil {
			return Result{}, err
		}
		return mutated("New person added: " + formatPerson(p)), nil

	case *EditPerson:
		edit, err := parsePersonEdit(c)
		if err != nil {
			return Result{}, err
		}
		target, err := m.Views.PersonAt(c.Index)
		if err != nil {
			return Result{}, err
		}
		edited, err := m.Persons.Edit(ctx, target.Name, edit)
		if err != nil {
			return Result{}, err
		}
		return mutated("Edited person: " + formatPerson(edited)), nil

	case *DeletePerson:
		target, err := m.Views.PersonAt(c.Index)
		if err != nil {
			return Result{}, err
		}
		removed, err := m.Persons.Delete(ctx, target.Name)
		if err != nil {
			return Result{}, err
		}
		return mutated("Deleted person: " + formatPerson(removed)), nil

	case *FindPerson:
		m.Views.UpdateFilteredPersonList(service.NameContainsKeywords(c.Keywords))
		persons := m.Views.Persons()
		return feedback(listing(countLabel(len(persons), "person")+" listed!", persons, formatPerson)), nil

	case *FilterTag:
		m.Views.UpdateFilteredPersonList(service.TagContainsKeywords(c.Keywords))
		persons := m.Views.Persons()
		return feedback(listing(countLabel(len(persons), "person")+" listed!", persons, formatPerson)), nil

	case *ListPersons:
		m.Views.UpdateFilteredPersonList(nil)
		return feedback(listing("Listed all persons", m.Views.Persons(), formatPerson)), nil

	case *AddClass:
		t, err := parseTutorial(c)
		if err != nil {
			return Result{}, err
		}
		if err := m.Tutorials.Add(ctx, t); err != nil {
			return Result{}, err
		}
		return mutated("New tutorial added: " + formatTutorial(t)), nil

	case *EditClass:
		name, err := models.NewTutorialName(c.Name)
		if err != nil {
			return Result{}, err
		}
		edit, err := parseTutorialEdit(c)
		if err != nil {
			return Result{}, err
		}
		edited, err := m.Tutorials.Edit(ctx, name, edit)
		if err != nil {
			return Result{}, err
		}
		return mutated("Edited tutorial: " + formatTutorial(edited)), nil

	case *DeleteClass:
		name, err := models.NewTutorialName(c.Name)
		if err != nil {
			return Result{}, err
		}
		removed, err := m.Tutorials.Remove(ctx, name)
		if err != nil {
			return Result{}, err
		}
		return mutated("Deleted tutorial: " + formatTutorial(removed)), nil

	case *ListClasses:
		m.Views.UpdateFilteredTutorialList(nil)
		return feedback(listing("Listed all tutorials", m.Views.Tutorials(), formatTutorial)), nil

	case *AddStudent:
		name, err := models.NewName(c.Name)
		if err != nil {
			return Result{}, err
		}
		id, tutorial, err := parseStudentRef(c.StudentID, c.Tutorial)
		if err != nil {
			return Result{}, err
		}
		student, err := m.Enrollment.Enroll(ctx, name, id, tutorial)
		if err != nil {
			return Result{}, err
		}
		return mutated("New student added: " + formatStudent(student)), nil

	case *DeleteStudent:
		id, tutorial, err := parseStudentRef(c.StudentID, c.Tutorial)
		if err != nil {
			return Result{}, err
		}
		removed, err := m.Enrollment.Unenroll(ctx, id, tutorial)
		if err != nil {
			return Result{}, err
		}
		return mutated("Deleted student: " + formatStudent(removed)), nil

	case *MoveStudent:
		id, from, err := parseStudentRef(c.StudentID, c.From)
		if err != nil {
			return Result{}, err
		}
		to, err := models.NewTutorialName(c.To)
		if err != nil {
			return Result{}, err
		}
		moved, err := m.Enrollment.Transfer(ctx, id, from, to)
		if err != nil {
			return Result{}, err
		}
		return mutated(fmt.Sprintf("Moved student from %s: %s", from, formatStudent(moved))), nil

	case *ListStudents:
		if c.Tutorial == "" {
			m.Views.UpdateFilteredStudentList(nil)
			return feedback(listing("Listed all students", m.Views.Students(), formatStudent)), nil
		}
		tutorial, err := d.existingTutorial(c.Tutorial)
		if err != nil {
			return Result{}, err
		}
		m.Views.UpdateFilteredStudentList(service.StudentInTutorial(tutorial))
		students := m.Views.Students()
		return feedback(listing(fmt.Sprintf("%s in %s", countLabel(len(students), "student"), tutorial), students, formatStudent)), nil

	case *Mark:
		return d.setPresence(ctx, c.Tutorial, c.StudentID, c.Week, true)

	case *Unmark:
		return d.setPresence(ctx, c.Tutorial, c.StudentID, c.Week, false)

	case *AddComment:
		id, tutorial, err := parseStudentRef(c.StudentID, c.Tutorial)
		if err != nil {
			return Result{}, err
		}
		if err := m.Attendance.SetComment(ctx, tutorial, id, c.Week, c.Comment); err != nil {
			return Result{}, err
		}
		return mutated(fmt.Sprintf("Added comment for %s in %s week %d", id, tutorial, c.Week)), nil

	case *ViewComment:
		id, tutorial, err := parseStudentRef(c.StudentID, c.Tutorial)
		if err != nil {
			return Result{}, err
		}
		comment, err := m.Attendance.Comment(tutorial, id, c.Week)
		if err != nil {
			return Result{}, err
		}
		if comment == "" {
			return feedback(fmt.Sprintf("No comment for %s in %s week %d", id, tutorial, c.Week)), nil
		}
		return feedback(fmt.Sprintf("Comment for %s in %s week %d: %s", id, tutorial, c.Week, comment)), nil

	case *DeleteComment:
		id, tutorial, err := parseStudentRef(c.StudentID, c.Tutorial)
		if err != nil {
			return Result{}, err
		}
		if err := m.Attendance.RemoveComment(ctx, tutorial, id, c.Week); err != nil {
			return Result{}, err
		}
		return mutated(fmt.Sprintf("Deleted comment for %s in %s week %d", id, tutorial, c.Week)), nil

	case *ListAttendance:
		tutorial, err := d.existingTutorial(c.Tutorial)
		if err != nil {
			return Result{}, err
		}
		var id models.StudentID
		if c.StudentID != "" {
			if id, err = models.NewStudentID(c.StudentID); err != nil {
				return Result{}, err
			}
		}
		m.Views.UpdateFilteredAttendanceList(service.AttendanceOf(tutorial, id))
		return feedback(listing("Attendance of "+tutorial.String(), m.Views.Attendance(), formatCell)), nil

	case *AttendanceSummary:
		tutorial, err := models.NewTutorialName(c.Tutorial)
		if err != nil {
			return Result{}, err
		}
		summary, err := m.Attendance.Summary(tutorial)
		if err != nil {
			return Result{}, err
		}
		return feedback(listing("Attendance summary of "+tutorial.String(), summary, formatSummary)), nil

	case *AddAssessment:
		name, err := models.NewAssessmentName(c.Name)
		if err != nil {
			return Result{}, err
		}
		maxScore := c.MaxScore
		if maxScore == 0 {
			maxScore = m.Settings().DefaultMaxScore
		}
		added, err := m.Assessments.Add(ctx, name, maxScore)
		if err != nil {
			return Result{}, err
		}
		return mutated("New assessment added: " + formatAssessment(added)), nil

	case *DeleteAssessment:
		name, err := models.NewAssessmentName(c.Name)
		if err != nil {
			return Result{}, err
		}
		removed, err := m.Assessments.Remove(ctx, name)
		if err != nil {
			return Result{}, err
		}
		return mutated("Deleted assessment: " + formatAssessment(removed)), nil

	case *AddResult:
		return d.writeResult(ctx, c.Name, c.Assessment, *c.Score, m.Assessments.AddStudentResult)

	case *EditResult:
		return d.writeResult(ctx, c.Name, c.Assessment, *c.Score, m.Assessments.SetStudentResult)

	case *ViewResults:
		assessment, err := models.NewAssessmentName(c.Assessment)
		if err != nil {
			return Result{}, err
		}
		tutorial, err := models.NewTutorialName(c.Tutorial)
		if err != nil {
			return Result{}, err
		}
		rows, err := m.Assessments.Results(assessment, tutorial)
		if err != nil {
			return Result{}, err
		}
		return feedback(listing(fmt.Sprintf("Results of %s in %s", assessment, tutorial), rows, formatResult)), nil

	case *Export:
		return d.export(c)

	case *Exit:
		return Result{Feedback: "Exiting records as requested ...", Exit: true}, nil
	}
	return Result{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported command %s", cmd.Word()))
}

func (d *Dispatcher) setPresence(ctx context.Context, rawTutorial, rawID string, week int, present bool) (Result, error) {
	tutorial, err := models.NewTutorialName(rawTutorial)
	if err != nil {
		return Result{}, err
	}
	verb := "Unmarked"
	if present {
		verb = "Marked"
	}
	att := d.model.Attendance
	if rawID == "" {
		if present {
			err = att.MarkForClass(ctx, tutorial, week)
		} else {
			err = att.UnmarkForClass(ctx, tutorial, week)
		}
		if err != nil {
			return Result{}, err
		}
		return mutated(fmt.Sprintf("%s attendance of class %s for week %d", verb, tutorial, week)), nil
	}
	id, err := models.NewStudentID(rawID)
	if err != nil {
		return Result{}, err
	}
	if present {
		err = att.MarkForStudent(ctx, tutorial, id, week)
	} else {
		err = att.UnmarkForStudent(ctx, tutorial, id, week)
	}
	if err != nil {
		return Result{}, err
	}
	return mutated(fmt.Sprintf("%s attendance of %s in %s for week %d", verb, id, tutorial, week)), nil
}

type resultWriter func(ctx context.Context, name models.Name, assessment models.AssessmentName, score float64) (models.StudentResult, error)

func (d *Dispatcher) writeResult(ctx context.Context, rawName, rawAssessment string, score float64, write resultWriter) (Result, error) {
	name, err := models.NewName(rawName)
	if err != nil {
		return Result{}, err
	}
	assessment, err := models.NewAssessmentName(rawAssessment)
	if err != nil {
		return Result{}, err
	}
	result, err := write(ctx, name, assessment, score)
	if err != nil {
		return Result{}, err
	}
	return mutated(fmt.Sprintf("Recorded %s for %s (%s) in %s", formatScore(result.Score), name, result.StudentID, assessment)), nil
}

func (d *Dispatcher) export(c *Export) (Result, error) {
	if d.reports == nil {
		return Result{}, appErrors.Clone(appErrors.ErrValidation, "exports are not configured")
	}
	format, err := service.ParseReportFormat(c.Format)
	if err != nil {
		return Result{}, err
	}
	tutorial, err := models.NewTutorialName(c.Tutorial)
	if err != nil {
		return Result{}, err
	}
	var path string
	switch c.Report {
	case "attendance":
		path, err = d.reports.ExportAttendance(tutorial, format)
	case "results":
		assessment, aerr := models.NewAssessmentName(c.Assessment)
		if aerr != nil {
			return Result{}, aerr
		}
		path, err = d.reports.ExportResults(assessment, tutorial, format)
	default:
		err = appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown report %q", c.Report))
	}
	if err != nil {
		return Result{}, err
	}
	return feedback("Exported " + c.Report + " to " + path), nil
}

func (d *Dispatcher) existingTutorial(raw string) (models.TutorialName, error) {
	name, err := models.NewTutorialName(raw)
	if err != nil {
		return "", err
	}
	if _, err := d.model.Tutorials.Find(name); err != nil {
		return "", err
	}
	return name, nil
}

func feedback(text string) Result { return Result{Feedback: text} }

func mutated(text string) Result { return Result{Feedback: text, Mutated: true} }

func parsePerson(c *AddPerson) (models.Person, error) {
	name, err := models.NewName(c.Name)
	if err != nil {
		return models.Person{}, err
	}
	phone, err := models.NewPhone(c.Phone)
	if err != nil {
		return models.Person{}, err
	}
	email, err := models.NewEmail(c.Email)
	if err != nil {
		return models.Person{}, err
	}
	address, err := models.NewAddress(c.Address)
	if err != nil {
		return models.Person{}, err
	}
	tags, err := models.NewTags(c.Tags)
	if err != nil {
		return models.Person{}, err
	}
	return models.NewPerson(name, phone, email, address, tags), nil
}

func parsePersonEdit(c *EditPerson) (service.PersonEdit, error) {
	var (
		edit service.PersonEdit
		err  error
	)
	if edit.Name, err = optional(c.Name, models.NewName); err != nil {
		return edit, err
	}
	if edit.Phone, err = optional(c.Phone, models.NewPhone); err != nil {
		return edit, err
	}
	if edit.Email, err = optional(c.Email, models.NewEmail); err != nil {
		return edit, err
	}
	if edit.Address, err = optional(c.Address, models.NewAddress); err != nil {
		return edit, err
	}
	if c.Tags != nil {
		tags, err := models.NewTags(*c.Tags)
		if err != nil {
			return edit, err
		}
		edit.Tags = &tags
	}
	return edit, nil
}

func parseTutorial(c *AddClass) (models.Tutorial, error) {
	name, err := models.NewTutorialName(c.Name)
	if err != nil {
		return models.Tutorial{}, err
	}
	venue, err := models.NewVenue(c.Venue)
	if err != nil {
		return models.Tutorial{}, err
	}
	day, err := models.NewDay(c.Day)
	if err != nil {
		return models.Tutorial{}, err
	}
	at, err := models.NewTime(c.Time)
	if err != nil {
		return models.Tutorial{}, err
	}
	return models.NewTutorial(name, venue, day, at, c.Weeks), nil
}

func parseTutorialEdit(c *EditClass) (service.TutorialEdit, error) {
	var (
		edit service.TutorialEdit
		err  error
	)
	if edit.Venue, err = optional(c.Venue, models.NewVenue); err != nil {
		return edit, err
	}
	if edit.Day, err = optional(c.Day, models.NewDay); err != nil {
		return edit, err
	}
	if edit.Time, err = optional(c.Time, models.NewTime); err != nil {
		return edit, err
	}
	edit.Weeks = c.Weeks
	return edit, nil
}

func parseStudentRef(rawID, rawTutorial string) (models.StudentID, models.TutorialName, error) {
	id, err := models.NewStudentID(rawID)
	if err != nil {
		return "", "", err
	}
	tutorial, err := models.NewTutorialName(rawTutorial)
	if err != nil {
		return "", "", err
	}
	return id, tutorial, nil
}

func optional[T any](raw *string, parse func(string) (T, error)) (*T, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := parse(*raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
