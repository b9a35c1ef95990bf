package command

// Command is one decoded user command. The set of variants is closed; the
// dispatcher handles each in a single type switch.
type Command interface {
	Word() string
	isCommand()
}

type base struct{}

func (base) isCommand() {}

// AddPerson registers a person.
type AddPerson struct {
	base
	Name    string   `json:"name" validate:"required"`
	Phone   string   `json:"phone" validate:"required"`
	Email   string   `json:"email" validate:"required"`
	Address string   `json:"address" validate:"required"`
	Tags    []string `json:"tags"`
}

// EditPerson edits the person at a displayed index.
type EditPerson struct {
	base
	Index   int       `json:"index" validate:"min=1"`
	Name    *string   `json:"name"`
	Phone   *string   `json:"phone"`
	Email   *string   `json:"email"`
	Address *string   `json:"address"`
	Tags    *[]string `json:"tags"`
}

// DeletePerson deletes the person at a displayed index.
type DeletePerson struct {
	base
	Index int `json:"index" validate:"min=1"`
}

// FindPerson filters persons whose name contains any keyword.
type FindPerson struct {
	base
	Keywords []string `json:"keywords" validate:"min=1,dive,required"`
}

// FilterTag filters persons carrying any of the tags.
type FilterTag struct {
	base
	Keywords []string `json:"keywords" validate:"min=1,dive,required"`
}

// ListPersons clears the person filter.
type ListPersons struct{ base }

// AddClass creates a tutorial group.
type AddClass struct {
	base
	Name  string `json:"name" validate:"required"`
	Venue string `json:"venue" validate:"required"`
	Day   string `json:"day" validate:"required"`
	Time  string `json:"time" validate:"required"`
	Weeks int    `json:"weeks" validate:"required"`
}

// EditClass edits a tutorial group.
type EditClass struct {
	base
	Name  string  `json:"name" validate:"required"`
	Venue *string `json:"venue"`
	Day   *string `json:"day"`
	Time  *string `json:"time"`
	Weeks *int    `json:"weeks"`
}

// DeleteClass removes a tutorial group with its roster, attendance and results.
type DeleteClass struct {
	base
	Name string `json:"name" validate:"required"`
}

// ListClasses clears the tutorial filter.
type ListClasses struct{ base }

// AddStudent enrolls a person into a tutorial.
type AddStudent struct {
	base
	Name      string `json:"name" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
	Tutorial  string `json:"tutorial" validate:"required"`
}

// DeleteStudent unenrolls a student from a tutorial.
type DeleteStudent struct {
	base
	StudentID string `json:"student_id" validate:"required"`
	Tutorial  string `json:"tutorial" validate:"required"`
}

// MoveStudent transfers a student between tutorials.
type MoveStudent struct {
	base
	StudentID string `json:"student_id" validate:"required"`
	From      string `json:"from" validate:"required"`
	To        string `json:"to" validate:"required"`
}

// ListStudents shows students, optionally of one tutorial.
type ListStudents struct {
	base
	Tutorial string `json:"tutorial"`
}

// Mark marks presence for one student, or for the whole class when no
// student id is given.
type Mark struct {
	base
	Tutorial  string `json:"tutorial" validate:"required"`
	StudentID string `json:"student_id"`
	Week      int    `json:"week"`
}

// Unmark is the inverse of Mark.
type Unmark struct {
	base
	Tutorial  string `json:"tutorial" validate:"required"`
	StudentID string `json:"student_id"`
	Week      int    `json:"week"`
}

// AddComment sets the comment of an attendance cell.
type AddComment struct {
	base
	Tutorial  string `json:"tutorial" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
	Week      int    `json:"week"`
	Comment   string `json:"comment" validate:"required"`
}

// ViewComment shows the comment of an attendance cell.
type ViewComment struct {
	base
	Tutorial  string `json:"tutorial" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
	Week      int    `json:"week"`
}

// DeleteComment clears the comment of an attendance cell.
type DeleteComment struct {
	base
	Tutorial  string `json:"tutorial" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
	Week      int    `json:"week"`
}

// ListAttendance shows attendance cells of a tutorial, optionally of one student.
type ListAttendance struct {
	base
	Tutorial  string `json:"tutorial" validate:"required"`
	StudentID string `json:"student_id"`
}

// AttendanceSummary shows present counts per student of a tutorial.
type AttendanceSummary struct {
	base
	Tutorial string `json:"tutorial" validate:"required"`
}

// AddAssessment creates an assessment. A zero max score takes the configured default.
type AddAssessment struct {
	base
	Name     string  `json:"name" validate:"required"`
	MaxScore float64 `json:"max_score" validate:"gte=0"`
}

// DeleteAssessment removes an assessment with its results.
type DeleteAssessment struct {
	base
	Name string `json:"name" validate:"required"`
}

// AddResult records a new score.
type AddResult struct {
	base
	Name       string   `json:"name" validate:"required"`
	Assessment string   `json:"assessment" validate:"required"`
	Score      *float64 `json:"score" validate:"required"`
}

// EditResult records or corrects a score.
type EditResult struct {
	base
	Name       string   `json:"name" validate:"required"`
	Assessment string   `json:"assessment" validate:"required"`
	Score      *float64 `json:"score" validate:"required"`
}

// ViewResults shows one tutorial's results for an assessment.
type ViewResults struct {
	base
	Assessment string `json:"assessment" validate:"required"`
	Tutorial   string `json:"tutorial" validate:"required"`
}

// Export writes an attendance or results report to the export directory.
type Export struct {
	base
	Report     string `json:"report" validate:"required,oneof=attendance results"`
	Tutorial   string `json:"tutorial" validate:"required"`
	Assessment string `json:"assessment" validate:"required_if=Report results"`
	Format     string `json:"format"`
}

// Exit ends the session.
type Exit struct{ base }

func (AddPerson) Word() string         { return "add_person" }
func (EditPerson) Word() string        { return "edit_person" }
func (DeletePerson) Word() string      { return "delete_person" }
func (FindPerson) Word() string        { return "find_person" }
func (FilterTag) Word() string         { return "filter_tag" }
func (ListPersons) Word() string       { return "list_persons" }
func (AddClass) Word() string          { return "add_class" }
func (EditClass) Word() string         { return "edit_class" }
func (DeleteClass) Word() string       { return "delete_class" }
func (ListClasses) Word() string       { return "list_classes" }
func (AddStudent) Word() string        { return "add_student" }
func (DeleteStudent) Word() string     { return "delete_student" }
func (MoveStudent) Word() string       { return "move_student" }
func (ListStudents) Word() string      { return "list_students" }
func (Mark) Word() string              { return "mark" }
func (Unmark) Word() string            { return "unmark" }
func (AddComment) Word() string        { return "add_comment" }
func (ViewComment) Word() string       { return "view_comment" }
func (DeleteComment) Word() string     { return "delete_comment" }
func (ListAttendance) Word() string    { return "list_attendance" }
func (AttendanceSummary) Word() string { return "attendance_summary" }
func (AddAssessment) Word() string     { return "add_assessment" }
func (DeleteAssessment) Word() string  { return "delete_assessment" }
func (AddResult) Word() string         { return "add_result" }
func (EditResult) Word() string        { return "edit_result" }
func (ViewResults) Word() string       { return "view_results" }
func (Export) Word() string            { return "export" }
func (Exit) Word() string              { return "exit" }
