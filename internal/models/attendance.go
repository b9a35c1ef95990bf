package models

// Attendance is one cell of a tutorial's attendance grid: one student in one week.
type Attendance struct {
	TutorialName TutorialName `json:"tutorial_name"`
	StudentID    StudentID    `json:"student_id"`
	Name         Name         `json:"name"`
	Week         int          `json:"week"`
	Present      bool         `json:"present"`
	Comment      string       `json:"comment"`
}

// AttendanceSummary aggregates a student's presence within one tutorial.
type AttendanceSummary struct {
	StudentID StudentID `json:"student_id"`
	Name      Name      `json:"name"`
	Present   int       `json:"present"`
	Total     int       `json:"total"`
	Percent   float64   `json:"percent"`
}
