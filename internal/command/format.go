package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/tutorial-records/internal/models"
	"github.com/noah-isme/tutorial-records/internal/service"
)

func formatTags(tags []models.Tag) string {
	if len(tags) == 0 {
		return ""
	}
	parts := make([]string, 0, len(tags))
	for _, tag := range tags {
		parts = append(parts, "["+string(tag)+"]")
	}
	return " Tags: " + strings.Join(parts, "")
}

func formatPerson(p models.Person) string {
	return fmt.Sprintf("%s; Phone: %s; Email: %s; Address: %s;%s", p.Name, p.Phone, p.Email, p.Address, formatTags(p.Tags))
}

func formatStudent(s models.Student) string {
	return fmt.Sprintf("%s; Student ID: %s; Tutorial: %s; Email: %s", s.Name, s.StudentID, s.TutorialName, s.Email)
}

func formatTutorial(t models.Tutorial) string {
	return fmt.Sprintf("%s; Venue: %s; %s %s; Weeks: %d; Students: %d", t.Name, t.Venue, t.Day, t.Time, t.Weeks, len(t.Roster))
}

func formatAssessment(a models.Assessment) string {
	return fmt.Sprintf("%s; Max score: %s; Results: %d", a.Name, formatScore(a.MaxScore), len(a.Results))
}

func formatCell(c models.Attendance) string {
	status := "absent"
	if c.Present {
		status = "present"
	}
	line := fmt.Sprintf("%s %s W%d: %s", c.StudentID, c.Name, c.Week, status)
	if c.Comment != "" {
		line += " (" + c.Comment + ")"
	}
	return line
}

func formatSummary(s models.AttendanceSummary) string {
	return fmt.Sprintf("%s %s: %d/%d (%.1f%%)", s.StudentID, s.Name, s.Present, s.Total, s.Percent)
}

func formatResult(r service.ResultRow) string {
	return fmt.Sprintf("%s %s: %s/%s", r.StudentID, r.Name, formatScore(r.Score), formatScore(r.MaxScore))
}

func formatScore(score float64) string { return strconv.FormatFloat(score, 'f', -1, 64) }

// listing renders a header followed by numbered lines.
func listing[T any](header string, items []T, format func(T) string) string {
	var b strings.Builder
	b.WriteString(header)
	for i, item := range items {
		fmt.Fprintf(&b, "\n%d. %s", i+1, format(item))
	}
	return b.String()
}

func countLabel(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
