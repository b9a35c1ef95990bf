package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutorial-records/internal/models"
	appErrors "github.com/noah-isme/tutorial-records/pkg/errors"
)

func rosterSize(t *testing.T, m *Model, name models.TutorialName) int {
	t.Helper()
	tut, err := m.Tutorials.Find(name)
	require.NoError(t, err)
	return len(tut.Roster)
}

func TestEnrollBobbyTwiceFailsDuplicate(t *testing.T) {
	ctx := context.Background()
	m := newTestModel(t)
	seedModel(t, m)

	student, err := m.Enrollment.Enroll(ctx, "Bobby", "E1234567", "G04")
	require.NoError(t, err)
	assert.Equal(t, models.Phone("98765432"), student.Phone)
	assert.Equal(t, models.Email("bobby@x.com"), student.Email)
	assert.Equal(t, models.TutorialName("G04"), student.TutorialName)

	_, err = m.Enrollment.Enroll(ctx, "Bobby", "E1234567", "G04")
	requireCode(t, err, appErrors.ErrDuplicateStudent)
	assert.Equal(t, 1, rosterSize(t, m, "G04"))
	requireFullGrids(t, m)
}

func TestEnrollUnknownPersonLeavesRosterUnchanged(t *testing.T) {
	ctx := context.Background()
	m := newTestModel(t)
	seedModel(t, m)

	_, err := m.Enrollment.Enroll(ctx, "Ghost", "E7654321", "T01")
	requireCode(t, err, appErrors.ErrPersonNotFound)
	assert.Equal(t, 0, rosterSize(t, m, "T01"))

	_, err = m.Enrollment.Enroll(ctx, "Bobby", "E7654321", "T99")
	requireCode(t, err, appErrors.ErrTutorialNotFound)
}

func TestEnrollEnforcesOneStudentRecordPerPerson(t *testing.T) {
	ctx := context.Background()
	m := newTestModel(t)
	seedModel(t, m)

	_, err := m.Enrollment.Enroll(ctx, "Bobby", "E1234567", "G04")
	require.NoError(t, err)

	_, err = m.Enrollment.Enroll(ctx, "Bobby", "E1111111", "T01")
	requireCode(t, err, appErrors.ErrDuplicateStudent)

	_, err = m.Enrollment.Enroll(ctx, "Bob Choo", "E1234567", "T01")
	requireCode(t, err, appErrors.ErrDuplicateStudent)

	assert.Equal(t, 0, rosterSize(t, m, "T01"))
	assert.Equal(t, 1, rosterSize(t, m, "G04"))
}

func TestEnrollCreatesAbsentCellsForEveryWeek(t *testing.T) {
	ctx := context.Background()
	m := newTestModel(t)
	seedModel(t, m)
	_, err := m.Enrollment.Enroll(ctx, "Alice Pauline", "E0000001", "T01")
	require.NoError(t, err)
	require.NoError(t, m.Attendance.MarkForClass(ctx, "T01", 1))

	_, err = m.Enrollment.Enroll(ctx, "Bob Choo", "E0000002", "T01")
	require.NoError(t, err)

	requireFullGrids(t, m)
	cell, err := m.Attendance.Cell("T01", "E0000002", 1)
	require.NoError(t, err)
	assert.False(t, cell.Present)
	cell, err = m.Attendance.Cell("T01", "E0000001", 1)
	require.NoError(t, err)
	assert.True(t, cell.Present)
}

func TestUnenrollRemovesCellsAndResults(t *testing.T) {
	ctx := context.Background()
	m := newTestModel(t)
	seedModel(t, m)
	_, err := m.Enrollment.Enroll(ctx, "Alice Pauline", "E0000001", "T01")
	require.NoError(t, err)
	_, err = m.Assessments.Add(ctx, "Quiz1", 10)
	require.NoError(t, err)
	_, err = m.Assessments.AddStudentResult(ctx, "Alice Pauline", "Quiz1", 9)
	require.NoError(t, err)

	removed, err := m.Enrollment.Unenroll(ctx, "E0000001", "T01")
	require.NoError(t, err)
	assert.Equal(t, models.Name("Alice Pauline"), removed.Name)
	assert.Equal(t, 0, rosterSize(t, m, "T01"))
	requireFullGrids(t, m)

	rows, err := m.Assessments.Results("Quiz1", "T01")
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = m.Enrollment.Unenroll(ctx, "E0000001", "T01")
	requireCode(t, err, appErrors.ErrStudentNotFound)

	// the person stays in the registry
	_, err = m.Persons.Find("Alice Pauline")
	require.NoError(t, err)
}

func TestTransferMovesStudentAndResults(t *testing.T) {
	ctx := context.Background()
	m := newTestModel(t)
	seedModel(t, m)
	_, err := m.Enrollment.Enroll(ctx, "Alice Pauline", "E0000001", "T01")
	require.NoError(t, err)
	require.NoError(t, m.Attendance.MarkForStudent(ctx, "T01", "E0000001", 2))
	_, err = m.Assessments.Add(ctx, "Quiz1", 10)
	require.NoError(t, err)
	_, err = m.Assessments.AddStudentResult(ctx, "Alice Pauline", "Quiz1", 6)
	require.NoError(t, err)

	moved, err := m.Enrollment.Transfer(ctx, "E0000001", "T01", "G04")
	require.NoError(t, err)
	assert.Equal(t, models.TutorialName("G04"), moved.TutorialName)
	assert.Equal(t, 0, rosterSize(t, m, "T01"))
	assert.Equal(t, 1, rosterSize(t, m, "G04"))
	requireFullGrids(t, m)

	cell, err := m.Attendance.Cell("G04", "E0000001", 2)
	require.NoError(t, err)
	assert.False(t, cell.Present)

	rows, err := m.Assessments.Results("Quiz1", "G04")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 6.0, rows[0].Score)

	_, err = m.Enrollment.Transfer(ctx, "E0000001", "G04", "G04")
	requireCode(t, err, appErrors.ErrDuplicateStudent)
	_, err = m.Enrollment.Transfer(ctx, "E0000001", "T01", "G04")
	requireCode(t, err, appErrors.ErrStudentNotFound)
	_, err = m.Enrollment.Transfer(ctx, "E0000001", "G04", "X01")
	requireCode(t, err, appErrors.ErrTutorialNotFound)
}
