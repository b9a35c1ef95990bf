package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutorial-records/internal/models"
	appErrors "github.com/noah-isme/tutorial-records/pkg/errors"
)

func enrolledModel(t *testing.T) *Model {
	t.Helper()
	ctx := context.Background()
	m := newTestModel(t)
	seedModel(t, m)
	_, err := m.Enrollment.Enroll(ctx, "Alice Pauline", "E0000001", "T01")
	require.NoError(t, err)
	_, err = m.Enrollment.Enroll(ctx, "Bob Choo", "E0000002", "T01")
	require.NoError(t, err)
	return m
}

func TestAttendanceMarkAndUnmarkStudent(t *testing.T) {
	ctx := context.Background()
	m := enrolledModel(t)

	require.NoError(t, m.Attendance.MarkForStudent(ctx, "T01", "E0000001", 13))
	cell, err := m.Attendance.Cell("T01", "E0000001", 13)
	require.NoError(t, err)
	assert.True(t, cell.Present)

	require.NoError(t, m.Attendance.UnmarkForStudent(ctx, "T01", "E0000001", 13))
	cell, err = m.Attendance.Cell("T01", "E0000001", 13)
	require.NoError(t, err)
	assert.False(t, cell.Present)

	requireCode(t, m.Attendance.MarkForStudent(ctx, "T01", "E0000001", 14), appErrors.ErrInvalidWeekOrStudent)
	requireCode(t, m.Attendance.MarkForStudent(ctx, "T01", "E0000001", 0), appErrors.ErrInvalidWeekOrStudent)
	requireCode(t, m.Attendance.MarkForStudent(ctx, "T01", "E9999999", 1), appErrors.ErrInvalidWeekOrStudent)
	requireCode(t, m.Attendance.MarkForStudent(ctx, "T99", "E0000001", 1), appErrors.ErrTutorialNotFound)
}

func TestAttendanceClassMarkRestoresFlagsAndKeepsComments(t *testing.T) {
	ctx := context.Background()
	m := enrolledModel(t)
	require.NoError(t, m.Attendance.MarkForStudent(ctx, "T01", "E0000002", 3))
	require.NoError(t, m.Attendance.SetComment(ctx, "T01", "E0000001", 4, "left early"))

	before := m.Export().Tutorials[0].Attendance
	require.NoError(t, m.Attendance.MarkForClass(ctx, "T01", 4))
	for _, cell := range m.Views.Attendance() {
		if cell.TutorialName == "T01" && cell.Week == 4 {
			assert.True(t, cell.Present)
		}
	}
	require.NoError(t, m.Attendance.UnmarkForClass(ctx, "T01", 4))
	after := m.Export().Tutorials[0].Attendance

	assert.Equal(t, before, after)
}

func TestAttendanceClassOperationsValidateWeek(t *testing.T) {
	ctx := context.Background()
	m := enrolledModel(t)

	requireCode(t, m.Attendance.MarkForClass(ctx, "T01", 99), appErrors.ErrInvalidWeekOrStudent)
	for _, cell := range m.Views.Attendance() {
		assert.False(t, cell.Present)
	}
	// empty roster
	require.NoError(t, m.Attendance.MarkForClass(ctx, "G04", 1))
}

func TestAttendanceComments(t *testing.T) {
	ctx := context.Background()
	m := enrolledModel(t)

	comment, err := m.Attendance.Comment("T01", "E0000001", 1)
	require.NoError(t, err)
	assert.Empty(t, comment)

	require.NoError(t, m.Attendance.SetComment(ctx, "T01", "E0000001", 1, "  Was late multiple times! "))
	require.NoError(t, m.Attendance.MarkForStudent(ctx, "T01", "E0000001", 1))
	require.NoError(t, m.Attendance.UnmarkForStudent(ctx, "T01", "E0000001", 1))
	comment, err = m.Attendance.Comment("T01", "E0000001", 1)
	require.NoError(t, err)
	assert.Equal(t, "Was late multiple times!", comment)

	requireCode(t, m.Attendance.SetComment(ctx, "T01", "E0000001", 1, "   "), appErrors.ErrValidation)
	requireCode(t, m.Attendance.SetComment(ctx, "T01", "E0000001", 20, "x"), appErrors.ErrInvalidWeekOrStudent)

	require.NoError(t, m.Attendance.RemoveComment(ctx, "T01", "E0000001", 1))
	comment, err = m.Attendance.Comment("T01", "E0000001", 1)
	require.NoError(t, err)
	assert.Empty(t, comment)
}

func TestAttendanceSummary(t *testing.T) {
	ctx := context.Background()
	m := enrolledModel(t)
	for _, week := range []int{1, 2, 3} {
		require.NoError(t, m.Attendance.MarkForStudent(ctx, "T01", "E0000001", week))
	}

	summary, err := m.Attendance.Summary("T01")
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, models.AttendanceSummary{StudentID: "E0000001", Name: "Alice Pauline", Present: 3, Total: 13, Percent: float64(3) * 100 / 13}, summary[0])
	assert.Equal(t, 0, summary[1].Present)

	_, err = m.Attendance.Summary("T99")
	requireCode(t, err, appErrors.ErrTutorialNotFound)
}
