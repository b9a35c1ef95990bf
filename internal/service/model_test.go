package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorial-records/internal/models"
	"github.com/noah-isme/tutorial-records/internal/repository"
	appErrors "github.com/noah-isme/tutorial-records/pkg/errors"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	return NewModel(repository.NewStore(nil), Settings{}, zap.NewNop())
}

func person(name, phone, email string, tags ...models.Tag) models.Person {
	return models.NewPerson(models.Name(name), models.Phone(phone), models.Email(email), "Blk 123 Clementi", tags)
}

// seedModel adds Alice, Bob and Bobby and the tutorials T01 and G04, both
// running 13 weeks.
func seedModel(t *testing.T, m *Model) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, m.Persons.Add(ctx, person("Alice Pauline", "94351253", "alice@example.com", "friends")))
	require.NoError(t, m.Persons.Add(ctx, person("Bob Choo", "98765433", "bob@example.com")))
	require.NoError(t, m.Persons.Add(ctx, person("Bobby", "98765432", "bobby@x.com")))
	require.NoError(t, m.Tutorials.Add(ctx, models.NewTutorial("T01", "LT15", "Mon", "10:00", 13)))
	require.NoError(t, m.Tutorials.Add(ctx, models.NewTutorial("G04", "COM1-0210", "Wed", "14:00", 13)))
}

func requireCode(t *testing.T, err error, want *appErrors.Error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want.Code, appErrors.FromError(err).Code)
}

// requireFullGrids checks that every tutorial holds exactly one cell per
// roster student per active week.
func requireFullGrids(t *testing.T, m *Model) {
	t.Helper()
	for _, tut := range m.Export().Tutorials {
		require.Len(t, tut.Attendance, len(tut.Roster)*tut.Weeks, "tutorial %s", tut.Name)
		seen := map[string]bool{}
		for _, cell := range tut.Attendance {
			assert.True(t, tut.StudentIndex(cell.StudentID) >= 0, "orphan cell for %s", cell.StudentID)
			assert.True(t, tut.HasWeek(cell.Week))
			key := fmt.Sprintf("%s/%d", cell.StudentID, cell.Week)
			assert.False(t, seen[key], "duplicate cell %s", key)
			seen[key] = true
		}
	}
}

func TestModelExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := newTestModel(t)
	seedModel(t, m)
	_, err := m.Enrollment.Enroll(ctx, "Alice Pauline", "E0000001", "T01")
	require.NoError(t, err)
	require.NoError(t, m.Attendance.MarkForStudent(ctx, "T01", "E0000001", 3))
	_, err = m.Assessments.Add(ctx, "Quiz1", 10)
	require.NoError(t, err)
	_, err = m.Assessments.AddStudentResult(ctx, "Alice Pauline", "Quiz1", 8)
	require.NoError(t, err)

	snap := m.Export()

	other := newTestModel(t)
	require.NoError(t, other.Import(ctx, snap))
	assert.Len(t, other.Views.Persons(), 3)
	assert.Len(t, other.Views.Students(), 1)
	cell, err := other.Attendance.Cell("T01", "E0000001", 3)
	require.NoError(t, err)
	assert.True(t, cell.Present)
	rows, err := other.Assessments.Results("Quiz1", "T01")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 8.0, rows[0].Score)
}

func TestModelImportIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	m := newTestModel(t)
	seedModel(t, m)

	broken := m.Export()
	broken.Persons = append(broken.Persons, broken.Persons[0])
	broken.Tutorials = nil

	err := m.Import(ctx, broken)
	requireCode(t, err, appErrors.ErrValidation)

	assert.Len(t, m.Views.Persons(), 3)
	assert.Len(t, m.Views.Tutorials(), 2)
}

func TestModelDefaultsSettings(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, 13, m.Settings().MaxWeeks)
	assert.Equal(t, 100.0, m.Settings().DefaultMaxScore)
}
