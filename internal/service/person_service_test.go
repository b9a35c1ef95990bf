package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutorial-records/internal/models"
	appErrors "github.com/noah-isme/tutorial-records/pkg/errors"
)

func TestPersonServiceAddRejectsCollisions(t *testing.T) {
	ctx := context.Background()
	m := newTestModel(t)
	seedModel(t, m)

	requireCode(t, m.Persons.Add(ctx, person("alice pauline", "11111111", "new@example.com")), appErrors.ErrDuplicatePerson)
	requireCode(t, m.Persons.Add(ctx, person("Carl", "94351253", "carl@example.com")), appErrors.ErrDuplicatePerson)
	requireCode(t, m.Persons.Add(ctx, person("Carl", "11111111", "ALICE@example.com")), appErrors.ErrDuplicatePerson)
	assert.Len(t, m.Views.Persons(), 3)
}

func TestPersonServiceEdit(t *testing.T) {
	ctx := context.Background()
	m := newTestModel(t)
	seedModel(t, m)
	_, err := m.Enrollment.Enroll(ctx, "Bobby", "E1234567", "G04")
	require.NoError(t, err)

	phone := models.Phone("90000000")
	edited, err := m.Persons.Edit(ctx, "bobby", PersonEdit{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, edited.Phone)

	// the student keeps the contact details it was enrolled with
	students := m.Enrollment.Students()
	require.Len(t, students, 1)
	assert.Equal(t, models.Phone("98765432"), students[0].Phone)

	name := models.Name("Bobby Tan")
	_, err = m.Persons.Edit(ctx, "Bobby", PersonEdit{Name: &name})
	require.NoError(t, err)
	students = m.Enrollment.Students()
	assert.Equal(t, name, students[0].Name)
	_, err = m.Assessments.Add(ctx, "Quiz1", 10)
	require.NoError(t, err)
	_, err = m.Assessments.AddStudentResult(ctx, "Bobby Tan", "Quiz1", 5)
	require.NoError(t, err)

	clash := models.Email("bob@example.com")
	_, err = m.Persons.Edit(ctx, "Bobby Tan", PersonEdit{Email: &clash})
	requireCode(t, err, appErrors.ErrDuplicatePerson)

	_, err = m.Persons.Edit(ctx, "Nobody", PersonEdit{Phone: &phone})
	requireCode(t, err, appErrors.ErrPersonNotFound)

	_, err = m.Persons.Edit(ctx, "Bobby Tan", PersonEdit{})
	requireCode(t, err, appErrors.ErrValidation)
}

func TestPersonServiceDeleteCascadesEnrollment(t *testing.T) {
	ctx := context.Background()
	m := newTestModel(t)
	seedModel(t, m)
	_, err := m.Enrollment.Enroll(ctx, "Alice Pauline", "E0000001", "T01")
	require.NoError(t, err)
	_, err = m.Enrollment.Enroll(ctx, "Bob Choo", "E0000002", "T01")
	require.NoError(t, err)
	_, err = m.Assessments.Add(ctx, "Quiz1", 10)
	require.NoError(t, err)
	_, err = m.Assessments.AddStudentResult(ctx, "Alice Pauline", "Quiz1", 7)
	require.NoError(t, err)
	_, err = m.Assessments.AddStudentResult(ctx, "Bob Choo", "Quiz1", 6)
	require.NoError(t, err)

	removed, err := m.Persons.Delete(ctx, "alice pauline")
	require.NoError(t, err)
	assert.Equal(t, models.Name("Alice Pauline"), removed.Name)

	tut, err := m.Tutorials.Find("T01")
	require.NoError(t, err)
	require.Len(t, tut.Roster, 1)
	assert.Equal(t, models.StudentID("E0000002"), tut.Roster[0].StudentID)
	requireFullGrids(t, m)

	rows, err := m.Assessments.Results("Quiz1", "T01")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.StudentID("E0000002"), rows[0].StudentID)

	_, err = m.Persons.Delete(ctx, "Alice Pauline")
	requireCode(t, err, appErrors.ErrPersonNotFound)
}
