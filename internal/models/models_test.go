package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/tutorial-records/pkg/errors"
)

func TestNewName(t *testing.T) {
	name, err := NewName("  Amy   Bee ")
	require.NoError(t, err)
	assert.Equal(t, Name("Amy Bee"), name)
	assert.True(t, name.Equal("amy bee"))

	_, err = NewName("James&")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = NewName("   ")
	require.Error(t, err)
}

func TestContactFields(t *testing.T) {
	_, err := NewPhone("911a")
	assert.Error(t, err)
	_, err = NewPhone("91")
	assert.Error(t, err)
	phone, err := NewPhone("98765432")
	require.NoError(t, err)
	assert.Equal(t, Phone("98765432"), phone)

	_, err = NewEmail("bob!yahoo")
	assert.Error(t, err)
	email, err := NewEmail("Bobby@X.com")
	require.NoError(t, err)
	assert.Equal(t, "bobby@x.com", email.Key())

	_, err = NewAddress(" ")
	assert.Error(t, err)

	_, err = NewTags([]string{"hubby*"})
	assert.Error(t, err)
	tags, err := NewTags([]string{"friend", "colleague", "friend"})
	require.NoError(t, err)
	assert.Equal(t, []Tag{"colleague", "friend"}, tags)
}

func TestTutorialFields(t *testing.T) {
	day, err := NewDay("monday")
	require.NoError(t, err)
	assert.Equal(t, Day("Mon"), day)
	day, err = NewDay("WED")
	require.NoError(t, err)
	assert.Equal(t, Day("Wed"), day)
	_, err = NewDay("thur")
	assert.Error(t, err)

	at, err := NewTime("9:00")
	require.NoError(t, err)
	assert.Equal(t, Time("09:00"), at)
	_, err = NewTime("1300")
	assert.Error(t, err)

	assert.NoError(t, ValidateWeeks(13, 13))
	assert.Error(t, ValidateWeeks(100, 13))
	assert.Error(t, ValidateWeeks(0, 13))

	_, err = NewTutorialName("")
	assert.Error(t, err)
	_, err = NewTutorialName("T 01")
	assert.Error(t, err)
}

func TestNewStudentID(t *testing.T) {
	id, err := NewStudentID("e0123456")
	require.NoError(t, err)
	assert.Equal(t, StudentID("E0123456"), id)

	_, err = NewStudentID("A0123456")
	assert.Error(t, err)
	_, err = NewStudentID("E012345")
	assert.Error(t, err)
}

func TestStudentCopiesPersonFields(t *testing.T) {
	person := NewPerson("Bobby", "98765432", "bobby@x.com", "Blk 1", []Tag{"friend"})
	student := NewStudentFromPerson(person, "E1234567", "G04")

	person.Tags[0] = "changed"
	person.Phone = "11111111"

	assert.Equal(t, Phone("98765432"), student.Phone)
	assert.Equal(t, []Tag{"friend"}, student.Tags)
	assert.Equal(t, TutorialName("G04"), student.TutorialName)
}

func TestStudentValidate(t *testing.T) {
	student := NewStudentFromPerson(NewPerson("Bobby", "98765432", "bobby@x.com", "Blk 1", []Tag{"friend"}), "E1234567", "G04")
	require.NoError(t, student.Validate())

	broken := student.Clone()
	broken.Email = "not-an-email"
	assert.ErrorIs(t, broken.Validate(), appErrors.ErrValidation)

	broken = student.Clone()
	broken.Tags = []Tag{"bad tag*"}
	assert.ErrorIs(t, broken.Validate(), appErrors.ErrValidation)

	broken = student.Clone()
	broken.StudentID = "X1"
	assert.ErrorIs(t, broken.Validate(), appErrors.ErrValidation)
}

func TestAssessmentCheckScore(t *testing.T) {
	a, err := NewAssessment("Quiz1", 10)
	require.NoError(t, err)

	assert.NoError(t, a.CheckScore(10))
	assert.NoError(t, a.CheckScore(0))
	err = a.CheckScore(11)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrScoreOutOfRange.Code, appErrors.FromError(err).Code)
	assert.Error(t, a.CheckScore(-1))

	_, err = NewAssessment("Quiz2", 0)
	assert.Error(t, err)
}

func TestTutorialWeeks(t *testing.T) {
	tut := NewTutorial("T01", "LT15", "Wed", "10:00", 3)
	assert.Equal(t, []int{1, 2, 3}, tut.ActiveWeeks())
	assert.True(t, tut.HasWeek(3))
	assert.False(t, tut.HasWeek(4))
	assert.False(t, tut.HasWeek(0))
}
