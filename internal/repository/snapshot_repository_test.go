package repository

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutorial-records/internal/models"
	"github.com/noah-isme/tutorial-records/pkg/storage"
)

func populatedRecords(t *testing.T) *Records {
	t.Helper()
	r := NewRecords()
	alice := samplePerson("Alice", "91234567", "alice@x.com")
	require.NoError(t, r.Persons.Add(alice))
	require.NoError(t, r.Tutorials.Add(models.NewTutorial("T01", "LT1", "Mon", "10:00", 3)))
	require.NoError(t, r.Tutorials.AddStudent("T01", models.NewStudentFromPerson(alice, "E0000001", "T01")))
	require.NoError(t, r.Tutorials.SetPresence("T01", "E0000001", 2, true))
	require.NoError(t, r.Tutorials.SetComment("T01", "E0000001", 2, "good"))
	quiz, err := models.NewAssessment("Quiz1", 10)
	require.NoError(t, err)
	require.NoError(t, r.Assessments.Add(quiz))
	require.NoError(t, r.Assessments.AddResult("Quiz1", models.StudentResult{StudentID: "E0000001", TutorialName: "T01", Score: 7}))
	return r
}

func TestSnapshotRepositoryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	repo := NewSnapshotRepository(store, "records.json", nil)

	snap, found, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, snap.Persons)

	require.NoError(t, repo.Save(context.Background(), populatedRecords(t).Snapshot()))

	loaded, found, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, loaded.SavedAt.IsZero())

	records, err := RecordsFromSnapshot(loaded, 13)
	require.NoError(t, err)
	cell, err := records.Tutorials.Cell("T01", "E0000001", 2)
	require.NoError(t, err)
	assert.True(t, cell.Present)
	assert.Equal(t, "good", cell.Comment)
	quiz, ok := records.Assessments.Find("Quiz1")
	require.True(t, ok)
	assert.Len(t, quiz.Results, 1)
}

func TestSnapshotRepositoryQuarantinesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	_, err = store.Save("records.json", []byte("{not json"))
	require.NoError(t, err)

	repo := NewSnapshotRepository(store, "records.json", nil)
	snap, found, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, snap.Tutorials)

	_, err = store.Read("records.json")
	assert.True(t, errors.Is(err, storage.ErrNotExist))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".corrupt"))
}

func TestRecordsFromSnapshotRejectsBrokenInvariants(t *testing.T) {
	snap := populatedRecords(t).Snapshot()
	snap.Tutorials[0].Roster[0].Name = "Nobody"
	_, err := RecordsFromSnapshot(snap, 13)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	snap = populatedRecords(t).Snapshot()
	snap.Assessments[0].Results[0].Score = 11
	_, err = RecordsFromSnapshot(snap, 13)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	snap = populatedRecords(t).Snapshot()
	snap.Tutorials[0].Weeks = 20
	_, err = RecordsFromSnapshot(snap, 13)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	snap = populatedRecords(t).Snapshot()
	snap.Persons = append(snap.Persons, snap.Persons[0])
	_, err = RecordsFromSnapshot(snap, 13)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	corrupt := map[string]func(s *models.Student){
		"phone":   func(s *models.Student) { s.Phone = "x!" },
		"email":   func(s *models.Student) { s.Email = "not-an-email" },
		"address": func(s *models.Student) { s.Address = "" },
		"tag":     func(s *models.Student) { s.Tags = []models.Tag{"bad tag*"} },
		"name":    func(s *models.Student) { s.Name = "Alice!" },
	}
	for field, mutate := range corrupt {
		snap = populatedRecords(t).Snapshot()
		mutate(&snap.Tutorials[0].Roster[0])
		_, err = RecordsFromSnapshot(snap, 13)
		assert.ErrorIs(t, err, ErrInvalidSnapshot, field)
	}
}

func TestRecordsFromSnapshotUsesCanonicalPersonName(t *testing.T) {
	snap := populatedRecords(t).Snapshot()
	snap.Tutorials[0].Roster[0].Name = "  aLiCe "
	snap.Tutorials[0].Roster[0].StudentID = "e0000001"

	records, err := RecordsFromSnapshot(snap, 13)
	require.NoError(t, err)
	student, ok := records.Tutorials.FindStudentByID("E0000001")
	require.True(t, ok)
	assert.Equal(t, models.Name("Alice"), student.Name)
	tut, _ := records.Tutorials.Find("T01")
	for _, cell := range tut.Attendance {
		assert.Equal(t, models.Name("Alice"), cell.Name)
	}
}

func TestRecordsFromSnapshotRebuildsGrid(t *testing.T) {
	snap := populatedRecords(t).Snapshot()
	snap.Tutorials[0].Attendance = snap.Tutorials[0].Attendance[:1]
	snap.Tutorials[0].Attendance = append(snap.Tutorials[0].Attendance, models.Attendance{TutorialName: "T01", StudentID: "E9999999", Week: 1})

	records, err := RecordsFromSnapshot(snap, 13)
	require.NoError(t, err)
	tut, _ := records.Tutorials.Find("T01")
	assertFullGrid(t, tut)
}
