package studyctx

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	loadErr error
	saveErr error
}

func (f failingStore) Load(context.Context, string) ([]byte, error) { return nil, f.loadErr }
func (f failingStore) Save(context.Context, string, []byte) error { return f.saveErr }

func TestOpen_Defaults(t *testing.T) {
	c, err := Open(context.Background(), NewMemoryStore(), "1", Defaults())
	require.NoError(t, err)

	st := c.State()
	assert.Equal(t, "demo-course", st.CourseID)
	assert.Equal(t, int64(1), st.StudentID)
	assert.Nil(t, st.SessionID)
	assert.Nil(t, st.Mode)
}

func TestContext_PersistsEveryMutation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	c, err := Open(ctx, store, "42", Defaults())
	require.NoError(t, err)
	require.NoError(t, c.SetCourse(ctx, "bio-101"))
	require.NoError(t, c.SetMode(ctx, ModeQuick))

	raw, err := store.Load(ctx, KeyPrefix+"42")
	require.NoError(t, err)
	var saved State
	require.NoError(t, json.Unmarshal(raw, &saved))
	assert.Equal(t, "bio-101", saved.CourseID)
	require.NotNil(t, saved.Mode)
	assert.Equal(t, ModeQuick, *saved.Mode)

	reopened, err := Open(ctx, store, "42", Defaults())
	require.NoError(t, err)
	assert.Equal(t, c.State(), reopened.State())
}

func TestContext_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	c, err := Open(ctx, NewMemoryStore(), "7", Defaults())
	require.NoError(t, err)

	require.NoError(t, c.SetSession(ctx, "s-1", ModeComprehensive, "Finals", "2026-12-01"))
	st := c.State()
	assert.Equal(t, "s-1", *st.SessionID)
	assert.Equal(t, "Finals", *st.SessionName)
	assert.Equal(t, "2026-12-01", *st.ExamDate)

	require.NoError(t, c.ResumeSession(ctx, "s-2", ModeQuick))
	st = c.State()
	assert.Equal(t, "s-2", *st.SessionID)
	assert.Equal(t, ModeQuick, *st.Mode)
	assert.Equal(t, "Finals", *st.SessionName)

	require.NoError(t, c.SetSession(ctx, "s-3", ModeQuick, "Midterm", ""))
	assert.Nil(t, c.State().ExamDate)

	require.NoError(t, c.ClearSession(ctx))
	st = c.State()
	assert.Nil(t, st.SessionID)
	assert.Nil(t, st.Mode)
	assert.Nil(t, st.SessionName)
	assert.Equal(t, "demo-course", st.CourseID)
}

func TestContext_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	c, err := Open(ctx, NewMemoryStore(), "7", Defaults())
	require.NoError(t, err)

	assert.ErrorIs(t, c.SetMode(ctx, "cram"), ErrInvalidMode)
	assert.ErrorIs(t, c.SetCourse(ctx, "  "), ErrEmptyCourse)
	assert.ErrorIs(t, c.SetStudent(ctx, 0), ErrInvalidStudent)
	assert.ErrorIs(t, c.SetSession(ctx, "", ModeQuick, "x", ""), ErrEmptySession)
	assert.ErrorIs(t, c.ResumeSession(ctx, "s", "cram"), ErrInvalidMode)
	assert.Equal(t, Defaults(), c.State())
}

func TestOpen_IgnoresCorruptData(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, KeyPrefix+"9", []byte("{not json")))

	c, err := Open(ctx, store, "9", Defaults())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), c.State())
}

func TestOpen_OverlaysOnlySetFields(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, KeyPrefix+"9", []byte(`{"courseId":"chem-200","studentId":0,"mode":"cram"}`)))

	c, err := Open(ctx, store, "9", Defaults())
	require.NoError(t, err)
	st := c.State()
	assert.Equal(t, "chem-200", st.CourseID)
	assert.Equal(t, int64(1), st.StudentID)
	assert.Nil(t, st.Mode)
}

func TestContext_StoreFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := Open(ctx, failingStore{loadErr: boom}, "1", Defaults())
	assert.ErrorIs(t, err, boom)

	c, err := Open(ctx, failingStore{loadErr: ErrNotFound, saveErr: boom}, "1", Defaults())
	require.NoError(t, err)
	assert.ErrorIs(t, c.SetCourse(ctx, "bio-101"), boom)
	assert.Equal(t, "bio-101", c.State().CourseID)
}
