package implementation

import (
	"context"
	"testing"

	"ai-study-assist-be/internal/entity"
	"ai-study-assist-be/internal/model"
	"ai-study-assist-be/internal/repository/specification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.Annotation{}))
	return db
}

func strPtr(s string) *string { return &s }

func TestAnnotationRepository_CreateAndFind(t *testing.T) {
	repo := NewAnnotationRepository(newTestDB(t))
	ctx := context.Background()

	a := &entity.Annotation{
		StudentId:      1,
		CourseId:       "bio-101",
		AnnotationType: entity.AnnotationTypeNote,
		SelectedText:   "glycolysis",
		AnnotationText: strPtr("splits glucose"),
		Color:          strPtr("blue"),
		Anchor:         &entity.AnnotationAnchor{X: 120, Y: 340},
	}
	require.NoError(t, repo.Create(ctx, a))
	require.NotZero(t, a.Id)
	assert.False(t, a.CreatedAt.IsZero())

	found, err := repo.FindOne(ctx, specification.ByAnnotationID{ID: a.Id})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "glycolysis", found.SelectedText)
	require.NotNil(t, found.Anchor)
	assert.Equal(t, 340.0, found.Anchor.Y)
}

func TestAnnotationRepository_FindOneMissing(t *testing.T) {
	repo := NewAnnotationRepository(newTestDB(t))

	found, err := repo.FindOne(context.Background(), specification.ByAnnotationID{ID: 404})

	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestAnnotationRepository_FilterAndDelete(t *testing.T) {
	repo := NewAnnotationRepository(newTestDB(t))
	ctx := context.Background()
	concept := int64(3)

	seed := []*entity.Annotation{
		{StudentId: 1, CourseId: "bio-101", AnnotationType: "note", SelectedText: "a", ConceptId: &concept},
		{StudentId: 1, CourseId: "bio-101", AnnotationType: "highlight", SelectedText: "b"},
		{StudentId: 1, CourseId: "chem-200", AnnotationType: "note", SelectedText: "c"},
		{StudentId: 2, CourseId: "bio-101", AnnotationType: "note", SelectedText: "d"},
	}
	for _, a := range seed {
		require.NoError(t, repo.Create(ctx, a))
	}

	notes, err := repo.FindAll(ctx,
		specification.AnnotationOwnedByStudent{StudentID: 1},
		specification.ByCourseID{CourseID: "bio-101"},
		specification.ByAnnotationType{Type: "note"},
	)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "a", notes[0].SelectedText)

	byConcept, err := repo.Count(ctx, specification.ByConceptID{ConceptID: concept})
	require.NoError(t, err)
	assert.Equal(t, int64(1), byConcept)

	require.NoError(t, repo.Delete(ctx, seed[0].Id))
	count, err := repo.Count(ctx, specification.AnnotationOwnedByStudent{StudentID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestAnnotationRepository_UpdateText(t *testing.T) {
	repo := NewAnnotationRepository(newTestDB(t))
	ctx := context.Background()

	a := &entity.Annotation{StudentId: 1, CourseId: "bio-101", AnnotationType: "note", SelectedText: "x"}
	require.NoError(t, repo.Create(ctx, a))

	a.AnnotationText = strPtr("revised")
	require.NoError(t, repo.Update(ctx, a))

	found, err := repo.FindOne(ctx, specification.ByAnnotationID{ID: a.Id})
	require.NoError(t, err)
	require.NotNil(t, found.AnnotationText)
	assert.Equal(t, "revised", *found.AnnotationText)
	assert.Nil(t, found.Anchor)
}
