package services

import (
	"context"
	"testing"

	"blog/models"
	"blog/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewTaxonomyService(db)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, models.CategoryForm{Name: "  Travel ", Description: "Trips"})
	require.NoError(t, err)
	assert.Equal(t, "Travel", category.Name)

	_, err = svc.CreateCategory(ctx, models.CategoryForm{Name: "Travel"})
	fe, ok := err.(models.FormErrors)
	require.True(t, ok, "expected form errors, got %v", err)
	assert.Contains(t, fe, "name")

	_, err = svc.CreateCategory(ctx, models.CategoryForm{Name: "   "})
	fe, ok = err.(models.FormErrors)
	require.True(t, ok, "expected form errors, got %v", err)
	assert.Contains(t, fe, "name")
}

func TestListTaxonomySortedByName(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.MakeCategory(t, db, "Travel")
	testutil.MakeCategory(t, db, "Food")
	testutil.MakeTag(t, db, "python")
	testutil.MakeTag(t, db, "django")

	svc := NewTaxonomyService(db)
	ctx := context.Background()

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Food", categories[0].Name)

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "django", tags[0].Name)
}

func TestDeleteCategoryKeepsPosts(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.MakeUser(t, db, "alice", false)
	category := testutil.MakeCategory(t, db, "Travel")
	post := testutil.MakePost(t, db, author, "Trip", testutil.PostOpts{Category: category})

	svc := NewTaxonomyService(db)
	ctx := context.Background()
	require.NoError(t, svc.DeleteCategory(ctx, category.ID))

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Nil(t, stored.CategoryID)

	_, err := svc.GetCategory(ctx, category.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteCategory(ctx, category.ID), ErrNotFound)
}

func TestDeleteTagDetachesPosts(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.MakeUser(t, db, "alice", false)
	python := testutil.MakeTag(t, db, "python")
	django := testutil.MakeTag(t, db, "django")
	post := testutil.MakePost(t, db, author, "Web", testutil.PostOpts{Tags: []*models.Tag{python, django}})

	svc := NewTaxonomyService(db)
	require.NoError(t, svc.DeleteTag(context.Background(), python.ID))

	var stored models.Post
	require.NoError(t, db.Preload("Tags").First(&stored, post.ID).Error)
	require.Len(t, stored.Tags, 1)
	assert.Equal(t, django.ID, stored.Tags[0].ID)
}
