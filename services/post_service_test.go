package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"blog/models"
	"blog/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postIDs(posts []models.Post) []uint {
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestListPublishedExcludesDrafts(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.MakeUser(t, db, "alice", false)
	published := testutil.MakePost(t, db, author, "Published", testutil.PostOpts{})
	testutil.MakePost(t, db, author, "Draft", testutil.PostOpts{Status: models.StatusDraft})

	svc := NewPostService(db, nil)
	page, err := svc.ListPublished(context.Background(), PostFilter{}, "")
	require.NoError(t, err)

	assert.Equal(t, []uint{published.ID}, postIDs(page.Posts))
	assert.EqualValues(t, 1, page.Page.Count)
	assert.Equal(t, "alice", page.Posts[0].User.Username)
}

func TestListPublishedSearch(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.MakeUser(t, db, "alice", false)
	gopher := testutil.MakeTag(t, db, "gopher")
	goTips := testutil.MakeTag(t, db, "go-tips")
	cooking := testutil.MakeTag(t, db, "cooking")

	byTitle := testutil.MakePost(t, db, author, "Go generics", testutil.PostOpts{})
	byContent := testutil.MakePost(t, db, author, "Languages", testutil.PostOpts{Content: "I like GOLANG a lot"})
	byTags := testutil.MakePost(t, db, author, "Weekend", testutil.PostOpts{Tags: []*models.Tag{gopher, goTips}})
	testutil.MakePost(t, db, author, "Pasta", testutil.PostOpts{Tags: []*models.Tag{cooking}})
	testutil.MakePost(t, db, author, "Go draft", testutil.PostOpts{Status: models.StatusDraft})

	svc := NewPostService(db, nil)

	for _, q := range []string{"go", "GO", "Go"} {
		t.Run(q, func(t *testing.T) {
			page, err := svc.ListPublished(context.Background(), PostFilter{Search: q}, "")
			require.NoError(t, err)
			assert.ElementsMatch(t, []uint{byTitle.ID, byContent.ID, byTags.ID}, postIDs(page.Posts))
			assert.EqualValues(t, 3, page.Page.Count)
		})
	}
}

func TestListPublishedSearchFoldsNonASCII(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.MakeUser(t, db, "alice", false)
	accent := testutil.MakeTag(t, db, "Ünicode")

	byTitle := testutil.MakePost(t, db, author, "ÉCOLE notes", testutil.PostOpts{})
	byContent := testutil.MakePost(t, db, author, "Menu", testutil.PostOpts{Content: "Dinner at the CAFÉ"})
	byTag := testutil.MakePost(t, db, author, "Strings", testutil.PostOpts{Tags: []*models.Tag{accent}})
	testutil.MakePost(t, db, author, "Plain", testutil.PostOpts{})

	svc := NewPostService(db, nil)

	tests := []struct {
		query string
		want  []uint
	}{
		{"école", []uint{byTitle.ID}},
		{"École", []uint{byTitle.ID}},
		{"café", []uint{byContent.ID}},
		{"ünicode", []uint{byTag.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			page, err := svc.ListPublished(context.Background(), PostFilter{Search: tt.query}, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, postIDs(page.Posts))
		})
	}
}

func TestListPublishedSearchEscapesWildcards(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.MakeUser(t, db, "alice", false)
	percent := testutil.MakePost(t, db, author, "100% done", testutil.PostOpts{})
	underscore := testutil.MakePost(t, db, author, "snake_case", testutil.PostOpts{})
	testutil.MakePost(t, db, author, "Plain", testutil.PostOpts{})

	svc := NewPostService(db, nil)

	page, err := svc.ListPublished(context.Background(), PostFilter{Search: "%"}, "")
	require.NoError(t, err)
	assert.Equal(t, []uint{percent.ID}, postIDs(page.Posts))

	page, err = svc.ListPublished(context.Background(), PostFilter{Search: "_"}, "")
	require.NoError(t, err)
	assert.Equal(t, []uint{underscore.ID}, postIDs(page.Posts))
}

func TestListPublishedFilters(t *testing.T) {
	db := testutil.NewDB(t)
	alice := testutil.MakeUser(t, db, "alice", false)
	bob := testutil.MakeUser(t, db, "bob", false)
	tech := testutil.MakeCategory(t, db, "Technology")
	travel := testutil.MakeCategory(t, db, "Travel")
	python := testutil.MakeTag(t, db, "python")

	a := testutil.MakePost(t, db, alice, "A", testutil.PostOpts{Category: tech, Tags: []*models.Tag{python}})
	b := testutil.MakePost(t, db, alice, "B", testutil.PostOpts{Category: travel})
	c := testutil.MakePost(t, db, bob, "C", testutil.PostOpts{Category: tech})

	svc := NewPostService(db, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter PostFilter
		want   []uint
	}{
		{"category", PostFilter{CategoryID: tech.ID}, []uint{a.ID, c.ID}},
		{"tag", PostFilter{TagID: python.ID}, []uint{a.ID}},
		{"author", PostFilter{AuthorID: alice.ID}, []uint{a.ID, b.ID}},
		{"category and author", PostFilter{CategoryID: tech.ID, AuthorID: bob.ID}, []uint{c.ID}},
		{"category and tag", PostFilter{CategoryID: travel.ID, TagID: python.ID}, []uint{}},
		{"unknown category", PostFilter{CategoryID: 999}, []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.ListPublished(ctx, tt.filter, "")
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, postIDs(page.Posts))
		})
	}
}

func TestListPublishedOrdering(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.MakeUser(t, db, "alice", false)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	old := testutil.MakePost(t, db, author, "Old", testutil.PostOpts{CreatedAt: base})
	tieFirst := testutil.MakePost(t, db, author, "Tie first", testutil.PostOpts{CreatedAt: base.Add(time.Hour)})
	tieSecond := testutil.MakePost(t, db, author, "Tie second", testutil.PostOpts{CreatedAt: base.Add(time.Hour)})
	newest := testutil.MakePost(t, db, author, "Newest", testutil.PostOpts{CreatedAt: base.Add(2 * time.Hour)})

	svc := NewPostService(db, nil)
	page, err := svc.ListPublished(context.Background(), PostFilter{}, "")
	require.NoError(t, err)

	assert.Equal(t, []uint{newest.ID, tieFirst.ID, tieSecond.ID, old.ID}, postIDs(page.Posts))
}

func TestListPublishedPagination(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.MakeUser(t, db, "alice", false)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		testutil.MakePost(t, db, author, fmt.Sprintf("Post %d", i), testutil.PostOpts{CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}

	svc := NewPostService(db, nil)
	ctx := context.Background()

	first, err := svc.ListPublished(ctx, PostFilter{}, "")
	require.NoError(t, err)
	assert.Len(t, first.Posts, PostsPerPage)
	assert.Equal(t, 1, first.Page.Number)
	assert.Equal(t, 2, first.Page.NumPages)

	last, err := svc.ListPublished(ctx, PostFilter{}, "2")
	require.NoError(t, err)
	assert.Len(t, last.Posts, 2)

	for _, raw := range []string{"3", "99", "0", "-1"} {
		t.Run("beyond "+raw, func(t *testing.T) {
			page, err := svc.ListPublished(ctx, PostFilter{}, raw)
			require.NoError(t, err)
			assert.Equal(t, 2, page.Page.Number)
			assert.Equal(t, postIDs(last.Posts), postIDs(page.Posts))
		})
	}

	notNumber, err := svc.ListPublished(ctx, PostFilter{}, "abc")
	require.NoError(t, err)
	assert.Equal(t, postIDs(first.Posts), postIDs(notNumber.Posts))
}

func TestListPublishedEmpty(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewPostService(db, nil)

	page, err := svc.ListPublished(context.Background(), PostFilter{Search: "nothing"}, "7")
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	assert.Equal(t, 1, page.Page.Number)
	assert.Equal(t, 1, page.Page.NumPages)
}

func TestGetPublished(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.MakeUser(t, db, "alice", false)
	published := testutil.MakePost(t, db, author, "Published", testutil.PostOpts{})
	draft := testutil.MakePost(t, db, author, "Draft", testutil.PostOpts{Status: models.StatusDraft})

	svc := NewPostService(db, nil)
	ctx := context.Background()

	got, err := svc.GetPublished(ctx, published.ID)
	require.NoError(t, err)
	assert.Equal(t, "Published", got.Title)

	_, err = svc.GetPublished(ctx, draft.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetPublished(ctx, 424242)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err = svc.Get(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, got.Status)
}

func TestCreatePost(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.MakeUser(t, db, "alice", false)
	category := testutil.MakeCategory(t, db, "Technology")
	python := testutil.MakeTag(t, db, "python")
	django := testutil.MakeTag(t, db, "django")

	svc := NewPostService(db, nil)
	form := models.PostForm{
		Title:      "  Hello World  ",
		Content:    "First post",
		Excerpt:    "Short",
		CategoryID: fmt.Sprint(category.ID),
		TagIDs:     []string{fmt.Sprint(python.ID), fmt.Sprint(django.ID), fmt.Sprint(python.ID)},
		Status:     string(models.StatusPublished),
	}

	post, err := svc.Create(context.Background(), author, form, nil)
	require.NoError(t, err)

	assert.Equal(t, "Hello World", post.Title)
	assert.Equal(t, "hello-world", post.Slug)
	assert.Equal(t, author.ID, post.UserID)
	require.NotNil(t, post.PublishedAt)

	stored, err := svc.Get(context.Background(), post.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CategoryID)
	assert.Equal(t, category.ID, *stored.CategoryID)
	require.Len(t, stored.Tags, 2)
	assert.ElementsMatch(t, []uint{python.ID, django.ID}, []uint{stored.Tags[0].ID, stored.Tags[1].ID})
}

func TestCreatePostDuplicateSlugRejected(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.MakeUser(t, db, "alice", false)
	svc := NewPostService(db, nil)
	ctx := context.Background()

	form := models.PostForm{Title: "Hello World", Content: "one", Status: string(models.StatusPublished)}
	first, err := svc.Create(ctx, author, form, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello-world", first.Slug)

	form.Title = "hello,  world!"
	_, err = svc.Create(ctx, author, form, nil)
	require.Error(t, err)

	fe, ok := err.(models.FormErrors)
	require.True(t, ok, "expected form errors, got %v", err)
	assert.Equal(t, duplicateTitleMsg, fe["title"])

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreatePostValidation(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.MakeUser(t, db, "alice", false)
	svc := NewPostService(db, nil)

	tests := []struct {
		name  string
		form  models.PostForm
		field string
	}{
		{"missing title", models.PostForm{Content: "x"}, "title"},
		{"missing content", models.PostForm{Title: "T"}, "content"},
		{"blank content", models.PostForm{Title: "T", Content: " \n\t ", Status: "published"}, "content"},
		{"bad status", models.PostForm{Title: "T", Content: "x", Status: "archived"}, "status"},
		{"symbols only title", models.PostForm{Title: "!!!", Content: "x"}, "title"},
		{"unknown category", models.PostForm{Title: "T", Content: "x", CategoryID: "999"}, "category"},
		{"unknown tag", models.PostForm{Title: "T", Content: "x", TagIDs: []string{"999"}}, "tags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), author, tt.form, nil)
			fe, ok := err.(models.FormErrors)
			require.True(t, ok, "expected form errors, got %v", err)
			assert.Contains(t, fe, tt.field)
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateDraftHasNoPublishedAt(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.MakeUser(t, db, "alice", false)
	svc := NewPostService(db, nil)

	post, err := svc.Create(context.Background(), author, models.PostForm{Title: "Later", Content: "x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, post.Status)
	assert.Nil(t, post.PublishedAt)
}

func TestUpdatePost(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.MakeUser(t, db, "alice", false)
	staff := testutil.MakeUser(t, db, "admin", true)
	python := testutil.MakeTag(t, db, "python")
	travel := testutil.MakeTag(t, db, "travel")

	svc := NewPostService(db, nil)
	ctx := context.Background()

	post, err := svc.Create(ctx, author, models.PostForm{
		Title:   "Original title",
		Content: "x",
		TagIDs:  []string{fmt.Sprint(python.ID)},
		Status:  string(models.StatusDraft),
	}, nil)
	require.NoError(t, err)

	// staff edits keep the original author
	loaded, err := svc.Get(ctx, post.ID)
	require.NoError(t, err)
	require.True(t, loaded.CanModify(staff))

	err = svc.Update(ctx, loaded, models.PostForm{
		Title:   "New title",
		Content: "y",
		TagIDs:  []string{fmt.Sprint(travel.ID)},
		Status:  string(models.StatusPublished),
	}, nil)
	require.NoError(t, err)

	stored, err := svc.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "New title", stored.Title)
	assert.Equal(t, "new-title", stored.Slug)
	assert.Equal(t, author.ID, stored.UserID)
	assert.NotNil(t, stored.PublishedAt)
	require.Len(t, stored.Tags, 1)
	assert.Equal(t, travel.ID, stored.Tags[0].ID)

	// saving again with the same title is not a collision with itself
	err = svc.Update(ctx, stored, models.PostForm{Title: "New title", Content: "z", Status: string(models.StatusPublished)}, nil)
	require.NoError(t, err)

	stored, err = svc.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Tags)
	assert.Equal(t, "z", stored.Content)
}

func TestUpdatePostSlugCollision(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.MakeUser(t, db, "alice", false)
	svc := NewPostService(db, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, author, models.PostForm{Title: "Taken", Content: "x"}, nil)
	require.NoError(t, err)
	other, err := svc.Create(ctx, author, models.PostForm{Title: "Other", Content: "x"}, nil)
	require.NoError(t, err)

	err = svc.Update(ctx, other, models.PostForm{Title: "Taken", Content: "x"}, nil)
	fe, ok := err.(models.FormErrors)
	require.True(t, ok, "expected form errors, got %v", err)
	assert.Equal(t, duplicateTitleMsg, fe["title"])

	stored, err := svc.Get(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, "other", stored.Slug)
}

func TestDeletePostRemovesComments(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.MakeUser(t, db, "alice", false)
	reader := testutil.MakeUser(t, db, "bob", false)
	tag := testutil.MakeTag(t, db, "python")

	post := testutil.MakePost(t, db, author, "Doomed", testutil.PostOpts{Tags: []*models.Tag{tag}})
	keep := testutil.MakePost(t, db, author, "Keep", testutil.PostOpts{Tags: []*models.Tag{tag}})
	testutil.MakeComment(t, db, post, reader, "first", true)
	testutil.MakeComment(t, db, post, reader, "hidden", false)
	kept := testutil.MakeComment(t, db, keep, reader, "stays", true)

	svc := NewPostService(db, nil)
	require.NoError(t, svc.Delete(context.Background(), post))

	var posts, comments, links int64
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).Count(&posts).Error)
	require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments).Error)
	require.NoError(t, db.Table("post_tags").Where("post_id = ?", post.ID).Count(&links).Error)
	assert.Zero(t, posts)
	assert.Zero(t, comments)
	assert.Zero(t, links)

	var survivor models.Comment
	require.NoError(t, db.First(&survivor, kept.ID).Error)
	var tagCount int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&tagCount).Error)
	assert.EqualValues(t, 1, tagCount)
}
