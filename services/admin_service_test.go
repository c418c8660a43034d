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
	"gorm.io/gorm"
)

func newAdminService(db *gorm.DB) *AdminService {
	return NewAdminService(db, DefaultModelAdmins(), NewPostService(db, nil), NewCommentService(db), NewTaxonomyService(db))
}

func rowIDs(rows []AdminRow) []uint {
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestAdminLookup(t *testing.T) {
	svc := newAdminService(testutil.NewDB(t))

	admin, err := svc.Lookup("posts")
	require.NoError(t, err)
	assert.Equal(t, "Posts", admin.Name)

	_, err = svc.Lookup("secrets")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, svc.Admins(), 5)
}

func TestAdminListPosts(t *testing.T) {
	db := testutil.NewDB(t)
	alice := testutil.MakeUser(t, db, "alice", false)
	tech := testutil.MakeCategory(t, db, "Technology")
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	hello := testutil.MakePost(t, db, alice, "Hello world", testutil.PostOpts{Category: tech, CreatedAt: base})
	draft := testutil.MakePost(t, db, alice, "Hello draft", testutil.PostOpts{Status: models.StatusDraft, CreatedAt: base.Add(time.Hour)})
	other := testutil.MakePost(t, db, alice, "Unrelated", testutil.PostOpts{CreatedAt: base.Add(2 * time.Hour)})

	svc := newAdminService(db)
	ctx := context.Background()

	all, err := svc.List(ctx, "posts", AdminQuery{})
	require.NoError(t, err)
	assert.Equal(t, []uint{other.ID, draft.ID, hello.ID}, rowIDs(all.Rows))
	require.Len(t, all.Rows[2].Cells, len(all.Admin.Columns))
	assert.Equal(t, "Hello world", all.Rows[2].Cells[0])
	assert.Equal(t, "alice", all.Rows[2].Cells[1])
	assert.Equal(t, "Technology", all.Rows[2].Cells[2])
	assert.Equal(t, "-", all.Rows[1].Cells[2])

	require.Len(t, all.Filters, 2)
	category := all.Filters[1]
	require.Len(t, category.Choices, 1)
	assert.Equal(t, fmt.Sprint(tech.ID), category.Choices[0].Value)
	assert.Equal(t, "Technology", category.Choices[0].Label)

	tests := []struct {
		name  string
		query AdminQuery
		want  []uint
	}{
		{"search", AdminQuery{Search: "HELLO"}, []uint{draft.ID, hello.ID}},
		{"status filter", AdminQuery{Filters: map[string]string{"status": "draft"}}, []uint{draft.ID}},
		{"search and filter", AdminQuery{Search: "hello", Filters: map[string]string{"status": "published"}}, []uint{hello.ID}},
		{"category filter", AdminQuery{Filters: map[string]string{"category": fmt.Sprint(tech.ID)}}, []uint{hello.ID}},
		{"bad category value ignored", AdminQuery{Filters: map[string]string{"category": "x"}}, []uint{other.ID, draft.ID, hello.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := svc.List(ctx, "posts", tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rowIDs(list.Rows))
			assert.EqualValues(t, len(tt.want), list.Page.Count)
		})
	}

	_, err = svc.List(ctx, "secrets", AdminQuery{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdminListUsersFilter(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.MakeUser(t, db, "alice", false)
	root := testutil.MakeUser(t, db, "root", true)

	svc := newAdminService(db)
	list, err := svc.List(context.Background(), "users", AdminQuery{Filters: map[string]string{"is_staff": "1"}})
	require.NoError(t, err)

	require.Len(t, list.Rows, 1)
	assert.Equal(t, root.ID, list.Rows[0].ID)
	assert.Equal(t, "root", list.Rows[0].Cells[0])
	assert.Equal(t, "root@example.com", list.Rows[0].Cells[1])
}

func TestAdminListPaginates(t *testing.T) {
	db := testutil.NewDB(t)
	for i := 0; i < AdminPerPage+3; i++ {
		testutil.MakeTag(t, db, fmt.Sprintf("tag-%02d", i))
	}

	svc := newAdminService(db)
	list, err := svc.List(context.Background(), "tags", AdminQuery{Page: "2"})
	require.NoError(t, err)

	assert.Equal(t, 2, list.Page.Number)
	require.Len(t, list.Rows, 3)
	assert.Equal(t, fmt.Sprintf("tag-%02d", AdminPerPage), list.Rows[0].Cells[0])
}

func TestAdminDeleteAndToggle(t *testing.T) {
	db := testutil.NewDB(t)
	alice := testutil.MakeUser(t, db, "alice", false)
	post := testutil.MakePost(t, db, alice, "Hello", testutil.PostOpts{})
	comment := testutil.MakeComment(t, db, post, alice, "first", true)
	other := testutil.MakePost(t, db, alice, "Other", testutil.PostOpts{})

	svc := newAdminService(db)
	ctx := context.Background()

	require.NoError(t, svc.ToggleActive(ctx, "comments", comment.ID))
	var stored models.Comment
	require.NoError(t, db.First(&stored, comment.ID).Error)
	assert.False(t, stored.IsActive)

	require.NoError(t, svc.ToggleActive(ctx, "comments", comment.ID))
	require.NoError(t, db.First(&stored, comment.ID).Error)
	assert.True(t, stored.IsActive)

	assert.ErrorIs(t, svc.ToggleActive(ctx, "posts", post.ID), ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "users", alice.ID), ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "posts", post.ID))
	var n int64
	require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&n).Error)
	assert.Zero(t, n)

	assert.ErrorIs(t, svc.Delete(ctx, "posts", post.ID), ErrNotFound)

	_, err := NewPostService(db, nil).Get(ctx, other.ID)
	assert.NoError(t, err)
}
