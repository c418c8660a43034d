// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"blog/database"
	"blog/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewDB opens a migrated, private in-memory SQLite database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", dbSeq.Add(1))
	db, err := gorm.Open(database.OpenSQLite(dsn), &gorm.Config{
		Logger:         database.NewLogger(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func MakeUser(t *testing.T, db *gorm.DB, username string, staff bool) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		IsStaff:  staff,
		IsActive: true,
	}
	require.NoError(t, u.SetPassword("password123"))
	require.NoError(t, db.Create(u).Error)
	return u
}

func MakeCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name, Description: name + " posts"}
	require.NoError(t, db.Create(c).Error)
	return c
}

func MakeTag(t *testing.T, db *gorm.DB, name string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

// PostOpts tweaks a fixture post. Zero values mean published, now, no category.
type PostOpts struct {
	Content   string
	Status    models.PostStatus
	Category  *models.Category
	Tags      []*models.Tag
	CreatedAt time.Time
}

func MakePost(t *testing.T, db *gorm.DB, author *models.User, title string, opts PostOpts) *models.Post {
	t.Helper()
	if opts.Status == "" {
		opts.Status = models.StatusPublished
	}
	if opts.Content == "" {
		opts.Content = "Content of " + title
	}
	p := &models.Post{
		Title:     title,
		Slug:      fmt.Sprintf("post-%d", dbSeq.Add(1)),
		Content:   opts.Content,
		UserID:    author.ID,
		Status:    opts.Status,
		CreatedAt: opts.CreatedAt,
	}
	if opts.Category != nil {
		p.CategoryID = &opts.Category.ID
	}
	for _, tag := range opts.Tags {
		p.Tags = append(p.Tags, *tag)
	}
	p.Publish(time.Now())
	require.NoError(t, db.Create(p).Error)
	return p
}

func MakeComment(t *testing.T, db *gorm.DB, post *models.Post, author *models.User, content string, active bool) *models.Comment {
	t.Helper()
	c := &models.Comment{PostID: post.ID, UserID: author.ID, Content: content, IsActive: true}
	require.NoError(t, db.Create(c).Error)
	if !active {
		// is_active has a column default, so false must be written after insert.
		require.NoError(t, db.Model(c).Update("is_active", false).Error)
		c.IsActive = false
	}
	return c
}
