package models

import (
	"time"
)

type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
)

// PostStatuses lists the statuses in the order forms present them.
var PostStatuses = []PostStatus{StatusDraft, StatusPublished}

func (s PostStatus) Label() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusPublished:
		return "Published"
	}
	return string(s)
}

type Post struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"size:200;not null"`
	Slug        string     `json:"slug" gorm:"size:200;uniqueIndex;not null"`
	Content     string     `json:"content" gorm:"type:text;not null"`
	Excerpt     string     `json:"excerpt" gorm:"size:300"`
	Image       string     `json:"image,omitempty"`
	UserID      uint       `json:"author_id" gorm:"not null;index"`
	User        User       `json:"author" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CategoryID  *uint      `json:"category_id" gorm:"index"`
	Category    *Category  `json:"category,omitempty" gorm:"constraint:OnDelete:SET NULL;"`
	Tags        []Tag      `json:"tags" gorm:"many2many:post_tags;constraint:OnDelete:CASCADE;"`
	Comments    []Comment  `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Status      PostStatus `json:"status" gorm:"size:10;not null;default:draft;index"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at"`
}

func (p *Post) IsPublished() bool {
	return p.Status == StatusPublished
}

// CanModify reports whether user may edit or delete the post: its author or
// any staff user.
func (p *Post) CanModify(user *User) bool {
	if user == nil {
		return false
	}
	return p.UserID == user.ID || user.IsStaff
}

// HasTag is used by the post form to pre-check tag boxes.
func (p *Post) HasTag(id uint) bool {
	for _, t := range p.Tags {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Publish stamps PublishedAt the first time the post goes public.
func (p *Post) Publish(now time.Time) {
	if p.Status == StatusPublished && p.PublishedAt == nil {
		p.PublishedAt = &now
	}
}
