package services

import (
	"context"

	"blog/models"

	"gorm.io/gorm"
)

type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

// ActiveForPost lists the comments readers may see, oldest first.
func (s *CommentService) ActiveForPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ? AND is_active = ?", postID, true).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	return comments, err
}

// Create stores a comment by author on post. Only published posts accept
// comments; anything else is reported as ErrNotFound.
func (s *CommentService) Create(ctx context.Context, post *models.Post, author *models.User, form models.CommentForm) (*models.Comment, error) {
	if !post.IsPublished() {
		return nil, ErrNotFound
	}
	if fe, err := models.AsFormErrors(form.Validate()); err != nil {
		return nil, err
	} else if fe != nil {
		return nil, fe
	}

	comment := &models.Comment{
		PostID:   post.ID,
		UserID:   author.ID,
		Content:  form.Content,
		IsActive: true,
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, err
	}
	comment.User = *author
	return comment, nil
}

// SetActive hides or shows a comment.
func (s *CommentService) SetActive(ctx context.Context, id uint, active bool) error {
	res := s.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CommentService) Get(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &comment, nil
}

func (s *CommentService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
