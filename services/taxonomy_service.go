package services

import (
	"context"
	"errors"
	"strings"

	"blog/models"

	"gorm.io/gorm"
)

// TaxonomyService manages categories and tags.
type TaxonomyService struct {
	db *gorm.DB
}

func NewTaxonomyService(db *gorm.DB) *TaxonomyService {
	return &TaxonomyService{db: db}
}

func (s *TaxonomyService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).Order("name").Find(&categories).Error
	return categories, err
}

func (s *TaxonomyService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := s.db.WithContext(ctx).Order("name").Find(&tags).Error
	return tags, err
}

func (s *TaxonomyService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &category, nil
}

func (s *TaxonomyService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &tag, nil
}

func (s *TaxonomyService) CreateCategory(ctx context.Context, form models.CategoryForm) (*models.Category, error) {
	form.Name = strings.TrimSpace(form.Name)
	if fe, err := models.AsFormErrors(form.Validate()); err != nil {
		return nil, err
	} else if fe != nil {
		return nil, fe
	}

	category := &models.Category{Name: form.Name, Description: strings.TrimSpace(form.Description)}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.FormErrors{"name": "Category with this name already exists."}
		}
		return nil, err
	}
	return category, nil
}

func (s *TaxonomyService) CreateTag(ctx context.Context, form models.TagForm) (*models.Tag, error) {
	form.Name = strings.TrimSpace(form.Name)
	if fe, err := models.AsFormErrors(form.Validate()); err != nil {
		return nil, err
	} else if fe != nil {
		return nil, fe
	}

	tag := &models.Tag{Name: form.Name}
	if err := s.db.WithContext(ctx).Create(tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.FormErrors{"name": "Tag with this name already exists."}
		}
		return nil, err
	}
	return tag, nil
}

// DeleteCategory removes the category and leaves its posts uncategorised.
func (s *TaxonomyService) DeleteCategory(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// DeleteTag removes the tag and detaches it from every post.
func (s *TaxonomyService) DeleteTag(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM post_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Tag{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
