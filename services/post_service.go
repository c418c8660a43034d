package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"blog/models"
	"blog/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostsPerPage is the page size of every public post listing.
const PostsPerPage = 6

const duplicateTitleMsg = "A post with this title already exists."

// PostFilter narrows the published listing. Zero values disable a criterion;
// all enabled criteria must hold.
type PostFilter struct {
	Search     string
	CategoryID uint
	TagID      uint
	AuthorID   uint
}

type PostPage struct {
	Posts []models.Post
	Page  utils.Page
}

type PostService struct {
	db     *gorm.DB
	images ImageStore
	now    func() time.Time
}

// NewPostService wires the post service. images may be nil, in which case
// uploaded files are ignored.
func NewPostService(db *gorm.DB, images ImageStore) *PostService {
	return &PostService{db: db, images: images, now: time.Now}
}

// ListPublished returns one page of published posts matching f, newest first.
func (s *PostService) ListPublished(ctx context.Context, f PostFilter, rawPage string) (*PostPage, error) {
	var total int64
	if err := s.published(ctx, f).Count(&total).Error; err != nil {
		return nil, err
	}

	page := utils.GetPage(total, PostsPerPage, rawPage)

	var posts []models.Post
	err := s.published(ctx, f).
		Preload("User").
		Preload("Category").
		Preload("Tags", tagsByName).
		Order("posts.created_at DESC").
		Order("posts.id ASC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	return &PostPage{Posts: posts, Page: page}, nil
}

// published builds the filtered query. Tag matches go through a subquery so a
// post matching several tags is still a single row.
func (s *PostService) published(ctx context.Context, f PostFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Post{}).Where("posts.status = ?", models.StatusPublished)

	if f.Search != "" {
		pattern := likePattern(f.Search)
		tagged := s.db.Table("post_tags").
			Select("post_tags.post_id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where(`LOWER(tags.name) LIKE ? ESCAPE '\'`, pattern)
		q = q.Where(s.db.Where(`LOWER(posts.title) LIKE ? ESCAPE '\'`, pattern).
			Or(`LOWER(posts.content) LIKE ? ESCAPE '\'`, pattern).
			Or("posts.id IN (?)", tagged))
	}
	if f.CategoryID != 0 {
		q = q.Where("posts.category_id = ?", f.CategoryID)
	}
	if f.TagID != 0 {
		q = q.Where("posts.id IN (?)", s.db.Table("post_tags").Select("post_id").Where("tag_id = ?", f.TagID))
	}
	if f.AuthorID != 0 {
		q = q.Where("posts.user_id = ?", f.AuthorID)
	}
	return q
}

func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}

func tagsByName(db *gorm.DB) *gorm.DB {
	return db.Order("tags.name")
}

// GetPublished loads a published post for public display.
func (s *PostService) GetPublished(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Category").
		Preload("Tags", tagsByName).
		Where("status = ?", models.StatusPublished).
		First(&post, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

// Get loads a post regardless of status, for its author and staff.
func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Category").
		Preload("Tags", tagsByName).
		First(&post, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

// Create validates form and stores a new post owned by author. Validation
// problems come back as models.FormErrors.
func (s *PostService) Create(ctx context.Context, author *models.User, form models.PostForm, image *multipart.FileHeader) (*models.Post, error) {
	post := &models.Post{UserID: author.ID}
	if err := s.save(ctx, post, form, image); err != nil {
		return nil, err
	}
	post.User = *author
	return post, nil
}

// Update applies form to post. The author never changes.
func (s *PostService) Update(ctx context.Context, post *models.Post, form models.PostForm, image *multipart.FileHeader) error {
	return s.save(ctx, post, form, image)
}

func (s *PostService) save(ctx context.Context, post *models.Post, form models.PostForm, image *multipart.FileHeader) error {
	form.Normalize()

	fe, err := models.AsFormErrors(form.Validate())
	if err != nil {
		return err
	}
	if fe == nil {
		fe = models.FormErrors{}
	}

	slug := utils.Slugify(form.Title)
	if form.Title != "" && slug == "" {
		fe.Add("title", "Title must contain at least one letter or digit.")
	}
	if slug != "" {
		taken, err := s.slugTaken(ctx, slug, post.ID)
		if err != nil {
			return err
		}
		if taken {
			fe.Add("title", duplicateTitleMsg)
		}
	}

	categoryID := form.Category()
	if categoryID != nil {
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", *categoryID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			fe.Add("category", "Select a valid choice. That choice is not one of the available choices.")
		}
	}

	tagIDs := form.Tags()
	var tags []models.Tag
	if len(tagIDs) > 0 {
		if err := s.db.WithContext(ctx).Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
			return err
		}
		if len(tags) != len(tagIDs) {
			fe.Add("tags", "Select a valid choice. One of the tags is not available.")
		}
	}

	if len(fe) > 0 {
		return fe
	}

	var newImage string
	if image != nil && s.images != nil {
		newImage, err = s.images.Save(image)
		if err != nil {
			if errors.Is(err, ErrUnsupportedImage) {
				return models.FormErrors{"image": "Upload a valid image. The file you uploaded was either not an image or a corrupted image."}
			}
			return err
		}
	}

	oldImage := ""
	post.Title = form.Title
	post.Slug = slug
	post.Content = form.Content
	post.Excerpt = form.Excerpt
	post.CategoryID = categoryID
	post.Category = nil
	post.Status = models.PostStatus(form.Status)
	if newImage != "" || form.ClearImage {
		oldImage = post.Image
		post.Image = newImage
	}
	post.Publish(s.now())

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(post).Error; err != nil {
			return err
		}
		if len(tags) == 0 {
			return tx.Model(post).Association("Tags").Clear()
		}
		return tx.Model(post).Association("Tags").Replace(tags)
	})
	if err != nil {
		if newImage != "" {
			s.removeImage(newImage)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.FormErrors{"title": duplicateTitleMsg}
		}
		return err
	}

	if oldImage != "" {
		s.removeImage(oldImage)
	}
	post.Tags = tags
	return nil
}

func (s *PostService) slugTaken(ctx context.Context, slug string, exceptID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("slug = ? AND id <> ?", slug, exceptID).
		Count(&n).Error
	return n > 0, err
}

// Delete removes the post together with its comments and tag links.
func (s *PostService) Delete(ctx context.Context, post *models.Post) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(post).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, post.ID).Error
	})
	if err != nil {
		return err
	}

	if post.Image != "" {
		s.removeImage(post.Image)
	}
	return nil
}

func (s *PostService) removeImage(path string) {
	if s.images == nil {
		return
	}
	if err := s.images.Remove(path); err != nil {
		log.Warn().Err(err).Str("image", path).Msg("Failed to remove post image")
	}
}
