package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"blog/middleware"
	"blog/models"
	"blog/services"
	"blog/utils"

	"github.com/gin-gonic/gin"
)

// APIController serves the read-mostly JSON API.
type APIController struct {
	posts    *services.PostService
	comments *services.CommentService
	taxonomy *services.TaxonomyService
}

func NewAPIController(posts *services.PostService, comments *services.CommentService, taxonomy *services.TaxonomyService) *APIController {
	return &APIController{posts: posts, comments: comments, taxonomy: taxonomy}
}

type AuthorResponse struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

type PostResponse struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	Slug        string           `json:"slug"`
	Excerpt     string           `json:"excerpt"`
	Content     string           `json:"content,omitempty"`
	Image       string           `json:"image,omitempty"`
	Author      AuthorResponse   `json:"author"`
	Category    *models.Category `json:"category"`
	Tags        []models.Tag     `json:"tags"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	PublishedAt *time.Time       `json:"published_at"`
}

type CommentResponse struct {
	ID        uint           `json:"id"`
	Author    AuthorResponse `json:"author"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
}

func authorOf(u *models.User) AuthorResponse {
	return AuthorResponse{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName()}
}

func newPostResponse(p *models.Post, withContent bool) PostResponse {
	resp := PostResponse{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		Author:      authorOf(&p.User),
		Category:    p.Category,
		Tags:        p.Tags,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		PublishedAt: p.PublishedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []models.Tag{}
	}
	if p.Image != "" {
		resp.Image = "/media/" + p.Image
	}
	if withContent {
		resp.Content = p.Content
	}
	return resp
}

func newCommentResponse(cm *models.Comment) CommentResponse {
	return CommentResponse{ID: cm.ID, Author: authorOf(&cm.User), Content: cm.Content, CreatedAt: cm.CreatedAt}
}

// ListPosts godoc
// @Summary List published posts
// @Description Same filters and paging as the home page
// @Tags posts
// @Produce json
// @Param search query string false "Search in title, content and tag names"
// @Param category query int false "Category id"
// @Param tag query int false "Tag id"
// @Param page query int false "Page number"
// @Success 200 {object} utils.Response{data=[]PostResponse}
// @Router /posts [get]
func (ac *APIController) ListPosts(c *gin.Context) {
	filter := services.PostFilter{
		Search:     strings.TrimSpace(c.Query("search")),
		CategoryID: queryID(c, "category"),
		TagID:      queryID(c, "tag"),
	}

	result, err := ac.posts.ListPublished(c.Request.Context(), filter, c.Query("page"))
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch posts")
		return
	}

	data := make([]PostResponse, 0, len(result.Posts))
	for i := range result.Posts {
		data = append(data, newPostResponse(&result.Posts[i], false))
	}
	utils.SuccessWithMeta(c, http.StatusOK, data, utils.MetaFor(result.Page))
}

// GetPost godoc
// @Summary Get a published post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} utils.Response{data=PostResponse}
// @Failure 404 {object} utils.Response
// @Router /posts/{id} [get]
func (ac *APIController) GetPost(c *gin.Context) {
	post, ok := ac.loadPublished(c)
	if !ok {
		return
	}
	utils.Success(c, http.StatusOK, newPostResponse(post, true))
}

// ListComments godoc
// @Summary List active comments of a post
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} utils.Response{data=[]CommentResponse}
// @Failure 404 {object} utils.Response
// @Router /posts/{id}/comments [get]
func (ac *APIController) ListComments(c *gin.Context) {
	post, ok := ac.loadPublished(c)
	if !ok {
		return
	}

	comments, err := ac.comments.ActiveForPost(c.Request.Context(), post.ID)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch comments")
		return
	}

	data := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		data = append(data, newCommentResponse(&comments[i]))
	}
	utils.Success(c, http.StatusOK, data)
}

// CreateComment godoc
// @Summary Comment on a published post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param comment body models.CommentForm true "Comment"
// @Success 201 {object} utils.Response{data=CommentResponse}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /posts/{id}/comments [post]
func (ac *APIController) CreateComment(c *gin.Context) {
	post, ok := ac.loadPublished(c)
	if !ok {
		return
	}

	var req models.CommentForm
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	comment, err := ac.comments.Create(c.Request.Context(), post, middleware.CurrentUser(c), req)
	if err != nil {
		var fe models.FormErrors
		switch {
		case errors.As(err, &fe):
			utils.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid comment", fe)
		case errors.Is(err, services.ErrNotFound):
			utils.NotFound(c, "Post not found")
		default:
			utils.InternalServerError(c, "Failed to create comment")
		}
		return
	}

	utils.Success(c, http.StatusCreated, newCommentResponse(comment))
}

// ListCategories godoc
// @Summary List categories
// @Tags taxonomy
// @Produce json
// @Success 200 {object} utils.Response{data=[]models.Category}
// @Router /categories [get]
func (ac *APIController) ListCategories(c *gin.Context) {
	categories, err := ac.taxonomy.ListCategories(c.Request.Context())
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch categories")
		return
	}
	utils.Success(c, http.StatusOK, categories)
}

// ListTags godoc
// @Summary List tags
// @Tags taxonomy
// @Produce json
// @Success 200 {object} utils.Response{data=[]models.Tag}
// @Router /tags [get]
func (ac *APIController) ListTags(c *gin.Context) {
	tags, err := ac.taxonomy.ListTags(c.Request.Context())
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch tags")
		return
	}
	utils.Success(c, http.StatusOK, tags)
}

func (ac *APIController) loadPublished(c *gin.Context) (*models.Post, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		utils.BadRequest(c, "Invalid post ID")
		return nil, false
	}
	post, err := ac.posts.GetPublished(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.NotFound(c, "Post not found")
			return nil, false
		}
		utils.InternalServerError(c, "Failed to fetch post")
		return nil, false
	}
	return post, true
}
