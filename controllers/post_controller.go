package controllers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"blog/middleware"
	"blog/models"
	"blog/services"

	"github.com/gin-gonic/gin"
)

type PostController struct {
	posts    *services.PostService
	comments *services.CommentService
	taxonomy *services.TaxonomyService
	users    *services.UserService
}

func NewPostController(posts *services.PostService, comments *services.CommentService, taxonomy *services.TaxonomyService, users *services.UserService) *PostController {
	return &PostController{posts: posts, comments: comments, taxonomy: taxonomy, users: users}
}

func postURL(id uint) string {
	return fmt.Sprintf("/post/%d/", id)
}

// List is the home page: every published post, narrowed by the search,
// category and tag query parameters.
func (pc *PostController) List(c *gin.Context) {
	search := strings.TrimSpace(c.Query("search"))
	filter := services.PostFilter{
		Search:     search,
		CategoryID: queryID(c, "category"),
		TagID:      queryID(c, "tag"),
	}

	data := &HTMLData{
		Title:            "Blog",
		Heading:          "Latest Posts",
		Search:           search,
		SelectedCategory: c.Query("category"),
		SelectedTag:      c.Query("tag"),
	}
	if search != "" {
		data.Heading = fmt.Sprintf("Search results for %q", search)
	}
	pc.renderListing(c, filter, data)
}

func (pc *PostController) CategoryPosts(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		NotFound(c)
		return
	}
	category, err := pc.taxonomy.GetCategory(c.Request.Context(), id)
	if err != nil {
		pc.fail(c, err)
		return
	}

	pc.renderListing(c, services.PostFilter{CategoryID: category.ID}, &HTMLData{
		Title:    category.Name,
		Heading:  "Posts in category: " + category.Name,
		Category: category,
	})
}

func (pc *PostController) TagPosts(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		NotFound(c)
		return
	}
	tag, err := pc.taxonomy.GetTag(c.Request.Context(), id)
	if err != nil {
		pc.fail(c, err)
		return
	}

	pc.renderListing(c, services.PostFilter{TagID: tag.ID}, &HTMLData{
		Title:   "#" + tag.Name,
		Heading: "Posts tagged: " + tag.Name,
		Tag:     tag,
	})
}

func (pc *PostController) AuthorPosts(c *gin.Context) {
	author, err := pc.users.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		pc.fail(c, err)
		return
	}

	pc.renderListing(c, services.PostFilter{AuthorID: author.ID}, &HTMLData{
		Title:   author.Username,
		Heading: "Posts by " + author.DisplayName(),
		Author:  author,
	})
}

func (pc *PostController) renderListing(c *gin.Context, filter services.PostFilter, data *HTMLData) {
	ctx := c.Request.Context()

	result, err := pc.posts.ListPublished(ctx, filter, c.Query("page"))
	if err != nil {
		serverError(c, err)
		return
	}
	if data.Categories, err = pc.taxonomy.ListCategories(ctx); err != nil {
		serverError(c, err)
		return
	}
	if data.Tags, err = pc.taxonomy.ListTags(ctx); err != nil {
		serverError(c, err)
		return
	}

	data.Posts = result.Posts
	data.Page = result.Page
	render(c, http.StatusOK, "post_list.html", data)
}

// Detail shows a published post with its active comments. Drafts are not
// found, whoever asks.
func (pc *PostController) Detail(c *gin.Context) {
	post, ok := pc.loadPublished(c)
	if !ok {
		return
	}
	pc.renderDetail(c, http.StatusOK, post, models.CommentForm{}, nil)
}

// AddComment appends a comment by the signed-in user.
func (pc *PostController) AddComment(c *gin.Context) {
	post, ok := pc.loadPublished(c)
	if !ok {
		return
	}

	var form models.CommentForm
	if err := c.ShouldBind(&form); err != nil {
		pc.renderDetail(c, http.StatusBadRequest, post, form, models.FormErrors{"": invalidSubmissionMsg})
		return
	}

	_, err := pc.comments.Create(c.Request.Context(), post, middleware.CurrentUser(c), form)
	if err != nil {
		var fe models.FormErrors
		if errors.As(err, &fe) {
			pc.renderDetail(c, http.StatusOK, post, form, fe)
			return
		}
		pc.fail(c, err)
		return
	}

	addFlash(c, "success", "Your comment has been added successfully!")
	redirect(c, postURL(post.ID))
}

func (pc *PostController) loadPublished(c *gin.Context) (*models.Post, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		NotFound(c)
		return nil, false
	}
	post, err := pc.posts.GetPublished(c.Request.Context(), id)
	if err != nil {
		pc.fail(c, err)
		return nil, false
	}
	return post, true
}

func (pc *PostController) renderDetail(c *gin.Context, status int, post *models.Post, form models.CommentForm, fe models.FormErrors) {
	comments, err := pc.comments.ActiveForPost(c.Request.Context(), post.ID)
	if err != nil {
		serverError(c, err)
		return
	}

	render(c, status, "post_detail.html", &HTMLData{
		Title:     post.Title,
		Post:      post,
		Comments:  comments,
		Form:      form,
		Errors:    fe,
		CanModify: post.CanModify(middleware.CurrentUser(c)),
	})
}

func (pc *PostController) New(c *gin.Context) {
	pc.renderForm(c, http.StatusOK, "Create New Post", nil, models.PostForm{Status: string(models.StatusDraft)}, nil)
}

func (pc *PostController) Create(c *gin.Context) {
	var form models.PostForm
	if err := c.ShouldBind(&form); err != nil {
		pc.renderForm(c, http.StatusBadRequest, "Create New Post", nil, form, models.FormErrors{"": invalidSubmissionMsg})
		return
	}

	image, err := uploadedImage(c)
	if err != nil {
		pc.renderForm(c, http.StatusBadRequest, "Create New Post", nil, form, models.FormErrors{"image": "The submitted file is invalid."})
		return
	}

	post, err := pc.posts.Create(c.Request.Context(), middleware.CurrentUser(c), form, image)
	if err != nil {
		var fe models.FormErrors
		if errors.As(err, &fe) {
			pc.renderForm(c, http.StatusOK, "Create New Post", nil, form, fe)
			return
		}
		serverError(c, err)
		return
	}

	addFlash(c, "success", "Post created successfully!")
	redirect(c, postURL(post.ID))
}

func (pc *PostController) Edit(c *gin.Context) {
	post, ok := pc.loadModifiable(c, "You can only edit your own posts.")
	if !ok {
		return
	}
	pc.renderForm(c, http.StatusOK, "Edit Post", post, models.PostFormFrom(post), nil)
}

func (pc *PostController) Update(c *gin.Context) {
	post, ok := pc.loadModifiable(c, "You can only edit your own posts.")
	if !ok {
		return
	}

	var form models.PostForm
	if err := c.ShouldBind(&form); err != nil {
		pc.renderForm(c, http.StatusBadRequest, "Edit Post", post, form, models.FormErrors{"": invalidSubmissionMsg})
		return
	}

	image, err := uploadedImage(c)
	if err != nil {
		pc.renderForm(c, http.StatusBadRequest, "Edit Post", post, form, models.FormErrors{"image": "The submitted file is invalid."})
		return
	}

	if err := pc.posts.Update(c.Request.Context(), post, form, image); err != nil {
		var fe models.FormErrors
		if errors.As(err, &fe) {
			pc.renderForm(c, http.StatusOK, "Edit Post", post, form, fe)
			return
		}
		serverError(c, err)
		return
	}

	addFlash(c, "success", "Post updated successfully!")
	redirect(c, postURL(post.ID))
}

// ConfirmDelete asks before anything is removed.
func (pc *PostController) ConfirmDelete(c *gin.Context) {
	post, ok := pc.loadModifiable(c, "You can only delete your own posts.")
	if !ok {
		return
	}
	render(c, http.StatusOK, "post_confirm_delete.html", &HTMLData{Title: "Delete Post", Post: post})
}

func (pc *PostController) Delete(c *gin.Context) {
	post, ok := pc.loadModifiable(c, "You can only delete your own posts.")
	if !ok {
		return
	}

	if err := pc.posts.Delete(c.Request.Context(), post); err != nil {
		serverError(c, err)
		return
	}

	addFlash(c, "success", "Post deleted successfully!")
	redirect(c, "/")
}

// loadModifiable fetches the post in the path for its author or staff. Anyone
// else is sent back to the post with denied as a flash message.
func (pc *PostController) loadModifiable(c *gin.Context, denied string) (*models.Post, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		NotFound(c)
		return nil, false
	}
	post, err := pc.posts.Get(c.Request.Context(), id)
	if err != nil {
		pc.fail(c, err)
		return nil, false
	}
	if !post.CanModify(middleware.CurrentUser(c)) {
		addFlash(c, "error", denied)
		redirect(c, postURL(post.ID))
		return nil, false
	}
	return post, true
}

func (pc *PostController) renderForm(c *gin.Context, status int, title string, post *models.Post, form models.PostForm, fe models.FormErrors) {
	ctx := c.Request.Context()

	categories, err := pc.taxonomy.ListCategories(ctx)
	if err != nil {
		serverError(c, err)
		return
	}
	tags, err := pc.taxonomy.ListTags(ctx)
	if err != nil {
		serverError(c, err)
		return
	}

	render(c, status, "post_form.html", &HTMLData{
		Title:      title,
		Heading:    title,
		Post:       post,
		Form:       form,
		Errors:     fe,
		Categories: categories,
		Tags:       tags,
		Statuses:   models.PostStatuses,
	})
}

func (pc *PostController) fail(c *gin.Context, err error) {
	if errors.Is(err, services.ErrNotFound) {
		NotFound(c)
		return
	}
	serverError(c, err)
}

// uploadedImage returns the optional "image" file, nil when none was sent.
func uploadedImage(c *gin.Context) (*multipart.FileHeader, error) {
	file, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	if file.Size == 0 {
		return nil, nil
	}
	return file, nil
}
