package controllers

import (
	"errors"
	"net/http"

	"blog/services"
	"blog/utils"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	userService *services.UserService
	postService *services.PostService
}

func NewUserController(users *services.UserService, posts *services.PostService) *UserController {
	return &UserController{
		userService: users,
		postService: posts,
	}
}

// GetUser godoc
// @Summary Public author profile
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} utils.Response{data=AuthorResponse}
// @Failure 404 {object} utils.Response
// @Router /users/{username} [get]
func (uc *UserController) GetUser(c *gin.Context) {
	user, err := uc.userService.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.NotFound(c, "User not found")
			return
		}
		utils.InternalServerError(c, "Failed to fetch user")
		return
	}

	utils.Success(c, http.StatusOK, authorOf(user))
}

// GetUserPosts godoc
// @Summary Published posts of an author
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Param page query int false "Page number"
// @Success 200 {object} utils.Response{data=[]PostResponse}
// @Failure 404 {object} utils.Response
// @Router /users/{username}/posts [get]
func (uc *UserController) GetUserPosts(c *gin.Context) {
	ctx := c.Request.Context()

	user, err := uc.userService.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.NotFound(c, "User not found")
			return
		}
		utils.InternalServerError(c, "Failed to fetch user")
		return
	}

	result, err := uc.postService.ListPublished(ctx, services.PostFilter{AuthorID: user.ID}, c.Query("page"))
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
