package controllers

import (
	"errors"
	"net/http"

	"blog/middleware"
	"blog/models"
	"blog/services"
	"blog/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	invalidLoginMsg      = "Please enter a correct username and password. Note that both fields may be case-sensitive."
	invalidSubmissionMsg = "Invalid submission."
)

type AuthController struct {
	userService  *services.UserService
	resetService *services.PasswordResetService
	sessions     Sessions
}

func NewAuthController(users *services.UserService, resets *services.PasswordResetService, sessions Sessions) *AuthController {
	return &AuthController{
		userService:  users,
		resetService: resets,
		sessions:     sessions,
	}
}

func (ac *AuthController) RegisterPage(c *gin.Context) {
	render(c, http.StatusOK, "register.html", &HTMLData{Title: "Register", Form: models.RegisterForm{}})
}

func (ac *AuthController) Register(c *gin.Context) {
	var form models.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		ac.renderForm(c, http.StatusBadRequest, "register.html", "Register", form, models.FormErrors{"": invalidSubmissionMsg})
		return
	}
	// never echo passwords back into the page
	echo := form
	echo.Password, echo.PasswordConfirm = "", ""

	user, err := ac.userService.Register(c.Request.Context(), form)
	if err != nil {
		var fe models.FormErrors
		if errors.As(err, &fe) {
			ac.renderForm(c, http.StatusOK, "register.html", "Register", echo, fe)
			return
		}
		serverError(c, err)
		return
	}

	if err := ac.sessions.Start(c, user); err != nil {
		serverError(c, err)
		return
	}

	log.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	addFlash(c, "success", "Registration successful! Welcome to our blog!")
	redirect(c, "/")
}

func (ac *AuthController) LoginPage(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, safeNext(c.Query("next"), "/"))
		return
	}
	render(c, http.StatusOK, "login.html", &HTMLData{Title: "Log in", Form: models.LoginForm{}, Next: c.Query("next")})
}

func (ac *AuthController) Login(c *gin.Context) {
	var form models.LoginForm
	bindErr := c.ShouldBind(&form)
	next := c.PostForm("next")

	data := &HTMLData{Title: "Log in", Form: models.LoginForm{Username: form.Username}, Next: next}
	if bindErr != nil {
		data.Errors = models.FormErrors{"": invalidSubmissionMsg}
		render(c, http.StatusBadRequest, "login.html", data)
		return
	}

	if fe, err := models.AsFormErrors(form.Validate()); err != nil {
		serverError(c, err)
		return
	} else if fe != nil {
		data.Errors = fe
		render(c, http.StatusOK, "login.html", data)
		return
	}

	user, err := ac.userService.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			data.Errors = models.FormErrors{"": invalidLoginMsg}
			render(c, http.StatusOK, "login.html", data)
			return
		}
		serverError(c, err)
		return
	}

	if err := ac.sessions.Start(c, user); err != nil {
		serverError(c, err)
		return
	}

	redirect(c, safeNext(next, "/"))
}

func (ac *AuthController) Logout(c *gin.Context) {
	ac.sessions.End(c)
	addFlash(c, "info", "You have been logged out.")
	redirect(c, "/")
}

func (ac *AuthController) PasswordChangePage(c *gin.Context) {
	render(c, http.StatusOK, "password_change.html", &HTMLData{Title: "Password change", Form: models.PasswordChangeForm{}})
}

func (ac *AuthController) PasswordChange(c *gin.Context) {
	var form models.PasswordChangeForm
	if err := c.ShouldBind(&form); err != nil {
		ac.renderForm(c, http.StatusBadRequest, "password_change.html", "Password change", models.PasswordChangeForm{}, models.FormErrors{"": invalidSubmissionMsg})
		return
	}

	user := middleware.CurrentUser(c)
	if err := ac.userService.ChangePassword(c.Request.Context(), user, form); err != nil {
		var fe models.FormErrors
		if errors.As(err, &fe) {
			ac.renderForm(c, http.StatusOK, "password_change.html", "Password change", models.PasswordChangeForm{}, fe)
			return
		}
		serverError(c, err)
		return
	}

	// the old cookie died with the old password
	if err := ac.sessions.Start(c, user); err != nil {
		serverError(c, err)
		return
	}
	redirect(c, "/password_change/done/")
}

func (ac *AuthController) PasswordChangeDone(c *gin.Context) {
	render(c, http.StatusOK, "password_change_done.html", &HTMLData{Title: "Password change successful"})
}

func (ac *AuthController) PasswordResetPage(c *gin.Context) {
	render(c, http.StatusOK, "password_reset.html", &HTMLData{Title: "Password reset", Form: models.PasswordResetForm{}})
}

func (ac *AuthController) PasswordReset(c *gin.Context) {
	var form models.PasswordResetForm
	if err := c.ShouldBind(&form); err != nil {
		ac.renderForm(c, http.StatusBadRequest, "password_reset.html", "Password reset", form, models.FormErrors{"": invalidSubmissionMsg})
		return
	}

	if err := ac.resetService.Request(c.Request.Context(), form); err != nil {
		var fe models.FormErrors
		if errors.As(err, &fe) {
			ac.renderForm(c, http.StatusOK, "password_reset.html", "Password reset", form, fe)
			return
		}
		serverError(c, err)
		return
	}
	redirect(c, "/password_reset/done/")
}

func (ac *AuthController) PasswordResetDone(c *gin.Context) {
	render(c, http.StatusOK, "password_reset_done.html", &HTMLData{Title: "Password reset sent"})
}

func (ac *AuthController) ResetConfirmPage(c *gin.Context) {
	token := c.Param("token")
	_, err := ac.resetService.Validate(c.Request.Context(), token)
	if err != nil && !errors.Is(err, services.ErrInvalidToken) {
		serverError(c, err)
		return
	}
	render(c, http.StatusOK, "password_reset_confirm.html", &HTMLData{
		Title:     "Enter new password",
		Form:      models.SetPasswordForm{},
		Token:     token,
		ValidLink: err == nil,
	})
}

func (ac *AuthController) ResetConfirm(c *gin.Context) {
	token := c.Param("token")
	data := &HTMLData{Title: "Enter new password", Form: models.SetPasswordForm{}, Token: token, ValidLink: true}

	var form models.SetPasswordForm
	if err := c.ShouldBind(&form); err != nil {
		data.Errors = models.FormErrors{"": invalidSubmissionMsg}
		render(c, http.StatusBadRequest, "password_reset_confirm.html", data)
		return
	}

	err := ac.resetService.Confirm(c.Request.Context(), token, form)
	if err != nil {
		var fe models.FormErrors
		switch {
		case errors.Is(err, services.ErrInvalidToken):
			data.ValidLink = false
		case errors.As(err, &fe):
			data.Errors = fe
		default:
			serverError(c, err)
			return
		}
		render(c, http.StatusOK, "password_reset_confirm.html", data)
		return
	}
	redirect(c, "/reset/done/")
}

func (ac *AuthController) ResetComplete(c *gin.Context) {
	render(c, http.StatusOK, "password_reset_complete.html", &HTMLData{Title: "Password reset complete"})
}

func (ac *AuthController) renderForm(c *gin.Context, status int, page, title string, form any, fe models.FormErrors) {
	render(c, status, page, &HTMLData{Title: title, Form: form, Errors: fe})
}

type TokenResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Token godoc
// @Summary Obtain an API token
// @Description Exchange a username and password for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginForm true "Credentials"
// @Success 200 {object} utils.Response{data=TokenResponse}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Router /auth/token [post]
func (ac *AuthController) Token(c *gin.Context) {
	var req models.LoginForm
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	if fe, _ := models.AsFormErrors(req.Validate()); fe != nil {
		utils.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", fe)
		return
	}

	user, err := ac.userService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.Unauthorized(c, "Invalid credentials")
			return
		}
		utils.InternalServerError(c, "Failed to authenticate")
		return
	}

	token, err := utils.GenerateJWT(ac.sessions.Secret, user.ID, user.PasswordFingerprint(), ac.sessions.TTL)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate token")
		return
	}

	utils.Success(c, http.StatusOK, TokenResponse{Token: token, User: user})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Response{data=models.User}
// @Failure 401 {object} utils.Response
// @Router /auth/me [get]
func (ac *AuthController) Me(c *gin.Context) {
	utils.Success(c, http.StatusOK, middleware.CurrentUser(c))
}
