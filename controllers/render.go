package controllers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"blog/middleware"
	"blog/models"
	"blog/services"
	"blog/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// HTMLData is the single view model shared by every page template.
type HTMLData struct {
	Title       string
	Path        string
	CurrentUser *models.User
	Flashes     []Flash
	Errors      models.FormErrors
	Form        any
	Next        string

	Heading          string
	Posts            []models.Post
	Page             utils.Page
	Query            url.Values
	Search           string
	SelectedCategory string
	SelectedTag      string
	Categories       []models.Category
	Tags             []models.Tag
	Category         *models.Category
	Tag              *models.Tag
	Author           *models.User

	Post      *models.Post
	Comments  []models.Comment
	CanModify bool
	Statuses  []models.PostStatus

	Token     string
	ValidLink bool

	Admins    []*services.ModelAdmin
	AdminList *services.AdminList

	Status  int
	Message string
}

// PageURL links to page n of the current listing, keeping its filters.
func (d *HTMLData) PageURL(n int) string {
	q := d.queryWithout("page")
	q.Set("page", strconv.Itoa(n))
	return "?" + q.Encode()
}

// FilterURL links to the current listing with param set to value, or removed
// when value is empty. Pagination restarts.
func (d *HTMLData) FilterURL(param, value string) string {
	q := d.queryWithout("page", param)
	if value != "" {
		q.Set(param, value)
	}
	if len(q) == 0 {
		return "?"
	}
	return "?" + q.Encode()
}

func (d *HTMLData) queryWithout(keys ...string) url.Values {
	q := url.Values{}
	for k, v := range d.Query {
		q[k] = v
	}
	for _, k := range keys {
		q.Del(k)
	}
	return q
}

// HasError is used by templates to mark invalid inputs.
func (d *HTMLData) HasError(field string) bool {
	_, ok := d.Errors[field]
	return ok
}

type Flash struct {
	Level   string `json:"l"`
	Message string `json:"m"`
}

const flashCookie = "flash"

func render(c *gin.Context, status int, name string, data *HTMLData) {
	if data == nil {
		data = &HTMLData{}
	}
	data.Path = c.Request.URL.Path
	if data.CurrentUser == nil {
		data.CurrentUser = middleware.CurrentUser(c)
	}
	data.Flashes = append(takeFlashes(c), data.Flashes...)
	if data.Query == nil {
		data.Query = c.Request.URL.Query()
	}
	c.HTML(status, name, data)
}

// addFlash queues a message for the next rendered page. It is meant to be
// followed by a redirect.
func addFlash(c *gin.Context, level, message string) {
	flashes := append(readFlashes(c), Flash{Level: level, Message: message})
	raw, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func readFlashes(c *gin.Context) []Flash {
	value, err := c.Cookie(flashCookie)
	if err != nil || value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil
	}
	return flashes
}

func takeFlashes(c *gin.Context) []Flash {
	flashes := readFlashes(c)
	if flashes != nil {
		http.SetCookie(c.Writer, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	}
	return flashes
}

// redirect answers a form submission with a See Other.
func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

func NotFound(c *gin.Context) {
	render(c, http.StatusNotFound, "error.html", &HTMLData{
		Title:   "Page not found",
		Status:  http.StatusNotFound,
		Message: "The page you requested could not be found.",
	})
}

func Forbidden(c *gin.Context) {
	render(c, http.StatusForbidden, "error.html", &HTMLData{
		Title:   "Forbidden",
		Status:  http.StatusForbidden,
		Message: "You do not have permission to view this page.",
	})
}

func InternalError(c *gin.Context) {
	render(c, http.StatusInternalServerError, "error.html", &HTMLData{
		Title:   "Server error",
		Status:  http.StatusInternalServerError,
		Message: "Something went wrong. Please try again later.",
	})
}

func serverError(c *gin.Context, err error) {
	log.Error().Err(err).
		Str("request_id", c.GetString(middleware.RequestIDKey)).
		Str("path", c.Request.URL.Path).
		Msg("Request failed")
	InternalError(c)
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// queryID reads an optional numeric filter. Anything unparsable is ignored.
func queryID(c *gin.Context, name string) uint {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Query(name)), 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}

// safeNext accepts only local absolute paths as redirect targets.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}
