package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"blog/models"
	"blog/services"

	"github.com/gin-gonic/gin"
)

// AdminController renders the staff-only change lists described by the
// registered ModelAdmins.
type AdminController struct {
	admin    *services.AdminService
	taxonomy *services.TaxonomyService
}

func NewAdminController(admin *services.AdminService, taxonomy *services.TaxonomyService) *AdminController {
	return &AdminController{admin: admin, taxonomy: taxonomy}
}

func adminListURL(slug string) string {
	return fmt.Sprintf("/admin/%s/", slug)
}

func (ac *AdminController) Index(c *gin.Context) {
	render(c, http.StatusOK, "admin_index.html", &HTMLData{
		Title:  "Site administration",
		Admins: ac.admin.Admins(),
	})
}

func (ac *AdminController) List(c *gin.Context) {
	slug := c.Param("model")
	admin, err := ac.admin.Lookup(slug)
	if err != nil {
		NotFound(c)
		return
	}

	query := services.AdminQuery{
		Search:  strings.TrimSpace(c.Query("q")),
		Page:    c.Query("page"),
		Filters: map[string]string{},
	}
	for _, f := range admin.Filters {
		if v := c.Query(f.Param); v != "" {
			query.Filters[f.Param] = v
		}
	}

	list, err := ac.admin.List(c.Request.Context(), slug, query)
	if err != nil {
		serverError(c, err)
		return
	}

	render(c, http.StatusOK, "admin_list.html", &HTMLData{
		Title:     admin.Name,
		Admins:    ac.admin.Admins(),
		AdminList: list,
		Search:    query.Search,
		Page:      list.Page,
	})
}

// AddPage shows the create form of categories and tags.
func (ac *AdminController) AddPage(c *gin.Context) {
	admin, ok := ac.creatable(c)
	if !ok {
		return
	}
	render(c, http.StatusOK, "admin_form.html", &HTMLData{
		Title:   "Add " + singular(admin.Slug),
		Heading: admin.Slug,
		Form:    models.CategoryForm{},
	})
}

func (ac *AdminController) Add(c *gin.Context) {
	admin, ok := ac.creatable(c)
	if !ok {
		return
	}

	var form models.CategoryForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "admin_form.html", &HTMLData{
			Title:   "Add " + singular(admin.Slug),
			Heading: admin.Slug,
			Form:    form,
			Errors:  models.FormErrors{"": invalidSubmissionMsg},
		})
		return
	}

	var err error
	switch admin.Slug {
	case "categories":
		_, err = ac.taxonomy.CreateCategory(c.Request.Context(), form)
	case "tags":
		_, err = ac.taxonomy.CreateTag(c.Request.Context(), models.TagForm{Name: form.Name})
	}
	if err != nil {
		var fe models.FormErrors
		if errors.As(err, &fe) {
			render(c, http.StatusOK, "admin_form.html", &HTMLData{
				Title:   "Add " + singular(admin.Slug),
				Heading: admin.Slug,
				Form:    form,
				Errors:  fe,
			})
			return
		}
		serverError(c, err)
		return
	}

	addFlash(c, "success", fmt.Sprintf("The %s %q was added successfully.", singular(admin.Slug), form.Name))
	redirect(c, adminListURL(admin.Slug))
}

func (ac *AdminController) Delete(c *gin.Context) {
	slug := c.Param("model")
	id, ok := parseID(c, "id")
	if !ok {
		NotFound(c)
		return
	}

	if err := ac.admin.Delete(c.Request.Context(), slug, id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			NotFound(c)
			return
		}
		serverError(c, err)
		return
	}

	addFlash(c, "success", fmt.Sprintf("The %s was deleted successfully.", singular(slug)))
	redirect(c, adminListURL(slug))
}

// ToggleActive hides or restores a comment.
func (ac *AdminController) ToggleActive(c *gin.Context) {
	slug := c.Param("model")
	id, ok := parseID(c, "id")
	if !ok {
		NotFound(c)
		return
	}

	if err := ac.admin.ToggleActive(c.Request.Context(), slug, id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			NotFound(c)
			return
		}
		serverError(c, err)
		return
	}

	addFlash(c, "success", fmt.Sprintf("The %s was updated successfully.", singular(slug)))
	redirect(c, safeNext(c.PostForm("next"), adminListURL(slug)))
}

func (ac *AdminController) creatable(c *gin.Context) (*services.ModelAdmin, bool) {
	admin, err := ac.admin.Lookup(c.Param("model"))
	if err != nil || !admin.Creatable {
		NotFound(c)
		return nil, false
	}
	return admin, true
}

func singular(slug string) string {
	switch slug {
	case "categories":
		return "category"
	case "":
		return "object"
	}
	return strings.TrimSuffix(slug, "s")
}
