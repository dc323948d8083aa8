package controllers

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Olga07122007/yatube-project/config"
	"github.com/Olga07122007/yatube-project/middleware"
	"github.com/Olga07122007/yatube-project/models"
	"github.com/Olga07122007/yatube-project/utils"
)

// GroupController manages topic groups. Groups are created by
// administrators only; regular users just assign posts to them.
type GroupController struct {
	db *gorm.DB
}

// NewGroupController creates a new GroupController instance.
func NewGroupController(db *gorm.DB) *GroupController {
	return &GroupController{db: db}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// CreateForm renders the group creation page for administrators.
func (g *GroupController) CreateForm(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.NotFound(ctx)
		return
	}
	utils.Render(ctx, http.StatusOK, "create_group.html", gin.H{
		"Title":       "",
		"Slug":        "",
		"Description": "",
	})
}

// Create stores a new group and redirects to its listing.
func (g *GroupController) Create(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.NotFound(ctx)
		return
	}

	title := strings.TrimSpace(ctx.PostForm("title"))
	slug := strings.ToLower(strings.TrimSpace(ctx.PostForm("slug")))
	description := utils.Sanitize(strings.TrimSpace(ctx.PostForm("description")))

	formErrs := map[string]string{}
	if title == "" {
		formErrs["title"] = "title cannot be empty"
	}
	if !slugPattern.MatchString(slug) {
		formErrs["slug"] = "slug must be lowercase letters, digits and '-'"
	} else if _, err := models.GroupBySlug(g.db, slug); err == nil {
		formErrs["slug"] = "slug already in use"
	}
	if len(formErrs) > 0 {
		utils.Render(ctx, http.StatusBadRequest, "create_group.html", gin.H{
			"Errors":      formErrs,
			"Title":       title,
			"Slug":        slug,
			"Description": description,
		})
		return
	}

	group := models.Group{Title: title, Slug: slug, Description: description}
	if err := g.db.Create(&group).Error; err != nil {
		ctx.String(http.StatusInternalServerError, "failed to create group")
		return
	}
	ctx.Redirect(http.StatusFound, "/group/"+group.Slug)
}

// isAdmin checks the viewer against the configured administrator list.
func isAdmin(ctx *gin.Context) bool {
	uname := middleware.ViewerName(ctx)
	if uname == "" {
		return false
	}
	for _, u := range config.Get().AdminUsernames {
		if strings.EqualFold(strings.TrimSpace(u), uname) {
			return true
		}
	}
	return false
}
