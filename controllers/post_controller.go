package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Olga07122007/yatube-project/feed"
	"github.com/Olga07122007/yatube-project/middleware"
	"github.com/Olga07122007/yatube-project/models"
	"github.com/Olga07122007/yatube-project/utils"
)

// PostController serves the four feeds, post detail, and the
// authenticated create/edit/comment flows.
type PostController struct {
	db *gorm.DB
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB) *PostController {
	return &PostController{db: db}
}

// Index renders the global feed, newest first. The route is wrapped in
// the page-cache middleware; this handler itself stays cache-unaware.
func (p *PostController) Index(ctx *gin.Context) {
	posts, err := models.AllPosts(p.db)
	if err != nil {
		ctx.String(http.StatusInternalServerError, "failed to load posts")
		return
	}
	page := feed.Paginate(posts, feed.ParsePage(ctx.Query("page")))
	utils.Render(ctx, http.StatusOK, "index.html", gin.H{
		"Page":  page,
		"Index": true,
	})
}

// GroupPosts renders one group's feed. Unknown slugs answer 404.
func (p *PostController) GroupPosts(ctx *gin.Context) {
	slug := ctx.Param("slug")
	group, err := models.GroupBySlug(p.db, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(ctx)
			return
		}
		ctx.String(http.StatusInternalServerError, "failed to load group")
		return
	}
	posts, err := models.PostsByGroup(p.db, group.ID)
	if err != nil {
		ctx.String(http.StatusInternalServerError, "failed to load posts")
		return
	}
	page := feed.Paginate(posts, feed.ParsePage(ctx.Query("page")))
	utils.Render(ctx, http.StatusOK, "group_list.html", gin.H{
		"Group": group,
		"Page":  page,
	})
}

// Profile renders one author's feed with the viewer's follow state.
func (p *PostController) Profile(ctx *gin.Context) {
	username := ctx.Param("username")
	author, err := models.UserByUsername(p.db, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(ctx)
			return
		}
		ctx.String(http.StatusInternalServerError, "failed to load profile")
		return
	}

	following := false
	notMe := true
	if viewerID, ok := middleware.ViewerID(ctx); ok {
		if viewerID == author.ID {
			notMe = false
		} else {
			following, _ = models.IsFollowing(p.db, viewerID, author.ID)
		}
	}

	posts, err := models.PostsByAuthor(p.db, author.ID)
	if err != nil {
		ctx.String(http.StatusInternalServerError, "failed to load posts")
		return
	}
	page := feed.Paginate(posts, feed.ParsePage(ctx.Query("page")))
	utils.Render(ctx, http.StatusOK, "profile.html", gin.H{
		"Author":    author,
		"Following": following,
		"NotMe":     notMe,
		"Page":      page,
	})
}

// PostDetail renders a single post with its comments and comment form.
func (p *PostController) PostDetail(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}
	utils.Render(ctx, http.StatusOK, "post_detail.html", gin.H{
		"Post": post,
	})
}

// PostCreateForm renders the empty submission form.
func (p *PostController) PostCreateForm(ctx *gin.Context) {
	p.renderPostForm(ctx, gin.H{"IsEdit": false})
}

// deref returns the selected group ID for the form template; zero means
// no group.
func deref(id *uint) uint {
	if id == nil {
		return 0
	}
	return *id
}

// PostCreate stores a new post for the authenticated user and redirects
// to their profile, matching the browse-after-publish flow.
func (p *PostController) PostCreate(ctx *gin.Context) {
	viewerID, ok := middleware.ViewerID(ctx)
	if !ok {
		ctx.Redirect(http.StatusFound, middleware.LoginPath)
		return
	}

	text, groupID, imageURL, formErrs := p.parsePostForm(ctx)
	if len(formErrs) > 0 {
		p.renderPostForm(ctx, gin.H{
			"IsEdit":  false,
			"Errors":  formErrs,
			"Text":    text,
			"GroupID": deref(groupID),
		})
		return
	}

	post := models.Post{
		UserID:  viewerID,
		GroupID: groupID,
		Text:    text,
		Image:   imageURL,
	}
	if err := p.db.Create(&post).Error; err != nil {
		ctx.String(http.StatusInternalServerError, "failed to create post")
		return
	}

	// The cached index is deliberately left alone here; new posts stay
	// invisible there until the TTL runs out.
	ctx.Redirect(http.StatusFound, "/profile/"+middleware.ViewerName(ctx))
}

// PostEditForm renders the edit form, or silently redirects non-authors
// to the detail page.
func (p *PostController) PostEditForm(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}
	viewerID, _ := middleware.ViewerID(ctx)
	if decideEdit(post, viewerID) == editDenied {
		ctx.Redirect(http.StatusFound, "/posts/"+strconv.Itoa(int(post.ID)))
		return
	}
	groupID := uint(0)
	if post.GroupID != nil {
		groupID = *post.GroupID
	}
	p.renderPostForm(ctx, gin.H{
		"IsEdit":  true,
		"Post":    post,
		"Text":    post.Text,
		"GroupID": groupID,
	})
}

// PostEdit applies an author's changes and redirects to the detail page.
func (p *PostController) PostEdit(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}
	detailPath := "/posts/" + strconv.Itoa(int(post.ID))

	viewerID, _ := middleware.ViewerID(ctx)
	if decideEdit(post, viewerID) == editDenied {
		ctx.Redirect(http.StatusFound, detailPath)
		return
	}

	text, groupID, imageURL, formErrs := p.parsePostForm(ctx)
	if len(formErrs) > 0 {
		p.renderPostForm(ctx, gin.H{
			"IsEdit":  true,
			"Post":    post,
			"Errors":  formErrs,
			"Text":    text,
			"GroupID": deref(groupID),
		})
		return
	}

	post.Text = text
	post.GroupID = groupID
	if imageURL != "" {
		post.Image = imageURL
	}
	if err := p.db.Save(post).Error; err != nil {
		ctx.String(http.StatusInternalServerError, "failed to update post")
		return
	}
	ctx.Redirect(http.StatusFound, detailPath)
}

// AddComment stores a comment on a post and redirects back to it.
func (p *PostController) AddComment(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}
	viewerID, ok := middleware.ViewerID(ctx)
	if !ok {
		ctx.Redirect(http.StatusFound, middleware.LoginPath)
		return
	}

	text := utils.Sanitize(strings.TrimSpace(ctx.PostForm("text")))
	if text == "" {
		utils.Render(ctx, http.StatusOK, "post_detail.html", gin.H{
			"Post":         post,
			"CommentError": "comment text cannot be empty",
		})
		return
	}

	comment := models.Comment{
		PostID: post.ID,
		UserID: viewerID,
		Text:   text,
	}
	if err := p.db.Create(&comment).Error; err != nil {
		ctx.String(http.StatusInternalServerError, "failed to create comment")
		return
	}
	ctx.Redirect(http.StatusFound, "/posts/"+strconv.Itoa(int(post.ID)))
}

// editDecision is the outcome of the author-only check. Denial is a
// normal navigation outcome here, not an error.
type editDecision int

const (
	editAuthorized editDecision = iota
	editDenied
)

func decideEdit(post *models.Post, viewerID uint) editDecision {
	if viewerID != 0 && post.UserID == viewerID {
		return editAuthorized
	}
	return editDenied
}

// loadPost fetches the post in the :id param with author, group, and
// comments. Replies 404 and returns false when it does not exist.
func (p *PostController) loadPost(ctx *gin.Context) (*models.Post, bool) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id < 1 {
		utils.NotFound(ctx)
		return nil, false
	}
	var post models.Post
	err = p.db.Preload("User").Preload("Group").Preload("Comments.User").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(ctx)
			return nil, false
		}
		ctx.String(http.StatusInternalServerError, "failed to load post")
		return nil, false
	}
	return &post, true
}

// parsePostForm validates the shared create/edit form. It returns the
// sanitized text, optional group, optional stored image URL, and a map
// of field errors; nothing is written when errors are present.
func (p *PostController) parsePostForm(ctx *gin.Context) (string, *uint, string, map[string]string) {
	formErrs := map[string]string{}

	text := utils.Sanitize(strings.TrimSpace(ctx.PostForm("text")))
	if text == "" {
		formErrs["text"] = "post text cannot be empty"
	}

	var groupID *uint
	if raw := strings.TrimSpace(ctx.PostForm("group")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			formErrs["group"] = "unknown group"
		} else {
			var group models.Group
			if err := p.db.First(&group, n).Error; err != nil {
				formErrs["group"] = "unknown group"
			} else {
				groupID = &group.ID
			}
		}
	}

	var imageURL string
	if header, err := ctx.FormFile("image"); err == nil && header != nil {
		imageURL, err = utils.SaveImage(header)
		if err != nil {
			formErrs["image"] = err.Error()
		}
	}

	return text, groupID, imageURL, formErrs
}

// renderPostForm renders the shared create/edit template with the group
// choices loaded for the select box.
func (p *PostController) renderPostForm(ctx *gin.Context, data gin.H) {
	var groups []models.Group
	if err := p.db.Order("title").Find(&groups).Error; err == nil {
		data["Groups"] = groups
	}
	if _, ok := data["GroupID"]; !ok {
		data["GroupID"] = uint(0)
	}
	if _, ok := data["Text"]; !ok {
		data["Text"] = ""
	}
	status := http.StatusOK
	if errs, ok := data["Errors"].(map[string]string); ok && len(errs) > 0 {
		status = http.StatusBadRequest
	}
	utils.Render(ctx, status, "create_post.html", data)
}
