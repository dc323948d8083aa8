package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Olga07122007/yatube-project/feed"
	"github.com/Olga07122007/yatube-project/middleware"
	"github.com/Olga07122007/yatube-project/models"
	"github.com/Olga07122007/yatube-project/utils"
)

// FollowController maintains follower edges and serves the follow feed.
type FollowController struct {
	db *gorm.DB
}

// NewFollowController creates a new FollowController instance.
func NewFollowController(db *gorm.DB) *FollowController {
	return &FollowController{db: db}
}

// FollowIndex renders the feed of posts by authors the viewer follows.
// Computed live from current edges on every request, never cached.
func (f *FollowController) FollowIndex(ctx *gin.Context) {
	viewerID, ok := middleware.ViewerID(ctx)
	if !ok {
		ctx.Redirect(http.StatusFound, middleware.LoginPath)
		return
	}
	posts, err := models.FollowFeedPosts(f.db, viewerID)
	if err != nil {
		ctx.String(http.StatusInternalServerError, "failed to load follow feed")
		return
	}
	page := feed.Paginate(posts, feed.ParsePage(ctx.Query("page")))
	utils.Render(ctx, http.StatusOK, "follow.html", gin.H{
		"Page":   page,
		"Follow": true,
	})
}

// Follow creates the (follower, author) edge if absent. Following
// yourself or following twice changes nothing; both just redirect back
// to the profile.
func (f *FollowController) Follow(ctx *gin.Context) {
	username := ctx.Param("username")
	profilePath := "/profile/" + username

	viewerID, ok := middleware.ViewerID(ctx)
	if !ok {
		ctx.Redirect(http.StatusFound, middleware.LoginPath)
		return
	}
	if middleware.ViewerName(ctx) == username {
		ctx.Redirect(http.StatusFound, profilePath)
		return
	}

	author, err := models.UserByUsername(f.db, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(ctx)
			return
		}
		ctx.String(http.StatusInternalServerError, "failed to load author")
		return
	}

	follow := models.Follow{UserID: viewerID, AuthorID: author.ID}
	err = f.db.Where(models.Follow{UserID: viewerID, AuthorID: author.ID}).
		FirstOrCreate(&follow).Error
	if err != nil {
		ctx.String(http.StatusInternalServerError, "failed to follow")
		return
	}
	ctx.Redirect(http.StatusFound, profilePath)
}

// Unfollow deletes the edge if present; deleting a missing edge is a
// no-op.
func (f *FollowController) Unfollow(ctx *gin.Context) {
	username := ctx.Param("username")

	viewerID, ok := middleware.ViewerID(ctx)
	if !ok {
		ctx.Redirect(http.StatusFound, middleware.LoginPath)
		return
	}

	author, err := models.UserByUsername(f.db, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(ctx)
			return
		}
		ctx.String(http.StatusInternalServerError, "failed to load author")
		return
	}

	err = f.db.Where("user_id = ? AND author_id = ?", viewerID, author.ID).
		Delete(&models.Follow{}).Error
	if err != nil {
		ctx.String(http.StatusInternalServerError, "failed to unfollow")
		return
	}
	ctx.Redirect(http.StatusFound, "/profile/"+username)
}
