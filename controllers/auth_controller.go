package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Olga07122007/yatube-project/middleware"
	"github.com/Olga07122007/yatube-project/models"
	"github.com/Olga07122007/yatube-project/utils"
)

// AuthController handles signup, login/logout, and password management.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// SignupForm renders the registration page.
func (a *AuthController) SignupForm(ctx *gin.Context) {
	utils.Render(ctx, http.StatusOK, "signup.html", gin.H{
		"Username": "",
		"Email":    "",
	})
}

// Signup registers a local account with bcrypt hashing, signs the new
// user in, and redirects to the index.
func (a *AuthController) Signup(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.PostForm("username"))
	email := strings.TrimSpace(ctx.PostForm("email"))
	password := ctx.PostForm("password")
	confirm := ctx.PostForm("confirm")

	formErrs := map[string]string{}
	if l := len([]rune(username)); l < 2 || l > 30 {
		formErrs["username"] = "username must be 2-30 characters"
	} else if !validUsername(username) {
		formErrs["username"] = "username may contain letters, digits and '-' only"
	}
	if len(password) < 6 || len(password) > 64 {
		formErrs["password"] = "password must be 6-64 characters"
	}
	if password != confirm {
		formErrs["confirm"] = "passwords do not match"
	}
	if len(formErrs) == 0 {
		var existing models.User
		if err := a.db.Where("username = ?", username).First(&existing).Error; err == nil {
			formErrs["username"] = "username already taken"
		}
	}
	if len(formErrs) > 0 {
		utils.Render(ctx, http.StatusBadRequest, "signup.html", gin.H{
			"Errors":   formErrs,
			"Username": username,
			"Email":    email,
		})
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		ctx.String(http.StatusInternalServerError, "failed to hash password")
		return
	}
	user := models.User{Username: username, Email: email, PasswordHash: hash}
	if err := a.db.Create(&user).Error; err != nil {
		ctx.String(http.StatusInternalServerError, "failed to create user")
		return
	}

	a.startSession(ctx, &user)
	ctx.Redirect(http.StatusFound, "/")
}

// LoginForm renders the login page, keeping the next parameter so the
// original destination survives the round trip.
func (a *AuthController) LoginForm(ctx *gin.Context) {
	utils.Render(ctx, http.StatusOK, "login.html", gin.H{
		"Next":     ctx.Query("next"),
		"Username": "",
	})
}

// Login verifies credentials, sets the session cookie, and redirects to
// the requested destination (or the index).
func (a *AuthController) Login(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.PostForm("username"))
	password := ctx.PostForm("password")
	next := ctx.PostForm("next")

	var user models.User
	err := a.db.Where("username = ?", username).First(&user).Error
	if err != nil || !utils.CheckPassword(user.PasswordHash, password) {
		utils.Render(ctx, http.StatusUnauthorized, "login.html", gin.H{
			"Error":    "invalid username or password",
			"Username": username,
			"Next":     next,
		})
		return
	}

	a.startSession(ctx, &user)
	ctx.Redirect(http.StatusFound, safeNext(next))
}

// Logout blacklists the session token until its natural expiry and
// clears the cookie.
func (a *AuthController) Logout(ctx *gin.Context) {
	if token, err := ctx.Cookie(utils.SessionCookie); err == nil && token != "" {
		utils.BlacklistToken(token, time.Now().Add(utils.SessionDuration))
	}
	ctx.SetCookie(utils.SessionCookie, "", -1, "/", "", false, true)
	ctx.Redirect(http.StatusFound, "/")
}

// PasswordChangeForm renders the change-password page.
func (a *AuthController) PasswordChangeForm(ctx *gin.Context) {
	utils.Render(ctx, http.StatusOK, "password_change.html", gin.H{})
}

// PasswordChange updates the authenticated user's password after
// verifying the current one.
func (a *AuthController) PasswordChange(ctx *gin.Context) {
	viewerID, ok := middleware.ViewerID(ctx)
	if !ok {
		ctx.Redirect(http.StatusFound, middleware.LoginPath)
		return
	}

	current := ctx.PostForm("current")
	password := ctx.PostForm("password")
	confirm := ctx.PostForm("confirm")

	var user models.User
	if err := a.db.First(&user, viewerID).Error; err != nil {
		ctx.String(http.StatusInternalServerError, "failed to load user")
		return
	}

	formErrs := map[string]string{}
	if !utils.CheckPassword(user.PasswordHash, current) {
		formErrs["current"] = "current password is incorrect"
	}
	if len(password) < 6 || len(password) > 64 {
		formErrs["password"] = "password must be 6-64 characters"
	}
	if password != confirm {
		formErrs["confirm"] = "passwords do not match"
	}
	if len(formErrs) > 0 {
		utils.Render(ctx, http.StatusBadRequest, "password_change.html", gin.H{
			"Errors": formErrs,
		})
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		ctx.String(http.StatusInternalServerError, "failed to hash password")
		return
	}
	if err := a.db.Model(&user).Update("password_hash", hash).Error; err != nil {
		ctx.String(http.StatusInternalServerError, "failed to update password")
		return
	}
	utils.Render(ctx, http.StatusOK, "password_change.html", gin.H{"Done": true})
}

// PasswordResetForm renders the reset-request page.
func (a *AuthController) PasswordResetForm(ctx *gin.Context) {
	utils.Render(ctx, http.StatusOK, "password_reset.html", gin.H{})
}

// PasswordReset emails a one-time code to the account's address. The
// response is identical whether or not the email is registered.
func (a *AuthController) PasswordReset(ctx *gin.Context) {
	email := strings.TrimSpace(ctx.PostForm("email"))
	if email == "" {
		utils.Render(ctx, http.StatusBadRequest, "password_reset.html", gin.H{
			"Error": "email is required",
		})
		return
	}

	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err == nil {
		code := utils.GenerateResetCode(6)
		body := fmt.Sprintf("Your Yatube password reset code is: %s\nIt is valid for 10 minutes.", code)
		if err := utils.SendMail(email, "Yatube password reset", body); err != nil {
			if utils.Sugar != nil {
				utils.Sugar.Warnf("password reset mail to %s failed: %v", email, err)
			}
		} else {
			utils.SaveResetCode(email, code, 10*time.Minute)
		}
	}

	utils.Render(ctx, http.StatusOK, "password_reset.html", gin.H{"Sent": true})
}

// PasswordResetConfirmForm renders the code + new password page.
func (a *AuthController) PasswordResetConfirmForm(ctx *gin.Context) {
	utils.Render(ctx, http.StatusOK, "password_reset_confirm.html", gin.H{
		"Email": ctx.Query("email"),
	})
}

// PasswordResetConfirm consumes the emailed code and sets the new
// password, then sends the user to the login page.
func (a *AuthController) PasswordResetConfirm(ctx *gin.Context) {
	email := strings.TrimSpace(ctx.PostForm("email"))
	code := strings.TrimSpace(ctx.PostForm("code"))
	password := ctx.PostForm("password")
	confirm := ctx.PostForm("confirm")

	formErrs := map[string]string{}
	if len(password) < 6 || len(password) > 64 {
		formErrs["password"] = "password must be 6-64 characters"
	}
	if password != confirm {
		formErrs["confirm"] = "passwords do not match"
	}
	if len(formErrs) == 0 && !utils.VerifyAndConsumeResetCode(email, code) {
		formErrs["code"] = "code is invalid or expired"
	}
	if len(formErrs) > 0 {
		utils.Render(ctx, http.StatusBadRequest, "password_reset_confirm.html", gin.H{
			"Errors": formErrs,
			"Email":  email,
		})
		return
	}

	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(ctx)
			return
		}
		ctx.String(http.StatusInternalServerError, "failed to load user")
		return
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		ctx.String(http.StatusInternalServerError, "failed to hash password")
		return
	}
	if err := a.db.Model(&user).Update("password_hash", hash).Error; err != nil {
		ctx.String(http.StatusInternalServerError, "failed to update password")
		return
	}
	ctx.Redirect(http.StatusFound, middleware.LoginPath)
}

// startSession issues a token and sets the session cookie.
func (a *AuthController) startSession(ctx *gin.Context, user *models.User) {
	token, err := utils.GenerateToken(user.ID, user.Username, utils.SessionDuration)
	if err != nil {
		ctx.String(http.StatusInternalServerError, "failed to generate token")
		return
	}
	ctx.SetCookie(utils.SessionCookie, token, int(utils.SessionDuration.Seconds()), "/", "", false, true)
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}

func validUsername(s string) bool {
	for _, r := range s {
		if r == '-' || r == '_' {
			continue
		}
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		return false
	}
	return true
}
