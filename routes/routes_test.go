package routes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Olga07122007/yatube-project/cache"
	"github.com/Olga07122007/yatube-project/config"
	"github.com/Olga07122007/yatube-project/models"
	"github.com/Olga07122007/yatube-project/utils"
)

func TestMain(m *testing.M) {
	tmp := os.TempDir()
	os.Setenv("JWT_SECRET", "routes-test-secret")
	os.Setenv("GIN_MODE", "test")
	os.Setenv("TEMPLATE_GLOB", "../templates/*.html")
	os.Setenv("RATE_LIMIT_PER_MINUTE", "100000")
	os.Setenv("GIN_PATH", filepath.Join(tmp, "yatube-test-gin.log"))
	os.Setenv("LOG_PATH", filepath.Join(tmp, "yatube-test-app.log"))
	os.Setenv("UPLOAD_DIR", filepath.Join(tmp, "yatube-test-uploads"))
	os.Setenv("ADMIN_USERNAMES", "admin")
	config.Load()
	os.Exit(m.Run())
}

type testEnv struct {
	db     *gorm.DB
	store  *cache.Memory
	router http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Group{}, &models.Post{},
		&models.Comment{}, &models.Follow{},
	))
	store := cache.NewMemory()
	return &testEnv{db: db, store: store, router: SetupRouter(db, store)}
}

func (e *testEnv) createUser(t *testing.T, username, password string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{Username: username, Email: username + "@example.com", PasswordHash: hash}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) createPost(t *testing.T, author *models.User, text string, group *models.Group) *models.Post {
	t.Helper()
	p := &models.Post{UserID: author.ID, Text: text}
	if group != nil {
		p.GroupID = &group.ID
	}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func sessionCookie(t *testing.T, user *models.User) *http.Cookie {
	t.Helper()
	token, err := utils.GenerateToken(user.ID, user.Username, utils.SessionDuration)
	require.NoError(t, err)
	return &http.Cookie{Name: utils.SessionCookie, Value: token}
}

func (e *testEnv) get(t *testing.T, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestIndexCachedForTTL(t *testing.T) {
	env := newTestEnv(t)
	leo := env.createUser(t, "leo", "password1")
	env.createPost(t, leo, "the first post", nil)

	w := env.get(t, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "the first post")

	// A post written after the page was cached stays invisible on the
	// index until the entry expires or is cleared.
	env.createPost(t, leo, "the second post", nil)
	w = env.get(t, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "the second post")

	// The author page is never cached, so it shows the post right away.
	w = env.get(t, "/profile/leo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "the second post")

	require.NoError(t, env.store.Clear(context.Background()))
	w = env.get(t, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "the second post")
}

func TestIndexCacheExpires(t *testing.T) {
	env := newTestEnv(t)
	leo := env.createUser(t, "leo", "password1")
	env.createPost(t, leo, "the first post", nil)

	now := time.Now()
	env.store.SetClock(func() time.Time { return now })

	env.get(t, "/", nil)
	env.createPost(t, leo, "the second post", nil)

	now = now.Add(19 * time.Second)
	w := env.get(t, "/", nil)
	assert.NotContains(t, w.Body.String(), "the second post", "still inside the 20s window")

	now = now.Add(2 * time.Second)
	w = env.get(t, "/", nil)
	assert.Contains(t, w.Body.String(), "the second post", "entry expired")
}

func TestIndexPagination(t *testing.T) {
	env := newTestEnv(t)
	leo := env.createUser(t, "leo", "password1")
	base := time.Now().Add(-time.Hour)
	for i := 1; i <= 13; i++ {
		p := &models.Post{
			UserID:    leo.ID,
			Text:      fmt.Sprintf("marker-%02d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, env.db.Create(p).Error)
	}

	w := env.get(t, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "marker-13", "newest post on page one")
	assert.Contains(t, body, "marker-04")
	assert.NotContains(t, body, "marker-03", "page one holds ten posts")

	w = env.get(t, "/?page=2", nil)
	body = w.Body.String()
	assert.Contains(t, body, "marker-03")
	assert.Contains(t, body, "marker-01")
	assert.NotContains(t, body, "marker-04")

	// Out-of-range pages clamp to the last page instead of erroring.
	w = env.get(t, "/?page=99", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "marker-01")

	w = env.get(t, "/?page=bogus", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "marker-13", "bad page value falls back to page one")
}

func TestGroupPage(t *testing.T) {
	env := newTestEnv(t)
	leo := env.createUser(t, "leo", "password1")
	group := &models.Group{Title: "Cats", Slug: "cats", Description: "about cats"}
	require.NoError(t, env.db.Create(group).Error)
	env.createPost(t, leo, "a cat post", group)
	env.createPost(t, leo, "an unsorted post", nil)

	w := env.get(t, "/group/cats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "a cat post")
	assert.NotContains(t, w.Body.String(), "an unsorted post")

	w = env.get(t, "/group/dogs", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	w := env.get(t, "/profile/nobody", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnauthenticatedWriteRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/create", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login?next=%2Fcreate", w.Header().Get("Location"))

	w = env.get(t, "/follow", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login?next=%2Ffollow", w.Header().Get("Location"))
}

func TestPostCreate(t *testing.T) {
	env := newTestEnv(t)
	leo := env.createUser(t, "leo", "password1")
	group := &models.Group{Title: "Cats", Slug: "cats"}
	require.NoError(t, env.db.Create(group).Error)
	cookie := sessionCookie(t, leo)

	w := env.postForm(t, "/create", url.Values{
		"text":  {"a brand new post"},
		"group": {fmt.Sprintf("%d", group.ID)},
	}, cookie)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/leo", w.Header().Get("Location"))

	var post models.Post
	require.NoError(t, env.db.First(&post).Error)
	assert.Equal(t, "a brand new post", post.Text)
	require.NotNil(t, post.GroupID)
	assert.Equal(t, group.ID, *post.GroupID)

	// Empty text re-renders the form instead of writing.
	w = env.postForm(t, "/create", url.Values{"text": {"   "}}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var n int64
	env.db.Model(&models.Post{}).Count(&n)
	assert.EqualValues(t, 1, n)
}

func TestPostEditOnlyAuthor(t *testing.T) {
	env := newTestEnv(t)
	leo := env.createUser(t, "leo", "password1")
	anna := env.createUser(t, "anna", "password1")
	post := env.createPost(t, leo, "original text", nil)
	detail := fmt.Sprintf("/posts/%d", post.ID)

	// Non-authors are redirected to the detail page without an error
	// and without any change to the post.
	w := env.postForm(t, detail+"/edit", url.Values{"text": {"hijacked"}}, sessionCookie(t, anna))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))

	var got models.Post
	require.NoError(t, env.db.First(&got, post.ID).Error)
	assert.Equal(t, "original text", got.Text)

	w = env.get(t, detail+"/edit", sessionCookie(t, anna))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))

	w = env.postForm(t, detail+"/edit", url.Values{"text": {"edited text"}}, sessionCookie(t, leo))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))
	require.NoError(t, env.db.First(&got, post.ID).Error)
	assert.Equal(t, "edited text", got.Text)
}

func TestAddComment(t *testing.T) {
	env := newTestEnv(t)
	leo := env.createUser(t, "leo", "password1")
	anna := env.createUser(t, "anna", "password1")
	post := env.createPost(t, leo, "commented post", nil)
	detail := fmt.Sprintf("/posts/%d", post.ID)

	w := env.postForm(t, detail+"/comment", url.Values{"text": {"nice one"}}, sessionCookie(t, anna))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))

	var comments []models.Comment
	require.NoError(t, env.db.Find(&comments).Error)
	require.Len(t, comments, 1)
	assert.Equal(t, anna.ID, comments[0].UserID)
	assert.Equal(t, "nice one", comments[0].Text)

	w = env.get(t, detail, nil)
	assert.Contains(t, w.Body.String(), "nice one")

	// Anonymous comment attempts go to the login page, nothing is stored.
	w = env.postForm(t, detail+"/comment", url.Values{"text": {"anon"}}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	var n int64
	env.db.Model(&models.Comment{}).Count(&n)
	assert.EqualValues(t, 1, n)
}

func TestFollowIdempotent(t *testing.T) {
	env := newTestEnv(t)
	reader := env.createUser(t, "reader", "password1")
	env.createUser(t, "leo", "password1")
	cookie := sessionCookie(t, reader)

	for i := 0; i < 2; i++ {
		w := env.get(t, "/profile/leo/follow", cookie)
		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/profile/leo", w.Header().Get("Location"))
	}
	var n int64
	env.db.Model(&models.Follow{}).Count(&n)
	assert.EqualValues(t, 1, n, "repeated follows keep a single edge")

	// Self-follow is a no-op redirect.
	w := env.get(t, "/profile/reader/follow", cookie)
	require.Equal(t, http.StatusFound, w.Code)
	env.db.Model(&models.Follow{}).Where("user_id = ? AND author_id = ?", reader.ID, reader.ID).Count(&n)
	assert.Zero(t, n)

	w = env.get(t, "/profile/ghost/follow", cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFollowFeed(t *testing.T) {
	env := newTestEnv(t)
	reader := env.createUser(t, "reader", "password1")
	leo := env.createUser(t, "leo", "password1")
	anna := env.createUser(t, "anna", "password1")
	env.createPost(t, leo, "a post by leo", nil)
	env.createPost(t, anna, "a post by anna", nil)
	cookie := sessionCookie(t, reader)

	w := env.get(t, "/follow", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "a post by leo")

	env.get(t, "/profile/leo/follow", cookie)
	w = env.get(t, "/follow", cookie)
	assert.Contains(t, w.Body.String(), "a post by leo")
	assert.NotContains(t, w.Body.String(), "a post by anna")

	// New posts by a followed author appear immediately, this feed is
	// not cached.
	env.createPost(t, leo, "a fresh post by leo", nil)
	w = env.get(t, "/follow", cookie)
	assert.Contains(t, w.Body.String(), "a fresh post by leo")

	env.get(t, "/profile/leo/unfollow", cookie)
	w = env.get(t, "/follow", cookie)
	assert.NotContains(t, w.Body.String(), "a post by leo")

	// Unfollowing again is harmless.
	w = env.get(t, "/profile/leo/unfollow", cookie)
	require.Equal(t, http.StatusFound, w.Code)
	var n int64
	env.db.Model(&models.Follow{}).Count(&n)
	assert.Zero(t, n)
}

func TestSignupLoginLogout(t *testing.T) {
	env := newTestEnv(t)

	w := env.postForm(t, "/auth/signup", url.Values{
		"username": {"newcomer"},
		"email":    {"newcomer@example.com"},
		"password": {"password1"},
		"confirm":  {"password1"},
	}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	require.NotEmpty(t, w.Result().Cookies(), "signup starts a session")

	var user models.User
	require.NoError(t, env.db.Where("username = ?", "newcomer").First(&user).Error)
	assert.NotEqual(t, "password1", user.PasswordHash)

	// Duplicate username is rejected.
	w = env.postForm(t, "/auth/signup", url.Values{
		"username": {"newcomer"},
		"email":    {"other@example.com"},
		"password": {"password1"},
		"confirm":  {"password1"},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.postForm(t, "/auth/login", url.Values{
		"username": {"newcomer"},
		"password": {"wrong-password"},
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.postForm(t, "/auth/login", url.Values{
		"username": {"newcomer"},
		"password": {"password1"},
		"next":     {"/create"},
	}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/create", w.Header().Get("Location"))

	var token string
	for _, c := range w.Result().Cookies() {
		if c.Name == utils.SessionCookie {
			token = c.Value
		}
	}
	require.NotEmpty(t, token)
	cookie := &http.Cookie{Name: utils.SessionCookie, Value: token}

	w = env.get(t, "/auth/logout", cookie)
	require.Equal(t, http.StatusFound, w.Code)

	// The blacklisted token no longer authenticates.
	w = env.get(t, "/create", cookie)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login?next=%2Fcreate", w.Header().Get("Location"))
}

func TestLoginNextMustBeLocal(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "leo", "password1")

	w := env.postForm(t, "/auth/login", url.Values{
		"username": {"leo"},
		"password": {"password1"},
		"next":     {"https://evil.example.com/"},
	}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestGroupCreateAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin", "password1")
	leo := env.createUser(t, "leo", "password1")

	w := env.get(t, "/groups/create", sessionCookie(t, leo))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.postForm(t, "/groups/create", url.Values{
		"title":       {"Cats"},
		"slug":        {"cats"},
		"description": {"everything feline"},
	}, sessionCookie(t, leo))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.postForm(t, "/groups/create", url.Values{
		"title":       {"Cats"},
		"slug":        {"cats"},
		"description": {"everything feline"},
	}, sessionCookie(t, admin))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/group/cats", w.Header().Get("Location"))

	var group models.Group
	require.NoError(t, env.db.Where("slug = ?", "cats").First(&group).Error)
	assert.Equal(t, "Cats", group.Title)
}

func TestPostDetailUnknownID(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusNotFound, env.get(t, "/posts/12345", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.get(t, "/posts/abc", nil).Code)
}
