package feed

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Olga07122007/yatube-project/models"
)

func makePosts(n int) []models.Post {
	posts := make([]models.Post, n)
	for i := 0; i < n; i++ {
		posts[i] = models.Post{ID: uint(n - i), Text: fmt.Sprintf("post-%d", n-i)}
	}
	return posts
}

func TestParsePage(t *testing.T) {
	assert.Equal(t, 1, ParsePage(""))
	assert.Equal(t, 1, ParsePage("abc"))
	assert.Equal(t, 1, ParsePage("0"))
	assert.Equal(t, 1, ParsePage("-3"))
	assert.Equal(t, 7, ParsePage("7"))
}

func TestPaginateFirstPageIsFull(t *testing.T) {
	for n := 1; n <= PageSize; n++ {
		page := Paginate(makePosts(n), 1)
		assert.Len(t, page.Posts, n)
		assert.Equal(t, 1, page.Number)
		assert.Equal(t, 1, page.TotalPages)
	}
}

func TestPaginateNeverExceedsPageSize(t *testing.T) {
	posts := makePosts(35)
	for p := 1; p <= 6; p++ {
		page := Paginate(posts, p)
		assert.LessOrEqual(t, len(page.Posts), PageSize)
	}
}

func TestPaginateThirteenPosts(t *testing.T) {
	posts := makePosts(13)

	first := Paginate(posts, 1)
	assert.Len(t, first.Posts, 10)
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, 2, first.TotalPages)
	assert.Equal(t, 13, first.TotalCount)
	assert.False(t, first.HasPrev())
	assert.True(t, first.HasNext())

	second := Paginate(posts, 2)
	assert.Len(t, second.Posts, 3)
	assert.Equal(t, 2, second.Number)
	assert.True(t, second.HasPrev())
	assert.False(t, second.HasNext())

	// Out-of-range pages clamp to the last page instead of failing.
	clamped := Paginate(posts, 3)
	assert.Equal(t, second.Number, clamped.Number)
	assert.Equal(t, second.Posts, clamped.Posts)
}

func TestPaginateEmptyCollection(t *testing.T) {
	page := Paginate(nil, 1)
	assert.Empty(t, page.Posts)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 0, page.TotalCount)
	assert.False(t, page.HasPrev())
	assert.False(t, page.HasNext())

	// Any requested page over an empty collection is still page 1.
	assert.Equal(t, 1, Paginate(nil, 9).Number)
}

func TestPaginateOrderPreserved(t *testing.T) {
	posts := makePosts(13)
	first := Paginate(posts, 1)
	assert.Equal(t, posts[0].ID, first.Posts[0].ID)
	second := Paginate(posts, 2)
	assert.Equal(t, posts[10].ID, second.Posts[0].ID)
}
