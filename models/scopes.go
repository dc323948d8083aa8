package models

import "gorm.io/gorm"

// Scope helpers build the four feed sources. Each returns an already
// ordered (newest first) slice that the paginator slices afterwards;
// filtering never happens inside the paginator itself.

// AllPosts returns every post, newest first, with author and group loaded.
func AllPosts(db *gorm.DB) ([]Post, error) {
	var posts []Post
	err := db.Preload("User").Preload("Group").
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	return posts, err
}

// PostsByGroup returns the posts assigned to one group, newest first.
func PostsByGroup(db *gorm.DB, groupID uint) ([]Post, error) {
	var posts []Post
	err := db.Preload("User").
		Where("group_id = ?", groupID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	return posts, err
}

// PostsByAuthor returns the posts written by one user, newest first.
func PostsByAuthor(db *gorm.DB, userID uint) ([]Post, error) {
	var posts []Post
	err := db.Preload("User").Preload("Group").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	return posts, err
}

// FollowFeedPosts returns posts by every author the user follows,
// newest first. An empty follow set yields an empty slice, not an error.
func FollowFeedPosts(db *gorm.DB, userID uint) ([]Post, error) {
	var posts []Post
	sub := db.Model(&Follow{}).Select("author_id").Where("user_id = ?", userID)
	err := db.Preload("User").Preload("Group").
		Where("user_id IN (?)", sub).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	return posts, err
}

// GroupBySlug looks a group up by its slug. Unknown slugs surface
// gorm.ErrRecordNotFound so the boundary can answer 404.
func GroupBySlug(db *gorm.DB, slug string) (*Group, error) {
	var group Group
	if err := db.Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// UserByUsername looks a user up by username; unknown names surface
// gorm.ErrRecordNotFound.
func UserByUsername(db *gorm.DB, username string) (*User, error) {
	var user User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// IsFollowing reports whether follower already has an edge to author.
func IsFollowing(db *gorm.DB, followerID, authorID uint) (bool, error) {
	var n int64
	err := db.Model(&Follow{}).
		Where("user_id = ? AND author_id = ?", followerID, authorID).
		Count(&n).Error
	return n > 0, err
}
