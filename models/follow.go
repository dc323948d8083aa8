package models

import "time"

// Follow is a directed edge from a follower to an author. The composite
// unique index keeps the pair deduplicated regardless of how often the
// toggle endpoints fire.
type Follow struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_follow_pair,unique" json:"user_id"`
	AuthorID  uint      `gorm:"not null;index:idx_follow_pair,unique" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the relation name plural like the rest of the schema.
func (Follow) TableName() string { return "follows" }
