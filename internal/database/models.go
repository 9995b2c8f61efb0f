package database

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the database row for the users table
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID              int64     `bun:"id,pk,autoincrement"`
	Email           string    `bun:"email,notnull,unique"`
	PasswordHash    string    `bun:"password_hash,notnull"`
	FirstName       string    `bun:"first_name,notnull"`
	LastName        string    `bun:"last_name,notnull"`
	IsActive        bool      `bun:"is_active,notnull,default:false"`
	ActivationToken *string   `bun:"activation_token"`
	ResetToken      *string   `bun:"reset_token"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Bookmark is the database row for the bookmarks table
type Bookmark struct {
	bun.BaseModel `bun:"table:bookmarks,alias:b"`

	ID          int64      `bun:"id,pk,autoincrement"`
	UserID      int64      `bun:"user_id,notnull"`
	Title       string     `bun:"title,notnull"`
	URL         string     `bun:"url,notnull"`
	URLToImage  *string    `bun:"url_to_image"`
	Author      *string    `bun:"author"`
	Category    *string    `bun:"category"`
	Description *string    `bun:"description"`
	Content     *string    `bun:"content"`
	PublishedAt *time.Time `bun:"published_at"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp"`
}
