package bookmark

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Bookmark is the domain model for a saved article. Optional fields are
// stored as absent, never as placeholder strings.
type Bookmark struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"userId"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	URLToImage  *string    `json:"urlToImage,omitempty"`
	Author      *string    `json:"author,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Description *string    `json:"description,omitempty"`
	Content     *string    `json:"content,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Dto is the payload for creating a bookmark
type Dto struct {
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	URLToImage  *string    `json:"urlToImage"`
	Author      *string    `json:"author"`
	Category    *string    `json:"category"`
	Description *string    `json:"description"`
	Content     *string    `json:"content"`
	PublishedAt *time.Time `json:"publishedAt"`
}

// Validate runs the bookmark validation rules
func (d Dto) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Title, validation.Required.Error("Title is required")),
		validation.Field(&d.URL, validation.Required.Error("Url is required"), is.URL.Error("Url must be a valid URL")),
		validation.Field(&d.URLToImage, is.URL.Error("UrlToImage must be a valid URL")),
	)
}
