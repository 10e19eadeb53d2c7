package forum

import (
	"time"

	"github.com/pcacademy/backend/core"
)

type (
	Reply struct {
		ID          string    `json:"id"`
		Content     string    `json:"content"`
		Author      string    `json:"author"`
		AuthorEmail string    `json:"authorEmail"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	// Post is a discussion thread; replies are embedded in the post document.
	Post struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		Content     string    `json:"content"`
		Author      string    `json:"author"`
		AuthorEmail string    `json:"authorEmail"`
		Replies     []Reply   `json:"replies"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	NewPost struct {
		Title   string `json:"title" validate:"required,max=200"`
		Content string `json:"content" validate:"required,max=5000"`
	}

	NewReply struct {
		Content string `json:"content" validate:"required,max=5000"`
	}
)

func (np *NewPost) Validate() error {
	np.Title = core.CleanString(np.Title)
	np.Content = core.CleanString(np.Content)
	return core.Validate.Struct(np)
}

func (nr *NewReply) Validate() error {
	nr.Content = core.CleanString(nr.Content)
	return core.Validate.Struct(nr)
}
