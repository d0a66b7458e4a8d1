package model

import "time"

// Topic ownership is the creator's username, compared by string equality.
type Topic struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	OwnerUsername string    `json:"owner_username"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Post struct {
	ID             int64     `json:"id"`
	TopicID        int64     `json:"topic_id"`
	AuthorUsername string    `json:"author_username"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type TopicQuery struct {
	Owner string
	Page  int
	Limit int
}

type TopicListData struct {
	Topics []Topic `json:"topics"`
}

type PostListData struct {
	Posts []Post `json:"posts"`
}
