package model

import (
	"strings"
	"time"
)

type Article struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	AuthorID        int64     `json:"author_id"`
	AuthorUsername  string    `json:"author_username"`
	PublicationDate time.Time `json:"publication_date"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Video struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	URL             string    `json:"url"`
	DurationSeconds int64     `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Podcast struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	AudioURL  string    `json:"audio_url"`
	Episodes  []string  `json:"episodes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ContentType string

const (
	ContentTypeArticle ContentType = "ARTICLE"
	ContentTypeVideo   ContentType = "VIDEO"
	ContentTypePodcast ContentType = "PODCAST"
)

func ParseContentType(raw string) (ContentType, bool) {
	ct := ContentType(strings.ToUpper(strings.TrimSpace(raw)))
	switch ct {
	case ContentTypeArticle, ContentTypeVideo, ContentTypePodcast:
		return ct, true
	}
	return "", false
}

type Comment struct {
	ID          string      `json:"id"`
	ContentID   int64       `json:"content_id"`
	ContentType ContentType `json:"content_type"`
	Text        string      `json:"text"`
	Author      string      `json:"author"`
	ParentID    *string     `json:"parent_id,omitempty"`
	Replies     []Comment   `json:"replies,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
