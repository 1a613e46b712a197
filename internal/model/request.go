package model

import "time"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ArticleRequest struct {
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
}

type VideoRequest struct {
	Title           string `json:"title"`
	URL             string `json:"url"`
	DurationSeconds *int64 `json:"duration_seconds"`
}

type PodcastRequest struct {
	Title    string   `json:"title"`
	AudioURL string   `json:"audio_url"`
	Episodes []string `json:"episodes"`
}

type CommentRequest struct {
	ContentID       *int64 `json:"content_id"`
	ContentType     string `json:"content_type"`
	Text            string `json:"text"`
	ParentCommentID string `json:"parent_comment_id,omitempty"`
}

type CommentUpdateRequest struct {
	Text string `json:"text"`
}

type AuditActor struct {
	HolderID int64  `json:"holder_id,omitempty"`
	Username string `json:"username,omitempty"`
	Role     Role   `json:"role,omitempty"`
	IP       string `json:"ip,omitempty"`
}

type AuditEntry struct {
	Action     string     `json:"action"`
	OccurredAt time.Time  `json:"occurred_at"`
	Actor      AuditActor `json:"actor"`
	Status     string     `json:"status"`
	Resource   string     `json:"resource,omitempty"`
	Error      string     `json:"error,omitempty"`
}

type AuditQuery struct {
	Action   string
	HolderID int64
	Status   string
	Limit    int
}
