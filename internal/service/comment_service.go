package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-media-cms/internal/model"
	"go-media-cms/pkg/apierror"
)

type CommentStore interface {
	Create(ctx context.Context, c model.Comment) (model.Comment, error)
	FindByID(ctx context.Context, id string) (model.Comment, error)
	ListByContent(ctx context.Context, contentType model.ContentType, contentID int64) ([]model.Comment, error)
	UpdateText(ctx context.Context, id, text string) (model.Comment, error)
	Delete(ctx context.Context, id string) error
}

// CommentService manages threaded comments. Any signed-in principal may
// comment; only the author or an ADMIN may edit or remove a comment.
type CommentService struct {
	comments CommentStore
	audit    *AuditService
	now      func() time.Time
}

func NewCommentService(comments CommentStore, audit *AuditService) *CommentService {
	return &CommentService{comments: comments, audit: audit, now: time.Now}
}

func (s *CommentService) Create(ctx context.Context, p *model.Principal, req model.CommentRequest, ip string) (model.Comment, error) {
	if p == nil {
		return model.Comment{}, model.ErrForbidden
	}
	if req.ContentID == nil {
		return model.Comment{}, apierror.BadRequest("content_id is required", "content_id")
	}
	contentType, ok := model.ParseContentType(req.ContentType)
	if !ok {
		return model.Comment{}, apierror.BadRequest("content_type must be ARTICLE, VIDEO or PODCAST", req.ContentType)
	}
	if err := required("text", req.Text); err != nil {
		return model.Comment{}, err
	}

	comment := model.Comment{
		ID:          uuid.NewString(),
		ContentID:   *req.ContentID,
		ContentType: contentType,
		Text:        req.Text,
		Author:      p.Identity,
		CreatedAt:   s.now().UTC(),
	}

	if parentID := strings.TrimSpace(req.ParentCommentID); parentID != "" {
		parent, err := s.find(ctx, parentID)
		if err != nil {
			return model.Comment{}, err
		}
		if parent.ContentID != comment.ContentID || parent.ContentType != comment.ContentType {
			return model.Comment{}, apierror.BadRequest("parent comment belongs to different content", parentID)
		}
		comment.ParentID = &parent.ID
	}

	created, err := s.comments.Create(ctx, comment)
	if err != nil {
		return model.Comment{}, err
	}

	s.audit.Log(ctx, "comment.create", ActorFor(p, ip), AuditStatusSuccess, "comments/"+created.ID, "")
	return created, nil
}

// Get returns the comment with its full reply tree.
func (s *CommentService) Get(ctx context.Context, id string) (model.Comment, error) {
	comment, err := s.find(ctx, id)
	if err != nil {
		return model.Comment{}, err
	}

	all, err := s.comments.ListByContent(ctx, comment.ContentType, comment.ContentID)
	if err != nil {
		return model.Comment{}, err
	}

	children := groupByParent(all)
	return attachReplies(comment, children), nil
}

// ListByContent returns the top-level comments of a content item, each with
// its nested replies.
func (s *CommentService) ListByContent(ctx context.Context, contentType string, contentID int64) ([]model.Comment, error) {
	ct, ok := model.ParseContentType(contentType)
	if !ok {
		return nil, apierror.BadRequest("contentType must be ARTICLE, VIDEO or PODCAST", contentType)
	}

	all, err := s.comments.ListByContent(ctx, ct, contentID)
	if err != nil {
		return nil, err
	}

	return buildThreads(all), nil
}

func (s *CommentService) Update(ctx context.Context, p *model.Principal, id string, req model.CommentUpdateRequest, ip string) (model.Comment, error) {
	if err := required("text", req.Text); err != nil {
		return model.Comment{}, err
	}

	existing, err := s.find(ctx, id)
	if err != nil {
		return model.Comment{}, err
	}
	if !canModify(p, existing) {
		return model.Comment{}, model.ErrForbidden
	}

	updated, err := s.comments.UpdateText(ctx, existing.ID, req.Text)
	if err != nil {
		return model.Comment{}, err
	}

	s.audit.Log(ctx, "comment.update", ActorFor(p, ip), AuditStatusSuccess, "comments/"+existing.ID, "")
	return updated, nil
}

// Delete removes the comment together with all of its replies.
func (s *CommentService) Delete(ctx context.Context, p *model.Principal, id string, ip string) error {
	existing, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(p, existing) {
		return model.ErrForbidden
	}

	if err := s.comments.Delete(ctx, existing.ID); err != nil {
		return err
	}

	s.audit.Log(ctx, "comment.delete", ActorFor(p, ip), AuditStatusSuccess, "comments/"+existing.ID, "")
	return nil
}

// find rejects ids that are not UUIDs before they reach the database.
func (s *CommentService) find(ctx context.Context, id string) (model.Comment, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return model.Comment{}, model.ErrCommentNotFound
	}
	return s.comments.FindByID(ctx, parsed.String())
}

func canModify(p *model.Principal, c model.Comment) bool {
	if p == nil {
		return false
	}
	return p.HasRole(model.RoleAdmin) || p.Identity == c.Author
}

func groupByParent(all []model.Comment) map[string][]model.Comment {
	children := make(map[string][]model.Comment)
	for _, c := range all {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c)
		}
	}
	return children
}

func attachReplies(c model.Comment, children map[string][]model.Comment) model.Comment {
	kids := children[c.ID]
	if len(kids) == 0 {
		return c
	}
	c.Replies = make([]model.Comment, 0, len(kids))
	for _, kid := range kids {
		c.Replies = append(c.Replies, attachReplies(kid, children))
	}
	return c
}

func buildThreads(all []model.Comment) []model.Comment {
	children := groupByParent(all)
	roots := make([]model.Comment, 0)
	for _, c := range all {
		if c.ParentID == nil {
			roots = append(roots, attachReplies(c, children))
		}
	}
	return roots
}
