package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-media-cms/internal/model"
	"go-media-cms/pkg/apierror"
)

type memoryCommentStore struct {
	mu       sync.Mutex
	comments map[string]model.Comment
}

func newMemoryCommentStore() *memoryCommentStore {
	return &memoryCommentStore{comments: map[string]model.Comment{}}
}

func (s *memoryCommentStore) Create(_ context.Context, c model.Comment) (model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.UpdatedAt = c.CreatedAt
	s.comments[c.ID] = c
	return c, nil
}

func (s *memoryCommentStore) FindByID(_ context.Context, id string) (model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return model.Comment{}, model.ErrCommentNotFound
	}
	return c, nil
}

func (s *memoryCommentStore) ListByContent(_ context.Context, ct model.ContentType, id int64) ([]model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Comment, 0)
	for _, c := range s.comments {
		if c.ContentType == ct && c.ContentID == id {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memoryCommentStore) UpdateText(_ context.Context, id, text string) (model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return model.Comment{}, model.ErrCommentNotFound
	}
	c.Text = text
	s.comments[id] = c
	return c, nil
}

func (s *memoryCommentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return model.ErrCommentNotFound
	}
	s.deleteTree(id)
	return nil
}

func (s *memoryCommentStore) deleteTree(id string) {
	delete(s.comments, id)
	for childID, c := range s.comments {
		if c.ParentID != nil && *c.ParentID == id {
			s.deleteTree(childID)
		}
	}
}

func newCommentFixture() (*CommentService, *memoryCommentStore) {
	store := newMemoryCommentStore()
	svc := NewCommentService(store, nil)

	clock := &fakeClock{now: time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)}
	svc.now = func() time.Time {
		clock.Advance(time.Second)
		return clock.Now()
	}
	return svc, store
}

func contentID(id int64) *int64 { return &id }

func TestCommentService_ThreadedReplies(t *testing.T) {
	svc, _ := newCommentFixture()
	ctx := context.Background()

	root, err := svc.Create(ctx, userPrincipal, model.CommentRequest{ContentID: contentID(5), ContentType: "article", Text: "first"}, "")
	require.NoError(t, err)
	assert.Equal(t, "alice", root.Author)
	assert.Equal(t, model.ContentTypeArticle, root.ContentType)

	reply, err := svc.Create(ctx, adminPrincipal, model.CommentRequest{ContentID: contentID(5), ContentType: "ARTICLE", Text: "reply", ParentCommentID: root.ID}, "")
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, root.ID, *reply.ParentID)

	_, err = svc.Create(ctx, userPrincipal, model.CommentRequest{ContentID: contentID(5), ContentType: "ARTICLE", Text: "nested", ParentCommentID: reply.ID}, "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, userPrincipal, model.CommentRequest{ContentID: contentID(5), ContentType: "ARTICLE", Text: "second"}, "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, userPrincipal, model.CommentRequest{ContentID: contentID(6), ContentType: "ARTICLE", Text: "elsewhere"}, "")
	require.NoError(t, err)

	threads, err := svc.ListByContent(ctx, "ARTICLE", 5)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, "first", threads[0].Text)
	require.Len(t, threads[0].Replies, 1)
	assert.Equal(t, "reply", threads[0].Replies[0].Text)
	require.Len(t, threads[0].Replies[0].Replies, 1)
	assert.Equal(t, "nested", threads[0].Replies[0].Replies[0].Text)
	assert.Equal(t, "second", threads[1].Text)

	got, err := svc.Get(ctx, reply.ID)
	require.NoError(t, err)
	require.Len(t, got.Replies, 1)
}

func TestCommentService_CreateValidation(t *testing.T) {
	svc, _ := newCommentFixture()
	ctx := context.Background()
	var apiErr *apierror.APIError

	_, err := svc.Create(ctx, nil, model.CommentRequest{ContentID: contentID(1), ContentType: "ARTICLE", Text: "x"}, "")
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = svc.Create(ctx, userPrincipal, model.CommentRequest{ContentType: "ARTICLE", Text: "x"}, "")
	assert.ErrorAs(t, err, &apiErr)

	_, err = svc.Create(ctx, userPrincipal, model.CommentRequest{ContentID: contentID(1), ContentType: "BOOK", Text: "x"}, "")
	assert.ErrorAs(t, err, &apiErr)

	_, err = svc.Create(ctx, userPrincipal, model.CommentRequest{ContentID: contentID(1), ContentType: "VIDEO", Text: " "}, "")
	assert.ErrorAs(t, err, &apiErr)

	_, err = svc.Create(ctx, userPrincipal, model.CommentRequest{ContentID: contentID(1), ContentType: "VIDEO", Text: "x", ParentCommentID: "not-a-uuid"}, "")
	assert.ErrorIs(t, err, model.ErrCommentNotFound)

	parent, err := svc.Create(ctx, userPrincipal, model.CommentRequest{ContentID: contentID(1), ContentType: "VIDEO", Text: "x"}, "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, userPrincipal, model.CommentRequest{ContentID: contentID(2), ContentType: "VIDEO", Text: "x", ParentCommentID: parent.ID}, "")
	assert.ErrorAs(t, err, &apiErr)
}

func TestCommentService_AuthorOrAdminMayModify(t *testing.T) {
	svc, store := newCommentFixture()
	ctx := context.Background()
	stranger := &model.Principal{Identity: "mallory", HolderID: 3, Role: model.RoleUser}

	c, err := svc.Create(ctx, userPrincipal, model.CommentRequest{ContentID: contentID(1), ContentType: "PODCAST", Text: "orig"}, "")
	require.NoError(t, err)

	_, err = svc.Update(ctx, stranger, c.ID, model.CommentUpdateRequest{Text: "hijack"}, "")
	assert.ErrorIs(t, err, model.ErrForbidden)
	_, err = svc.Update(ctx, nil, c.ID, model.CommentUpdateRequest{Text: "hijack"}, "")
	assert.ErrorIs(t, err, model.ErrForbidden)

	updated, err := svc.Update(ctx, userPrincipal, c.ID, model.CommentUpdateRequest{Text: "edited"}, "")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)

	assert.ErrorIs(t, svc.Delete(ctx, stranger, c.ID, ""), model.ErrForbidden)

	_, err = svc.Create(ctx, stranger, model.CommentRequest{ContentID: contentID(1), ContentType: "PODCAST", Text: "reply", ParentCommentID: c.ID}, "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, adminPrincipal, c.ID, ""))
	assert.Empty(t, store.comments)

	assert.ErrorIs(t, svc.Delete(ctx, adminPrincipal, c.ID, ""), model.ErrCommentNotFound)
}

func TestCommentService_AuditRecordsClientIP(t *testing.T) {
	rec := &recordingAudit{}
	svc := NewCommentService(newMemoryCommentStore(), NewAuditService(rec))
	ctx := context.Background()

	c, err := svc.Create(ctx, userPrincipal, model.CommentRequest{ContentID: contentID(3), ContentType: "ARTICLE", Text: "hi"}, "203.0.113.7")
	require.NoError(t, err)
	_, err = svc.Update(ctx, userPrincipal, c.ID, model.CommentUpdateRequest{Text: "edited"}, "203.0.113.8")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, adminPrincipal, c.ID, "198.51.100.1"))

	entries, err := rec.Query(ctx, model.AuditQuery{})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "comment.create", entries[0].Action)
	assert.Equal(t, "203.0.113.7", entries[0].Actor.IP)
	assert.Equal(t, "alice", entries[0].Actor.Username)
	assert.Equal(t, "203.0.113.8", entries[1].Actor.IP)
	assert.Equal(t, "comment.delete", entries[2].Action)
	assert.Equal(t, "198.51.100.1", entries[2].Actor.IP)
	assert.Equal(t, model.RoleAdmin, entries[2].Actor.Role)
}
