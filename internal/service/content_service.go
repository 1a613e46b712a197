package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go-media-cms/internal/model"
	"go-media-cms/pkg/apierror"
)

type ArticleStore interface {
	Create(ctx context.Context, a model.Article) (model.Article, error)
	FindByID(ctx context.Context, id int64) (model.Article, error)
	List(ctx context.Context) ([]model.Article, error)
	Update(ctx context.Context, a model.Article) (model.Article, error)
	Delete(ctx context.Context, id int64) error
}

type VideoStore interface {
	Create(ctx context.Context, v model.Video) (model.Video, error)
	FindByID(ctx context.Context, id int64) (model.Video, error)
	List(ctx context.Context) ([]model.Video, error)
	Update(ctx context.Context, v model.Video) (model.Video, error)
	Delete(ctx context.Context, id int64) error
}

type PodcastStore interface {
	Create(ctx context.Context, p model.Podcast) (model.Podcast, error)
	FindByID(ctx context.Context, id int64) (model.Podcast, error)
	List(ctx context.Context) ([]model.Podcast, error)
	Update(ctx context.Context, p model.Podcast) (model.Podcast, error)
	Delete(ctx context.Context, id int64) error
}

// ContentService covers articles, videos and podcasts. Reads are public;
// every write requires an ADMIN principal.
type ContentService struct {
	articles ArticleStore
	videos   VideoStore
	podcasts PodcastStore
	audit    *AuditService
	now      func() time.Time
}

func NewContentService(articles ArticleStore, videos VideoStore, podcasts PodcastStore, audit *AuditService) *ContentService {
	return &ContentService{
		articles: articles,
		videos:   videos,
		podcasts: podcasts,
		audit:    audit,
		now:      time.Now,
	}
}

func requireAdmin(p *model.Principal) error {
	if !p.HasRole(model.RoleAdmin) {
		return model.ErrForbidden
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apierror.BadRequest(field+" is required", field)
	}
	return nil
}

func resource(kind string, id int64) string {
	return kind + "/" + strconv.FormatInt(id, 10)
}

// ── Articles ─────────────────────────────────────────────────────

func validateArticle(req model.ArticleRequest) error {
	if err := required("title", req.Title); err != nil {
		return err
	}
	return required("content", req.Content)
}

func (s *ContentService) CreateArticle(ctx context.Context, p *model.Principal, req model.ArticleRequest, ip string) (model.Article, error) {
	if err := requireAdmin(p); err != nil {
		return model.Article{}, err
	}
	if err := validateArticle(req); err != nil {
		return model.Article{}, err
	}

	published := s.now().UTC()
	if req.PublicationDate != nil {
		published = req.PublicationDate.UTC()
	}

	article, err := s.articles.Create(ctx, model.Article{
		Title:           strings.TrimSpace(req.Title),
		Content:         req.Content,
		AuthorID:        p.HolderID,
		PublicationDate: published,
	})
	if err != nil {
		return model.Article{}, err
	}

	s.audit.Log(ctx, "article.create", ActorFor(p, ip), AuditStatusSuccess, resource("articles", article.ID), "")
	return article, nil
}

func (s *ContentService) GetArticle(ctx context.Context, id int64) (model.Article, error) {
	return s.articles.FindByID(ctx, id)
}

func (s *ContentService) ListArticles(ctx context.Context) ([]model.Article, error) {
	return s.articles.List(ctx)
}

// UpdateArticle keeps the stored publication date unless a new one is sent.
func (s *ContentService) UpdateArticle(ctx context.Context, p *model.Principal, id int64, req model.ArticleRequest, ip string) (model.Article, error) {
	if err := requireAdmin(p); err != nil {
		return model.Article{}, err
	}
	if err := validateArticle(req); err != nil {
		return model.Article{}, err
	}

	current, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return model.Article{}, err
	}

	current.Title = strings.TrimSpace(req.Title)
	current.Content = req.Content
	if req.PublicationDate != nil {
		current.PublicationDate = req.PublicationDate.UTC()
	}

	article, err := s.articles.Update(ctx, current)
	if err != nil {
		return model.Article{}, err
	}

	s.audit.Log(ctx, "article.update", ActorFor(p, ip), AuditStatusSuccess, resource("articles", id), "")
	return article, nil
}

func (s *ContentService) DeleteArticle(ctx context.Context, p *model.Principal, id int64, ip string) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	if err := s.articles.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Log(ctx, "article.delete", ActorFor(p, ip), AuditStatusSuccess, resource("articles", id), "")
	return nil
}

// ── Videos ───────────────────────────────────────────────────────

func validateVideo(req model.VideoRequest) error {
	if err := required("title", req.Title); err != nil {
		return err
	}
	if err := required("url", req.URL); err != nil {
		return err
	}
	if req.DurationSeconds == nil {
		return apierror.BadRequest("duration_seconds is required", "duration_seconds")
	}
	if *req.DurationSeconds < 0 {
		return apierror.BadRequest("duration_seconds must not be negative", "duration_seconds")
	}
	return nil
}

func (s *ContentService) CreateVideo(ctx context.Context, p *model.Principal, req model.VideoRequest, ip string) (model.Video, error) {
	if err := requireAdmin(p); err != nil {
		return model.Video{}, err
	}
	if err := validateVideo(req); err != nil {
		return model.Video{}, err
	}

	video, err := s.videos.Create(ctx, model.Video{
		Title:           strings.TrimSpace(req.Title),
		URL:             strings.TrimSpace(req.URL),
		DurationSeconds: *req.DurationSeconds,
	})
	if err != nil {
		return model.Video{}, err
	}

	s.audit.Log(ctx, "video.create", ActorFor(p, ip), AuditStatusSuccess, resource("videos", video.ID), "")
	return video, nil
}

func (s *ContentService) GetVideo(ctx context.Context, id int64) (model.Video, error) {
	return s.videos.FindByID(ctx, id)
}

func (s *ContentService) ListVideos(ctx context.Context) ([]model.Video, error) {
	return s.videos.List(ctx)
}

func (s *ContentService) UpdateVideo(ctx context.Context, p *model.Principal, id int64, req model.VideoRequest, ip string) (model.Video, error) {
	if err := requireAdmin(p); err != nil {
		return model.Video{}, err
	}
	if err := validateVideo(req); err != nil {
		return model.Video{}, err
	}

	video, err := s.videos.Update(ctx, model.Video{
		ID:              id,
		Title:           strings.TrimSpace(req.Title),
		URL:             strings.TrimSpace(req.URL),
		DurationSeconds: *req.DurationSeconds,
	})
	if err != nil {
		return model.Video{}, err
	}

	s.audit.Log(ctx, "video.update", ActorFor(p, ip), AuditStatusSuccess, resource("videos", id), "")
	return video, nil
}

func (s *ContentService) DeleteVideo(ctx context.Context, p *model.Principal, id int64, ip string) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	if err := s.videos.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Log(ctx, "video.delete", ActorFor(p, ip), AuditStatusSuccess, resource("videos", id), "")
	return nil
}

// ── Podcasts ─────────────────────────────────────────────────────

func validatePodcast(req model.PodcastRequest) error {
	if err := required("title", req.Title); err != nil {
		return err
	}
	return required("audio_url", req.AudioURL)
}

func cleanEpisodes(episodes []string) []string {
	out := make([]string, 0, len(episodes))
	for _, e := range episodes {
		if trimmed := strings.TrimSpace(e); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (s *ContentService) CreatePodcast(ctx context.Context, p *model.Principal, req model.PodcastRequest, ip string) (model.Podcast, error) {
	if err := requireAdmin(p); err != nil {
		return model.Podcast{}, err
	}
	if err := validatePodcast(req); err != nil {
		return model.Podcast{}, err
	}

	podcast, err := s.podcasts.Create(ctx, model.Podcast{
		Title:    strings.TrimSpace(req.Title),
		AudioURL: strings.TrimSpace(req.AudioURL),
		Episodes: cleanEpisodes(req.Episodes),
	})
	if err != nil {
		return model.Podcast{}, err
	}

	s.audit.Log(ctx, "podcast.create", ActorFor(p, ip), AuditStatusSuccess, resource("podcasts", podcast.ID), "")
	return podcast, nil
}

func (s *ContentService) GetPodcast(ctx context.Context, id int64) (model.Podcast, error) {
	return s.podcasts.FindByID(ctx, id)
}

func (s *ContentService) ListPodcasts(ctx context.Context) ([]model.Podcast, error) {
	return s.podcasts.List(ctx)
}

func (s *ContentService) UpdatePodcast(ctx context.Context, p *model.Principal, id int64, req model.PodcastRequest, ip string) (model.Podcast, error) {
	if err := requireAdmin(p); err != nil {
		return model.Podcast{}, err
	}
	if err := validatePodcast(req); err != nil {
		return model.Podcast{}, err
	}

	podcast, err := s.podcasts.Update(ctx, model.Podcast{
		ID:       id,
		Title:    strings.TrimSpace(req.Title),
		AudioURL: strings.TrimSpace(req.AudioURL),
		Episodes: cleanEpisodes(req.Episodes),
	})
	if err != nil {
		return model.Podcast{}, err
	}

	s.audit.Log(ctx, "podcast.update", ActorFor(p, ip), AuditStatusSuccess, resource("podcasts", id), "")
	return podcast, nil
}

func (s *ContentService) DeletePodcast(ctx context.Context, p *model.Principal, id int64, ip string) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	if err := s.podcasts.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Log(ctx, "podcast.delete", ActorFor(p, ip), AuditStatusSuccess, resource("podcasts", id), "")
	return nil
}
