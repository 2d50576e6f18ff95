package article

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"workshophub/internal/gateway/entity"
	articlerepo "workshophub/internal/gateway/repository/article"
	mediarepo "workshophub/internal/gateway/repository/media"
)

const (
	DefaultAuthor   = "AI Explorer"
	DefaultImageURL = "https://images.unsplash.com/photo-1677442136019-21780ecad995?auto=format&fit=crop&q=80&w=800"

	dateLayout    = "2006-01-02"
	MaxCoverBytes = 5 << 20
	mediaPrefix   = "/media/"
)

var (
	ErrNotFound     = articlerepo.ErrNotFound
	ErrMediaMissing = errors.New("media store is not configured")
)

// ValidationError is returned for editor input that cannot be stored.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Draft is the editor form. Blank fields take the editor defaults.
type Draft struct {
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Author   string `json:"author"`
	ImageURL string `json:"imageUrl"`
	VideoURL string `json:"videoUrl"`
}

// Detail is an article as served to the browser.
type Detail struct {
	entity.Article
	EmbedURL string `json:"embedUrl,omitempty"`
}

type Service struct {
	store articlerepo.Store
	media mediarepo.Store
	now   func() time.Time
	newID func() string
}

// New creates an article service. media may be nil, which disables cover
// uploads.
func New(store articlerepo.Store, media mediarepo.Store) *Service {
	return &Service{
		store: store,
		media: media,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Seed fills an empty store with SeedArticles.
func (s *Service) Seed(ctx context.Context) error {
	list, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list articles: %w", err)
	}
	if len(list) > 0 {
		return nil
	}
	for _, a := range SeedArticles {
		if err := s.store.Create(ctx, a); err != nil && !errors.Is(err, articlerepo.ErrDuplicate) {
			return fmt.Errorf("seed article %s: %w", a.ID, err)
		}
	}
	slog.InfoContext(ctx, "article feed seeded", "count", len(SeedArticles))
	return nil
}

// List returns the feed in store order, optionally filtered by category.
func (s *Service) List(ctx context.Context, category string) ([]Detail, error) {
	var filter entity.Category
	if strings.TrimSpace(category) != "" {
		c, err := entity.ParseCategory(category)
		if err != nil {
			return nil, &ValidationError{Field: "category", Reason: err.Error()}
		}
		filter = c
	}
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Detail, 0, len(list))
	for _, a := range list {
		if filter != "" && a.Category != filter {
			continue
		}
		out = append(out, detail(a))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (Detail, error) {
	articleID := entity.NormalizeArticleID(id)
	if articleID.IsZero() {
		return Detail{}, &ValidationError{Field: "id", Reason: "is required"}
	}
	a, err := s.store.Get(ctx, articleID)
	if err != nil {
		return Detail{}, err
	}
	return detail(a), nil
}

// Create appends a new article with a fresh id and today's date.
func (s *Service) Create(ctx context.Context, d Draft) (Detail, error) {
	a, err := fromDraft(d)
	if err != nil {
		return Detail{}, err
	}
	a.ID = entity.ArticleID(s.newID())
	a.Date = s.now().Format(dateLayout)
	if err := s.store.Create(ctx, a); err != nil {
		return Detail{}, fmt.Errorf("create article: %w", err)
	}
	return detail(a), nil
}

// Update replaces the editable fields of an existing article. Id and date are
// kept.
func (s *Service) Update(ctx context.Context, id string, d Draft) (Detail, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	a, err := fromDraft(d)
	if err != nil {
		return Detail{}, err
	}
	a.ID = cur.ID
	a.Date = cur.Date
	if err := s.store.Update(ctx, a); err != nil {
		return Detail{}, fmt.Errorf("update article: %w", err)
	}
	return detail(a), nil
}

// SetCover stores an uploaded image and points the article's imageUrl at it.
func (s *Service) SetCover(ctx context.Context, id, filename, contentType string, data []byte) (Detail, error) {
	if s.media == nil {
		return Detail{}, ErrMediaMissing
	}
	cur, err := s.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	if len(data) == 0 {
		return Detail{}, &ValidationError{Field: "file", Reason: "is empty"}
	}
	if len(data) > MaxCoverBytes {
		return Detail{}, &ValidationError{Field: "file", Reason: "exceeds 5 MiB"}
	}
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if !strings.HasPrefix(mediaType, "image/") {
		return Detail{}, &ValidationError{Field: "file", Reason: "must be an image"}
	}

	key := coverKey(cur.ID, filename, mediaType, s.newID())
	if err := s.media.Put(ctx, mediarepo.Object{Key: key, ContentType: mediaType, Data: data}); err != nil {
		return Detail{}, fmt.Errorf("store cover: %w", err)
	}
	a := cur.Article
	a.ImageURL = mediaPrefix + key
	if err := s.store.Update(ctx, a); err != nil {
		return Detail{}, fmt.Errorf("update article: %w", err)
	}
	return detail(a), nil
}

// Media serves a stored upload by the key that follows /media/.
func (s *Service) Media(ctx context.Context, key string) (mediarepo.Object, error) {
	if s.media == nil {
		return mediarepo.Object{}, mediarepo.ErrNotFound
	}
	return s.media.Get(ctx, key)
}

func coverKey(id entity.ArticleID, filename, mediaType, nonce string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	return "covers/" + id.String() + "/" + nonce + ext
}

func fromDraft(d Draft) (entity.Article, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return entity.Article{}, &ValidationError{Field: "title", Reason: "is required"}
	}
	category, err := entity.ParseCategory(d.Category)
	if err != nil {
		return entity.Article{}, &ValidationError{Field: "category", Reason: err.Error()}
	}
	return entity.Article{
		Title:    title,
		Excerpt:  strings.TrimSpace(d.Excerpt),
		Content:  d.Content,
		Category: category,
		Author:   orDefault(d.Author, DefaultAuthor),
		ImageURL: orDefault(d.ImageURL, DefaultImageURL),
		VideoURL: strings.TrimSpace(d.VideoURL),
	}, nil
}

func detail(a entity.Article) Detail {
	return Detail{Article: a, EmbedURL: EmbedURL(a.VideoURL)}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
