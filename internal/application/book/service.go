package book

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bookkita-api/internal/domain"
	"github.com/bookkita-api/internal/pkg/id"
	"github.com/bookkita-api/internal/pkg/validate"
)

// downloadTTL bounds how long an issued download URL stays valid.
const downloadTTL = 15 * time.Minute

// BookStore is the minimal catalog storage the service requires.
type BookStore interface {
	Put(ctx context.Context, b *domain.Book) error
	Get(ctx context.Context, bookID string) (*domain.Book, error)
	Delete(ctx context.Context, bookID string) error
	List(ctx context.Context) ([]domain.Book, error)
}

// AssetStore holds the ebook objects and issues time-limited URLs for them.
type AssetStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Service interface {
	List(ctx context.Context) ([]domain.Book, error)
	Get(ctx context.Context, bookID string) (*domain.Book, error)
	// Create uploads the ebook object and records the catalog entry.
	Create(ctx context.Context, req domain.CreateBookRequest, content io.Reader, contentType string) (*domain.Book, error)
	// Delete removes the catalog entry and its ebook object.
	Delete(ctx context.Context, bookID string) error
	// DownloadURL returns a presigned URL for the ebook object. Callers must
	// have already been authenticated; the service does not re-check.
	DownloadURL(ctx context.Context, bookID string) (string, error)
}

type service struct {
	books  BookStore
	assets AssetStore
}

func NewService(books BookStore, assets AssetStore) Service {
	return &service{books: books, assets: assets}
}

func (s *service) List(ctx context.Context) ([]domain.Book, error) {
	return s.books.List(ctx)
}

func (s *service) Get(ctx context.Context, bookID string) (*domain.Book, error) {
	return s.books.Get(ctx, bookID)
}

func (s *service) Create(ctx context.Context, req domain.CreateBookRequest, content io.Reader, contentType string) (*domain.Book, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}

	b := &domain.Book{
		BookID:      id.New(),
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		PriceIDR:    req.PriceIDR,
		CreatedAt:   time.Now().UTC(),
	}
	b.ObjectKey = "ebooks/" + b.BookID

	if _, err := s.assets.Upload(ctx, b.ObjectKey, content, contentType); err != nil {
		return nil, fmt.Errorf("upload ebook object: %w", err)
	}
	if err := s.books.Put(ctx, b); err != nil {
		// Don't leave an orphaned object behind the failed record.
		if dErr := s.assets.Delete(ctx, b.ObjectKey); dErr != nil {
			slog.Warn("failed to remove orphaned ebook object", "key", b.ObjectKey, "err", dErr)
		}
		return nil, err
	}
	return b, nil
}

func (s *service) Delete(ctx context.Context, bookID string) error {
	b, err := s.books.Get(ctx, bookID)
	if err != nil {
		return err
	}
	if err := s.assets.Delete(ctx, b.ObjectKey); err != nil {
		return fmt.Errorf("delete ebook object: %w", err)
	}
	return s.books.Delete(ctx, bookID)
}

func (s *service) DownloadURL(ctx context.Context, bookID string) (string, error) {
	b, err := s.books.Get(ctx, bookID)
	if err != nil {
		return "", err
	}
	return s.assets.PresignedURL(ctx, b.ObjectKey, downloadTTL)
}
