package infrastructure

import (
	"context"
	"sync"
	"time"

	"adintel/internal/domain"
	"adintel/pkg/logger"
)

// BookmarkRepository stores user-curated brand shortcuts in memory,
// keyed by unique name with insertion order preserved for listing.
type BookmarkRepository struct {
	byName map[string]domain.BrandBookmark
	order  []string
	mutex  sync.RWMutex
	logger *logger.Logger
}

var _ domain.BookmarkRepository = (*BookmarkRepository)(nil)

// creates a new bookmark repository
func NewBookmarkRepository(logger *logger.Logger) *BookmarkRepository {
	return &BookmarkRepository{
		byName: make(map[string]domain.BrandBookmark),
		logger: logger,
	}
}

func (r *BookmarkRepository) List(ctx context.Context) ([]domain.BrandBookmark, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	bookmarks := make([]domain.BrandBookmark, 0, len(r.order))
	for _, name := range r.order {
		bookmarks = append(bookmarks, r.byName[name])
	}
	return bookmarks, nil
}

func (r *BookmarkRepository) Add(ctx context.Context, bookmark domain.BrandBookmark) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.byName[bookmark.Name]; exists {
		return domain.ErrBookmarkExists
	}

	if bookmark.AddedAt.IsZero() {
		bookmark.AddedAt = time.Now().UTC()
	}

	r.byName[bookmark.Name] = bookmark
	r.order = append(r.order, bookmark.Name)

	r.logger.WithContext(ctx).WithField("name", bookmark.Name).Info("Saved brand bookmark")
	return nil
}

func (r *BookmarkRepository) Remove(ctx context.Context, name string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.byName[name]; !exists {
		return domain.ErrBookmarkNotFound
	}

	delete(r.byName, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	r.logger.WithContext(ctx).WithField("name", name).Info("Removed brand bookmark")
	return nil
}
