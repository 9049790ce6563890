package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mjsport/photostore/internal/domain"
	"github.com/mjsport/photostore/internal/repository"
)

// ErrPhotoNotFound is returned when a requested photo id has no
// corresponding catalog row.
var ErrPhotoNotFound = errors.New("photo not found")

type Service struct {
	repo           repository.CatalogRepository
	storageBaseURL string
}

func NewService(repo repository.CatalogRepository, storageBaseURL string) *Service {
	return &Service{
		repo:           repo,
		storageBaseURL: strings.TrimSuffix(storageBaseURL, "/"),
	}
}

func (s *Service) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.repo.ListEvents(ctx)
}

func (s *Service) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	return s.repo.GetEventByID(ctx, eventID)
}

func (s *Service) ListEventPhotos(ctx context.Context, eventID string) ([]domain.Photo, error) {
	if _, err := s.repo.GetEventByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListPhotosByEvent(ctx, eventID)
}

func (s *Service) ListTiers(ctx context.Context) ([]domain.DiscountTier, error) {
	return s.repo.ListDiscountTiers(ctx)
}

// ResolveItems re-reads the given photos from the catalog and builds order
// line items from the stored prices and names. Client-supplied prices are
// never used. Any id without a catalog row fails the whole resolution.
func (s *Service) ResolveItems(ctx context.Context, photoIDs []string) ([]domain.OrderItem, error) {
	if len(photoIDs) == 0 {
		return nil, nil
	}

	photos, err := s.repo.GetPhotosByIDs(ctx, photoIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve photos: %w", err)
	}

	byID := make(map[string]domain.Photo, len(photos))
	for _, p := range photos {
		byID[p.ID] = p
	}

	eventNames := make(map[string]string)
	items := make([]domain.OrderItem, 0, len(photoIDs))
	for _, id := range photoIDs {
		photo, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrPhotoNotFound, id)
		}

		eventName, ok := eventNames[photo.EventID]
		if !ok {
			event, errEvent := s.repo.GetEventByID(ctx, photo.EventID)
			if errEvent != nil {
				return nil, fmt.Errorf("failed to resolve event %s: %w", photo.EventID, errEvent)
			}
			eventName = event.Name
			eventNames[photo.EventID] = eventName
		}

		items = append(items, domain.OrderItem{
			PhotoID:     photo.ID,
			EventName:   eventName,
			PhotoName:   photo.Name,
			Price:       photo.Price,
			DownloadURL: s.downloadURL(photo),
		})
	}

	return items, nil
}

// ResolveCartItem builds a cart line from the stored photo so the cart
// never carries client-supplied prices.
func (s *Service) ResolveCartItem(ctx context.Context, photoID string) (*domain.CartItem, error) {
	photos, err := s.repo.GetPhotosByIDs(ctx, []string{photoID})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve photo: %w", err)
	}
	if len(photos) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPhotoNotFound, photoID)
	}
	photo := photos[0]

	event, err := s.repo.GetEventByID(ctx, photo.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve event %s: %w", photo.EventID, err)
	}

	return &domain.CartItem{
		PhotoID:   photo.ID,
		EventID:   photo.EventID,
		EventName: event.Name,
		PhotoName: photo.Name,
		UnitPrice: photo.Price,
	}, nil
}

// downloadURL prefers the original (unwatermarked) object when one was
// uploaded; public gallery URLs point at the watermarked rendition.
func (s *Service) downloadURL(photo domain.Photo) string {
	if photo.OriginalPath != "" {
		return s.storageBaseURL + "/" + strings.TrimPrefix(photo.OriginalPath, "/")
	}
	return photo.URL
}
