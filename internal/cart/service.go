package cart

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mjsport/photostore/internal/cache"
	"github.com/mjsport/photostore/internal/domain"
)

type Service struct {
	repo  CartRepository
	cache cache.CartCache
	sfg   singleflight.Group // Prevents cache stampede
}

func NewService(repo CartRepository, cache cache.CartCache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

func (s *Service) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {

		cart, err := s.cache.Get(ctx, sessionID)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		cart, errGet := s.repo.GetCart(ctx, sessionID)
		if errGet != nil && errors.Is(errGet, ErrCartNotFound) { // no stored cart, return empty cart
			return &domain.Cart{
				SessionID: sessionID,
				Items:     nil,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			errSet := s.cache.Set(context.Background(), sessionID, cart)
			if errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// Toggle adds the photo when absent and removes it when present, matching
// the gallery's single shopper-facing cart affordance. Returns the cart
// after the mutation.
func (s *Service) Toggle(ctx context.Context, sessionID string, item domain.CartItem) (*domain.Cart, error) {
	current, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if current.Contains(item.PhotoID) {
		if errRemove := s.Remove(ctx, sessionID, item.PhotoID); errRemove != nil {
			return nil, errRemove
		}
	} else {
		if errAdd := s.repo.AddItem(ctx, sessionID, item); errAdd != nil {
			log.Printf("repo add item error: %v", errAdd)
			return nil, errAdd
		}
		s.invalidateCache(sessionID)
	}

	return s.Get(ctx, sessionID)
}

// Remove deletes the photo from the cart. Removing a photo that is not in
// the cart is not an error.
func (s *Service) Remove(ctx context.Context, sessionID string, photoID string) error {
	errRemove := s.repo.RemoveItem(ctx, sessionID, photoID)
	if errRemove != nil && !errors.Is(errRemove, ErrCartNotFound) && !errors.Is(errRemove, ErrItemNotFound) {
		log.Printf("repo remove item error: %v", errRemove)
		return errRemove
	}

	s.invalidateCache(sessionID)
	return nil
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	errDelete := s.repo.DeleteCart(ctx, sessionID)
	if errDelete != nil && !errors.Is(errDelete, ErrCartNotFound) {
		log.Printf("repo delete cart error: %v", errDelete)
		return errDelete
	}

	s.invalidateCache(sessionID)
	return nil
}

func (s *Service) invalidateCache(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	errInvalidate := s.cache.Delete(ctx, sessionID)
	if errInvalidate != nil {
		log.Printf("cache invalidate error: %v", errInvalidate)
	}
}
