package service

import (
	"context"

	"materiaux-pro/internal/apperr"
	"materiaux-pro/internal/auth"
	"materiaux-pro/internal/database/models"
	"materiaux-pro/internal/storage"
)

type FavoriteService struct {
	store storage.Storage
}

func NewFavoriteService(store storage.Storage) *FavoriteService {
	return &FavoriteService{store: store}
}

func (s *FavoriteService) List(ctx context.Context, identity auth.Identity) ([]models.Favorite, error) {
	client, err := s.clientFor(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.store.ListFavoritesByClient(ctx, client.ID)
}

// Add favorites a product for the acting client. The pair is unique;
// favoriting twice is a Conflict.
func (s *FavoriteService) Add(ctx context.Context, identity auth.Identity, productID int64) (*models.Favorite, error) {
	client, err := s.clientFor(ctx, identity)
	if err != nil {
		return nil, err
	}

	product, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperr.New(apperr.NotFound, "product not found")
	}

	existing, err := s.store.GetFavorite(ctx, client.ID, productID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.New(apperr.Conflict, "product is already in favorites")
	}

	favorite := &models.Favorite{ClientID: client.ID, ProductID: productID}
	if err := s.store.AddFavorite(ctx, favorite); err != nil {
		return nil, err
	}
	return favorite, nil
}

func (s *FavoriteService) Remove(ctx context.Context, identity auth.Identity, productID int64) error {
	client, err := s.clientFor(ctx, identity)
	if err != nil {
		return err
	}

	existing, err := s.store.GetFavorite(ctx, client.ID, productID)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperr.New(apperr.NotFound, "product is not in favorites")
	}
	return s.store.RemoveFavorite(ctx, client.ID, productID)
}

func (s *FavoriteService) clientFor(ctx context.Context, identity auth.Identity) (*models.Client, error) {
	client, err := s.store.GetClientByUserID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperr.New(apperr.NotFound, "client profile not found")
	}
	return client, nil
}
