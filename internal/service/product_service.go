package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bayramdkmn/ecommerce-api/internal/domain"
	"github.com/bayramdkmn/ecommerce-api/internal/repository"
)

type ProductService struct {
	products repository.ProductRepository
	ratings  repository.RatingRepository
}

func NewProductService(products repository.ProductRepository, ratings repository.RatingRepository) *ProductService {
	return &ProductService{
		products: products,
		ratings:  ratings,
	}
}

func (s *ProductService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.products.ListActive(ctx)
}

func (s *ProductService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if errors.Is(err, repository.ErrProductNotFound) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return p, err
}

func (s *ProductService) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	p, err := s.products.GetBySlug(ctx, slug)
	if errors.Is(err, repository.ErrProductNotFound) {
		return nil, fmt.Errorf("%w: product %q", ErrNotFound, slug)
	}
	return p, err
}

func (s *ProductService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.products.ListCategories(ctx)
}

// RateProduct records the caller's 1..5 star rating, replacing any rating
// they already gave, and refreshes the product's rating aggregate.
func (s *ProductService) RateProduct(ctx context.Context, userID, productID int64, stars int) error {
	if stars < 1 || stars > 5 {
		return fmt.Errorf("%w: stars must be between 1 and 5", ErrValidation)
	}

	err := s.ratings.Rate(ctx, productID, userID, stars)
	if errors.Is(err, repository.ErrProductNotFound) {
		return fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}
	return err
}

func (s *ProductService) DeleteRating(ctx context.Context, userID, productID int64) error {
	err := s.ratings.DeleteRating(ctx, productID, userID)
	if errors.Is(err, repository.ErrRatingNotFound) {
		return fmt.Errorf("%w: no rating for product %d", ErrNotFound, productID)
	}
	return err
}
