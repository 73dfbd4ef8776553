package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bayramdkmn/ecommerce-api/internal/cache"
	"github.com/bayramdkmn/ecommerce-api/internal/domain"
	"github.com/bayramdkmn/ecommerce-api/internal/repository"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// CartView is what every cart operation returns: the lines plus totals
// recomputed server-side from live catalog prices. Client-supplied totals
// are never trusted and totals are never stored.
type CartView struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	Items      []CartLineView  `json:"items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type CartLineView struct {
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
	Quantity     int             `json:"quantity"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	cache    cache.CartCache
	sfg      singleflight.Group // Prevents cache stampede
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, cartCache cache.CartCache) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		cache:    cartCache,
	}
}

func (s *CartService) GetCart(ctx context.Context, userID int64) (*CartView, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(fmt.Sprint(userID), func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		cart, errGet := s.carts.GetOrCreate(ctx, userID)
		if errGet != nil {
			return nil, errGet
		}

		// Set the cache before the flight returns: an invalidation that
		// runs after this point can never be overwritten by this read.
		if errSet := s.cache.Set(ctx, userID, cart); errSet != nil {
			log.Printf("cache set error: %v", errSet)
		}

		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	return s.priceCart(ctx, v.(*domain.Cart))
}

// AddItem merges quantity into the user's cart line for the product,
// creating the line on first add, and returns the refreshed cart view.
func (s *CartService) AddItem(ctx context.Context, userID, productID int64, quantity int) (*CartView, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be a positive integer", ErrValidation)
	}

	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
		}
		return nil, err
	}

	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if errAdd := s.carts.AddItem(ctx, cart.ID, productID, quantity); errAdd != nil {
		log.Printf("repo add item error: %v", errAdd)
		return nil, errAdd
	}

	s.invalidateCache(userID)
	return s.refresh(ctx, userID)
}

// RemoveItem deletes the line for the product. Removing a product that is
// not in the cart succeeds without effect.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID int64) (*CartView, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if errRemove := s.carts.RemoveItem(ctx, cart.ID, productID); errRemove != nil {
		log.Printf("repo remove item error: %v", errRemove)
		return nil, errRemove
	}

	s.invalidateCache(userID)
	return s.refresh(ctx, userID)
}

// DecreaseQuantity subtracts decrement from the line. When the quantity
// would drop to zero or below, the line is deleted instead.
func (s *CartService) DecreaseQuantity(ctx context.Context, userID, productID int64, decrement int) (*CartView, error) {
	if decrement < 1 {
		return nil, fmt.Errorf("%w: decrement must be a positive integer", ErrValidation)
	}

	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if errDec := s.carts.DecreaseItem(ctx, cart.ID, productID, decrement); errDec != nil {
		if errors.Is(errDec, repository.ErrCartItemNotFound) {
			return nil, fmt.Errorf("%w: product %d is not in the cart", ErrNotFound, productID)
		}
		log.Printf("repo decrease item error: %v", errDec)
		return nil, errDec
	}

	s.invalidateCache(userID)
	return s.refresh(ctx, userID)
}

func (s *CartService) ClearCart(ctx context.Context, userID int64) (*CartView, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if errClear := s.carts.Clear(ctx, cart.ID); errClear != nil {
		log.Printf("repo clear cart error: %v", errClear)
		return nil, errClear
	}

	s.invalidateCache(userID)
	return s.refresh(ctx, userID)
}

// refresh re-reads the cart from the store, bypassing the cache a mutation
// just invalidated.
func (s *CartService) refresh(ctx context.Context, userID int64) (*CartView, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.priceCart(ctx, cart)
}

// priceCart computes per-line and aggregate totals from current product
// prices. A product that went missing or has no price counts as zero. The
// aggregate is the sum of the line totals, so the two can never disagree.
func (s *CartService) priceCart(ctx context.Context, cart *domain.Cart) (*CartView, error) {
	ids := make([]int64, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	view := &CartView{
		ID:         cart.ID,
		UserID:     cart.UserID,
		Items:      make([]CartLineView, 0, len(cart.Items)),
		TotalPrice: decimal.Zero,
	}
	for _, item := range cart.Items {
		price := decimal.Zero
		name := ""
		if p, ok := products[item.ProductID]; ok {
			price = p.UnitPrice()
			name = p.Name
		}

		lineTotal := price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		view.Items = append(view.Items, CartLineView{
			ProductID:    item.ProductID,
			ProductName:  name,
			ProductPrice: price,
			Quantity:     item.Quantity,
			TotalPrice:   lineTotal,
		})
		view.TotalPrice = view.TotalPrice.Add(lineTotal)
	}
	return view, nil
}

func (s *CartService) invalidateCache(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
