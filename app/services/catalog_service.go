package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tradebridge/tradebridge/app/models"
	"github.com/tradebridge/tradebridge/app/repositories"
	"github.com/tradebridge/tradebridge/pkg/apperr"
	"github.com/tradebridge/tradebridge/pkg/auth"
	"github.com/tradebridge/tradebridge/pkg/cache"
	"github.com/tradebridge/tradebridge/pkg/event"
	"github.com/tradebridge/tradebridge/pkg/rbac"
	"github.com/tradebridge/tradebridge/pkg/validate"
)

// ProductInput is the create-product request body. The owner always comes
// from the caller's identity, never from the body.
type ProductInput struct {
	Name     string   `json:"name"     validate:"required,notblank,max=200"`
	Price    *float64 `json:"price"    validate:"required,gte=0"`
	Category string   `json:"category" validate:"max=100"`
	Image    string   `json:"image"    validate:"max=2048"`
}

// ProductUpdateInput is the update-product request body. Absent fields are
// left unchanged.
type ProductUpdateInput struct {
	Name     *string  `json:"name"     validate:"omitnil,notblank,max=200"`
	Price    *float64 `json:"price"    validate:"omitnil,gte=0"`
	Category *string  `json:"category" validate:"omitnil,max=100"`
	Image    *string  `json:"image"    validate:"omitnil,max=2048"`
}

// CatalogService owns products and applies the ownership rules.
type CatalogService struct {
	products repositories.ProductRepository
	users    repositories.UserRepository
	cache    *cache.Store
	bus      *event.Bus
}

// NewCatalogService wires a CatalogService. cache and bus may be nil.
func NewCatalogService(products repositories.ProductRepository, users repositories.UserRepository, c *cache.Store, bus *event.Bus) *CatalogService {
	return &CatalogService{products: products, users: users, cache: c, bus: bus}
}

// Create adds a product owned by the calling wholesaler.
func (s *CatalogService) Create(ctx context.Context, id *auth.Identity, in ProductInput) (*models.Product, error) {
	if err := rbac.Authorize(id, rbac.CreateProduct); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return nil, apperr.Validation(errs)
	}

	owner, err := s.wholesaler(ctx, id)
	if err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:       in.Name,
		Price:      *in.Price,
		Category:   strings.TrimSpace(in.Category),
		Image:      strings.TrimSpace(in.Image),
		Wholesaler: owner,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, apperr.Internal(err)
	}

	s.bus.Fire(ctx, EventProductSaved, ProductEvent{Action: ProductCreated, Product: *p})
	return p, nil
}

// wholesaler resolves the caller to an existing wholesaler account.
func (s *CatalogService) wholesaler(ctx context.Context, id *auth.Identity) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id.UserID)
	if err != nil {
		return primitive.NilObjectID, apperr.ErrForbidden
	}
	u, err := s.users.FindByID(ctx, oid)
	if errors.Is(err, apperr.ErrNotFound) {
		return primitive.NilObjectID, apperr.ErrForbidden
	}
	if err != nil {
		return primitive.NilObjectID, apperr.Internal(err)
	}
	if u.Role != auth.RoleWholesaler {
		return primitive.NilObjectID, apperr.ErrForbidden
	}
	return oid, nil
}

// ListMine lists the calling wholesaler's products, newest first.
func (s *CatalogService) ListMine(ctx context.Context, id *auth.Identity) ([]models.Product, error) {
	if err := rbac.Authorize(id, rbac.ListOwnProducts); err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(id.UserID)
	if err != nil {
		return nil, apperr.ErrForbidden
	}
	products, err := s.products.ListByWholesaler(ctx, oid)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return products, nil
}

// ListByWholesaler is the public listing of one wholesaler's products.
func (s *CatalogService) ListByWholesaler(ctx context.Context, wholesalerID string) ([]models.Product, error) {
	if err := rbac.Authorize(nil, rbac.BrowseCatalog); err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(wholesalerID)
	if err != nil {
		return nil, apperr.Validation(map[string]string{"id": "The id must be a valid id."})
	}

	products, err := cache.Remember(ctx, s.cache, ProductsByWholesalerCacheKey(oid.Hex()), func(ctx context.Context) ([]models.Product, error) {
		return s.products.ListByWholesaler(ctx, oid)
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return products, nil
}

// Search matches name or category, case-insensitively, newest first.
func (s *CatalogService) Search(ctx context.Context, query string) ([]models.Product, error) {
	if err := rbac.Authorize(nil, rbac.BrowseCatalog); err != nil {
		return nil, err
	}
	products, err := s.products.Search(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return products, nil
}

// Update changes a product the caller owns. A missing product and a
// foreign product both yield Forbidden.
func (s *CatalogService) Update(ctx context.Context, id *auth.Identity, productID string, in ProductUpdateInput) (*models.Product, error) {
	current, err := s.Owned(ctx, id, productID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return nil, apperr.Validation(errs)
	}

	p, err := s.products.UpdateOwned(ctx, current.ID, current.Wholesaler, repositories.ProductPatch{
		Name:     in.Name,
		Price:    in.Price,
		Category: in.Category,
		Image:    in.Image,
	})
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrForbidden
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.bus.Fire(ctx, EventProductSaved, ProductEvent{Action: ProductUpdated, Product: *p})
	return p, nil
}

// Delete removes a product the caller owns, with the same not-found policy
// as Update.
func (s *CatalogService) Delete(ctx context.Context, id *auth.Identity, productID string) error {
	p, err := s.Owned(ctx, id, productID)
	if err != nil {
		return err
	}

	err = s.products.DeleteOwned(ctx, p.ID, p.Wholesaler)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.ErrForbidden
	}
	if err != nil {
		return apperr.Internal(err)
	}

	s.bus.Fire(ctx, EventProductDeleted, ProductEvent{Action: ProductDeleted, Product: *p})
	return nil
}

// Owned loads the product and checks the caller owns it. Controllers call it
// directly when a request body is unusable, so access is decided before the
// input is judged.
func (s *CatalogService) Owned(ctx context.Context, id *auth.Identity, productID string) (*models.Product, error) {
	if err := rbac.Authorize(id, rbac.MutateProduct); err != nil {
		return nil, err
	}

	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, rbac.AuthorizeOwner(id, false, "")
	}

	p, err := s.products.FindByID(ctx, pid)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return nil, rbac.AuthorizeOwner(id, false, "")
	case err != nil:
		return nil, apperr.Internal(err)
	}

	if err := rbac.AuthorizeOwner(id, true, p.Wholesaler.Hex()); err != nil {
		return nil, err
	}
	return p, nil
}
