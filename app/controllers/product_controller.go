package controllers

import (
	"errors"
	"net/http"

	"github.com/tradebridge/tradebridge/app/services"
	"github.com/tradebridge/tradebridge/pkg/apperr"
	"github.com/tradebridge/tradebridge/pkg/ctx"
	"github.com/tradebridge/tradebridge/pkg/response"
)

// ProductController serves the catalogue and product image uploads.
type ProductController struct {
	catalog *services.CatalogService
	images  *services.ImageService
}

func NewProductController(catalog *services.CatalogService, images *services.ImageService) *ProductController {
	return &ProductController{catalog: catalog, images: images}
}

// Create handles POST /api/products.
func (pc *ProductController) Create(c *ctx.Context) {
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := pc.catalog.Create(c.Context(), c.Identity(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(response.H{"product": p})
}

// Mine handles GET /api/products/my.
func (pc *ProductController) Mine(c *ctx.Context) {
	products, err := pc.catalog.ListMine(c.Context(), c.Identity())
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(response.H{"products": products})
}

// ByWholesaler handles GET /api/products/wholesaler/{id}.
func (pc *ProductController) ByWholesaler(c *ctx.Context) {
	products, err := pc.catalog.ListByWholesaler(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(response.H{"products": products})
}

// Search handles GET /api/products?search=.
func (pc *ProductController) Search(c *ctx.Context) {
	products, err := pc.catalog.Search(c.Context(), c.Query("search"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(response.H{"products": products})
}

// Update handles PUT /api/products/{id}.
func (pc *ProductController) Update(c *ctx.Context) {
	var in services.ProductUpdateInput
	if err := c.DecodeJSON(&in); err != nil {
		if _, ownErr := pc.catalog.Owned(c.Context(), c.Identity(), c.Param("id")); ownErr != nil {
			c.Fail(ownErr)
			return
		}
		c.Fail(err)
		return
	}
	p, err := pc.catalog.Update(c.Context(), c.Identity(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(response.H{"product": p})
}

// Delete handles DELETE /api/products/{id}.
func (pc *ProductController) Delete(c *ctx.Context) {
	if err := pc.catalog.Delete(c.Context(), c.Identity(), c.Param("id")); err != nil {
		c.Fail(err)
		return
	}
	c.OK(response.H{"message": "Product deleted"})
}

// UploadImage handles POST /api/uploads/images with a multipart "image" field.
func (pc *ProductController) UploadImage(c *ctx.Context) {
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, services.MaxImageBytes+(1<<20))

	file, _, err := c.R.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.Fail(apperr.Validation(map[string]string{"image": "The image must not be greater than 5 MB."}))
			return
		}
		c.Fail(apperr.Validation(map[string]string{"image": "The image field is required."}))
		return
	}
	defer file.Close()

	img, err := pc.images.Store(c.Context(), c.Identity(), file)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(response.H{"url": img.URL, "path": img.Path})
}
