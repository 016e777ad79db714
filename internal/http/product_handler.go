package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductCatalog interface {
	Get(id int64) (domain.Product, error)
	Filter(q catalog.Query) []domain.Product
	Categories() []string
	Bestsellers() []domain.Product
	FAQs() []domain.FAQ
}

type ProductHandler struct {
	catalog ProductCatalog
	logger  *zap.Logger
}

func NewProductHandler(c ProductCatalog, log *zap.Logger) *ProductHandler {
	return &ProductHandler{catalog: c, logger: log}
}

type ProductsResponse struct {
	Products []domain.Product `json:"products"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

type HomeResponse struct {
	Bestsellers []domain.Product `json:"bestsellers"`
	FAQs        []domain.FAQ     `json:"faqs"`
}

// GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseProductQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, &ProductsResponse{Products: h.catalog.Filter(q)})
}

// GET /api/v1/products/{product_id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	product, err := h.catalog.Get(productID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// GET /api/v1/categories
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &CategoriesResponse{Categories: h.catalog.Categories()})
}

// GET /api/v1/home
func (h *ProductHandler) Home(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &HomeResponse{
		Bestsellers: h.catalog.Bestsellers(),
		FAQs:        h.catalog.FAQs(),
	})
}

func parseProductQuery(r *http.Request) (catalog.Query, error) {
	values := r.URL.Query()

	q := catalog.Query{
		Search:   values.Get("q"),
		Category: values.Get("category"),
		Sort:     values.Get("sort"),
	}

	var err error
	if q.MinPrice, err = parsePrice(values.Get("min_price"), "min_price"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = parsePrice(values.Get("max_price"), "max_price"); err != nil {
		return q, err
	}

	if v := values.Get("bestseller"); v != "" {
		if q.BestsellersOnly, err = strconv.ParseBool(v); err != nil {
			return q, errors.New("bestseller must be true or false")
		}
	}

	return q, nil
}

func parsePrice(v, name string) (decimal.NullDecimal, error) {
	if v == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%s must be a number", name)
	}
	return decimal.NewNullDecimal(d), nil
}
