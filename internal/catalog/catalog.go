package catalog

import (
	"cmp"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/fjod/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

// Sort orders accepted by Filter.
const (
	SortPriceHigh  = "price-high"
	SortPriceLow   = "price-low"
	SortName       = "name"
	SortBestseller = "bestseller"
)

// CategoryAll disables the category filter.
const CategoryAll = "all"

var (
	//go:embed data/products.json
	productsJSON []byte

	//go:embed data/faqs.json
	faqsJSON []byte
)

// Query narrows and orders the product list. Zero values disable a filter.
type Query struct {
	Search          string
	Category        string
	MinPrice        decimal.NullDecimal
	MaxPrice        decimal.NullDecimal
	BestsellersOnly bool
	Sort            string
}

// Catalog is the read-only product and FAQ dataset.
type Catalog struct {
	products []domain.Product
	byID     map[int64]int
	faqs     []domain.FAQ
}

func New(products []domain.Product, faqs []domain.FAQ) *Catalog {
	c := &Catalog{
		products: slices.Clone(products),
		byID:     make(map[int64]int, len(products)),
		faqs:     slices.Clone(faqs),
	}
	for i, p := range c.products {
		if _, ok := c.byID[p.ID]; !ok {
			c.byID[p.ID] = i
		}
	}
	return c
}

// Default returns the catalog bundled into the binary.
func Default() (*Catalog, error) {
	var products []domain.Product
	if err := json.Unmarshal(productsJSON, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	var faqs []domain.FAQ
	if err := json.Unmarshal(faqsJSON, &faqs); err != nil {
		return nil, fmt.Errorf("decode faqs: %w", err)
	}

	return New(products, faqs), nil
}

func (c *Catalog) All() []domain.Product {
	return slices.Clone(c.products)
}

func (c *Catalog) Get(id int64) (domain.Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return c.products[i], nil
}

// Categories lists distinct categories in the order they first appear.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, p := range c.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories
}

func (c *Catalog) Bestsellers() []domain.Product {
	return c.Filter(Query{BestsellersOnly: true})
}

func (c *Catalog) FAQs() []domain.FAQ {
	return slices.Clone(c.faqs)
}

// Filter returns a new slice of the products matching q, sorted by q.Sort.
// Unknown sort values keep dataset order.
func (c *Catalog) Filter(q Query) []domain.Product {
	search := strings.ToLower(q.Search)

	out := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if q.Category != "" && q.Category != CategoryAll && p.Category != q.Category {
			continue
		}
		if q.MinPrice.Valid && p.Price.LessThan(q.MinPrice.Decimal) {
			continue
		}
		if q.MaxPrice.Valid && p.Price.GreaterThan(q.MaxPrice.Decimal) {
			continue
		}
		if q.BestsellersOnly && !p.Bestseller {
			continue
		}
		out = append(out, p)
	}

	switch q.Sort {
	case SortPriceHigh:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return b.Price.Cmp(a.Price)
		})
	case SortPriceLow:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return a.Price.Cmp(b.Price)
		})
	case SortName:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
	case SortBestseller:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return boolRank(b.Bestseller) - boolRank(a.Bestseller)
		})
	}

	return out
}

func boolRank(v bool) int {
	if v {
		return 1
	}
	return 0
}
