// Package catalog loads the static product catalog, the promo-of-the-day
// products, and the advisor system prompt. Everything is read once at process
// start and treated as immutable afterwards.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Product describes one catalog entry. The JSON field names follow the
// storefront's data files.
type Product struct {
	Code        string  `json:"codigo"`
	Name        string  `json:"nombre"`
	Description string  `json:"descripcion"`
	Price       float64 `json:"precio"`
	ImageURL    string  `json:"imagen"`
}

// PriceLabel formats the price the way outbound cards display it.
func (p Product) PriceLabel() string {
	return "S/" + strconv.FormatFloat(p.Price, 'f', -1, 64)
}

// Catalog holds the category listings, the promo products, a flattened
// code index, and the advisor system prompt.
type Catalog struct {
	categories map[string][]Product
	promos     map[string]Product
	byCode     map[string]Product
	prompt     string
	serialized string
}

// Load reads the catalog data file, the promo data file, and the system
// prompt file. It returns an error if any file is missing or malformed.
func Load(dataPath, promoPath, promptPath string) (*Catalog, error) {
	categories := map[string][]Product{}
	if err := readJSON(dataPath, &categories); err != nil {
		return nil, fmt.Errorf("failed to load catalog data: %w", err)
	}

	promos := map[string]Product{}
	if err := readJSON(promoPath, &promos); err != nil {
		return nil, fmt.Errorf("failed to load promo data: %w", err)
	}

	promptBytes, err := os.ReadFile(promptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load system prompt: %w", err)
	}

	byCode := map[string]Product{}
	for _, products := range categories {
		for _, p := range products {
			byCode[p.Code] = p
		}
	}

	serialized, err := json.MarshalIndent(categories, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize catalog: %w", err)
	}

	return &Catalog{
		categories: categories,
		promos:     promos,
		byCode:     byCode,
		prompt:     strings.TrimSpace(string(promptBytes)),
		serialized: string(serialized),
	}, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Category returns the products of a category, or nil if the category is
// unknown or empty.
func (c *Catalog) Category(name string) []Product {
	return c.categories[name]
}

// ByCode looks up a product by its exact code across all categories.
func (c *Catalog) ByCode(code string) (Product, bool) {
	p, ok := c.byCode[code]
	return p, ok
}

// Promo returns one of the promo-of-the-day products by key.
func (c *Catalog) Promo(key string) (Product, bool) {
	p, ok := c.promos[key]
	return p, ok
}

// CategoryCount returns the number of catalog categories.
func (c *Catalog) CategoryCount() int {
	return len(c.categories)
}

// ProductCount returns the number of distinct product codes.
func (c *Catalog) ProductCount() int {
	return len(c.byCode)
}

// SystemContext composes the advisor system block: the operating
// instructions followed by the serialized full catalog.
func (c *Catalog) SystemContext() string {
	return c.prompt + "\n\nAquí tienes los datos del catálogo: " + c.serialized
}
