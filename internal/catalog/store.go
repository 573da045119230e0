package catalog

import (
	"sort"
	"strings"
	"sync"

	pkgerrors "github.com/premiumstore/premiumstore-backend/pkg/errors"
)

// Filter narrows a product listing. Zero values mean "no constraint".
type Filter struct {
	Category string
	Search   string
	Tag      string
	MinPrice int64
	MaxPrice int64
	InStock  bool
}

// Store holds the generated catalog. Products are immutable after
// construction except for the append-only review/question lists, which
// the mutex guards.
type Store struct {
	mu       sync.RWMutex
	products []*Product
	byID     map[int]*Product
}

// NewStore indexes the provided products.
func NewStore(products []*Product) *Store {
	byID := make(map[int]*Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}
	return &Store{products: products, byID: byID}
}

// FindByID returns a snapshot of the product or a typed not-found
// error. Callers get their own copy so reads never race with a
// concurrent AddReview or AddQuestion.
func (s *Store) FindByID(id int) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.byID[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return cloneProduct(product), nil
}

// FilterBy returns all products matching the filter, in id order.
func (s *Store) FilterBy(filter Filter) []*Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))

	var matched []*Product
	for _, product := range s.products {
		if filter.Category != "" && product.Category != filter.Category {
			continue
		}
		if filter.Tag != "" && !hasTag(product, filter.Tag) {
			continue
		}
		if filter.MinPrice > 0 && product.Price < filter.MinPrice {
			continue
		}
		if filter.MaxPrice > 0 && product.Price > filter.MaxPrice {
			continue
		}
		if filter.InStock && product.Stock == 0 {
			continue
		}
		if search != "" && !matchesSearch(product, search) {
			continue
		}
		matched = append(matched, cloneProduct(product))
	}
	return matched
}

// cloneProduct copies the mutable parts of a product. Tags, Images and
// Options never change after generation, so sharing them is safe.
func cloneProduct(product *Product) *Product {
	clone := *product
	clone.Reviews = append([]Review(nil), product.Reviews...)
	clone.Questions = append([]Question(nil), product.Questions...)
	return &clone
}

// Categories lists the distinct categories in sorted order.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[string]struct{}{}
	var categories []string
	for _, product := range s.products {
		if _, dup := seen[product.Category]; dup {
			continue
		}
		seen[product.Category] = struct{}{}
		categories = append(categories, product.Category)
	}
	sort.Strings(categories)
	return categories
}

// Len reports the catalog size.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// AddReview appends a review to the product.
func (s *Store) AddReview(productID int, review Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.byID[productID]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	product.Reviews = append(product.Reviews, review)
	product.ReviewCount++
	return nil
}

// AddQuestion appends a Q&A entry to the product.
func (s *Store) AddQuestion(productID int, question Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.byID[productID]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	product.Questions = append(product.Questions, question)
	return nil
}

func hasTag(product *Product, tag string) bool {
	for _, t := range product.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func matchesSearch(product *Product, search string) bool {
	if strings.Contains(strings.ToLower(product.Name), search) {
		return true
	}
	if strings.Contains(strings.ToLower(product.Category), search) {
		return true
	}
	for _, tag := range product.Tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}
	return false
}
