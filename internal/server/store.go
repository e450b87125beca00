package server

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"backoffice/internal/api"
)

// DefaultPageSize is the number of customers per list page.
const DefaultPageSize = 20

// Store is an in-memory customer store. All access is mutex-guarded; the
// store is safe for concurrent handlers.
type Store struct {
	mu        sync.RWMutex
	customers map[int64]api.Customer
	nextID    int64
	pageSize  int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		customers: make(map[int64]api.Customer),
		nextID:    1,
		pageSize:  DefaultPageSize,
	}
}

// SetPageSize overrides the list page size. Values below 1 are ignored.
func (s *Store) SetPageSize(n int) {
	if n < 1 {
		return
	}
	s.mu.Lock()
	s.pageSize = n
	s.mu.Unlock()
}

// Get returns the customer with the given id.
func (s *Store) Get(id int64) (api.Customer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	return c, ok
}

// Create inserts a customer, assigning the next identifier. Any id on the
// input is ignored.
func (s *Store) Create(c api.Customer) api.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextID
	s.nextID++
	s.customers[c.ID] = c
	return c
}

// Update replaces the customer with the given id. Server-owned aggregates
// are preserved from the stored record.
func (s *Store) Update(id int64, c api.Customer) (api.Customer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.customers[id]
	if !ok {
		return api.Customer{}, false
	}
	c.ID = id
	c.TotalOrders = existing.TotalOrders
	c.TotalSpent = existing.TotalSpent
	s.customers[id] = c
	return c, true
}

// Count returns the total number of stored customers.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.customers)
}

// Page is one page of list results. NextPage and PrevPage are 1-based page
// numbers, zero when no such page exists.
type Page struct {
	Results  []api.Customer
	Total    int
	NextPage int
	PrevPage int
}

// List returns one page of customers matching the search term, ordered by
// id. Page numbers are 1-based; out-of-range pages yield empty results.
func (s *Store) List(search string, page int) Page {
	if page < 1 {
		page = 1
	}

	s.mu.RLock()
	matched := make([]api.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		if matchesSearch(c, search) {
			matched = append(matched, c)
		}
	}
	pageSize := s.pageSize
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	result := Page{Results: matched[start:end], Total: total}
	if end < total {
		result.NextPage = page + 1
	}
	if page > 1 {
		result.PrevPage = page - 1
	}
	return result
}

// matchesSearch reports whether the customer matches a case-insensitive
// substring search over name, email, and company.
func matchesSearch(c api.Customer, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(c.Name), term) ||
		strings.Contains(strings.ToLower(c.Email), term) ||
		strings.Contains(strings.ToLower(c.Company), term)
}

// seedFile is the YAML fixture layout accepted by LoadSeed. Money amounts
// are plain strings so fixtures never lose precision to float parsing.
type seedFile struct {
	Customers []seedCustomer `yaml:"customers"`
}

type seedCustomer struct {
	Name        string `yaml:"name"`
	Email       string `yaml:"email"`
	Phone       string `yaml:"phone"`
	Company     string `yaml:"company"`
	Source      string `yaml:"source"`
	TotalOrders int    `yaml:"total_orders"`
	TotalSpent  string `yaml:"total_spent"`
	IsActive    *bool  `yaml:"is_active"`
}

// LoadSeed populates the store from a YAML fixture file. Existing records
// are kept; seeded customers get fresh identifiers.
func (s *Store) LoadSeed(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	for i, sc := range seed.Customers {
		c := api.Customer{
			Name:        sc.Name,
			Email:       sc.Email,
			Phone:       sc.Phone,
			Company:     sc.Company,
			Source:      sc.Source,
			TotalOrders: sc.TotalOrders,
			IsActive:    sc.IsActive == nil || *sc.IsActive,
		}
		if sc.TotalSpent != "" {
			spent, err := decimal.NewFromString(sc.TotalSpent)
			if err != nil {
				return 0, fmt.Errorf("invalid total_spent for seed customer %d: %w", i+1, err)
			}
			c.TotalSpent = spent
		}
		s.Create(c)
	}
	return len(seed.Customers), nil
}
