package refdata

import (
	"fmt"
	"sync"
)

// sbKey identifies a service-baggage ruleset.
type sbKey struct {
	vendor string
	itemNo int
}

// MemoryStore is an in-memory Store. Loading happens during request
// setup; lookups afterwards are read-only and safe for concurrent use.
type MemoryStore struct {
	mu             sync.RWMutex
	customers      map[string]*Customer
	serviceBaggage map[sbKey]*ServiceBaggageRuleset
	rates          []Rate
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		customers:      make(map[string]*Customer),
		serviceBaggage: make(map[sbKey]*ServiceBaggageRuleset),
	}
}

// PutCustomer adds or replaces a customer record.
func (s *MemoryStore) PutCustomer(c *Customer) error {
	if c == nil || c.PCC == "" {
		return fmt.Errorf("customer record requires a PCC")
	}
	s.mu.Lock()
	s.customers[c.PCC] = c
	s.mu.Unlock()
	return nil
}

// PutServiceBaggage adds or replaces a service-baggage ruleset.
func (s *MemoryStore) PutServiceBaggage(rs *ServiceBaggageRuleset) error {
	if rs == nil || rs.Vendor == "" || rs.ItemNo == 0 {
		return fmt.Errorf("service-baggage ruleset requires vendor and item number")
	}
	s.mu.Lock()
	s.serviceBaggage[sbKey{rs.Vendor, rs.ItemNo}] = rs
	s.mu.Unlock()
	return nil
}

// PutRate appends a bank selling rate.
func (s *MemoryStore) PutRate(r Rate) {
	s.mu.Lock()
	s.rates = append(s.rates, r)
	s.mu.Unlock()
}

// Customer looks up a customer record by PCC.
func (s *MemoryStore) Customer(pcc string) (*Customer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[pcc]
	return c, ok
}

// ServiceBaggage looks up a ruleset by vendor and item number.
func (s *MemoryStore) ServiceBaggage(vendor string, itemNo int) (*ServiceBaggageRuleset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rs, ok := s.serviceBaggage[sbKey{vendor, itemNo}]
	return rs, ok
}

// Rates returns all bank selling rates.
func (s *MemoryStore) Rates() []Rate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Rate, len(s.rates))
	copy(out, s.rates)
	return out
}

// ReplaceAll atomically swaps the full store contents. Used by the file
// source on hot reload so readers never observe a half-loaded store.
func (s *MemoryStore) ReplaceAll(customers []*Customer, rulesets []*ServiceBaggageRuleset, rates []Rate) {
	newCustomers := make(map[string]*Customer, len(customers))
	for _, c := range customers {
		newCustomers[c.PCC] = c
	}
	newSB := make(map[sbKey]*ServiceBaggageRuleset, len(rulesets))
	for _, rs := range rulesets {
		newSB[sbKey{rs.Vendor, rs.ItemNo}] = rs
	}

	s.mu.Lock()
	s.customers = newCustomers
	s.serviceBaggage = newSB
	s.rates = rates
	s.mu.Unlock()
}
