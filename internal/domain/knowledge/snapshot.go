package knowledge

// Snapshot is the process-wide, read-only set of loaded records.
// Records of each kind keep the order they were loaded in. A Snapshot is never
// mutated after NewSnapshot returns, so concurrent readers need no locking.
type Snapshot struct {
	customers []Customer
	products  []Product
	policies  []Policy
}

// NewSnapshot partitions records by kind, preserving load order.
func NewSnapshot(records []Record) *Snapshot {
	s := &Snapshot{}
	for _, r := range records {
		switch v := r.(type) {
		case Customer:
			s.customers = append(s.customers, v)
		case Product:
			s.products = append(s.products, v)
		case Policy:
			s.policies = append(s.policies, v)
		}
	}
	return s
}

// Empty returns a snapshot with no records.
func Empty() *Snapshot { return &Snapshot{} }

// Customers returns customer records in load order. Callers must not modify the slice.
func (s *Snapshot) Customers() []Customer { return s.customers }

// Products returns product documents in load order. Callers must not modify the slice.
func (s *Snapshot) Products() []Product { return s.products }

// Policies returns policy entries in load order. Callers must not modify the slice.
func (s *Snapshot) Policies() []Policy { return s.policies }

// Len returns the total number of records.
func (s *Snapshot) Len() int {
	return len(s.customers) + len(s.products) + len(s.policies)
}

// Counts returns the number of records per kind.
func (s *Snapshot) Counts() map[Kind]int {
	return map[Kind]int{
		KindCustomer: len(s.customers),
		KindProduct:  len(s.products),
		KindPolicy:   len(s.policies),
	}
}
