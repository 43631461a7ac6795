package domain

// Item is a sweet on the shop's shelf. Price and Quantity are never negative.
type Item struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// ItemPatch carries a partial update. Nil fields are left untouched.
type ItemPatch struct {
	Name     *string
	Category *string
	Price    *float64
	Quantity *int
}

// IsEmpty reports whether the patch would change nothing.
func (p ItemPatch) IsEmpty() bool {
	return p.Name == nil && p.Category == nil && p.Price == nil && p.Quantity == nil
}

// HasNegative reports whether the patch sets a negative price or quantity.
func (p ItemPatch) HasNegative() bool {
	return (p.Price != nil && *p.Price < 0) || (p.Quantity != nil && *p.Quantity < 0)
}

// Apply merges the set fields of p onto item.
func (p ItemPatch) Apply(item *Item) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
}

// SearchFilter narrows a catalog listing. Empty strings and nil bounds impose
// no constraint.
type SearchFilter struct {
	Name     string
	Category string
	MinPrice *float64
	MaxPrice *float64
}
