package domain

// Product is a catalog entry as returned by the remote product API.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	Category string  `json:"category"`
	Country  string  `json:"country"`
	Price    float64 `json:"price"`
}

// DetailRoute returns the client route for the product's detail view.
func (p Product) DetailRoute() string {
	return "/products/" + p.Category + "/" + p.Slug
}
