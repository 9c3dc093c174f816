package catalog

import "time"

const DefaultImageURL = "/placeholder-image.png"

type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

// ProductInput is what a caller supplies on create. The mediator owns id
// and timestamps.
type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"imageUrl"`
}

// ProductPatch merges over a stored product. Nil fields are left alone.
type ProductPatch struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
	Category    *string  `json:"category,omitempty"`
	ImageURL    *string  `json:"imageUrl,omitempty"`
}

func (in ProductInput) toProduct(id int64, now time.Time) Product {
	img := in.ImageURL
	if img == "" {
		img = DefaultImageURL
	}
	return Product{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    in.Category,
		ImageURL:    img,
		CreatedAt:   now,
	}
}

func (p ProductPatch) apply(dst Product) Product {
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.Description != nil {
		dst.Description = *p.Description
	}
	if p.Price != nil {
		dst.Price = *p.Price
	}
	if p.Stock != nil {
		dst.Stock = *p.Stock
	}
	if p.Category != nil {
		dst.Category = *p.Category
	}
	if p.ImageURL != nil {
		dst.ImageURL = *p.ImageURL
	}
	return dst
}

// Categories offered by the admin form. The mediator does not enforce them.
var Categories = []string{
	"Electronics",
	"Computers",
	"Audio",
	"Home and Garden",
	"Clothing",
	"Books",
	"Sports",
	"Health and Beauty",
	"Automotive",
	"Toys",
	"Other",
}

func nextID(products []Product) int64 {
	var top int64
	for _, p := range products {
		if p.ID > top {
			top = p.ID
		}
	}
	return top + 1
}

func indexOf(products []Product, id int64) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
