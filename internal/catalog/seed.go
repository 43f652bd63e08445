package catalog

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"CandyShop/internal/store"
)

// DefaultProducts is the catalog a fresh store starts with.
func DefaultProducts() []store.Product {
	return []store.Product{
		{
			ID:          1,
			Name:        "Belgian Chocolate Cupcake",
			Price:       decimal.RequireFromString("8.99"),
			Description: "Chocolate sponge topped with premium Belgian ganache",
			Image:       "https://images.unsplash.com/photo-1587668178277-295251f900ce?w=400",
			Stock:       50,
			Category:    "chocolate",
		},
		{
			ID:          2,
			Name:        "Red Velvet Cupcake",
			Price:       decimal.RequireFromString("9.99"),
			Description: "Classic red velvet with cream cheese frosting",
			Image:       "https://images.unsplash.com/photo-1614707267537-b85aaf00c4b7?w=400",
			Stock:       30,
			Category:    "special",
		},
		{
			ID:          3,
			Name:        "Vanilla Cupcake",
			Price:       decimal.RequireFromString("7.99"),
			Description: "Pure Madagascar vanilla with buttercream",
			Image:       "https://images.unsplash.com/photo-1603532648955-039310d9ed75?w=400",
			Stock:       40,
			Category:    "classic",
		},
		{
			ID:          4,
			Name:        "Strawberry Cupcake",
			Price:       decimal.RequireFromString("8.99"),
			Description: "Fresh strawberries with whipped cream topping",
			Image:       "https://images.unsplash.com/photo-1576618148400-f54bed99fcfd?w=400",
			Stock:       35,
			Category:    "fruit",
		},
		{
			ID:          5,
			Name:        "Sicilian Lemon Cupcake",
			Price:       decimal.RequireFromString("8.99"),
			Description: "Refreshing Sicilian lemon cupcake",
			Image:       "https://images.unsplash.com/photo-1599785209707-a456fc1337bb?w=400",
			Stock:       25,
			Category:    "fruit",
		},
		{
			ID:          6,
			Name:        "Nutella Cupcake",
			Price:       decimal.RequireFromString("10.99"),
			Description: "Nutella filling with a hazelnut topping",
			Image:       "https://images.unsplash.com/photo-1558961363-fa8fdf82db35?w=400",
			Stock:       20,
			Category:    "special",
		},
	}
}

// errSkipSeed aborts the update so nothing is written.
var errSkipSeed = errors.New("catalog already seeded")

// Seed fills an empty catalog with products and persists it. Once any
// product exists it does nothing and reports false.
func Seed(ctx context.Context, u *store.Unit, products []store.Product) (bool, error) {
	seeded := false
	err := u.Update(ctx, func(d *store.Document) error {
		if len(d.Products) > 0 {
			return errSkipSeed
		}
		d.Products = append(d.Products, products...)
		seeded = true
		return nil
	})
	if errors.Is(err, errSkipSeed) {
		return false, nil
	}
	return seeded, err
}
