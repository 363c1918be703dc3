package product

import "github.com/shopspring/decimal"

// DefaultCatalog is the canonical eight-product storefront catalog.
func DefaultCatalog() []Product {
	return []Product{
		{ID: "1", Name: "Minimalist Backpack", Description: "Premium lightweight backpack perfect for daily use", Price: price("89.99"), ImageURL: "/backpack.jpg", Category: "accessories"},
		{ID: "2", Name: "Classic Watch", Description: "Elegant timepiece with leather strap", Price: price("149.99"), ImageURL: "/classicwatch.jpg", Category: "accessories"},
		{ID: "3", Name: "Cotton T-Shirt", Description: "Comfortable everyday t-shirt in neutral colors", Price: price("29.99"), ImageURL: "/tshirt.jpg", Category: "clothing"},
		{ID: "4", Name: "Denim Jeans", Description: "Timeless blue denim with perfect fit", Price: price("79.99"), ImageURL: "/jeans.jpg", Category: "clothing"},
		{ID: "5", Name: "Wireless Earbuds", Description: "High-quality sound with noise cancellation", Price: price("129.99"), ImageURL: "/earbuds.jpg", Category: "electronics"},
		{ID: "6", Name: "Sunglasses", Description: "UV protection with stylish frame", Price: price("99.99"), ImageURL: "/sunglasses.jpg", Category: "accessories"},
		{ID: "7", Name: "Sneakers", Description: "Comfortable walking shoes with cushioning", Price: price("119.99"), ImageURL: "/sneakers.jpg", Category: "clothing"},
		{ID: "8", Name: "Phone Case", Description: "Protective case with minimalist design", Price: price("24.99"), ImageURL: "/phonecase.jpg", Category: "electronics"},
	}
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
