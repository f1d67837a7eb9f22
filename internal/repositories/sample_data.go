package repository

import (
	"time"

	"github.com/bulkmart/catalog-platform/internal/models"
	"github.com/google/uuid"
)

// sampleProducts is the snapshot the fallback store serves while the backing
// store is unreachable. Creation times are staggered so the fixed
// newest-first sort order is deterministic.
func sampleProducts() []*models.Product {
	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	return []*models.Product{
		{
			ID:          uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
			Name:        `Premium 4K Smart TV 55"`,
			Description: `55" Premium 4K Smart TV with HDR, built-in streaming apps, and voice control`,
			Category:    "ELECTRONICS",
			MinOrder:    1,
			Images: []string{
				"https://images.unsplash.com/photo-1593784991095-a205069470b6?auto=format&fit=crop&q=80&w=1000",
				"https://images.unsplash.com/photo-1509281373149-e957c6296406?auto=format&fit=crop&q=80&w=1000",
			},
			PriceRanges: []models.PriceRange{
				{MinQuantity: 1, MaxQuantity: 5, Price: 899999},
				{MinQuantity: 6, MaxQuantity: 20, Price: 849999},
			},
			Specifications: []string{
				"4K Ultra HD Resolution",
				"Smart TV Features",
				"HDR Support",
				"Voice Control",
				"Multiple HDMI Ports",
			},
			CreatedAt: base.Add(3 * time.Hour),
			UpdatedAt: base.Add(3 * time.Hour),
		},
		{
			ID:          uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
			Name:        "Smart Air Conditioner",
			Description: "Smart inverter air conditioner with WiFi control and energy-saving features",
			Category:    "HOME APPLIANCES",
			MinOrder:    1,
			Images: []string{
				"https://images.unsplash.com/photo-1614633833026-0820552978b6?auto=format&fit=crop&q=80&w=1000",
				"https://images.unsplash.com/photo-1624926272725-02fbb4c652cd?auto=format&fit=crop&q=80&w=1000",
			},
			PriceRanges: []models.PriceRange{
				{MinQuantity: 1, MaxQuantity: 3, Price: 749999},
				{MinQuantity: 4, MaxQuantity: 10, Price: 699999},
			},
			Specifications: []string{
				"WiFi Control",
				"Energy Saving Mode",
				"Smart Temperature Control",
				"Timer Function",
				"Sleep Mode",
			},
			CreatedAt: base.Add(2 * time.Hour),
			UpdatedAt: base.Add(2 * time.Hour),
		},
		{
			ID:          uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7"),
			Name:        "Luxury Skincare Set",
			Description: "Premium skincare set including cleanser, toner, serum, and moisturizer",
			Category:    "BEAUTY",
			MinOrder:    1,
			Images: []string{
				"https://images.unsplash.com/photo-1570554886111-e80fcca6a029?auto=format&fit=crop&q=80&w=1000",
				"https://images.unsplash.com/photo-1556228578-0d85b1a4d571?auto=format&fit=crop&q=80&w=1000",
			},
			PriceRanges: []models.PriceRange{
				{MinQuantity: 1, MaxQuantity: 10, Price: 129999},
				{MinQuantity: 11, MaxQuantity: 50, Price: 119999},
			},
			Specifications: []string{
				"All Natural Ingredients",
				"Suitable for All Skin Types",
				"Paraben Free",
				"Dermatologically Tested",
			},
			CreatedAt: base.Add(time.Hour),
			UpdatedAt: base.Add(time.Hour),
		},
		{
			ID:          uuid.MustParse("9f1b6c55-2d2f-4a0f-9c63-8f5d1a2b3c4d"),
			Name:        "Long Grain Rice 25kg",
			Description: "Premium long grain rice in bulk 25kg sacks for restaurants and retailers",
			Category:    "GROCERIES",
			MinOrder:    2,
			Images: []string{
				"https://images.unsplash.com/photo-1586201375761-83865001e31c?auto=format&fit=crop&q=80&w=1000",
			},
			PriceRanges: []models.PriceRange{
				{MinQuantity: 2, MaxQuantity: 9, Price: 65000},
				{MinQuantity: 10, MaxQuantity: 100, Price: 59000},
			},
			Specifications: []string{
				"Grade A Long Grain",
				"25kg Woven Sack",
				"12 Month Shelf Life",
			},
			CreatedAt: base,
			UpdatedAt: base,
		},
	}
}
