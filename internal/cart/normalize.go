package cart

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jafarshop/storefront/internal/domain"
)

// PlaceholderImage is shown for products without images
const PlaceholderImage = "/images/placeholder.png"

// NewLineItem normalizes a product snapshot into a line item.
// This is the only place display metadata and price are read from the catalog record.
func NewLineItem(product domain.ProductSnapshot, variantKey string, quantity int) domain.CartLineItem {
	return domain.CartLineItem{
		ProductID:  strings.TrimSpace(product.ID),
		VariantKey: selectVariant(variantKey, product.Sizes, product.CustomFit),
		Name:       strings.TrimSpace(product.Name),
		Image:      firstImage(product.Images),
		Category:   strings.TrimSpace(product.Category),
		UnitPrice:  normalizePrice(product.Price),
		Quantity:   clampQuantity(quantity),
	}
}

// Restore rebuilds a valid state from persisted data.
// Items without a product id or with a non-positive quantity are dropped,
// duplicate keys are merged, and a restored notification is never shown again.
func Restore(persisted *domain.CartState) domain.CartState {
	if persisted == nil {
		return domain.CartState{Items: []domain.CartLineItem{}}
	}

	out := persisted.Clone()
	out.Items = make([]domain.CartLineItem, 0, len(persisted.Items))
	index := make(map[domain.LineKey]int, len(persisted.Items))

	for _, item := range persisted.Items {
		item.ProductID = strings.TrimSpace(item.ProductID)
		if item.ProductID == "" || item.Quantity <= 0 {
			continue
		}
		item.VariantKey = normalizeVariant(item.VariantKey, false)
		item.UnitPrice = normalizePrice(item.UnitPrice)
		if item.Image == "" {
			item.Image = PlaceholderImage
		}

		item.Quantity = clampQuantity(item.Quantity)

		if i, ok := index[item.Key()]; ok {
			out.Items[i].Quantity = addQuantity(out.Items[i].Quantity, item.Quantity)
			continue
		}
		index[item.Key()] = len(out.Items)
		out.Items = append(out.Items, item)
	}

	if out.LastAddedNotification != nil {
		out.LastAddedNotification.IsOpen = false
	}
	return out
}

// selectVariant keeps variantKey when it names one of the product's sizes.
// Anything else on a sized product falls back to the no-size sentinel.
func selectVariant(variantKey string, sizes []string, customFit bool) string {
	v := strings.TrimSpace(variantKey)
	if len(sizes) == 0 || v == "" {
		return normalizeVariant(v, customFit)
	}
	for _, size := range sizes {
		if strings.TrimSpace(size) == v {
			return v
		}
	}
	if customFit && v == domain.VariantCustomFit {
		return v
	}
	return normalizeVariant("", customFit)
}

func normalizeVariant(variantKey string, customFit bool) string {
	v := strings.TrimSpace(variantKey)
	if v != "" {
		return v
	}
	if customFit {
		return domain.VariantCustomFit
	}
	return domain.VariantStandard
}

func normalizePrice(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	return p.Round(2)
}

func firstImage(images []string) string {
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			return img
		}
	}
	return PlaceholderImage
}

func clampQuantity(q int) int {
	if q < 1 {
		return 1
	}
	if q > domain.MaxLineQuantity {
		return domain.MaxLineQuantity
	}
	return q
}

// addQuantity merges two positive quantities, saturating at MaxLineQuantity
func addQuantity(a, b int) int {
	if b > domain.MaxLineQuantity-a {
		return domain.MaxLineQuantity
	}
	return a + b
}
