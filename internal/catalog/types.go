package catalog

// Options lists the variant dimensions a product is sold in. Products
// without variants carry a nil Options.
type Options struct {
	Sizes  []string `json:"sizes,omitempty"`
	Colors []string `json:"colors,omitempty"`
}

// Dimensions are the shipping dimensions in centimeters.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Review is one customer review attached to a product.
type Review struct {
	Reviewer string `json:"reviewer"`
	Rating   int    `json:"rating"`
	Text     string `json:"text"`
	Date     string `json:"date"`
}

// Question is one Q&A entry attached to a product.
type Question struct {
	Question string `json:"q"`
	Answer   string `json:"a"`
	Date     string `json:"date"`
}

// Product is a catalog entry. Everything except Reviews/Questions is
// immutable once generated; those two are append-only via the store.
type Product struct {
	ID          int        `json:"id"`
	SKU         string     `json:"sku"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Price       int64      `json:"price"`
	OldPrice    *int64     `json:"old_price,omitempty"`
	Description string     `json:"description"`
	Images      []string   `json:"images"`
	Rating      float64    `json:"rating"`
	ReviewCount int        `json:"review_count"`
	Stock       int        `json:"stock"`
	Tags        []string   `json:"tags"`
	WeightKg    float64    `json:"weight_kg"`
	Dimensions  Dimensions `json:"dimensions_cm"`
	Options     *Options   `json:"options,omitempty"`
	Reviews     []Review   `json:"reviews"`
	Questions   []Question `json:"questions"`
}

// HasVariants reports whether the product declares any variant dimension.
func (p *Product) HasVariants() bool {
	if p == nil || p.Options == nil {
		return false
	}
	return len(p.Options.Sizes) > 0 || len(p.Options.Colors) > 0
}
