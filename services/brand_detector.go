package services

import "strings"

// DefaultBrandVocabulary is used when BRAND_VOCABULARY is not configured.
// Order matters: the first entry contained in a product name wins.
var DefaultBrandVocabulary = []string{
	"Ami Eyes",
	"Maybelline",
	"L'Oreal",
	"Lakme",
	"MAC",
	"Nykaa",
	"Sugar",
	"Revlon",
	"Colorbar",
	"Swiss Beauty",
}

// BrandDetector finds a known brand inside a product title.
type BrandDetector struct {
	vocabulary []string
	lowered    []string
}

func NewBrandDetector(vocabulary []string) *BrandDetector {
	d := &BrandDetector{
		vocabulary: make([]string, 0, len(vocabulary)),
		lowered:    make([]string, 0, len(vocabulary)),
	}
	for _, b := range vocabulary {
		if strings.TrimSpace(b) == "" {
			continue
		}
		d.vocabulary = append(d.vocabulary, b)
		d.lowered = append(d.lowered, strings.ToLower(b))
	}
	return d
}

// Detect returns the first vocabulary entry whose lower-cased form is a
// substring of the lower-cased product name.
func (d *BrandDetector) Detect(productName string) (string, bool) {
	name := strings.ToLower(productName)
	for i, b := range d.lowered {
		if strings.Contains(name, b) {
			return d.vocabulary[i], true
		}
	}
	return "", false
}

// Vocabulary returns the ordered brand list the detector was built with.
func (d *BrandDetector) Vocabulary() []string {
	out := make([]string, len(d.vocabulary))
	copy(out, d.vocabulary)
	return out
}

