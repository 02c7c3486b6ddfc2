package services

import (
	"sync/atomic"

	"catalog-service/models"
)

// ImagePool is the fixed arena of images uploaded for one run. Each slot can be
// claimed once; a claimed image is never offered to another row.
type ImagePool struct {
	files   []models.UploadedImage
	tokens  []string
	claimed []atomic.Bool
}

func NewImagePool(files []models.UploadedImage) *ImagePool {
	p := &ImagePool{
		files:   files,
		tokens:  make([]string, len(files)),
		claimed: make([]atomic.Bool, len(files)),
	}
	for i, f := range files {
		p.tokens[i] = NormalizeFileName(f.FileName)
	}
	return p
}

// Claim scans unclaimed images in upload order and takes the first one whose
// normalized name equals the normalized product name.
func (p *ImagePool) Claim(productName string) (*models.UploadedImage, bool) {
	token := Normalize(productName)
	if token == "" {
		return nil, false
	}
	for i := range p.files {
		if p.matches(i, token) && p.claimed[i].CompareAndSwap(false, true) {
			return &p.files[i], true
		}
	}
	return nil, false
}

// matches reports whether slot i is still free and carries token.
func (p *ImagePool) matches(i int, token string) bool {
	return p.tokens[i] == token && !p.claimed[i].Load()
}

// Len is the number of images in the pool, claimed or not.
func (p *ImagePool) Len() int { return len(p.files) }

// Remaining counts the images nobody has claimed yet.
func (p *ImagePool) Remaining() int {
	n := 0
	for i := range p.claimed {
		if !p.claimed[i].Load() {
			n++
		}
	}
	return n
}

