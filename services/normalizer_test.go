package services

import (
	"sync"
	"testing"

	"catalog-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Ami Eyes  Kajal Black":  "ami-eyes-kajal-black",
		"L'Oreal Paris!":         "loreal-paris",
		"  -Hello--World-  ":     "hello-world",
		"a_b c":                  "ab-c",
		"Tab\tand\nnewline":      "tab-and-newline",
		"":                       "",
		"!!!":                    "",
		"Matte-Lipstick  Red":    "matte-lipstick-red",
		"Ami\u00a0Eyes Product":  "ami-eyes-product",
		"Ami\vEyes\u2003Product": "ami-eyes-product",
		"Kohl\u0085Pencil":       "kohl-pencil",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "Normalize(%q)", in)
	}
}

func TestNormalizeFileName(t *testing.T) {
	assert.Equal(t, "ami-eyes-kajal", NormalizeFileName("images/Ami Eyes Kajal.JPG"))
	assert.Equal(t, "x", NormalizeFileName(`C:\pics\x.png`))
	assert.Equal(t, "archive.tar", StripExtension("archive.tar.gz"))
	assert.Equal(t, "", StripExtension(".hidden"))
	assert.Equal(t, "", StripExtension("images/.jpg"))
	assert.Equal(t, "", NormalizeFileName(".jpg"))
	assert.Equal(t, "noext", StripExtension("noext"))
	assert.Equal(t, "", StripExtension(""))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "ami-eyes-kajal-black-3-5g", Slugify("Ami Eyes Kajal (Black) 3.5g"))
	assert.Equal(t, "l-oreal", Slugify("  L'Oreal!"))
	assert.Equal(t, "", Slugify("---"))
}

func TestBrandDetector(t *testing.T) {
	d := NewBrandDetector(DefaultBrandVocabulary)

	brand, ok := d.Detect("Ami Eyes Kajal Black")
	assert.True(t, ok)
	assert.Equal(t, "Ami Eyes", brand)

	brand, ok = d.Detect("maybelline colossal with MAC brush")
	assert.True(t, ok)
	assert.Equal(t, "Maybelline", brand, "first vocabulary entry wins")

	_, ok = d.Detect("Plain Kohl Pencil")
	assert.False(t, ok)

	brand, ok = NewBrandDetector([]string{"", "  ", "Sugar"}).Detect("sugar pop lipstick")
	assert.True(t, ok)
	assert.Equal(t, "Sugar", brand)

	assert.Equal(t, []string{"Sugar"}, NewBrandDetector([]string{"", "Sugar"}).Vocabulary())
}

func TestImagePoolClaimsOnce(t *testing.T) {
	pool := NewImagePool([]models.UploadedImage{
		{FileName: "Kajal Black.jpg", Data: []byte("a")},
		{FileName: "lipstick.png", Data: []byte("b")},
		{FileName: "kajal-black.PNG", Data: []byte("c")},
	})
	require.Equal(t, 3, pool.Len())

	img, ok := pool.Claim("Kajal Black")
	require.True(t, ok)
	assert.Equal(t, "Kajal Black.jpg", img.FileName)

	img, ok = pool.Claim("KAJAL  black")
	require.True(t, ok)
	assert.Equal(t, "kajal-black.PNG", img.FileName)

	_, ok = pool.Claim("Kajal Black")
	assert.False(t, ok, "both matching images are taken")
	_, ok = pool.Claim("   ")
	assert.False(t, ok)
	assert.Equal(t, 1, pool.Remaining())
}

func TestImagePoolConcurrentClaims(t *testing.T) {
	files := make([]models.UploadedImage, 5)
	for i := range files {
		files[i] = models.UploadedImage{FileName: "serum.jpg"}
	}
	pool := NewImagePool(files)

	var mu sync.Mutex
	claimed := map[*models.UploadedImage]int{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if img, ok := pool.Claim("Serum"); ok {
				mu.Lock()
				claimed[img]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, claimed, 5)
	for _, n := range claimed {
		assert.Equal(t, 1, n)
	}
	assert.Equal(t, 0, pool.Remaining())
}

func TestImagePoolUnicodeWhitespace(t *testing.T) {
	pool := NewImagePool([]models.UploadedImage{{FileName: "Ami Eyes Product.jpg"}})

	img, ok := pool.Claim("Ami\u00a0Eyes Product")
	require.True(t, ok, "no-break space matches a plain space in the file name")
	assert.Equal(t, "Ami Eyes Product.jpg", img.FileName)
}

func TestImagePoolSkipsBareExtension(t *testing.T) {
	pool := NewImagePool([]models.UploadedImage{{FileName: ".jpg"}, {FileName: "jpg.png"}})

	img, ok := pool.Claim("JPG")
	require.True(t, ok)
	assert.Equal(t, "jpg.png", img.FileName, "a bare extension has no name to match")
	_, ok = pool.Claim("jpg")
	assert.False(t, ok)
	assert.Equal(t, 1, pool.Remaining())
}
