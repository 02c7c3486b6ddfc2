package controllers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"

	"catalog-service/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	MaxSpreadsheetSize = 50 * 1024 * 1024 // 50MB
	MaxImageSize       = 10 * 1024 * 1024 // 10MB
	MaxImagesPerImport = 500
)

var (
	allowedSpreadsheetExtensions = map[string]bool{
		".csv":  true,
		".txt":  true,
		".xlsx": true,
		".xlsm": true,
	}

	allowedImageTypes = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/webp": true,
		"image/gif":  true,
	}
)

// ImportFlags are the switches of an import request.
type ImportFlags struct {
	Async  bool
	DryRun bool
}

// TemplateQuery is the query of the template download.
type TemplateQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=json csv xlsx"`
}

// RequestValidator checks uploads before they reach the import service.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

// ParseImportFlags reads async and dryRun from the query string or the form.
func (rv *RequestValidator) ParseImportFlags(c *gin.Context) (ImportFlags, error) {
	var flags ImportFlags
	var err error
	if flags.Async, err = boolParam(c, "async"); err != nil {
		return flags, err
	}
	if flags.DryRun, err = boolParam(c, "dryRun"); err != nil {
		return flags, err
	}
	return flags, nil
}

func boolParam(c *gin.Context, name string) (bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		raw = strings.TrimSpace(c.PostForm(name))
	}
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid boolean value for '%s'", name)
	}
	return v, nil
}

func (rv *RequestValidator) ParseTemplateQuery(c *gin.Context) (TemplateQuery, error) {
	var q TemplateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return q, fmt.Errorf("invalid query: %w", err)
	}
	q.Format = strings.ToLower(strings.TrimSpace(q.Format))
	if err := rv.validate.Struct(&q); err != nil {
		return q, errors.New("invalid format, expected json, csv or xlsx")
	}
	if q.Format == "" {
		q.Format = "json"
	}
	return q, nil
}

// ReadUploads validates and loads the spreadsheets ("files", or a single
// "file") and loose images ("images") of a multipart import request.
func (rv *RequestValidator) ReadUploads(c *gin.Context) ([]models.ImportSource, []models.UploadedImage, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, errors.New("expected multipart form data")
	}

	var fileHeaders []*multipart.FileHeader
	fileHeaders = append(fileHeaders, form.File["files"]...)
	fileHeaders = append(fileHeaders, form.File["file"]...)
	if len(fileHeaders) == 0 {
		return nil, nil, errors.New("at least one spreadsheet file is required")
	}
	imageHeaders := form.File["images"]
	if len(imageHeaders) > MaxImagesPerImport {
		return nil, nil, fmt.Errorf("too many images (max %d)", MaxImagesPerImport)
	}

	sources := make([]models.ImportSource, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		if !rv.IsValidSpreadsheet(fh) {
			return nil, nil, fmt.Errorf("invalid file type for %s. Only CSV and XLSX files are allowed", fh.Filename)
		}
		if fh.Size > MaxSpreadsheetSize {
			return nil, nil, fmt.Errorf("file %s too large (max %dMB)", fh.Filename, MaxSpreadsheetSize/(1024*1024))
		}
		data, err := readUpload(fh)
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, models.ImportSource{FileName: fh.Filename, Data: data})
	}

	images := make([]models.UploadedImage, 0, len(imageHeaders))
	for _, fh := range imageHeaders {
		if !rv.IsValidImageType(fh) {
			return nil, nil, fmt.Errorf("invalid image type for file %s. Allowed: jpeg, jpg, png, webp, gif", fh.Filename)
		}
		if fh.Size > MaxImageSize {
			return nil, nil, fmt.Errorf("image %s too large (max %dMB)", fh.Filename, MaxImageSize/(1024*1024))
		}
		data, err := readUpload(fh)
		if err != nil {
			return nil, nil, err
		}
		images = append(images, models.UploadedImage{FileName: fh.Filename, Data: data})
	}
	return sources, images, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s", fh.Filename)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s", fh.Filename)
	}
	return data, nil
}

// IsValidSpreadsheet accepts by extension; browsers send unreliable
// content types for spreadsheets.
func (rv *RequestValidator) IsValidSpreadsheet(file *multipart.FileHeader) bool {
	return allowedSpreadsheetExtensions[strings.ToLower(filepath.Ext(file.Filename))]
}

func (rv *RequestValidator) IsValidImageType(file *multipart.FileHeader) bool {
	if allowedImageTypes[file.Header.Get("Content-Type")] {
		return true
	}
	switch strings.ToLower(filepath.Ext(file.Filename)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		return true
	}
	return false
}
