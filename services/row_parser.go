package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"catalog-service/models"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var errUnsupportedFormat = errors.New("unsupported file format, expected .csv or .xlsx")

// columnAliases maps canonical header text (lower case, alphanumerics only)
// to the row field it fills.
var columnAliases = map[string]string{
	"name":               "product_name",
	"productname":        "product_name",
	"product":            "product_name",
	"title":              "product_name",
	"producttitle":       "product_name",
	"category":           "category_name",
	"categoryname":       "category_name",
	"productcategory":    "category_name",
	"price":              "base_price",
	"baseprice":          "base_price",
	"mrp":                "base_price",
	"regularprice":       "base_price",
	"unitprice":          "base_price",
	"priceperunit":       "base_price",
	"shortdescription":   "short_description",
	"shortdesc":          "short_description",
	"summary":            "short_description",
	"description":        "long_description",
	"longdescription":    "long_description",
	"productdescription": "long_description",
	"details":            "long_description",
	"tier1quantity":      "tier1_quantity",
	"tier1qty":           "tier1_quantity",
	"quantitytier1":      "tier1_quantity",
	"tier1price":         "tier1_unit_price",
	"tier1unitprice":     "tier1_unit_price",
	"59price":            "tier1_unit_price",
	"price59":            "tier1_unit_price",
	"price5to9":          "tier1_unit_price",
	"priceperunit59":     "tier1_unit_price",
	"tier2quantity":      "tier2_quantity",
	"tier2qty":           "tier2_quantity",
	"quantitytier2":      "tier2_quantity",
	"tier2price":         "tier2_unit_price",
	"tier2unitprice":     "tier2_unit_price",
	"10price":            "tier2_unit_price",
	"price10":            "tier2_unit_price",
	"price10plus":        "tier2_unit_price",
	"priceperunit10":     "tier2_unit_price",
	"image":              "image",
	"imageurl":           "image",
	"imagepath":          "image",
	"imagename":          "image",
	"photo":              "image",
	"picture":            "image",
}

// RowParser decodes uploaded spreadsheets into raw product rows. It does
// structural extraction only; field validation happens during the import.
type RowParser struct {
	logger *zap.Logger
}

func NewRowParser(logger *zap.Logger) *RowParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RowParser{logger: logger}
}

// ParseAll decodes every source independently. A file that cannot be decoded
// or holds no data rows yields one file error and contributes no rows. Rows are
// concatenated in upload order and numbered from 1 across all files.
func (p *RowParser) ParseAll(sources []models.ImportSource) ([]models.RawProductRow, []string) {
	var rows []models.RawProductRow
	var fileErrors []string

	for _, src := range sources {
		records, err := decodeSource(src)
		if err != nil {
			p.logger.Warn("Failed to decode import file", zap.String("file", src.FileName), zap.Error(err))
			fileErrors = append(fileErrors, fmt.Sprintf("File \"%s\" could not be read: %v", src.FileName, err))
			continue
		}

		fileRows := make([]models.RawProductRow, 0, len(records))
		for _, rec := range records {
			if rec.blank {
				continue
			}
			fileRows = append(fileRows, rowFromRecord(rec.fields, src.FileName))
		}
		if len(fileRows) == 0 {
			fileErrors = append(fileErrors, fmt.Sprintf("File \"%s\" is empty", src.FileName))
			continue
		}
		p.logger.Debug("Parsed import file", zap.String("file", src.FileName), zap.Int("rows", len(fileRows)))
		rows = append(rows, fileRows...)
	}

	for i := range rows {
		rows[i].Position = i + 1
	}
	return rows, fileErrors
}

// record is one decoded line keyed by row field. blank is set when every raw
// cell of the line was empty, whether or not its columns were recognized.
type record struct {
	fields map[string]string
	blank  bool
}

func decodeSource(src models.ImportSource) ([]record, error) {
	switch strings.ToLower(filepath.Ext(src.FileName)) {
	case ".csv", ".txt":
		return parseCSV(bytes.NewReader(src.Data))
	case ".xlsx", ".xlsm":
		return parseXLSX(bytes.NewReader(src.Data))
	default:
		return nil, errUnsupportedFormat
	}
}

// parseCSV reads a header line and the records below it. An empty stream is
// not an error: it simply has no records.
func parseCSV(r io.Reader) ([]record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}
	keys := canonicalHeaders(headers)

	var records []record
	line := 1
	for {
		values, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", line, err)
		}
		records = append(records, recordFromValues(keys, values))
	}
	return records, nil
}

// parseXLSX reads the "Products" sheet when present, else the first sheet.
func parseXLSX(r io.Reader) ([]record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}
	sheetName := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, "Products") {
			sheetName = name
			break
		}
	}

	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}
	if len(excelRows) == 0 {
		return nil, nil
	}

	keys := canonicalHeaders(excelRows[0])
	records := make([]record, 0, len(excelRows)-1)
	for _, values := range excelRows[1:] {
		records = append(records, recordFromValues(keys, values))
	}
	return records, nil
}

func canonicalHeaders(headers []string) []string {
	keys := make([]string, len(headers))
	for i, h := range headers {
		h = strings.TrimSuffix(strings.TrimSpace(h), "*")
		keys[i] = canonicalHeader(h)
	}
	return keys
}

func canonicalHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func recordFromValues(keys, values []string) record {
	rec := record{fields: make(map[string]string, len(keys)), blank: true}
	for i, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			rec.blank = false
		}
		if i >= len(keys) || keys[i] == "" {
			continue
		}
		field, ok := columnAliases[keys[i]]
		if !ok {
			continue
		}
		// first matching column wins when a sheet repeats an alias
		if _, seen := rec.fields[field]; seen {
			continue
		}
		rec.fields[field] = v
	}
	return rec
}

func rowFromRecord(fields map[string]string, fileName string) models.RawProductRow {
	return models.RawProductRow{
		SourceFile:       fileName,
		ProductName:      fields["product_name"],
		CategoryName:     fields["category_name"],
		BasePriceText:    fields["base_price"],
		ShortDescription: fields["short_description"],
		LongDescription:  fields["long_description"],
		Tier1Quantity:    fields["tier1_quantity"],
		Tier1UnitPrice:   fields["tier1_unit_price"],
		Tier2Quantity:    fields["tier2_quantity"],
		Tier2UnitPrice:   fields["tier2_unit_price"],
		ImagePathHint:    fields["image"],
	}
}
