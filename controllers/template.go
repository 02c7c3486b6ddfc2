package controllers

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"catalog-service/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const templateSheet = "Products"

// GetImportTemplate describes the accepted columns as JSON or downloads an
// empty sheet with one example row.
func (h *ImportHandler) GetImportTemplate(c *gin.Context) {
	q, err := h.validator.ParseTemplateQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	template := models.ProductImportTemplate()

	switch q.Format {
	case "csv":
		h.writeCSVTemplate(c, template)
	case "xlsx":
		h.writeXLSXTemplate(c, template)
	default:
		c.JSON(http.StatusOK, gin.H{"template": template})
	}
}

func templateHeader(col models.TemplateColumn) string {
	if col.Required {
		return col.Name + " *"
	}
	return col.Name
}

func (h *ImportHandler) writeCSVTemplate(c *gin.Context, template models.ImportTemplate) {
	headers := make([]string, len(template.Columns))
	example := make([]string, len(template.Columns))
	for i, col := range template.Columns {
		headers[i] = templateHeader(col)
		example[i] = col.Example
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=catalog_import_template.csv")
	c.Status(http.StatusOK)

	writer := csv.NewWriter(c.Writer)
	if err := writer.WriteAll([][]string{headers, example}); err != nil {
		h.logger.Error("Failed to write CSV template", zap.Error(err))
	}
}

func (h *ImportHandler) writeXLSXTemplate(c *gin.Context, template models.ImportTemplate) {
	f, err := buildXLSXTemplate(template)
	if err != nil {
		h.logger.Error("Failed to build XLSX template", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate template"})
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=catalog_import_template.xlsx")
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("Failed to write XLSX template", zap.Error(err))
	}
}

func buildXLSXTemplate(template models.ImportTemplate) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", templateSheet); err != nil {
		f.Close()
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	requiredStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	for i, col := range template.Columns {
		header, _ := excelize.CoordinatesToCellName(i+1, 1)
		example, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(templateSheet, header, templateHeader(col))
		_ = f.SetCellValue(templateSheet, example, col.Example)
		style := headerStyle
		if col.Required {
			style = requiredStyle
		}
		_ = f.SetCellStyle(templateSheet, header, header, style)
		colName, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(templateSheet, colName, colName, 22)
	}

	const instructions = "Instructions"
	if _, err := f.NewSheet(instructions); err != nil {
		f.Close()
		return nil, err
	}
	_ = f.SetCellValue(instructions, "A1", "Catalog Import Instructions")
	_ = f.SetCellValue(instructions, "A2", "Columns marked * are required. Upload product images alongside the sheet; an image is matched when its file name matches the product name.")
	for i, col := range template.Columns {
		row := i + 4
		required := "Optional"
		if col.Required {
			required = "Required"
		}
		_ = f.SetCellValue(instructions, fmt.Sprintf("A%d", row), col.Name)
		_ = f.SetCellValue(instructions, fmt.Sprintf("B%d", row), col.Description)
		_ = f.SetCellValue(instructions, fmt.Sprintf("C%d", row), required)
		_ = f.SetCellValue(instructions, fmt.Sprintf("D%d", row), col.Type)
		_ = f.SetCellValue(instructions, fmt.Sprintf("E%d", row), col.Example)
	}
	_ = f.SetColWidth(instructions, "A", "A", 20)
	_ = f.SetColWidth(instructions, "B", "B", 60)
	_ = f.SetColWidth(instructions, "E", "E", 40)

	if idx, err := f.GetSheetIndex(templateSheet); err == nil {
		f.SetActiveSheet(idx)
	}
	return f, nil
}
