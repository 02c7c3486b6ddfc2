package models

import "time"

// ImportSource is one uploaded spreadsheet, kept in memory until it has been parsed.
type ImportSource struct {
	FileName string
	Data     []byte
}

// UploadedImage is one loose image file offered to the matcher for the duration of a run.
type UploadedImage struct {
	FileName string
	Data     []byte
}

// RawProductRow is a spreadsheet row after column extraction. Position is 1-based
// across every file of the run, in upload order.
type RawProductRow struct {
	Position         int    `json:"position"`
	SourceFile       string `json:"source_file"`
	ProductName      string `json:"product_name" validate:"required"`
	CategoryName     string `json:"category_name" validate:"required"`
	BasePriceText    string `json:"base_price" validate:"required"`
	ShortDescription string `json:"short_description,omitempty"`
	LongDescription  string `json:"long_description,omitempty"`
	Tier1Quantity    string `json:"tier1_quantity,omitempty"`
	Tier1UnitPrice   string `json:"tier1_unit_price,omitempty"`
	Tier2Quantity    string `json:"tier2_quantity,omitempty"`
	Tier2UnitPrice   string `json:"tier2_unit_price,omitempty"`
	ImagePathHint    string `json:"image,omitempty"`
}

// ImportOutcome is the end-of-run report. File errors come first, then row
// messages in row order.
type ImportOutcome struct {
	SuccessCount int      `json:"successCount"`
	Errors       []string `json:"errors"`
	TotalRows    int      `json:"totalRows"`
	CreatedIDs   []string `json:"createdIds,omitempty"`
	DryRun       bool     `json:"dryRun,omitempty"`
}

// ImportProgress is the advisory progress tuple published after each row.
type ImportProgress struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Stage   string `json:"stage"`
}

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
	JobFailed     JobStatus = "failed"
)

// ImportJob is the metadata of an asynchronous import kept in Redis.
type ImportJob struct {
	ID          string          `json:"job_id"`
	Status      JobStatus       `json:"status"`
	DryRun      bool            `json:"dry_run"`
	SourceNames []string        `json:"source_files"`
	ImageCount  int             `json:"image_count"`
	RequestedBy string          `json:"requested_by,omitempty"`
	Progress    *ImportProgress `json:"progress,omitempty"`
	Result      *ImportOutcome  `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ImportJobRecord is the stored form of ImportJob. StagingDir never leaves the service.
type ImportJobRecord struct {
	ImportJob
	StagingDir string `json:"staging_dir"`
}

// TemplateColumn describes one accepted import column.
type TemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"`
	Example     string `json:"example"`
}

// ImportTemplate is the downloadable description of the import layout.
type ImportTemplate struct {
	Columns []TemplateColumn `json:"columns"`
}

// ProductImportTemplate returns the canonical column layout for catalog imports.
func ProductImportTemplate() ImportTemplate {
	return ImportTemplate{Columns: []TemplateColumn{
		{Name: "Product Name", Description: "Product title. Brand names inside the title are detected automatically.", Required: true, Type: "string", Example: "Ami Eyes Kajal Black"},
		{Name: "Category", Description: "Existing category name (case-insensitive).", Required: true, Type: "string", Example: "Eyes"},
		{Name: "Price", Description: "Base unit price. Currency symbols and thousands separators are accepted.", Required: true, Type: "number", Example: "$1,299.00"},
		{Name: "Short Description", Description: "One-line summary.", Type: "string", Example: "Smudge-proof kajal"},
		{Name: "Description", Description: "Long description.", Type: "string", Example: "Long lasting, ophthalmologically tested."},
		{Name: "Tier 1 Quantity", Description: "Quantity range for the first discount tier.", Type: "string", Example: "5-9"},
		{Name: "Tier 1 Price", Description: "Unit price when buying the tier 1 quantity.", Type: "number", Example: "1199"},
		{Name: "Tier 2 Quantity", Description: "Quantity range for the second discount tier.", Type: "string", Example: "10+"},
		{Name: "Tier 2 Price", Description: "Unit price when buying the tier 2 quantity.", Type: "number", Example: "1099"},
		{Name: "Image", Description: "Image URL used when no uploaded image matches the product name.", Type: "string", Example: "https://cdn.example.com/kajal.jpg"},
	}}
}
