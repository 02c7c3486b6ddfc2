package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"catalog-service/models"
	aws_pkg "catalog-service/pkg/aws"
	"catalog-service/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ErrReferenceData aborts a run before any row is touched.
var ErrReferenceData = errors.New("reference data unavailable")

// ImportService runs catalog imports: it parses the uploaded sheets, resolves
// every row against reference data, matches and uploads images and inserts
// one product per valid row. Row failures are collected, never returned.
type ImportService struct {
	products   repository.ProductRepo
	categories repository.CategoryRepo
	brands     repository.BrandRepo
	blobs      BlobStore
	snsClient  aws_pkg.SNSPublisher
	parser     *RowParser
	detector   *BrandDetector
	formatter  *PriceFormatter
	validate   *validator.Validate
	limiter    *rate.Limiter
	observers  []ImportObserver
	cfg        ImportConfig
	logger     *zap.Logger
}

func NewImportService(
	products repository.ProductRepo,
	categories repository.CategoryRepo,
	brands repository.BrandRepo,
	blobs BlobStore,
	snsClient aws_pkg.SNSPublisher,
	cfg ImportConfig,
	logger *zap.Logger,
	observers ...ImportObserver,
) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	vocabulary := cfg.BrandVocabulary
	if len(vocabulary) == 0 {
		vocabulary = DefaultBrandVocabulary
	}
	s := &ImportService{
		products:   products,
		categories: categories,
		brands:     brands,
		blobs:      blobs,
		snsClient:  snsClient,
		parser:     NewRowParser(logger),
		detector:   NewBrandDetector(vocabulary),
		formatter:  NewPriceFormatter(cfg.CurrencySymbol, cfg.CurrencyLocale),
		validate:   validator.New(),
		observers:  observers,
		cfg:        cfg,
		logger:     logger,
	}
	if cfg.PersistRPS > 0 {
		burst := int(cfg.PersistRPS)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.PersistRPS), burst)
	}
	return s
}

type rowResult struct {
	messages  []string
	productID string
	created   bool
}

// Run imports every row of sources. The returned outcome lists file errors
// first and then row messages by row position, whatever order rows finished
// in. Only a reference data failure is returned as an error.
func (s *ImportService) Run(ctx context.Context, sources []models.ImportSource, images []models.UploadedImage, opts ImportOptions) (*models.ImportOutcome, error) {
	start := time.Now()
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	log := s.logger.With(zap.String("job_id", opts.JobID), zap.Bool("dry_run", opts.DryRun))
	progress := &progressTracker{fn: opts.Progress}

	progress.stage(0, 0, StageParsing)
	rows, fileErrors := s.parser.ParseAll(sources)
	outcome := &models.ImportOutcome{
		TotalRows: len(rows),
		Errors:    make([]string, 0, len(fileErrors)),
		DryRun:    opts.DryRun,
	}
	outcome.Errors = append(outcome.Errors, fileErrors...)

	if len(rows) == 0 {
		log.Info("Catalog import has no rows", zap.Int("files", len(sources)), zap.Int("file_errors", len(fileErrors)))
		progress.stage(0, 0, StageDone)
		s.finish(ctx, outcome, opts, start, log)
		return outcome, nil
	}

	progress.stage(0, len(rows), StageReference)
	refs, err := LoadReferenceCache(ctx, s.categories, s.brands)
	if err != nil {
		log.Error("Failed to load reference data", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrReferenceData, err)
	}
	log.Info("Catalog import started",
		zap.Int("rows", len(rows)),
		zap.Int("images", len(images)),
		zap.Int("categories", refs.CategoryCount()),
		zap.Int("brands", refs.BrandCount()),
		zap.Int("workers", s.workers()),
	)

	pool := NewImagePool(images)
	results := make([]rowResult, len(rows))

	var g errgroup.Group
	g.SetLimit(s.workers())
	for i := range rows {
		if err := ctx.Err(); err != nil {
			results[i] = cancelledRow(rows[i].Position, err)
			progress.advance(len(rows))
			continue
		}
		g.Go(func() error {
			results[i] = s.processRow(ctx, rows[i], refs, pool, opts.DryRun, log)
			progress.advance(len(rows))
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		outcome.Errors = append(outcome.Errors, r.messages...)
		if r.created {
			outcome.SuccessCount++
			if r.productID != "" {
				outcome.CreatedIDs = append(outcome.CreatedIDs, r.productID)
			}
		}
	}

	progress.stage(len(rows), len(rows), StageDone)
	log.Info("Catalog import finished",
		zap.Int("rows", len(rows)),
		zap.Int("success", outcome.SuccessCount),
		zap.Int("errors", len(outcome.Errors)),
		zap.Int("unclaimed_images", pool.Remaining()),
		zap.Duration("elapsed", time.Since(start)),
	)
	s.finish(ctx, outcome, opts, start, log)
	return outcome, nil
}

func (s *ImportService) processRow(ctx context.Context, row models.RawProductRow, refs *ReferenceCache, pool *ImagePool, dryRun bool, log *zap.Logger) rowResult {
	pos := row.Position
	log = log.With(zap.Int("row", pos), zap.String("file", row.SourceFile), zap.String("product", row.ProductName))
	fail := func(format string, args ...interface{}) rowResult {
		msg := fmt.Sprintf("Row %d: %s", pos, fmt.Sprintf(format, args...))
		log.Warn("Import row rejected", zap.String("reason", msg))
		return rowResult{messages: []string{msg}}
	}

	if err := ctx.Err(); err != nil {
		return cancelledRow(pos, err)
	}

	if err := s.validate.Struct(row); err != nil {
		return fail("missing required fields")
	}

	category, ok := refs.Category(row.CategoryName)
	if !ok {
		return fail("Category \"%s\" not found", row.CategoryName)
	}

	// A vocabulary hit without a brand record leaves the brand unset.
	var brandID *string
	var brandName string
	if detected, ok := s.detector.Detect(row.ProductName); ok {
		if b, known := refs.Brand(detected); known {
			id := b.ID
			brandID = &id
			brandName = b.Name
		}
	}

	price, err := ParsePrice(row.BasePriceText)
	if err != nil || price <= 0 {
		return fail("Invalid price")
	}

	discounts := DeriveDiscounts(price,
		tierFromRow(row.Tier1Quantity, row.Tier1UnitPrice, defaultTier1Range),
		tierFromRow(row.Tier2Quantity, row.Tier2UnitPrice, defaultTier2Range),
	)

	imageURL := row.ImagePathHint
	var uploadedKey, uploadWarning string
	if img, matched := pool.Claim(row.ProductName); matched {
		log.Debug("Matched product image", zap.String("image", img.FileName))
		if !dryRun && s.blobs != nil {
			key := s.imageKey(img.FileName)
			url, err := s.blobs.Upload(ctx, img.Data, key, http.DetectContentType(img.Data))
			if err != nil {
				log.Warn("Image upload failed", zap.String("image", img.FileName), zap.Error(err))
				uploadWarning = fmt.Sprintf("Row %d: image upload failed, product \"%s\" was created without an image (%v)", pos, row.ProductName, err)
			} else {
				imageURL = url
				uploadedKey = key
			}
		}
	}

	product := s.assemble(row, price, category, brandID, brandName, discounts, imageURL)
	if dryRun {
		return rowResult{created: true}
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			s.discardBlob(ctx, uploadedKey, log)
			return cancelledRow(pos, err)
		}
	}
	if err := s.products.Create(ctx, product); err != nil {
		s.discardBlob(ctx, uploadedKey, log)
		return fail("%s", err.Error())
	}

	res := rowResult{created: true, productID: product.ID}
	if uploadWarning != "" {
		res.messages = []string{uploadWarning}
	}
	return res
}

func (s *ImportService) assemble(row models.RawProductRow, price float64, category models.Category, brandID *string, brandName string, d Discounts, imageURL string) *models.Product {
	description := row.LongDescription
	if description == "" {
		description = row.ShortDescription
	}
	images := []string{}
	if imageURL != "" {
		images = append(images, imageURL)
	}
	now := time.Now().UTC()
	return &models.Product{
		ID:               uuid.New().String(),
		Name:             row.ProductName,
		Price:            price,
		FormattedPrice:   s.formatter.Format(price),
		CategoryID:       category.ID,
		CategoryName:     category.Name,
		BrandID:          brandID,
		BrandName:        brandName,
		Description:      description,
		ShortDescription: row.ShortDescription,
		Slug:             Slugify(row.ProductName),
		Stock:            models.StockFlags{InStock: true, IsNew: true},
		DiscountTier1Pct: d.Tier1Pct,
		DiscountTier2Pct: d.Tier2Pct,
		ImageURL:         imageURL,
		Images:           images,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (s *ImportService) imageKey(fileName string) string {
	token := NormalizeFileName(fileName)
	if token == "" {
		token = "image"
	}
	return fmt.Sprintf("%s%s-%s%s", s.cfg.ImagePrefix, uuid.New().String(), token, strings.ToLower(path.Ext(fileName)))
}

// discardBlob deletes an image uploaded for a row that was not persisted, so a
// row leaves either a product with its image or nothing.
func (s *ImportService) discardBlob(ctx context.Context, key string, log *zap.Logger) {
	if key == "" || s.blobs == nil {
		return
	}
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.blobs.Delete(dctx, key); err != nil {
		log.Error("Failed to delete orphaned image", zap.String("key", key), zap.Error(err))
	}
}

func (s *ImportService) finish(ctx context.Context, outcome *models.ImportOutcome, opts ImportOptions, start time.Time, log *zap.Logger) {
	elapsed := time.Since(start)
	octx := context.WithoutCancel(ctx)
	for _, o := range s.observers {
		o.ObserveImport(octx, outcome, elapsed)
	}
	if opts.DryRun || s.snsClient == nil || s.cfg.EventTopicArn == "" {
		return
	}

	event := ImportCompletedEvent{
		Type:         EventImportCompleted,
		JobID:        opts.JobID,
		TotalRows:    outcome.TotalRows,
		SuccessCount: outcome.SuccessCount,
		ErrorCount:   len(outcome.Errors),
		ProductIDs:   outcome.CreatedIDs,
		CompletedAt:  time.Now().UTC(),
	}
	eventBytes, err := json.Marshal(event)
	if err != nil {
		log.Error("Failed to marshal import completed event", zap.Error(err))
		return
	}
	pctx, cancel := context.WithTimeout(octx, 5*time.Second)
	defer cancel()
	if err := s.snsClient.Publish(pctx, s.cfg.EventTopicArn, eventBytes); err != nil {
		log.Error("Failed to publish import completed event", zap.Error(err))
		return
	}
	log.Info("Published import completed event", zap.Int("success", outcome.SuccessCount))
}

func (s *ImportService) workers() int {
	if s.cfg.Workers < 1 {
		return 1
	}
	return s.cfg.Workers
}

func cancelledRow(pos int, cause error) rowResult {
	return rowResult{messages: []string{fmt.Sprintf("Row %d: import cancelled (%v)", pos, cause)}}
}

type progressTracker struct {
	mu   sync.Mutex
	fn   ProgressFunc
	done int
}

func (p *progressTracker) stage(current, total int, stage string) {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fn(models.ImportProgress{Current: current, Total: total, Stage: stage})
}

func (p *progressTracker) advance(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	if p.fn != nil {
		p.fn(models.ImportProgress{Current: p.done, Total: total, Stage: StageRows})
	}
}
