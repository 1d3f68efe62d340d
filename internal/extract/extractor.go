package extract

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/catalog-scraper/internal/catalog"
)

// Selectors for the shop's product cards.
const (
	ProductSelector = "li.product"
	TitleSelector   = ".woo-loop-product__title a"
	PriceSelector   = ".price .woocommerce-Price-amount bdi"
	ImageSelector   = ".mf-product-thumbnail img"
)

// Config controls post-validation.
type Config struct {
	// AllowZeroPrice keeps products whose price parses to exactly zero.
	AllowZeroPrice bool
}

// Stats counts what happened to the product cards of one page.
type Stats struct {
	Blocks         int
	Emitted        int
	SkippedRaw     int
	SkippedCleaned int
}

// Extractor pulls product records out of listing page HTML.
type Extractor struct {
	cfg    Config
	logger *zap.Logger
}

// New builds an Extractor.
func New(cfg Config, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{cfg: cfg, logger: logger}
}

// Extract returns the valid products of a page in document order.
func (e *Extractor) Extract(html []byte, pageNumber int) []catalog.Product {
	products, _ := e.ExtractWithStats(html, pageNumber)
	return products
}

// ExtractWithStats is Extract plus per-card outcome counts.
func (e *Extractor) ExtractWithStats(html []byte, pageNumber int) ([]catalog.Product, Stats) {
	products := make([]catalog.Product, 0)
	var stats Stats

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		e.logger.Error("parse page html", zap.Int("page", pageNumber), zap.Error(err))
		return products, stats
	}

	doc.Find(ProductSelector).Each(func(_ int, block *goquery.Selection) {
		stats.Blocks++
		product, ok := e.extractProduct(block, pageNumber, &stats)
		if !ok {
			return
		}
		stats.Emitted++
		products = append(products, product)
	})

	e.logger.Info("page extracted",
		zap.Int("page", pageNumber),
		zap.Int("blocks", stats.Blocks),
		zap.Int("products", stats.Emitted),
	)
	return products, stats
}

func (e *Extractor) extractProduct(block *goquery.Selection, pageNumber int, stats *Stats) (catalog.Product, bool) {
	raw := RawProduct{
		Title: Locate(block, TitleSelector),
		Price: Locate(block, PriceSelector),
		Image: Locate(block, ImageSelector),
	}

	if missing := MissingRaw(raw); len(missing) > 0 {
		stats.SkippedRaw++
		msg := "skipping product due to missing elements"
		if allMissing(missing) {
			msg = "skipping product due to all elements missing"
		}
		e.logger.Warn(msg, zap.Int("page", pageNumber), zap.String("missing", joinFields(missing)))
		return catalog.Product{}, false
	}

	cleaned := Clean(raw)
	if !cleaned.Price.Valid {
		e.logger.Debug("price did not parse",
			zap.Int("page", pageNumber),
			zap.String("raw_price", raw.Price.Text()),
		)
	}

	if missing := MissingCleaned(cleaned, e.cfg.AllowZeroPrice); len(missing) > 0 {
		stats.SkippedCleaned++
		msg := "skipping product due to extraction and type conversion issues: missing elements"
		if allMissing(missing) {
			msg = "skipping product due to extraction and type conversion issues: all expected elements missing"
		}
		e.logger.Warn(msg, zap.Int("page", pageNumber), zap.String("missing", joinFields(missing)))
		return catalog.Product{}, false
	}

	return catalog.Product{
		Title:    cleaned.Title,
		Price:    cleaned.Price.Value,
		ImageURL: cleaned.ImageURL,
	}, true
}
