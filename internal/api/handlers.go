package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/JakeFAU/catalog-scraper/internal/catalog"
	"github.com/JakeFAU/catalog-scraper/internal/scraper"
)

type scrapeRequest struct {
	Pages *int    `json:"pages"`
	Proxy *string `json:"proxy"`
}

type scrapeResponse struct {
	Message string `json:"message"`
}

// scrape handles POST /scrape/. The run is detached from the client connection
// so a disconnect does not abandon a half-finished scrape.
func (s *Server) scrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	pages := s.opts.DefaultPages
	if req.Pages != nil {
		pages = *req.Pages
	}
	if pages < 0 || pages > s.opts.MaxPages {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("pages must be between 0 and %d", s.opts.MaxPages))
		return
	}

	proxy := ""
	if req.Proxy != nil {
		proxy = *req.Proxy
	}
	if _, err := catalog.ParseProxy(proxy); err != nil {
		writeError(w, http.StatusBadRequest, "invalid proxy")
		return
	}

	summary, err := s.runner.Run(context.WithoutCancel(r.Context()), pages, proxy)
	if err != nil {
		s.logger.Error("scrape request failed",
			zap.String("request_id", requestID(r.Context())),
			zap.Int("pages", pages),
			zap.Error(err),
		)
		if errors.Is(err, scraper.ErrPersist) {
			writeError(w, http.StatusInternalServerError, "Error saving data")
			return
		}
		writeError(w, http.StatusInternalServerError, "Error during scraping")
		return
	}

	writeJSON(w, http.StatusOK, scrapeResponse{
		Message: fmt.Sprintf("Scraped %d products from %d pages.", len(summary.Products), pages),
	})
}

// products handles GET /products and returns the stored document.
func (s *Server) products(w http.ResponseWriter, r *http.Request) {
	products, err := s.store.Load(r.Context())
	if err != nil {
		s.logger.Error("load products failed",
			zap.String("request_id", requestID(r.Context())),
			zap.String("location", s.store.Location()),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "Error loading data")
		return
	}
	writeJSON(w, http.StatusOK, products)
}
