package delivery

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"adintel/internal/domain"
	"adintel/internal/usecase"
	"adintel/pkg/logger"
	"adintel/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// handles HTTP requests
type HTTPHandlers struct {
	scanService *usecase.ScanService
	bookmarks   domain.BookmarkRepository
	logger      *logger.Logger
	metrics     *metrics.Metrics
}

// creates new HTTP handlers
func NewHTTPHandlers(
	scanService *usecase.ScanService,
	bookmarks domain.BookmarkRepository,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *HTTPHandlers {
	return &HTTPHandlers{
		scanService: scanService,
		bookmarks:   bookmarks,
		logger:      logger,
		metrics:     metrics,
	}
}

type scanRunRequest struct {
	URL          string `json:"url" binding:"required"`
	ResultsLimit int    `json:"results_limit"`
	Hours        *int   `json:"hours"`
	Analyze      bool   `json:"analyze"`
}

// RunScan triggers the scan pipeline for one ad-library URL
func (h *HTTPHandlers) RunScan(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)

	var req scanRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.RecordHTTPRequest("POST", "/scan/run", "400", time.Since(start))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request body",
			"message":    "url is required",
			"request_id": requestID,
		})
		return
	}
	if req.Hours != nil && *req.Hours <= 0 {
		h.metrics.RecordHTTPRequest("POST", "/scan/run", "400", time.Since(start))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid parameter",
			"message":    "hours must be a positive integer",
			"request_id": requestID,
		})
		return
	}

	log := h.logger.WithContext(ctx)
	log.WithField("target_url", req.URL).Info("Starting ad scan request")

	snapshot, err := h.scanService.RunScan(ctx, usecase.ScanRequest{
		TargetURL:    req.URL,
		ResultsLimit: req.ResultsLimit,
		Hours:        req.Hours,
		Analyze:      req.Analyze,
	})
	if err != nil {
		h.metrics.RecordHTTPRequest("POST", "/scan/run", "502", time.Since(start))
		log.WithError(err).Error("Ad scan failed")
		c.JSON(http.StatusBadGateway, gin.H{
			"error":      "Scan failed, no records produced",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	h.metrics.RecordHTTPRequest("POST", "/scan/run", "200", time.Since(start))

	c.JSON(http.StatusOK, gin.H{
		"message":     "Scan completed successfully",
		"target_url":  snapshot.TargetURL,
		"raw_records": snapshot.RawCount,
		"groups":      len(snapshot.Groups),
		"analyzed":    snapshot.Report != nil,
		"request_id":  requestID,
	})
}

// GetGroups returns the ranked groups of the latest scan
func (h *HTTPHandlers) GetGroups(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)

	var hours *int
	if hoursStr := c.Query("hours"); hoursStr != "" {
		parsed, err := strconv.Atoi(hoursStr)
		if err != nil || parsed <= 0 {
			h.metrics.RecordHTTPRequest("GET", "/scan/groups", "400", time.Since(start))
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      "Invalid parameter",
				"message":    "hours must be a positive integer",
				"request_id": requestID,
			})
			return
		}
		hours = &parsed
	}

	snapshot, err := h.scanService.Latest(ctx)
	if err != nil {
		h.metrics.RecordHTTPRequest("GET", "/scan/groups", "500", time.Since(start))
		h.logger.WithContext(ctx).WithError(err).Error("Failed to load latest scan")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to load latest scan",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}
	if snapshot == nil {
		h.metrics.RecordHTTPRequest("GET", "/scan/groups", "404", time.Since(start))
		c.JSON(http.StatusNotFound, gin.H{
			"error":      "No scan available",
			"message":    "run a scan first",
			"request_id": requestID,
		})
		return
	}

	groups := h.scanService.FilterWindow(snapshot.Groups, hours)

	h.metrics.RecordHTTPRequest("GET", "/scan/groups", "200", time.Since(start))

	c.JSON(http.StatusOK, gin.H{
		"target_url": snapshot.TargetURL,
		"scanned_at": snapshot.ScannedAt.Format(time.RFC3339),
		"total":      len(groups),
		"groups":     groups,
		"request_id": requestID,
	})
}

// GetReport returns the analysis report of the latest scan
func (h *HTTPHandlers) GetReport(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)

	snapshot, err := h.scanService.Latest(ctx)
	if err != nil {
		h.metrics.RecordHTTPRequest("GET", "/scan/report", "500", time.Since(start))
		h.logger.WithContext(ctx).WithError(err).Error("Failed to load latest scan")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to load latest scan",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}
	if snapshot == nil || snapshot.Report == nil {
		h.metrics.RecordHTTPRequest("GET", "/scan/report", "404", time.Since(start))
		c.JSON(http.StatusNotFound, gin.H{
			"error":      "No analysis available",
			"message":    "run a scan with analyze=true first",
			"request_id": requestID,
		})
		return
	}

	h.metrics.RecordHTTPRequest("GET", "/scan/report", "200", time.Since(start))

	c.JSON(http.StatusOK, gin.H{
		"target_url": snapshot.TargetURL,
		"scanned_at": snapshot.ScannedAt.Format(time.RFC3339),
		"report":     snapshot.Report,
		"request_id": requestID,
	})
}

type brandRequest struct {
	Name string `json:"name" binding:"required"`
	URL  string `json:"url" binding:"required"`
}

// ListBrands returns the saved brand bookmarks
func (h *HTTPHandlers) ListBrands(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)

	bookmarks, err := h.bookmarks.List(ctx)
	if err != nil {
		h.metrics.RecordHTTPRequest("GET", "/brands", "500", time.Since(start))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to list brands",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	h.metrics.RecordHTTPRequest("GET", "/brands", "200", time.Since(start))

	c.JSON(http.StatusOK, gin.H{
		"brands":     bookmarks,
		"total":      len(bookmarks),
		"request_id": requestID,
	})
}

// AddBrand saves a brand bookmark
func (h *HTTPHandlers) AddBrand(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)

	var req brandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.RecordHTTPRequest("POST", "/brands", "400", time.Since(start))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request body",
			"message":    "name and url are required",
			"request_id": requestID,
		})
		return
	}

	bookmark := domain.BrandBookmark{
		Name:    req.Name,
		URL:     req.URL,
		AddedAt: time.Now().UTC(),
	}

	if err := h.bookmarks.Add(ctx, bookmark); err != nil {
		if errors.Is(err, domain.ErrBookmarkExists) {
			h.metrics.RecordHTTPRequest("POST", "/brands", "409", time.Since(start))
			c.JSON(http.StatusConflict, gin.H{
				"error":      "Brand already exists",
				"message":    req.Name + " is already saved",
				"request_id": requestID,
			})
			return
		}
		h.metrics.RecordHTTPRequest("POST", "/brands", "500", time.Since(start))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to save brand",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	h.metrics.RecordHTTPRequest("POST", "/brands", "201", time.Since(start))

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Brand saved",
		"brand":      bookmark,
		"request_id": requestID,
	})
}

// DeleteBrand removes a brand bookmark by name
func (h *HTTPHandlers) DeleteBrand(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)

	name := c.Param("name")

	if err := h.bookmarks.Remove(ctx, name); err != nil {
		if errors.Is(err, domain.ErrBookmarkNotFound) {
			h.metrics.RecordHTTPRequest("DELETE", "/brands", "404", time.Since(start))
			c.JSON(http.StatusNotFound, gin.H{
				"error":      "Brand not found",
				"message":    name + " is not saved",
				"request_id": requestID,
			})
			return
		}
		h.metrics.RecordHTTPRequest("DELETE", "/brands", "500", time.Since(start))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to remove brand",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	h.metrics.RecordHTTPRequest("DELETE", "/brands", "200", time.Since(start))

	c.JSON(http.StatusOK, gin.H{
		"message":    "Brand removed",
		"name":       name,
		"request_id": requestID,
	})
}

// GetAPIInfo returns API v1 information and available endpoints
func (h *HTTPHandlers) GetAPIInfo(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()

	apiInfo := gin.H{
		"api_version": "v1",
		"service":     "Ad Intelligence Service",
		"version":     "1.0.0",
		"description": "Scans competitor ad libraries, deduplicates creatives into ranked groups and runs multimodal creative analysis",
		"endpoints": gin.H{
			"scan": gin.H{
				"run": gin.H{
					"path":        "/api/v1/scan/run",
					"methods":     []string{"POST"},
					"description": "Run a scan for one ad-library URL",
					"body": gin.H{
						"url":           "Required: ad library URL to scan",
						"results_limit": "Optional: max raw records to scrape",
						"hours":         "Optional: keep only groups started within the last N hours",
						"analyze":       "Optional: run multimodal analysis on the top image creatives",
					},
				},
				"groups": gin.H{
					"path":        "/api/v1/scan/groups",
					"methods":     []string{"GET"},
					"description": "Ranked canonical groups of the latest scan",
					"parameters": gin.H{
						"hours": "Optional: re-filter to the last N hours",
					},
				},
				"report": gin.H{
					"path":        "/api/v1/scan/report",
					"methods":     []string{"GET"},
					"description": "Multimodal analysis report of the latest scan",
				},
			},
			"brands": gin.H{
				"path":        "/api/v1/brands",
				"methods":     []string{"GET", "POST", "DELETE"},
				"description": "Saved brand ad-library shortcuts",
			},
		},
		"request_id": requestID,
	}

	h.metrics.RecordHTTPRequest("GET", "/api/v1", "200", time.Since(start))
	c.JSON(http.StatusOK, apiInfo)
}

// HealthCheck returns the health status of the service
func (h *HTTPHandlers) HealthCheck(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()

	health := gin.H{
		"status":     "healthy",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"service":    "adintel",
		"version":    "1.0.0",
		"request_id": requestID,
	}

	h.metrics.RecordHTTPRequest("GET", "/health", "200", time.Since(start))
	c.JSON(http.StatusOK, health)
}
