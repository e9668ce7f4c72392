package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Scan pipeline metrics
	ScanJobsTotal      *prometheus.CounterVec
	ScanJobDuration    *prometheus.HistogramVec
	ScanJobsInProgress prometheus.Gauge
	ScanRecordsTotal   *prometheus.CounterVec
	ScanGroupsProduced prometheus.Histogram

	// External API metrics
	ExternalAPICalls    *prometheus.CounterVec
	ExternalAPIDuration *prometheus.HistogramVec
	ExternalAPIFailures *prometheus.CounterVec

	// Inference metrics
	AnalysisReportsTotal *prometheus.CounterVec
	AnalysisImagesTotal  *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		ScanJobsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scan_jobs_total",
				Help: "Total number of ad scan jobs",
			},
			[]string{"status", "stage"},
		),

		ScanJobDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scan_job_duration_seconds",
				Help:    "Ad scan job duration in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"stage"},
		),

		ScanJobsInProgress: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "scan_jobs_in_progress",
				Help: "Number of scan jobs currently in progress",
			},
		),

		ScanRecordsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scan_records_total",
				Help: "Total number of raw ad records consumed by scans",
			},
			[]string{"status"},
		),

		ScanGroupsProduced: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scan_groups_produced",
				Help:    "Number of canonical ad groups produced per scan",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
			},
		),

		ExternalAPICalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "external_api_calls_total",
				Help: "Total number of external API calls",
			},
			[]string{"api", "status"},
		),

		ExternalAPIDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "external_api_duration_seconds",
				Help:    "External API call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"api"},
		),

		ExternalAPIFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "external_api_failures_total",
				Help: "Total number of external API failures",
			},
			[]string{"api", "error_type"},
		),

		AnalysisReportsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analysis_reports_total",
				Help: "Total number of multimodal analysis reports",
			},
			[]string{"status"},
		),

		AnalysisImagesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analysis_images_total",
				Help: "Total number of preview images fetched for analysis",
			},
			[]string{"status"},
		),
	}
}

// HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// Scan job metrics
func (m *Metrics) RecordScanJob(status, stage string, duration time.Duration) {
	m.ScanJobsTotal.WithLabelValues(status, stage).Inc()
	m.ScanJobDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// Scan record metrics
func (m *Metrics) RecordScanRecords(status string, count int) {
	m.ScanRecordsTotal.WithLabelValues(status).Add(float64(count))
}

// Group count per scan
func (m *Metrics) RecordScanGroups(count int) {
	m.ScanGroupsProduced.Observe(float64(count))
}

// External API call metrics
func (m *Metrics) RecordExternalAPICall(api, status string, duration time.Duration) {
	m.ExternalAPICalls.WithLabelValues(api, status).Inc()
	m.ExternalAPIDuration.WithLabelValues(api).Observe(duration.Seconds())
}

// External API failure metrics
func (m *Metrics) RecordExternalAPIFailure(api, errorType string) {
	m.ExternalAPIFailures.WithLabelValues(api, errorType).Inc()
}

// Analysis report outcome
func (m *Metrics) RecordAnalysisReport(status string) {
	m.AnalysisReportsTotal.WithLabelValues(status).Inc()
}

// Analysis image fetch outcome
func (m *Metrics) RecordAnalysisImage(status string) {
	m.AnalysisImagesTotal.WithLabelValues(status).Inc()
}

// Scan jobs in progress counter
func (m *Metrics) IncScanJobsInProgress() {
	m.ScanJobsInProgress.Inc()
}

// Scan jobs in progress counter
func (m *Metrics) DecScanJobsInProgress() {
	m.ScanJobsInProgress.Dec()
}

// HTTP requests in flight counter
func (m *Metrics) IncHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// HTTP requests in flight counter
func (m *Metrics) DecHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}
