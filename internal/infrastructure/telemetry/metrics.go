package telemetry

import "go.opentelemetry.io/otel/attribute"

// Attribute keys shared by the sales metrics
var (
	AttrBudgetStatus = attribute.Key("budget_status")
	AttrScanOutcome  = attribute.Key("scan_outcome")
	AttrProductCode  = attribute.Key("product_code")
	AttrDocument     = attribute.Key("document")
)

// Attribute keys for HTTP server metrics
var (
	AttrHTTPMethod     = attribute.Key("http.method")
	AttrHTTPRoute      = attribute.Key("http.route")
	AttrHTTPStatusCode = attribute.Key("http.status_code")
	AttrUserRole       = attribute.Key("user.role")
)

// Histogram buckets
var (
	// RenderDurationBuckets cover PDF rendering, which is seconds-scale
	RenderDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

	// HTTPDurationBuckets cover API latencies in seconds
	HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

	// ResponseSizeBuckets reach into the megabytes for receipts and label sheets
	ResponseSizeBuckets = []float64{100, 1000, 10000, 100000, 500000, 1000000, 5000000}

	// TicketSizeBuckets count line items per ticket
	TicketSizeBuckets = []float64{1, 2, 5, 10, 20, 50, 100}
)
