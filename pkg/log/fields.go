package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Service
	FieldService = "service"

	// Search
	FieldQuery    = "query"
	FieldCategory = "category"
	FieldSource   = "source"
	FieldCacheKey = "cache_key"
	FieldResults  = "results"
	FieldTotal    = "total"
	FieldIndex    = "index"

	// Background work
	FieldTopic = "topic"
	FieldJob   = "job"
)
