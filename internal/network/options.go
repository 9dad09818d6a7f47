package network

// Options selects which reduction rules the network filter applies. The first
// seven toggles control whole-record removal rules; the rest control
// independent field-level transformations applied to kept records.
type Options struct {
	// Whole-record removal rules, evaluated in the order listed here.

	// RemoveAnalytics drops requests to analytics and tracking domains.
	RemoveAnalytics bool `mapstructure:"remove_analytics"`

	// RemoveCloudAnalytics drops requests to cloud telemetry endpoints.
	RemoveCloudAnalytics bool `mapstructure:"remove_cloud_analytics"`

	// RemoveMapsAPI drops requests to map tile and maps API domains.
	RemoveMapsAPI bool `mapstructure:"remove_maps_api"`

	// RemoveBlobURLs drops blob: scheme requests.
	RemoveBlobURLs bool `mapstructure:"remove_blob_urls"`

	// RemoveLargeUploads drops requests whose body exceeds 100 KB.
	RemoveLargeUploads bool `mapstructure:"remove_large_uploads"`

	// RemoveStaticAssets drops requests to static-asset CDNs and requests
	// for static file types (fonts, images, stylesheets, media).
	RemoveStaticAssets bool `mapstructure:"remove_static_assets"`

	// RemoveThirdPartyWidgets drops requests to chat/social embed widgets.
	RemoveThirdPartyWidgets bool `mapstructure:"remove_third_party_widgets"`

	// Field-level transformations on kept records. Each touches its own set
	// of fields and may be toggled independently of the others.

	// FilterHeaders keeps only headers useful for debugging.
	FilterHeaders bool `mapstructure:"filter_headers"`

	// StripTimings collapses the timing breakdown to a single total and
	// deletes low-value internal metadata fields.
	StripTimings bool `mapstructure:"strip_timings"`

	// TruncateResponseBodies replaces large successful response bodies with
	// a size-preserving truncation marker.
	TruncateResponseBodies bool `mapstructure:"truncate_response_bodies"`

	// SimplifyVerboseFields drops fields whose value carries no information
	// (empty query strings, default accept headers, "OK" status text).
	SimplifyVerboseFields bool `mapstructure:"simplify_verbose_fields"`

	// RemoveHTTPMetadata drops protocol bookkeeping (HTTP/1.1 version tags,
	// header and body size fields).
	RemoveHTTPMetadata bool `mapstructure:"remove_http_metadata"`

	// SimplifyCookies reduces each cookie to name/value plus any attribute
	// with a non-default setting.
	SimplifyCookies bool `mapstructure:"simplify_cookies"`

	// RemoveContentHashes drops content hashes and zero-value compression
	// fields.
	RemoveContentHashes bool `mapstructure:"remove_content_hashes"`

	// ReducePrecision rounds timing values to two decimal places.
	ReducePrecision bool `mapstructure:"reduce_precision"`
}

// Stats reports the outcome of a single filtering run.
//
// Invariants: TotalRequests == KeptRequests + RemovedRequests, and the values
// of RemovedByCategory sum to RemovedRequests. Sizes are the byte lengths of
// the serialized input and output files.
type Stats struct {
	TotalRequests     int            `json:"totalRequests"`
	KeptRequests      int            `json:"keptRequests"`
	RemovedRequests   int            `json:"removedRequests"`
	RemovedByCategory map[string]int `json:"removedByCategory"`
	SizeBefore        int64          `json:"sizeBefore"`
	SizeAfter         int64          `json:"sizeAfter"`
}
