package network

import (
	"strings"

	"github.com/mwhitlock/tracetrim/internal/record"
)

// Removal categories attributed in Stats.RemovedByCategory.
const (
	CategoryAnalytics        = "analytics"
	CategoryCloudAnalytics   = "cloud-analytics"
	CategoryMapsAPI          = "maps-api"
	CategoryBlobURL          = "blob-url"
	CategoryLargeUpload      = "large-upload"
	CategoryStaticCDN        = "static-cdn"
	CategoryThirdPartyWidget = "third-party-widget"
)

// largeUploadLimit is the request body size above which a request is dropped
// as a large upload.
const largeUploadLimit = 100_000

// analyticsDomains covers client-side analytics and tracking beacons.
var analyticsDomains = []string{
	"google-analytics.com",
	"analytics.google.com",
	"googletagmanager.com",
	"doubleclick.net",
	"connect.facebook.net",
	"facebook.com/tr",
	"hotjar.com",
	"mixpanel.com",
	"segment.com",
	"amplitude.com",
	"fullstory.com",
	"heap.io",
	"clarity.ms",
}

// cloudAnalyticsDomains covers cloud telemetry and crash-reporting endpoints.
var cloudAnalyticsDomains = []string{
	"app-measurement.com",
	"firebaseinstallations.googleapis.com",
	"firebaselogging-pa.googleapis.com",
	"crashlytics.com",
	"monitoring.googleapis.com",
	"applicationinsights.azure.com",
	"dc.services.visualstudio.com",
}

// mapsDomains covers map tile and maps API traffic.
var mapsDomains = []string{
	"maps.googleapis.com",
	"maps.gstatic.com",
	"api.mapbox.com",
	"tile.openstreetmap.org",
}

// staticCDNDomains covers CDNs that only ever serve static assets.
var staticCDNDomains = []string{
	"fonts.googleapis.com",
	"fonts.gstatic.com",
	"cdn.jsdelivr.net",
	"cdnjs.cloudflare.com",
	"unpkg.com",
	"ajax.googleapis.com",
	"stackpath.bootstrapcdn.com",
	"maxcdn.bootstrapcdn.com",
}

// staticExtensions covers static asset file types matched against the URL
// path with the query string stripped.
var staticExtensions = []string{
	".css",
	".woff",
	".woff2",
	".ttf",
	".otf",
	".eot",
	".png",
	".jpg",
	".jpeg",
	".gif",
	".svg",
	".ico",
	".webp",
	".avif",
	".mp4",
	".webm",
	".mp3",
}

// widgetDomains covers embedded third-party widgets (chat, social, video).
var widgetDomains = []string{
	"widget.intercom.io",
	"js.intercomcdn.com",
	"js.driftt.com",
	"embed.tawk.to",
	"platform.twitter.com",
	"youtube.com/embed",
	"player.vimeo.com",
	"disqus.com",
	"accounts.google.com/gsi",
}

// removalRule pairs a removal predicate with the category attributed to
// records it matches.
type removalRule struct {
	category string
	matches  func(entry record.Record, url string) bool
}

// buildRules assembles the removal chain for the enabled toggles. The order
// is fixed and significant: when a request could satisfy two rules, only the
// first-listed category is attributed, and statistics depend on that.
func buildRules(opts Options) []removalRule {
	var rules []removalRule

	domainRule := func(category string, domains []string) removalRule {
		return removalRule{category, func(_ record.Record, url string) bool {
			return matchesAnyDomain(url, domains)
		}}
	}

	if opts.RemoveAnalytics {
		rules = append(rules, domainRule(CategoryAnalytics, analyticsDomains))
	}
	if opts.RemoveCloudAnalytics {
		rules = append(rules, domainRule(CategoryCloudAnalytics, cloudAnalyticsDomains))
	}
	if opts.RemoveMapsAPI {
		rules = append(rules, domainRule(CategoryMapsAPI, mapsDomains))
	}
	if opts.RemoveBlobURLs {
		rules = append(rules, removalRule{CategoryBlobURL, func(_ record.Record, url string) bool {
			return strings.HasPrefix(url, "blob:")
		}})
	}
	if opts.RemoveLargeUploads {
		rules = append(rules, removalRule{CategoryLargeUpload, func(entry record.Record, _ string) bool {
			return isLargeUpload(entry.Map("request"))
		}})
	}
	if opts.RemoveStaticAssets {
		rules = append(rules, removalRule{CategoryStaticCDN, func(_ record.Record, url string) bool {
			return matchesAnyDomain(url, staticCDNDomains) || hasStaticExtension(url)
		}})
	}
	if opts.RemoveThirdPartyWidgets {
		rules = append(rules, domainRule(CategoryThirdPartyWidget, widgetDomains))
	}

	return rules
}

// matchesAnyDomain reports whether the lowercased URL contains any of the
// listed fragments. Substring containment keeps the rule tolerant of
// subdomains and of scheme or port variations.
func matchesAnyDomain(url string, domains []string) bool {
	for _, d := range domains {
		if strings.Contains(url, d) {
			return true
		}
	}
	return false
}

// hasStaticExtension reports whether the URL path, with any query string
// stripped, ends with a static asset extension.
func hasStaticExtension(url string) bool {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		url = url[:i]
	}
	for _, ext := range staticExtensions {
		if strings.HasSuffix(url, ext) {
			return true
		}
	}
	return false
}

// isLargeUpload reports whether the request carries a body larger than
// largeUploadLimit, judged by bodySize or by the post data's declared size.
func isLargeUpload(req record.Record) bool {
	if req == nil {
		return false
	}
	if size, ok := req.Num("bodySize"); ok && size > largeUploadLimit {
		return true
	}
	if pd := req.Map("postData"); pd != nil {
		if size, ok := pd.Num("size"); ok && size > largeUploadLimit {
			return true
		}
	}
	return false
}
