package network

import (
	"math"
	"strings"

	"github.com/mwhitlock/tracetrim/internal/record"
)

// essentialRequestHeaders and essentialResponseHeaders are keyword lists
// matched by substring against lowercased header names. A header whose name
// contains any listed keyword survives header filtering.
var essentialRequestHeaders = []string{
	"content-type",
	"authorization",
	"origin",
	"referer",
	"host",
	"x-request-id",
	"x-trace-id",
	"x-csrf",
}

var essentialResponseHeaders = []string{
	"content-type",
	"location",
	"cache-control",
	"www-authenticate",
	"retry-after",
	"x-request-id",
}

// sensitiveCookieHints mark cookie header values worth keeping: session and
// auth state is usually the first thing checked when a test fails on a 401.
var sensitiveCookieHints = []string{"auth", "session", "csrf"}

// defaultAcceptEncoding and defaultAcceptLanguage are browser defaults whose
// presence adds nothing; the headers are dropped only when they match exactly.
var defaultAcceptEncoding = map[string]bool{
	"gzip, deflate, br":       true,
	"gzip, deflate, br, zstd": true,
	"gzip, deflate":           true,
}

var defaultAcceptLanguage = map[string]bool{
	"en-US,en;q=0.9": true,
	"en-US":          true,
}

// lowValueEntryFields are internal bookkeeping fields deleted by timing
// stripping: frame references, monotonic clocks, cache flags, transfer sizes,
// TLS details, and server addressing.
var lowValueEntryFields = []string{
	"_frameref",
	"_monotonicTime",
	"cache",
	"_transferSize",
	"_securityDetails",
	"serverIPAddress",
	"_serverPort",
}

// smallBodyLimit is the content size below which response bodies are always
// kept in full.
const smallBodyLimit = 1000

// transform applies every enabled field-level transformation to a kept entry.
// Each step touches its own fields; precision reduction runs last so the
// collapsed timing total is rounded like every other timing value.
func (f *Filter) transform(entry record.Record) {
	if f.opts.FilterHeaders {
		filterHeaders(entry)
	}
	if f.opts.StripTimings {
		stripTimings(entry)
	}
	if f.opts.TruncateResponseBodies {
		truncateResponseBody(entry)
	}
	if f.opts.SimplifyVerboseFields {
		simplifyVerboseFields(entry)
	}
	if f.opts.RemoveHTTPMetadata {
		removeHTTPMetadata(entry)
	}
	if f.opts.SimplifyCookies {
		simplifyCookies(entry)
	}
	if f.opts.RemoveContentHashes {
		removeContentHashes(entry)
	}
	if f.opts.ReducePrecision {
		reducePrecision(entry)
	}
}

// filterHeaders retains only headers a debugging session actually reads:
// direction-specific essential names, anything mentioning an error or
// warning, and cookie headers that carry auth, session, or CSRF state.
func filterHeaders(entry record.Record) {
	filterHeaderList(entry.Map("request"), essentialRequestHeaders)
	filterHeaderList(entry.Map("response"), essentialResponseHeaders)
}

func filterHeaderList(side record.Record, essential []string) {
	if side == nil {
		return
	}
	headers := side.Slice("headers")
	if headers == nil {
		return
	}

	kept := make([]any, 0, len(headers))
	for _, h := range headers {
		header := record.AsRecord(h)
		if header == nil {
			continue
		}
		if keepHeader(header.Str("name"), header.Str("value"), essential) {
			kept = append(kept, h)
		}
	}
	side["headers"] = kept
}

func keepHeader(name, value string, essential []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range essential {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	if strings.Contains(lower, "error") || strings.Contains(lower, "warning") {
		return true
	}
	if strings.Contains(lower, "cookie") {
		lowerValue := strings.ToLower(value)
		for _, hint := range sensitiveCookieHints {
			if strings.Contains(lowerValue, hint) {
				return true
			}
		}
	}
	return false
}

// stripTimings collapses the timing breakdown to a single derived total
// (wait + receive, missing values counting as zero) and deletes low-value
// internal metadata fields from the entry.
func stripTimings(entry record.Record) {
	if timings := entry.Map("timings"); timings != nil && hasTimingBreakdown(timings) {
		wait, _ := timings.Num("wait")
		receive, _ := timings.Num("receive")
		entry["timings"] = map[string]any{"total": wait + receive}
	}
	for _, field := range lowValueEntryFields {
		delete(entry, field)
	}
}

// hasTimingBreakdown reports whether the timings object still carries a
// per-phase breakdown. An already-collapsed {"total": n} object is left
// alone so refiltering does not zero it out.
func hasTimingBreakdown(timings record.Record) bool {
	for _, phase := range []string{"blocked", "dns", "connect", "ssl", "send", "wait", "receive"} {
		if timings.Has(phase) {
			return true
		}
	}
	return false
}

// truncateResponseBody replaces the content of large successful responses
// with a marker preserving the original size. Error responses (status >= 400)
// and small bodies are kept in full: they are exactly what a failed test run
// gets debugged from.
func truncateResponseBody(entry record.Record) {
	resp := entry.Map("response")
	if resp == nil {
		return
	}
	content := resp.Map("content")
	if content == nil || content.Bool("truncated") {
		return
	}

	if status, ok := resp.Num("status"); ok && status >= 400 {
		return
	}
	size, ok := content.Num("size")
	if !ok || size < smallBodyLimit {
		return
	}

	marker := map[string]any{
		"size":      size,
		"truncated": true,
	}
	if mime := content.Str("mimeType"); mime != "" {
		marker["mimeType"] = mime
	}
	resp["content"] = marker
}

// simplifyVerboseFields drops fields whose value is the known default and
// therefore carries no information.
func simplifyVerboseFields(entry record.Record) {
	if req := entry.Map("request"); req != nil {
		if qs := req.Slice("queryString"); qs != nil && len(qs) == 0 {
			delete(req, "queryString")
		}
		dropDefaultHeaders(req)
	}
	if resp := entry.Map("response"); resp != nil {
		if v, ok := resp["redirectURL"]; ok && v == "" {
			delete(resp, "redirectURL")
		}
		if resp.Str("statusText") == "OK" {
			delete(resp, "statusText")
		}
	}
}

func dropDefaultHeaders(req record.Record) {
	headers := req.Slice("headers")
	if headers == nil {
		return
	}

	kept := headers[:0:0]
	for _, h := range headers {
		header := record.AsRecord(h)
		if header != nil {
			name := strings.ToLower(header.Str("name"))
			value := header.Str("value")
			if name == "accept-encoding" && defaultAcceptEncoding[value] {
				continue
			}
			if name == "accept-language" && defaultAcceptLanguage[value] {
				continue
			}
		}
		kept = append(kept, h)
	}
	req["headers"] = kept
}

// removeHTTPMetadata drops protocol bookkeeping on both sides of the
// exchange: the version tag when it is the unremarkable HTTP/1.1, and the
// header, body, and transfer size fields.
func removeHTTPMetadata(entry record.Record) {
	for _, key := range []string{"request", "response"} {
		side := entry.Map(key)
		if side == nil {
			continue
		}
		if side.Str("httpVersion") == "HTTP/1.1" {
			delete(side, "httpVersion")
		}
		delete(side, "headersSize")
		delete(side, "bodySize")
	}
	if resp := entry.Map("response"); resp != nil {
		delete(resp, "_transferSize")
	}
}

// simplifyCookies reduces each cookie to name and value plus any attribute
// with a non-default setting (path other than "/", httpOnly true, sameSite
// other than Lax).
func simplifyCookies(entry record.Record) {
	for _, key := range []string{"request", "response"} {
		side := entry.Map(key)
		if side == nil {
			continue
		}
		cookies := side.Slice("cookies")
		if cookies == nil {
			continue
		}

		simplified := make([]any, 0, len(cookies))
		for _, c := range cookies {
			cookie := record.AsRecord(c)
			if cookie == nil {
				continue
			}
			sc := map[string]any{
				"name":  cookie.Str("name"),
				"value": cookie.Str("value"),
			}
			if path := cookie.Str("path"); path != "" && path != "/" {
				sc["path"] = path
			}
			if cookie.Bool("httpOnly") {
				sc["httpOnly"] = true
			}
			if sameSite := cookie.Str("sameSite"); sameSite != "" && sameSite != "Lax" {
				sc["sameSite"] = sameSite
			}
			simplified = append(simplified, sc)
		}
		side["cookies"] = simplified
	}
}

// removeContentHashes drops content hashes and zero-value compression fields
// from the response content and the request post data.
func removeContentHashes(entry record.Record) {
	if resp := entry.Map("response"); resp != nil {
		dropHashFields(resp.Map("content"))
	}
	if req := entry.Map("request"); req != nil {
		dropHashFields(req.Map("postData"))
	}
}

func dropHashFields(obj record.Record) {
	if obj == nil {
		return
	}
	delete(obj, "_sha1")
	if compression, ok := obj.Num("compression"); ok && compression == 0 {
		delete(obj, "compression")
	}
}

// reducePrecision rounds the top-level time field and every numeric timing
// value to two decimal places.
func reducePrecision(entry record.Record) {
	if v, ok := entry.Num("time"); ok {
		entry["time"] = round2(v)
	}
	timings := entry.Map("timings")
	if timings == nil {
		return
	}
	for key, v := range timings {
		if n, ok := record.AsNumber(v); ok {
			timings[key] = round2(n)
		}
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
