package handler

import (
	"encoding/json"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/inkwellhq/inkwell/internal/model"
)

// writeJSON serializes v as JSON and writes it to the response with the given
// HTTP status code. The Content-Type header is set to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes the standard error body {"message": ...}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.ErrorResponse{Message: message})
}

// writeSecretKeyChallenge writes the distinguished 403 asking the client to
// prompt for the device-verification secret key.
func writeSecretKeyChallenge(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusForbidden, model.ErrorResponse{
		Message:           message,
		RequiresSecretKey: true,
	})
}

// readJSON decodes the request body as JSON into v. The body is closed after
// decoding regardless of success or failure.
func readJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// queryInt extracts an integer query parameter, returning defaultVal if the
// parameter is missing or cannot be parsed.
func queryInt(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

// queryString extracts a string query parameter.
func queryString(r *http.Request, key string) string {
	return r.URL.Query().Get(key)
}

// pathID parses the {id} URL parameter as an int64.
func pathID(param string) (int64, error) {
	return strconv.ParseInt(param, 10, 64)
}

// clampInt constrains val to be within [min, max].
func clampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// slugify derives a URL slug from a title: lowercase, non-alphanumeric runs
// collapsed to hyphens, leading/trailing hyphens trimmed.
func slugify(title string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// clientIP returns the request's client IP as an opaque string. The RealIP
// middleware has already folded proxy headers into RemoteAddr; a direct
// connection still carries a port, which is stripped here.
func clientIP(r *http.Request) string {
	addr := r.RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
