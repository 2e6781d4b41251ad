package net

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"strings"
)

// PrintHTTPResponse dumps the response at debug level. Bodies are only
// included for JSON so downloaded files do not end up in the log.
func PrintHTTPResponse(resp *http.Response) {
	if resp == nil || !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	withBody := strings.HasPrefix(resp.Header.Get("Content-Type"), contentTypeJSON)
	if respDump, err := httputil.DumpResponse(resp, withBody); err == nil {
		slog.Debug("api response", "dump", string(respDump))
	}
}
