package notify

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Client is the HTTP client used for webhooks, with a timeout so an
// unresponsive server cannot hang a run.
var Client = &http.Client{Timeout: 30 * time.Second}

// PostWebhook POSTs s as JSON to url. Header values are expanded with
// os.ExpandEnv to support $VAR secrets, and are applied after the default
// Content-Type so callers can override it.
func PostWebhook(url string, headers map[string]string, s Summary) error {
	payload, err := s.Encode()
	if err != nil {
		return fmt.Errorf("webhook: encode: %w", err)
	}
	req, err := http.NewRequest("POST", url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("webhook: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, os.ExpandEnv(v))
	}

	resp, err := Client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, readSnippet(resp.Body))
	}
	return nil
}

// readSnippet reads up to 200 bytes from r for inclusion in error messages.
func readSnippet(r io.Reader) string {
	buf := make([]byte, 200)
	n, _ := io.ReadFull(r, buf)
	if n == 0 {
		return "(empty body)"
	}
	s := string(buf[:n])
	if n == 200 {
		s += "..."
	}
	return s
}
