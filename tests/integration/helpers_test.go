package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"testing"
	"time"
)

const serverPort = 8080

// baseURL returns the base URL for the server under test.
func baseURL() string {
	return fmt.Sprintf("http://localhost:%d", serverPort)
}

// uniqueEmail generates a unique email address to avoid test collisions.
func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d-%d@test.example.com", prefix, time.Now().UnixNano(), rand.Intn(100000))
}

// uniqueName generates a unique name so slug uniqueness never collides
// across runs.
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s %d %d", prefix, time.Now().UnixNano(), rand.Intn(100000))
}

// uniqueCode generates a unique session cart code.
func uniqueCode() string {
	return fmt.Sprintf("sess-%d-%d", time.Now().UnixNano(), rand.Intn(100000))
}

// skipIfNotRunning performs a quick health check against the server.
// If it is unreachable, the test is skipped (not failed).
func skipIfNotRunning(t *testing.T) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL() + "/health/live")
	if err != nil {
		t.Skipf("server on port %d not reachable (Docker not running?): %v", serverPort, err)
	}
	resp.Body.Close()
}

// asUser returns the trusted gateway identity headers for a user.
func asUser(id string) map[string]string {
	return map[string]string{"X-User-ID": id}
}

// httpGet performs an HTTP GET request with optional headers.
func httpGet(t *testing.T, url string, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()
	return doJSONRequest(t, http.MethodGet, url, nil, headers)
}

// httpPost performs an HTTP POST request with a JSON body and optional headers.
func httpPost(t *testing.T, url string, body interface{}, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()
	return doJSONRequest(t, http.MethodPost, url, body, headers)
}

// httpPut performs an HTTP PUT request with a JSON body and optional headers.
func httpPut(t *testing.T, url string, body interface{}, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()
	return doJSONRequest(t, http.MethodPut, url, body, headers)
}

// httpDelete performs an HTTP DELETE request with optional headers.
func httpDelete(t *testing.T, url string, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()
	return doJSONRequest(t, http.MethodDelete, url, nil, headers)
}

// doJSONRequest is the internal helper for JSON HTTP requests.
func doJSONRequest(t *testing.T, method, url string, body interface{}, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshalling request body failed: %v", err)
		}
		bodyReader = bytes.NewReader(jsonBytes)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		t.Fatalf("creating %s request for %s failed: %v", method, url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, decodeBody(t, resp.Body)
}

// decodeBody reads the response body and attempts to decode it as JSON.
// If the body is empty or not JSON, it returns an empty map.
func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("reading response body failed: %v", err)
	}
	if len(raw) == 0 {
		return map[string]interface{}{}
	}
	var result map[string]interface{}
	if err := json.Unmarshal(raw, &result); err != nil {
		// Not JSON; return the raw string in a "raw" key for debugging.
		return map[string]interface{}{"raw": string(raw)}
	}
	return result
}

// requireStatus asserts that the HTTP status code matches the expected value.
func requireStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Fatalf("expected status %d, got %d", want, got)
	}
}

// extractField extracts a value from a nested map using a dot-separated path.
// For example, extractField(data, "data.user.id") navigates data["data"]["user"]["id"].
func extractField(data map[string]interface{}, path string) interface{} {
	parts := strings.Split(path, ".")
	var current interface{} = data
	for _, part := range parts {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current, ok = m[part]
		if !ok {
			return nil
		}
	}
	return current
}

// requireNumber extracts a numeric field and fails the test if it is absent
// or does not match the expected value.
func requireNumber(t *testing.T, data map[string]interface{}, path string, want float64) {
	t.Helper()
	v := extractField(data, path)
	if v == nil {
		t.Fatalf("expected %s in response, got nil", path)
	}
	got, ok := v.(float64)
	if !ok {
		t.Fatalf("expected %s to be numeric, got %T", path, v)
	}
	if got != want {
		t.Fatalf("expected %s = %v, got %v", path, want, got)
	}
}

// createUser registers a user and returns its id.
func createUser(t *testing.T, prefix string) string {
	t.Helper()
	body := map[string]interface{}{
		"email":    uniqueEmail(prefix),
		"username": uniqueName(prefix),
	}
	status, data := httpPost(t, baseURL()+"/api/v1/users", body, nil)
	requireStatus(t, status, 201)

	id, ok := extractField(data, "data.id").(string)
	if !ok || id == "" {
		t.Fatal("expected data.id in create user response")
	}
	return id
}

// createProduct registers a product and returns its id and slug.
func createProduct(t *testing.T, prefix string, price int64, stock int) (string, string) {
	t.Helper()
	body := map[string]interface{}{
		"name":  uniqueName(prefix),
		"price": price,
		"stock": stock,
	}
	status, data := httpPost(t, baseURL()+"/api/v1/products", body, nil)
	requireStatus(t, status, 201)

	id, ok := extractField(data, "data.id").(string)
	if !ok || id == "" {
		t.Fatal("expected data.id in create product response")
	}
	slug, ok := extractField(data, "data.slug").(string)
	if !ok || slug == "" {
		t.Fatal("expected data.slug in create product response")
	}
	return id, slug
}

// cartItems returns the items array of a cart response.
func cartItems(t *testing.T, data map[string]interface{}) []interface{} {
	t.Helper()
	items, ok := extractField(data, "data.items").([]interface{})
	if !ok {
		t.Fatalf("expected data.items to be an array, got %T", extractField(data, "data.items"))
	}
	return items
}
