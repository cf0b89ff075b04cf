package streamable

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"video-embed-pipeline/internal/domain"
)

const (
	testBaseURL  = "https://api.streamable.example.com"
	testVideoID  = "abc123"
	testEndpoint = testBaseURL + "/videos/" + testVideoID
	testMediaURL = "https://cdn-cf-east.streamable.com/video/mp4/abc123.mp4?Expires=1700000000&Signature=deadbeef"
)

func newTestClient() *Client {
	cfg := ClientConfig{
		BaseURL: testBaseURL,
		Timeout: 2 * time.Second,
		// No retries: a failed lookup is reported once per build.
		Retry: RetryConfig{},
		CB: CBConfig{
			MaxRequests:  5,
			Interval:     60 * time.Second,
			Timeout:      15 * time.Second,
			FailureRatio: 0.6,
		},
	}
	client := New(cfg, zap.NewNop())

	// Activate httpmock for this client's HTTP transport
	httpmock.ActivateNonDefault(client.client.GetClient())

	return client
}

func mockPayload(expires string) string {
	body := fmt.Sprintf(`{"files":{"mp4":{"url":%q,"duration":42.5}}`, testMediaURL)
	if expires != "" {
		body += `,"expires":` + expires
	}

	return body + `}`
}

// TestLookup_Success tests a successful fetch with an explicit expiry field.
func TestLookup_Success(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testEndpoint,
		httpmock.NewStringResponder(200, mockPayload("1800000000")))

	client := newTestClient()
	rec, err := client.Lookup(context.Background(), testVideoID)

	require.NoError(t, err)
	assert.Equal(t, testVideoID, rec.ID)
	assert.Equal(t, testMediaURL, rec.MediaURL)
	assert.Equal(t, 42.5, rec.Duration)

	info := httpmock.GetCallCountInfo()
	assert.Equal(t, 1, info["GET "+testEndpoint])
}

// TestLookup_ExplicitExpiryPrecedence verifies the explicit expires field
// wins over the Expires parameter on the media URL.
func TestLookup_ExplicitExpiryPrecedence(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testEndpoint,
		httpmock.NewStringResponder(200, mockPayload("1800000000")))

	client := newTestClient()
	rec, err := client.Lookup(context.Background(), testVideoID)

	require.NoError(t, err)
	assert.Equal(t, float64(1800000000), rec.ExpiresAt)
}

// TestLookup_ExpiryFromSignedURL verifies the fallback to the media URL's
// Expires query parameter when the payload omits the field.
func TestLookup_ExpiryFromSignedURL(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testEndpoint,
		httpmock.NewStringResponder(200, mockPayload("")))

	client := newTestClient()
	rec, err := client.Lookup(context.Background(), testVideoID)

	require.NoError(t, err)
	assert.Equal(t, float64(1700000000), rec.ExpiresAt)
}

// TestLookup_NoExpiryAnywhere tests a payload with neither expiry source.
func TestLookup_NoExpiryAnywhere(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	body := `{"files":{"mp4":{"url":"https://cdn-cf-east.streamable.com/video/mp4/abc123.mp4","duration":42.5}}}`
	httpmock.RegisterResponder("GET", testEndpoint,
		httpmock.NewStringResponder(200, body))

	client := newTestClient()
	_, err := client.Lookup(context.Background(), testVideoID)

	require.Error(t, err)
	assert.Equal(t, domain.KindDecode, domain.ResolveKindOf(err))
}

// TestLookup_HTTPError tests status error handling.
func TestLookup_HTTPError(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	tests := []struct {
		name       string
		statusCode int
	}{
		{"404 Not Found", 404},
		{"429 Too Many Requests", 429},
		{"500 Internal Server Error", 500},
		{"503 Service Unavailable", 503},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpmock.Reset()
			httpmock.RegisterResponder("GET", testEndpoint,
				httpmock.NewStringResponder(tt.statusCode, "Error"))

			client := newTestClient()
			_, err := client.Lookup(context.Background(), testVideoID)

			require.Error(t, err)
			assert.Equal(t, domain.KindNetwork, domain.ResolveKindOf(err))
			assert.Contains(t, err.Error(), fmt.Sprintf("status %d", tt.statusCode))
		})
	}
}

// TestLookup_NetworkError tests transport error handling.
func TestLookup_NetworkError(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testEndpoint,
		httpmock.NewErrorResponder(fmt.Errorf("network error: connection refused")))

	client := newTestClient()
	_, err := client.Lookup(context.Background(), testVideoID)

	require.Error(t, err)
	assert.Equal(t, domain.KindNetwork, domain.ResolveKindOf(err))
}

// TestLookup_Timeout tests that an unresponsive upstream classifies as a
// timeout failure.
func TestLookup_Timeout(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testEndpoint,
		func(_ *http.Request) (*http.Response, error) {
			time.Sleep(200 * time.Millisecond)

			return httpmock.NewStringResponse(200, mockPayload("1800000000")), nil
		})

	client := newTestClient()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Lookup(ctx, testVideoID)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Equal(t, domain.KindTimeout, domain.ResolveKindOf(err))
	// The bound holds: the call gives up at the deadline, not when the
	// upstream finally answers.
	assert.Less(t, elapsed.Milliseconds(), int64(150))
}

// TestLookup_MalformedBody tests decode error classification.
func TestLookup_MalformedBody(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testEndpoint,
		httpmock.NewStringResponder(200, "<html>not json</html>"))

	client := newTestClient()
	_, err := client.Lookup(context.Background(), testVideoID)

	require.Error(t, err)
	assert.Equal(t, domain.KindDecode, domain.ResolveKindOf(err))
}

// TestLookup_CircuitBreakerOpens tests that the breaker opens after
// consecutive failures and then fails fast.
func TestLookup_CircuitBreakerOpens(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testEndpoint,
		httpmock.NewStringResponder(500, "Internal Server Error"))

	client := newTestClient()

	for i := 0; i < 5; i++ {
		_, err := client.Lookup(context.Background(), testVideoID)
		require.Error(t, err)
	}

	start := time.Now()
	_, err := client.Lookup(context.Background(), testVideoID)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
	// Should fail fast (< 100ms) without making an HTTP request
	assert.Less(t, elapsed.Milliseconds(), int64(100))
}
