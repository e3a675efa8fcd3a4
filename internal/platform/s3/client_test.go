package s3

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient creates a Client backed by a test HTTP server.
// The handler receives real S3 XML-protocol requests.
func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := s3.New(s3.Options{
		Region:       "eu-central-1",
		BaseEndpoint: aws.String(server.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("test-key", "test-secret", ""),
		HTTPClient: &http.Client{
			Transport: &http.Transport{},
		},
	})

	return &Client{s3: client, region: "eu-central-1"}
}

// xmlResponse is a helper to write S3-style XML responses.
func xmlResponse(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}

func errorBody(code string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>%s</Code><Message>%s</Message></Error>`, code, code)
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	client, err := NewClient(context.Background(), Options{
		Endpoint:  "https://fsn1.your-objectstorage.com",
		Region:    "fsn1",
		AccessKey: "access",
		SecretKey: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "fsn1", client.region)

	_, err = NewClient(context.Background(), Options{})
	assert.Error(t, err)
}

func TestCreateBucket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{"created", 200, `<?xml version="1.0" encoding="UTF-8"?><CreateBucketResult/>`, false},
		{"already owned", 409, errorBody("BucketAlreadyOwnedByYou"), false},
		{"denied", 403, errorBody("AccessDenied"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				xmlResponse(w, tt.status, tt.body)
			}))

			err := client.CreateBucket(context.Background(), "creds")
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "failed to create bucket creds")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestEnsureBucket_CreatesMissingBucket(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var methods []string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method)
		mu.Unlock()
		if r.Method == http.MethodHead {
			w.WriteHeader(404)
			return
		}
		xmlResponse(w, 200, `<?xml version="1.0" encoding="UTF-8"?><CreateBucketResult/>`)
	}))

	require.NoError(t, client.EnsureBucket(context.Background(), "creds"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{http.MethodHead, http.MethodPut}, methods)
}

func TestEnsureBucket_ExistingBucket(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("unexpected %s request", r.Method)
		}
		w.WriteHeader(200)
	}))

	require.NoError(t, client.EnsureBucket(context.Background(), "creds"))
}

func TestBucketExists_Error(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		xmlResponse(w, 403, errorBody("AccessDenied"))
	}))

	_, err := client.BucketExists(context.Background(), "creds")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check bucket creds")
}

func TestPutObject(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var captured []byte
	var contentType string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		captured, _ = io.ReadAll(r.Body)
		contentType = r.Header.Get("Content-Type")
		w.WriteHeader(200)
	}))

	require.NoError(t, client.PutObject(context.Background(), "creds", "demo.yaml", []byte("records: {}\n")))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "records: {}\n", string(captured))
	assert.Equal(t, "application/yaml", contentType)
}

func TestPutObject_Error(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		xmlResponse(w, 500, errorBody("InternalError"))
	}))

	err := client.PutObject(context.Background(), "creds", "demo.yaml", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to put object demo.yaml in bucket creds")
}

func TestGetObject(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte("payload"))
	}))

	data, err := client.GetObject(context.Background(), "creds", "demo.yaml")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestGetObject_Missing(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		xmlResponse(w, 404, errorBody("NoSuchKey"))
	}))

	_, err := client.GetObject(context.Background(), "creds", "missing.yaml")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	assert.False(t, isBucketAlreadyOwnedByYou(nil))
	assert.True(t, isBucketAlreadyOwnedByYou(fmt.Errorf("outer: %w", &s3types.BucketAlreadyOwnedByYou{})))
	assert.True(t, isBucketAlreadyOwnedByYou(fmt.Errorf("outer: %w", &s3types.BucketAlreadyExists{})))
	assert.False(t, isBucketAlreadyOwnedByYou(fmt.Errorf("outer: %w", fmt.Errorf("inner"))))

	assert.False(t, isNotFoundError(nil))
	assert.True(t, isNotFoundError(fmt.Errorf("outer: %w", &s3types.NoSuchBucket{})))
	assert.True(t, isNotFoundError(fmt.Errorf("outer: %w", &s3types.NoSuchKey{})))
	assert.True(t, isNotFoundError(fmt.Errorf("outer: %w", &s3types.NotFound{})))
	assert.False(t, isNotFoundError(fmt.Errorf("outer: %w", fmt.Errorf("inner"))))
}
