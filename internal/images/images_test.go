package images

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestUploaderLocalStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:8080/")
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	uploader := NewUploader(store, 1024)
	ctx := context.Background()

	t.Run("stores PNG under a generated key", func(t *testing.T) {
		stored, err := uploader.Upload(ctx, bytes.NewReader(pngHeader))
		if err != nil {
			t.Fatalf("Upload failed: %v", err)
		}
		if !strings.HasSuffix(stored.Key, ".png") {
			t.Errorf("key = %s, want .png extension", stored.Key)
		}
		if stored.URL != "http://localhost:8080/uploads/"+stored.Key {
			t.Errorf("URL = %s", stored.URL)
		}

		data, err := os.ReadFile(filepath.Join(dir, stored.Key))
		if err != nil {
			t.Fatalf("stored file missing: %v", err)
		}
		if !bytes.Equal(data, pngHeader) {
			t.Error("stored bytes differ from upload")
		}

		if err := uploader.Delete(ctx, stored.Key); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, stored.Key)); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected file to be removed, stat err = %v", err)
		}
	})

	t.Run("rejects non-image content", func(t *testing.T) {
		_, err := uploader.Upload(ctx, strings.NewReader("just some text pretending to be a photo"))
		if !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("expected ErrUnsupportedType, got %v", err)
		}
	})

	t.Run("rejects oversized images", func(t *testing.T) {
		big := append(append([]byte{}, pngHeader...), make([]byte, 2048)...)
		_, err := uploader.Upload(ctx, bytes.NewReader(big))
		if !errors.Is(err, ErrTooLarge) {
			t.Errorf("expected ErrTooLarge, got %v", err)
		}
	})

	t.Run("delete of empty or missing key is a no-op", func(t *testing.T) {
		if err := uploader.Delete(ctx, ""); err != nil {
			t.Errorf("Delete(\"\") = %v", err)
		}
		if err := uploader.Delete(ctx, "missing.png"); err != nil {
			t.Errorf("Delete(missing) = %v", err)
		}
	})
}

func TestLocalStoreRequestBaseURL(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "")
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}

	ctx := WithBaseURL(context.Background(), "https://api.split.test/")
	stored, err := NewUploader(store, 1024).Upload(ctx, bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if stored.URL != "https://api.split.test/uploads/"+stored.Key {
		t.Errorf("URL = %s, want absolute URL on the request origin", stored.URL)
	}
}

func TestS3Store(t *testing.T) {
	var (
		mu       sync.Mutex
		requests []string
		body     []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		requests = append(requests, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPut {
			body, _ = io.ReadAll(r.Body)
			w.Header().Set("ETag", `"etag"`)
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(server.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("key", "secret", ""),
	})
	store := NewS3StoreFromClient(client, "bills", "sessions/")
	ctx := context.Background()

	stored, err := NewUploader(store, 1024).Upload(ctx, bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if !strings.HasPrefix(stored.Key, "sessions/") {
		t.Errorf("key = %s, want sessions/ prefix", stored.Key)
	}
	if !strings.Contains(stored.URL, "/bills/"+stored.Key) {
		t.Errorf("URL = %s, want it to contain /bills/%s", stored.URL, stored.Key)
	}

	if err := store.Delete(ctx, stored.Key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(requests) != 2 {
		t.Fatalf("requests = %v, want PUT then DELETE", requests)
	}
	if requests[0] != "PUT /bills/"+stored.Key || requests[1] != "DELETE /bills/"+stored.Key {
		t.Errorf("unexpected requests: %v", requests)
	}
	if !bytes.Contains(body, pngHeader[:8]) {
		t.Error("uploaded body does not contain the image")
	}
}
