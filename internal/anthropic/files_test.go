package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "report.png", "report.png"},
		{"spaces", "my report.png", "my_report.png"},
		{"traversal", "../../etc/passwd", "passwd"},
		{"nested path", "out/dir/chart.svg", "chart.svg"},
		{"special chars", "a:b*c?.txt", "a_b_c_.txt"},
		{"non ascii", "résumé.pdf", "r_sum_.pdf"},
		{"dot dot only", "..", "unnamed_file"},
		{"keeps extension", "data-v1.2_final.csv", "data-v1.2_final.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeFilename(tt.in); got != tt.want {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// filesServer serves the files endpoints with scriptable failures.
type filesServer struct {
	server *httptest.Server

	mu            sync.Mutex
	metadataFails int
	contentFails  int
	metadataCalls int
	filename      string
	content       []byte
}

func newFilesServer() *filesServer {
	fs := &filesServer{filename: "result.png", content: []byte("png-bytes")}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/files/", func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		defer fs.mu.Unlock()

		if strings.HasSuffix(r.URL.Path, "/content") {
			if fs.contentFails > 0 {
				fs.contentFails--
				http.Error(w, "file expired", http.StatusNotFound)
				return
			}
			w.Write(fs.content)
			return
		}

		fs.metadataCalls++
		if fs.metadataFails > 0 {
			fs.metadataFails--
			http.Error(w, "not ready", http.StatusNotFound)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/v1/files/")
		json.NewEncoder(w).Encode(FileMetadata{
			ID:        id,
			Filename:  fs.filename,
			SizeBytes: int64(len(fs.content)),
			MimeType:  "image/png",
		})
	})

	fs.server = httptest.NewServer(mux)
	return fs
}

func (fs *filesServer) client() *Client {
	return NewClient("test-key", WithBaseURL(fs.server.URL))
}

func TestDownloadAndSaveFile(t *testing.T) {
	origDelay := metadataRetryDelay
	metadataRetryDelay = 5 * time.Millisecond
	defer func() { metadataRetryDelay = origDelay }()

	t.Run("happy path", func(t *testing.T) {
		fs := newFilesServer()
		defer fs.server.Close()

		dir := t.TempDir()
		updates := make(chan FileUpdate, 1)

		err := fs.client().DownloadAndSaveFile(context.Background(), dir, "f_1", updates)
		if err != nil {
			t.Fatalf("DownloadAndSaveFile() error = %v", err)
		}

		select {
		case up := <-updates:
			if up.ID != "f_1" || up.Name != "result.png" {
				t.Errorf("update = %+v, want {f_1 result.png}", up)
			}
		default:
			t.Error("expected a file name update")
		}

		data, err := os.ReadFile(filepath.Join(dir, "result.png"))
		if err != nil {
			t.Fatalf("reading saved file: %v", err)
		}
		if string(data) != "png-bytes" {
			t.Errorf("saved content = %q, want %q", data, "png-bytes")
		}
	})

	t.Run("metadata retry succeeds", func(t *testing.T) {
		fs := newFilesServer()
		defer fs.server.Close()
		fs.metadataFails = 1

		dir := t.TempDir()
		err := fs.client().DownloadAndSaveFile(context.Background(), dir, "f_2", nil)
		if err != nil {
			t.Fatalf("DownloadAndSaveFile() error = %v", err)
		}
		if fs.metadataCalls != 2 {
			t.Errorf("metadata calls = %d, want 2", fs.metadataCalls)
		}
		if _, err := os.Stat(filepath.Join(dir, "result.png")); err != nil {
			t.Errorf("expected result.png to exist: %v", err)
		}
	})

	t.Run("metadata fails twice then content fails", func(t *testing.T) {
		fs := newFilesServer()
		defer fs.server.Close()
		fs.metadataFails = 2
		fs.contentFails = 1

		dir := t.TempDir()
		updates := make(chan FileUpdate, 1)

		err := fs.client().DownloadAndSaveFile(context.Background(), dir, "f_3", updates)
		if err != nil {
			t.Fatalf("DownloadAndSaveFile() error = %v; resolution failures must not propagate", err)
		}

		up := <-updates
		if up.Name != "f_3.bin" {
			t.Errorf("fallback name = %q, want %q", up.Name, "f_3.bin")
		}

		data, err := os.ReadFile(filepath.Join(dir, "f_3.bin"))
		if err != nil {
			t.Fatalf("reading placeholder: %v", err)
		}
		body := string(data)
		if !strings.Contains(body, "f_3") {
			t.Errorf("placeholder does not name the file id: %q", body)
		}
		if !strings.Contains(body, "Failed to download") {
			t.Errorf("placeholder does not describe the failure: %q", body)
		}
	})

	t.Run("sanitizes resolved name", func(t *testing.T) {
		fs := newFilesServer()
		defer fs.server.Close()
		fs.filename = "../sneaky dir/o ut.png"

		dir := t.TempDir()
		err := fs.client().DownloadAndSaveFile(context.Background(), dir, "f_4", nil)
		if err != nil {
			t.Fatalf("DownloadAndSaveFile() error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "o_ut.png")); err != nil {
			t.Errorf("expected sanitized o_ut.png inside output dir: %v", err)
		}
	})
}

func TestListFiles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/files", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("anthropic-beta"); got != filesBeta {
			t.Errorf("anthropic-beta = %q, want %q", got, filesBeta)
		}
		json.NewEncoder(w).Encode(ListFilesResponse{
			Data: []FileMetadata{{ID: "f_1", Filename: "a.txt"}},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	list, err := NewClient("k", WithBaseURL(srv.URL)).ListFiles(context.Background())
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if len(list.Data) != 1 || list.Data[0].Filename != "a.txt" {
		t.Errorf("ListFiles() = %+v", list)
	}
}
