package mirror

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMirrorToDir(t *testing.T) {
	src := filepath.Join(t.TempDir(), "oncology.png")
	payload := []byte("\x89PNG\r\n\x1a\n fake body")
	if err := os.WriteFile(src, payload, 0644); err != nil {
		t.Fatal(err)
	}

	base := t.TempDir()
	dest, err := Mirror(context.Background(), BackendDir, map[string]string{
		"baseDir": base,
		"folder":  "img/cards",
	}, src)
	if err != nil {
		t.Fatalf("Mirror failed: %v", err)
	}

	want := filepath.Join(base, "img", "cards", "oncology.png")
	if dest != want {
		t.Errorf("Expected destination %s, got %s", want, dest)
	}
	got, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("Mirrored file missing: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("Mirrored content differs: %q", got)
	}
}

func TestMirrorMissingSource(t *testing.T) {
	_, err := Mirror(context.Background(), BackendDir, map[string]string{"baseDir": t.TempDir()}, "does/not/exist.png")
	if err == nil {
		t.Fatal("Expected error for missing source file")
	}
}

func TestWriteImageUnknownBackend(t *testing.T) {
	err := WriteImage(context.Background(), map[string]string{}, strings.NewReader("x"), "ftp")
	if err == nil || !strings.Contains(err.Error(), "unknown backend type: ftp") {
		t.Fatalf("Expected unknown backend error, got %v", err)
	}
}

func TestBackendsValidateAccessInfo(t *testing.T) {
	ctx := context.Background()
	cases := map[string]string{
		BackendDir:  "baseDir",
		BackendS3:   "bucket",
		BackendGCS:  "bucket",
		BackendSFTP: "host, user, remoteDir",
	}
	for backend, missing := range cases {
		err := WriteImage(ctx, map[string]string{"filename": "a.png"}, strings.NewReader("x"), backend)
		if err == nil || !strings.Contains(err.Error(), missing) {
			t.Errorf("%s: expected error naming %q, got %v", backend, missing, err)
		}
	}
}

func TestDirRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := UploadToDir(ctx, map[string]string{"baseDir": t.TempDir(), "filename": "a.png"}, strings.NewReader("x"))
	if err != context.Canceled {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestDestination(t *testing.T) {
	info := map[string]string{
		"bucket":    "assets",
		"folder":    "static",
		"filename":  "hero.jpg",
		"host":      "files.example.com",
		"remoteDir": "/var/www",
	}
	cases := map[string]string{
		BackendS3:   "s3://assets/static/hero.jpg",
		BackendGCS:  "gs://assets/static/hero.jpg",
		BackendSFTP: "sftp://files.example.com/var/www/static/hero.jpg",
	}
	for backend, want := range cases {
		if got := Destination(backend, info); got != want {
			t.Errorf("%s: Destination = %q, want %q", backend, got, want)
		}
	}
}

func TestSFTPAuth(t *testing.T) {
	if _, err := sftpAuth(map[string]string{}); err == nil {
		t.Error("Expected error without password or key")
	}
	auths, err := sftpAuth(map[string]string{"password": "secret"})
	if err != nil || len(auths) != 1 {
		t.Errorf("Expected one password auth method, got %d, %v", len(auths), err)
	}
	if _, err := sftpAuth(map[string]string{"privateKey": "not a key"}); err == nil || !strings.Contains(err.Error(), "parse private key") {
		t.Errorf("Expected parse error for bogus key, got %v", err)
	}
}

func TestDecodeMaybeBase64(t *testing.T) {
	if got := string(decodeMaybeBase64("eyJ0eXBlIjoic2EifQ==")); got != `{"type":"sa"}` {
		t.Errorf("Expected decoded JSON, got %q", got)
	}
	if got := string(decodeMaybeBase64(`{"type":"sa"}`)); got != `{"type":"sa"}` {
		t.Errorf("Expected raw passthrough, got %q", got)
	}
}

func TestSupported(t *testing.T) {
	for _, b := range []string{BackendDir, BackendS3, BackendGCS, BackendSFTP} {
		if !Supported(b) {
			t.Errorf("%s should be supported", b)
		}
	}
	if Supported("ftp") || Supported("") {
		t.Error("Unknown backends should not be supported")
	}
}

// flushFailWriter accepts writes but fails on Close, like a remote file
// whose final flush is rejected.
type flushFailWriter struct {
	bytes.Buffer
	closed bool
}

var errFlush = errors.New("flush rejected")

func (w *flushFailWriter) Close() error {
	w.closed = true
	return errFlush
}

func TestCopyAndCloseReportsCloseError(t *testing.T) {
	w := &flushFailWriter{}
	err := copyAndClose(w, strings.NewReader("payload"), "/srv/www/img/a.png")
	if !errors.Is(err, errFlush) {
		t.Fatalf("Expected the close error to surface, got %v", err)
	}
	if !strings.Contains(err.Error(), "/srv/www/img/a.png") {
		t.Errorf("Error should name the destination: %v", err)
	}
	if !w.closed || w.String() != "payload" {
		t.Errorf("Expected payload written and writer closed, got %q closed=%v", w.String(), w.closed)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }

func TestCopyAndCloseClosesOnCopyError(t *testing.T) {
	w := &flushFailWriter{}
	err := copyAndClose(w, failingReader{}, "a.png")
	if err == nil || errors.Is(err, errFlush) {
		t.Fatalf("Expected the copy error, got %v", err)
	}
	if !w.closed {
		t.Error("Writer should be closed after a failed copy")
	}
}
