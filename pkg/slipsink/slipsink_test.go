package slipsink

import (
	"bytes"
	"io"
	"net"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

var pdfBody = []byte("%PDF-1.4\n%test slip\n%%EOF\n")

func stage(t *testing.T, fs afero.Fs) *Staged {
	t.Helper()
	s, err := Stage(fs, "/tmp/slips", "invoice_slip.pdf", "application/pdf", pdfBody)
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	return s
}

func TestStageAndRelease(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := stage(t, fs)

	if ok, _ := afero.Exists(fs, s.Path()); !ok {
		t.Fatalf("expected staged file %s to exist", s.Path())
	}
	if s.Size() != int64(len(pdfBody)) {
		t.Fatalf("size = %d, want %d", s.Size(), len(pdfBody))
	}

	if err := s.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := afero.Exists(fs, s.Path()); ok {
		t.Fatalf("expected staged file to be removed")
	}
	if err := s.Release(); err != nil {
		t.Fatalf("second release should be a no-op, got %v", err)
	}
	if _, err := s.Open(); err == nil {
		t.Fatalf("expected open after release to fail")
	}
}

func TestResponseSinkSetsAttachmentHeaders(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := stage(t, fs)
	defer s.Release()

	rec := httptest.NewRecorder()
	if err := NewResponseSink(rec).Deliver(s); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="invoice_slip.pdf"` {
		t.Fatalf("unexpected Content-Disposition %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("unexpected Content-Type %q", got)
	}
	if !bytes.Equal(rec.Body.Bytes(), pdfBody) {
		t.Fatalf("body mismatch")
	}
}

func TestDiskSinkWritesFixedName(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := stage(t, fs)
	defer s.Release()

	sink, err := NewSinkFromConfig(fs, Config{Type: "disk", Dir: "/srv/slips"})
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	if err := sink.Deliver(s); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	got, err := afero.ReadFile(fs, filepath.Join("/srv/slips", "invoice_slip.pdf"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, pdfBody) {
		t.Fatalf("disk copy mismatch")
	}
	if !sink.IsReady() {
		t.Fatalf("expected disk sink to be ready once the dir exists")
	}
}

func TestNetworkSinkStreamsBytes(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			received <- nil
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- data
	}()

	fs := afero.NewMemMapFs()
	s := stage(t, fs)
	defer s.Release()

	if err := NewNetworkSink(ln.Addr().String()).Deliver(s); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if got := <-received; !bytes.Equal(got, pdfBody) {
		t.Fatalf("network sink sent %q", got)
	}
}

type countingSink struct {
	calls int
	err   error
}

func (c *countingSink) Deliver(*Staged) error { c.calls++; return c.err }
func (c *countingSink) Close() error          { return nil }
func (c *countingSink) IsReady() bool         { return true }

func TestTeeStopsOnFirstFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := stage(t, fs)
	defer s.Release()

	first := &countingSink{err: io.ErrClosedPipe}
	second := &countingSink{}
	if err := Tee(first, second).Deliver(s); err == nil {
		t.Fatalf("expected error from first sink")
	}
	if first.calls != 1 || second.calls != 0 {
		t.Fatalf("unexpected calls: first=%d second=%d", first.calls, second.calls)
	}
}

func TestNewSinkFromConfigRejectsUnknown(t *testing.T) {
	if _, err := NewSinkFromConfig(afero.NewMemMapFs(), Config{Type: "fax"}); err == nil {
		t.Fatalf("expected error for unknown sink type")
	}
	if _, err := NewSinkFromConfig(afero.NewMemMapFs(), Config{Type: "network"}); err == nil {
		t.Fatalf("expected error for network sink without address")
	}
	if _, err := NewSinkFromConfig(afero.NewMemMapFs(), Config{Type: "email", Email: EmailConfig{SMTPHost: "smtp.local"}}); err == nil {
		t.Fatalf("expected error for email sink without recipients")
	}
}
