package slipsink

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/afero"
)

// Sink is the interface for handing a staged document to its destination.
type Sink interface {
	// Deliver writes the staged document to the destination.
	Deliver(slip *Staged) error
	// Close releases any handle held by the sink.
	Close() error
	// IsReady returns true if the destination is currently reachable.
	IsReady() bool
}

// --- Response Sink (streams the document to the browser as a download) ---

type responseSink struct {
	w http.ResponseWriter
}

// NewResponseSink creates a sink that sends the document as an HTTP attachment.
func NewResponseSink(w http.ResponseWriter) Sink {
	return &responseSink{w: w}
}

func (s *responseSink) Deliver(slip *Staged) error {
	f, err := slip.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	h := s.w.Header()
	h.Set("Content-Type", slip.ContentType())
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", slip.Name()))
	h.Set("Content-Length", strconv.FormatInt(slip.Size(), 10))
	h.Set("Cache-Control", "no-store")
	s.w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(s.w, f); err != nil {
		return fmt.Errorf("slipsink: failed to stream %s: %w", slip.Name(), err)
	}
	return nil
}

func (s *responseSink) Close() error {
	return nil
}

func (s *responseSink) IsReady() bool {
	return s.w != nil
}

// --- Disk Sink (keeps a copy in a directory) ---

type diskSink struct {
	fs  afero.Fs
	dir string
}

// NewDiskSink creates a sink that saves documents into dir.
func NewDiskSink(fs afero.Fs, dir string) Sink {
	return &diskSink{fs: fs, dir: dir}
}

func (s *diskSink) Deliver(slip *Staged) error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("slipsink: failed to create %s: %w", s.dir, err)
	}
	f, err := slip.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	target := filepath.Join(s.dir, slip.Name())
	if err := afero.WriteReader(s.fs, target, f); err != nil {
		return fmt.Errorf("slipsink: failed to write %s: %w", target, err)
	}
	return nil
}

func (s *diskSink) Close() error {
	return nil
}

func (s *diskSink) IsReady() bool {
	ok, err := afero.DirExists(s.fs, s.dir)
	return err == nil && ok
}

// --- Network Sink (raw TCP, e.g. a print server on 192.168.1.100:9100) ---

type networkSink struct {
	address string
	timeout time.Duration
}

// NewNetworkSink creates a sink that streams documents over TCP.
// Address should include port, e.g. "192.168.1.100:9100".
func NewNetworkSink(address string) Sink {
	return &networkSink{
		address: address,
		timeout: 5 * time.Second,
	}
}

func (s *networkSink) Deliver(slip *Staged) error {
	f, err := slip.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	conn, err := net.DialTimeout("tcp", s.address, s.timeout)
	if err != nil {
		return fmt.Errorf("slipsink: failed to connect to %s: %w", s.address, err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))

	if _, err := io.Copy(conn, f); err != nil {
		return fmt.Errorf("slipsink: failed to write to %s: %w", s.address, err)
	}
	return nil
}

func (s *networkSink) Close() error {
	return nil // connection is opened per delivery
}

func (s *networkSink) IsReady() bool {
	conn, err := net.DialTimeout("tcp", s.address, 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// --- Null Sink (no-op, used when no copy is configured) ---

type nullSink struct{}

// NewNullSink creates a sink that discards documents.
func NewNullSink() Sink {
	return &nullSink{}
}

func (s *nullSink) Deliver(slip *Staged) error {
	return nil
}

func (s *nullSink) Close() error {
	return nil
}

func (s *nullSink) IsReady() bool {
	return false
}

// --- Tee (delivers to several sinks in order) ---

type teeSink struct {
	sinks []Sink
}

// Tee delivers every document to each sink in order and stops at the first failure.
func Tee(sinks ...Sink) Sink {
	return &teeSink{sinks: sinks}
}

func (s *teeSink) Deliver(slip *Staged) error {
	for _, sink := range s.sinks {
		if err := sink.Deliver(slip); err != nil {
			return err
		}
	}
	return nil
}

func (s *teeSink) Close() error {
	var errs []error
	for _, sink := range s.sinks {
		errs = append(errs, sink.Close())
	}
	return errors.Join(errs...)
}

func (s *teeSink) IsReady() bool {
	for _, sink := range s.sinks {
		if !sink.IsReady() {
			return false
		}
	}
	return len(s.sinks) > 0
}

// Config selects the sink that keeps a copy of every delivered slip
type Config struct {
	Type    string // "disk", "network", "email" or "none"
	Dir     string // target directory for disk sinks
	Address string // TCP address for network sinks, e.g. "192.168.1.100:9100"
	Email   EmailConfig
}

// NewSinkFromConfig creates the copy sink described by cfg.
func NewSinkFromConfig(fs afero.Fs, cfg Config) (Sink, error) {
	switch cfg.Type {
	case "disk":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("slipsink: directory is required for disk sink type")
		}
		return NewDiskSink(fs, cfg.Dir), nil
	case "network":
		if cfg.Address == "" {
			return nil, fmt.Errorf("slipsink: address is required for network sink type")
		}
		return NewNetworkSink(cfg.Address), nil
	case "email":
		if cfg.Email.SMTPHost == "" || len(cfg.Email.To) == 0 {
			return nil, fmt.Errorf("slipsink: SMTP host and recipients are required for email sink type")
		}
		return NewEmailSink(cfg.Email), nil
	case "none", "":
		return NewNullSink(), nil
	default:
		return nil, fmt.Errorf("slipsink: unknown sink type %q (use disk, network, email, or none)", cfg.Type)
	}
}
