// Package scan checks uploads for malware before they are processed.
package scan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	clamd "github.com/dutchcoders/go-clamd"
)

var (
	// ErrInfected means the scanner matched a signature.
	ErrInfected = errors.New("file rejected by malware scan")
	// ErrScanFailed means the scanner could not give a verdict.
	ErrScanFailed = errors.New("malware scan failed")
)

// Scanner inspects a payload and returns ErrInfected when it must be rejected.
type Scanner interface {
	Scan(ctx context.Context, name string, content []byte) error
	Ping() error
}

// NoopScanner accepts everything. Used when no clamd address is configured.
type NoopScanner struct{}

func (NoopScanner) Scan(context.Context, string, []byte) error { return nil }
func (NoopScanner) Ping() error                                 { return nil }

// clamdClient is the part of *clamd.Clamd the scanner needs.
type clamdClient interface {
	ScanStream(r io.Reader, abort chan bool) (chan *clamd.ScanResult, error)
	Ping() error
}

// ClamdScanner streams payloads to a clamd daemon.
type ClamdScanner struct {
	client clamdClient
	logger *slog.Logger
}

// NewClamdScanner connects lazily to clamd at address, e.g. tcp://localhost:3310.
func NewClamdScanner(address string, logger *slog.Logger) *ClamdScanner {
	return &ClamdScanner{client: clamd.NewClamd(address), logger: logger}
}

var _ Scanner = (*ClamdScanner)(nil)

// Scan sends content to clamd and waits for every result. Returning for any reason closes abort,
// which is what makes go-clamd release the connection.
func (s *ClamdScanner) Scan(ctx context.Context, name string, content []byte) error {
	abort := make(chan bool)
	defer close(abort)
	results, err := s.client.ScanStream(bytes.NewReader(content), abort)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrScanFailed, err)
	}

	var signatures []string
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res, ok := <-results:
			if !ok {
				if len(signatures) > 0 {
					s.logger.Warn("upload_infected",
						slog.String("filename", name),
						slog.String("signature", strings.Join(signatures, ",")),
					)
					return fmt.Errorf("%w: %s", ErrInfected, strings.Join(signatures, ","))
				}
				return nil
			}
			switch res.Status {
			case clamd.RES_FOUND:
				signatures = append(signatures, res.Description)
			case clamd.RES_ERROR, clamd.RES_PARSE_ERROR:
				return fmt.Errorf("%w: %s", ErrScanFailed, res.Description)
			}
		}
	}
}

// Ping checks that clamd is reachable.
func (s *ClamdScanner) Ping() error {
	return s.client.Ping()
}
