// Package pdfunlock removes password protection from PDF documents.
package pdfunlock

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	// ErrIncorrectPassword means the document is encrypted and the password did not open it.
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrUnreadable covers corrupt input and unsupported encryption schemes.
	ErrUnreadable = errors.New("unreadable PDF")
)

// Result is an unlocked document.
type Result struct {
	Content      []byte
	Pages        int
	WasEncrypted bool
}

// Codec unlocks a PDF given its password.
type Codec interface {
	Unlock(ctx context.Context, payload []byte, password string) (*Result, error)
}

// PdfcpuCodec implements Codec with pdfcpu. It keeps no state between calls.
type PdfcpuCodec struct{}

// NewPdfcpuCodec returns a Codec backed by pdfcpu. pdfcpu's on-disk config directory is disabled
// so the service never writes outside its own state.
func NewPdfcpuCodec() *PdfcpuCodec {
	api.DisableConfigDir()
	return &PdfcpuCodec{}
}

var _ Codec = (*PdfcpuCodec)(nil)

func newConfiguration(password string) *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password
	return conf
}

// Unlock opens payload with password and writes every page into a fresh unencrypted document.
func (c *PdfcpuCodec) Unlock(ctx context.Context, payload []byte, password string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdfCtx, err := api.ReadContext(bytes.NewReader(payload), newConfiguration(password))
	if err != nil {
		return nil, classify(err)
	}
	if err := pdfCtx.EnsurePageCount(); err != nil {
		return nil, classify(err)
	}
	encrypted := pdfCtx.Encrypt != nil

	var out bytes.Buffer
	if encrypted {
		err = api.Decrypt(bytes.NewReader(payload), &out, newConfiguration(password))
	} else {
		err = api.Optimize(bytes.NewReader(payload), &out, newConfiguration(password))
	}
	if err != nil {
		return nil, classify(err)
	}

	return &Result{
		Content:      out.Bytes(),
		Pages:        pdfCtx.PageCount,
		WasEncrypted: encrypted,
	}, nil
}

func classify(err error) error {
	if errors.Is(err, pdfcpu.ErrWrongPassword) || strings.Contains(err.Error(), "correct password") {
		return fmt.Errorf("%w: %v", ErrIncorrectPassword, err)
	}
	return fmt.Errorf("%w: %v", ErrUnreadable, err)
}
