package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"doctools/internal/events"
	"doctools/internal/filestore"
	"doctools/internal/model"
	"doctools/internal/pdfunlock"
	"doctools/internal/repository"
	"doctools/internal/scan"
)

// Validation errors carry the machine-readable reason returned to clients.
var (
	ErrNoFileUploaded   = errors.New("no file uploaded")
	ErrNoFileSelected   = errors.New("no file selected")
	ErrPasswordRequired = errors.New("password is required")
	ErrNotPDF           = errors.New("only PDF files are allowed")
	ErrFileTooLarge     = errors.New("file too large")
)

var (
	// ErrIncorrectPassword is returned when the supplied password does not open the document.
	ErrIncorrectPassword = pdfunlock.ErrIncorrectPassword
	// ErrProcessingFailed covers corrupt documents and unsupported encryption.
	ErrProcessingFailed = errors.New("failed to process PDF")
	// ErrFileRejected is returned when the malware scan flags the upload.
	ErrFileRejected = scan.ErrInfected
	// ErrNotFound means the file id is unknown or the file has expired.
	ErrNotFound = errors.New("file not found or expired")
)

var tracer = otel.Tracer("doctools/internal/service")

// IsValidation reports whether err is a client input error.
func IsValidation(err error) bool {
	for _, target := range []error{ErrNoFileUploaded, ErrNoFileSelected, ErrPasswordRequired, ErrNotPDF, ErrFileTooLarge} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// UnlockInput is one password removal request.
type UnlockInput struct {
	Filename string
	Password string
	Content  []byte
}

// PasswordService defines the password removal use cases.
type PasswordService interface {
	// RemovePassword validates the upload, unlocks it and stores the result for later download.
	// Exactly one entry is stored per successful call and none on failure.
	RemovePassword(ctx context.Context, in UnlockInput) (*model.ProcessedFile, error)

	// Download returns a stored file. It does not delete the entry or extend its lifetime.
	Download(ctx context.Context, id string) (*model.ProcessedFile, error)

	// Exists reports whether id can currently be downloaded.
	Exists(ctx context.Context, id string) bool
}

// PasswordOption customizes the password service.
type PasswordOption func(*passwordService)

// WithScanner scans uploads before they are opened.
func WithScanner(s scan.Scanner) PasswordOption {
	return func(p *passwordService) { p.scanner = s }
}

// WithActivityLog records every attempt in repo.
func WithActivityLog(repo repository.ActivityRepository) PasswordOption {
	return func(p *passwordService) { p.activities.repo = repo }
}

// WithPublisher publishes an event for every stored file.
func WithPublisher(pub events.Publisher) PasswordOption {
	return func(p *passwordService) { p.publisher = pub }
}

// WithLogger sets the logger used for server-side failure detail.
func WithLogger(l *slog.Logger) PasswordOption {
	return func(p *passwordService) {
		p.logger = l
		p.activities.logger = l
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) PasswordOption {
	return func(p *passwordService) {
		p.now = now
		p.activities.now = now
	}
}

// WithIDGenerator overrides the file id generator.
func WithIDGenerator(fn func() string) PasswordOption {
	return func(p *passwordService) { p.newID = fn }
}

type passwordService struct {
	codec      pdfunlock.Codec
	store      filestore.Store
	maxBytes   int64
	scanner    scan.Scanner
	publisher  events.Publisher
	activities activityLog
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
}

// NewPasswordService constructs a PasswordService. Uploads larger than maxBytes are rejected.
func NewPasswordService(codec pdfunlock.Codec, store filestore.Store, maxBytes int64, opts ...PasswordOption) PasswordService {
	logger := slog.Default()
	s := &passwordService{
		codec:      codec,
		store:      store,
		maxBytes:   maxBytes,
		scanner:    scan.NoopScanner{},
		publisher:  events.NoopPublisher{},
		activities: activityLog{logger: logger, now: time.Now},
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validateUpload(in UnlockInput, maxBytes int64) error {
	switch {
	case in.Filename == "":
		return ErrNoFileSelected
	case len(in.Content) == 0:
		return ErrNoFileUploaded
	case in.Password == "":
		return ErrPasswordRequired
	case !strings.HasSuffix(strings.ToLower(in.Filename), ".pdf"):
		return ErrNotPDF
	case maxBytes > 0 && int64(len(in.Content)) > maxBytes:
		return ErrFileTooLarge
	}
	return nil
}

func (s *passwordService) RemovePassword(ctx context.Context, in UnlockInput) (_ *model.ProcessedFile, err error) {
	ctx, span := tracer.Start(ctx, "PasswordService.RemovePassword",
		trace.WithAttributes(attribute.Int64("upload.size", int64(len(in.Content)))))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "remove password failed")
		}
		span.End()
	}()

	if err := validateUpload(in, s.maxBytes); err != nil {
		return nil, err
	}

	attempt := model.Activity{
		Kind:     model.ActivityPDFUnlock,
		Filename: in.Filename,
		Size:     int64(len(in.Content)),
	}

	if err := s.scanner.Scan(ctx, in.Filename, in.Content); err != nil {
		attempt.Status = model.StatusRejected
		if !errors.Is(err, scan.ErrInfected) {
			attempt.Status = model.StatusFailed
			s.logger.Error("upload_scan_failed", slog.String("filename", in.Filename), slog.Any("error", err))
		}
		s.activities.record(ctx, attempt)
		return nil, fmt.Errorf("scan upload: %w", err)
	}

	res, err := s.codec.Unlock(ctx, in.Content, in.Password)
	if err != nil {
		attempt.Status = model.StatusFailed
		s.activities.record(ctx, attempt)
		if errors.Is(err, pdfunlock.ErrIncorrectPassword) {
			return nil, ErrIncorrectPassword
		}
		s.logger.Warn("pdf_unlock_failed", slog.String("filename", in.Filename), slog.Any("error", err))
		if errors.Is(err, pdfunlock.ErrUnreadable) {
			return nil, fmt.Errorf("%w: %v", ErrProcessingFailed, err)
		}
		return nil, fmt.Errorf("unlock: %w", err)
	}

	f := &model.ProcessedFile{
		ID:               s.newID(),
		Content:          res.Content,
		OriginalFilename: in.Filename,
		Pages:            res.Pages,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.store.Save(ctx, f); err != nil {
		attempt.Status = model.StatusFailed
		s.activities.record(ctx, attempt)
		return nil, fmt.Errorf("store unlocked file: %w", err)
	}

	attempt.Status = model.StatusSuccess
	s.activities.record(ctx, attempt)
	span.SetAttributes(attribute.Int("pdf.pages", f.Pages), attribute.Bool("pdf.was_encrypted", res.WasEncrypted))

	event := events.FileUnlocked{
		FileID:     f.ID,
		Filename:   f.OriginalFilename,
		Pages:      f.Pages,
		Size:       f.Size(),
		OccurredAt: f.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, events.PDFUnlocked, event); err != nil {
		s.logger.Warn("event_publish_failed", slog.String("event", events.PDFUnlocked), slog.Any("error", err))
	}

	s.logger.Info("pdf_unlocked",
		slog.String("file_id", f.ID),
		slog.Int("pages", f.Pages),
		slog.Bool("was_encrypted", res.WasEncrypted),
	)
	return f, nil
}

func (s *passwordService) Download(ctx context.Context, id string) (*model.ProcessedFile, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	f, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load unlocked file: %w", err)
	}
	return f, nil
}

func (s *passwordService) Exists(ctx context.Context, id string) bool {
	return id != "" && s.store.Has(ctx, id)
}
