package records

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/clinica/clinica/internal/platform/blobstore"
)

type Service struct {
	repo  Repository
	blobs blobstore.BlobStore
}

func NewService(repo Repository, blobs blobstore.BlobStore) *Service {
	return &Service{repo: repo, blobs: blobs}
}

// -- Entries --

func (s *Service) CreateEntry(ctx context.Context, e *Entry) error {
	if e.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if e.ProfessionalID == uuid.Nil {
		return fmt.Errorf("professional_id is required")
	}
	if !validTypes[e.EntryType] {
		return fmt.Errorf("invalid entry_type %q", e.EntryType)
	}
	if strings.TrimSpace(e.Content) == "" {
		return fmt.Errorf("content is required")
	}
	return s.repo.Create(ctx, e)
}

func (s *Service) GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateEntry(ctx context.Context, e *Entry) error {
	if !validTypes[e.EntryType] {
		return fmt.Errorf("invalid entry_type %q", e.EntryType)
	}
	if strings.TrimSpace(e.Content) == "" {
		return fmt.Errorf("content is required")
	}
	return s.repo.Update(ctx, e)
}

func (s *Service) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListEntries(ctx context.Context, patientID uuid.UUID, entryType string, limit, offset int) ([]*Entry, int, error) {
	if entryType != "" && !validTypes[entryType] {
		return nil, 0, fmt.Errorf("invalid entry_type %q", entryType)
	}
	return s.repo.ListByPatient(ctx, patientID, entryType, limit, offset)
}

// -- Attachments --

func (s *Service) UploadAttachment(ctx context.Context, meta blobstore.BlobMetadata, content io.Reader) (*blobstore.BlobMetadata, error) {
	if meta.PatientID == "" {
		return nil, fmt.Errorf("patient_id is required")
	}
	return s.blobs.Upload(ctx, meta, content)
}

func (s *Service) DownloadAttachment(ctx context.Context, id string) (io.ReadCloser, *blobstore.BlobMetadata, error) {
	return s.blobs.Download(ctx, id)
}

func (s *Service) DeleteAttachment(ctx context.Context, id string) error {
	return s.blobs.Delete(ctx, id)
}

func (s *Service) ListAttachments(ctx context.Context, patientID uuid.UUID, category string, limit, offset int) ([]*blobstore.BlobMetadata, int, error) {
	return s.blobs.ListByPatient(ctx, patientID.String(), category, limit, offset)
}
