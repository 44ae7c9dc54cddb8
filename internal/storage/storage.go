package storage

import (
	"context"
)

// BlobStore defines the interface for session archive and report storage.
// Implementations must return the stored payload byte for byte on
// download regardless of how they hold it at rest.
type BlobStore interface {
	UploadArchive(ctx context.Context, sessionID string, payload []byte) (string, error)
	DownloadArchive(ctx context.Context, blobName string) ([]byte, error)
	UploadReport(ctx context.Context, filename string, data []byte) (string, error)
	DownloadReport(ctx context.Context, blobName string) ([]byte, error)
}

// Ensure ArchiveClient implements BlobStore interface
var _ BlobStore = (*ArchiveClient)(nil)

// Ensure MockBlobStore implements BlobStore interface
var _ BlobStore = (*MockBlobStore)(nil)
