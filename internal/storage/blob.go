package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Samgith2025/recovery-plus-sub000/internal/security"
	"go.uber.org/zap"
)

// ArchiveClient wraps Azure Blob Storage for completed-session archives
// and generated reports. Payloads are sealed with AES-256-GCM before
// they are uploaded and opened again on download.
type ArchiveClient struct {
	client           *azblob.Client
	archiveContainer string
	reportContainer  string
	encryptor        *security.Encryptor
	logger           *zap.Logger
}

// NewArchiveClient creates a new Azure-backed archive client
func NewArchiveClient(accountName, accountKey, archiveContainer, reportContainer string, encryptor *security.Encryptor, logger *zap.Logger) (*ArchiveClient, error) {
	if accountName == "" || accountKey == "" || archiveContainer == "" || reportContainer == "" {
		return nil, fmt.Errorf("accountName, accountKey, archiveContainer, and reportContainer are required")
	}
	if encryptor == nil {
		return nil, fmt.Errorf("encryptor is required")
	}

	// Create service URL
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)

	// Create shared key credential
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create shared key credential: %w", err)
	}

	// Create blob client
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return &ArchiveClient{
		client:           client,
		archiveContainer: archiveContainer,
		reportContainer:  reportContainer,
		encryptor:        encryptor,
		logger:           logger,
	}, nil
}

// UploadArchive seals and uploads a completed session's response array
func (c *ArchiveClient) UploadArchive(ctx context.Context, sessionID string, payload []byte) (string, error) {
	c.logger.Info("uploading session archive to blob storage",
		zap.String("session_id", sessionID),
		zap.Int("size_bytes", len(payload)),
	)

	blobName := fmt.Sprintf("archives/%s.json.enc", sessionID)

	sealed, err := c.encryptor.Seal(payload)
	if err != nil {
		c.logger.Error("failed to seal session archive",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to seal session archive: %w", err)
	}

	blobClient := c.client.ServiceClient().NewContainerClient(c.archiveContainer).NewBlockBlobClient(blobName)

	_, err = blobClient.UploadBuffer(ctx, sealed, &azblob.UploadBufferOptions{
		Metadata: map[string]*string{
			"contenttype": toPtr("application/json"),
			"encryption":  toPtr("aes-256-gcm"),
		},
	})
	if err != nil {
		c.logger.Error("failed to upload session archive",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to upload session archive: %w", err)
	}

	c.logger.Info("session archive uploaded successfully",
		zap.String("blob_name", blobName),
	)

	return blobName, nil
}

// DownloadArchive downloads and opens a sealed session archive
func (c *ArchiveClient) DownloadArchive(ctx context.Context, blobName string) ([]byte, error) {
	c.logger.Info("downloading session archive from blob storage",
		zap.String("blob_name", blobName),
	)

	data, err := c.download(ctx, c.archiveContainer, blobName)
	if err != nil {
		return nil, fmt.Errorf("failed to download session archive: %w", err)
	}

	payload, err := c.encryptor.Open(data)
	if err != nil {
		c.logger.Error("failed to open session archive",
			zap.String("blob_name", blobName),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to open session archive: %w", err)
	}

	c.logger.Info("session archive downloaded successfully",
		zap.String("blob_name", blobName),
		zap.Int("size_bytes", len(payload)),
	)

	return payload, nil
}

// UploadReport seals and uploads a generated report
func (c *ArchiveClient) UploadReport(ctx context.Context, filename string, data []byte) (string, error) {
	c.logger.Info("uploading report to blob storage",
		zap.String("filename", filename),
		zap.Int("size_bytes", len(data)),
	)

	blobName := fmt.Sprintf("reports/%s", filename)

	sealed, err := c.encryptor.Seal(data)
	if err != nil {
		c.logger.Error("failed to seal report",
			zap.String("filename", filename),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to seal report: %w", err)
	}

	blobClient := c.client.ServiceClient().NewContainerClient(c.reportContainer).NewBlockBlobClient(blobName)

	_, err = blobClient.UploadBuffer(ctx, sealed, &azblob.UploadBufferOptions{
		Metadata: map[string]*string{
			"contenttype": toPtr("application/pdf"),
			"encryption":  toPtr("aes-256-gcm"),
		},
	})
	if err != nil {
		c.logger.Error("failed to upload report",
			zap.String("filename", filename),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to upload report: %w", err)
	}

	c.logger.Info("report uploaded successfully",
		zap.String("blob_name", blobName),
	)

	return blobName, nil
}

// DownloadReport downloads and opens a sealed report
func (c *ArchiveClient) DownloadReport(ctx context.Context, blobName string) ([]byte, error) {
	c.logger.Info("downloading report from blob storage",
		zap.String("blob_name", blobName),
	)

	data, err := c.download(ctx, c.reportContainer, blobName)
	if err != nil {
		return nil, fmt.Errorf("failed to download report: %w", err)
	}

	payload, err := c.encryptor.Open(data)
	if err != nil {
		c.logger.Error("failed to open report",
			zap.String("blob_name", blobName),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to open report: %w", err)
	}

	c.logger.Info("report downloaded successfully",
		zap.String("blob_name", blobName),
		zap.Int("size_bytes", len(payload)),
	)

	return payload, nil
}

// download fetches raw sealed bytes from a container
func (c *ArchiveClient) download(ctx context.Context, container, blobName string) ([]byte, error) {
	blobClient := c.client.ServiceClient().NewContainerClient(container).NewBlockBlobClient(blobName)

	downloadResponse, err := blobClient.DownloadStream(ctx, nil)
	if err != nil {
		c.logger.Error("failed to download blob",
			zap.String("blob_name", blobName),
			zap.Error(err),
		)
		return nil, err
	}
	defer downloadResponse.Body.Close()

	data, err := io.ReadAll(downloadResponse.Body)
	if err != nil {
		c.logger.Error("failed to read blob data",
			zap.String("blob_name", blobName),
			zap.Error(err),
		)
		return nil, err
	}

	return data, nil
}

// toPtr is a helper function to convert a value to a pointer
func toPtr(s string) *string {
	return &s
}
