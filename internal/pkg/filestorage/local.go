package filestorage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/uniconnect/api/internal/pkg/validation"
)

// LocalStorage stores assets on the local filesystem and serves them under baseURL.
type LocalStorage struct {
	basePath string
	baseURL  string
	logger   zerolog.Logger
}

// NewLocalStorage creates the base directory if needed.
// baseURL is the public prefix the router serves basePath under, e.g. http://host/uploads.
func NewLocalStorage(basePath, baseURL string, logger zerolog.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}, nil
}

// BasePath returns the directory assets are written to
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// Upload copies the multipart file to <basePath>/<folder>/<uuid><ext>
func (ls *LocalStorage) Upload(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (*Asset, error) {
	if fileHeader == nil {
		return nil, ErrUnreadableUpload
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dir := filepath.Join(ls.basePath, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create asset folder: %w", err)
	}

	name := uuid.New().String() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	dstPath := filepath.Join(dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	assetID := path.Join(folder, name)
	asset := &Asset{
		URL:     ls.baseURL + "/" + assetID,
		AssetID: assetID,
	}

	ls.logger.Debug().Str("assetID", assetID).Str("filename", fileHeader.Filename).Msg("Asset stored")
	return asset, nil
}

// Delete removes the asset file; the id may not escape basePath
func (ls *LocalStorage) Delete(ctx context.Context, assetID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	physicalPath, err := ls.resolve(assetID)
	if err != nil {
		return err
	}

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			ls.logger.Warn().Str("assetID", assetID).Msg("Asset to delete does not exist")
			return nil
		}
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	ls.logger.Debug().Str("assetID", assetID).Msg("Asset deleted")
	return nil
}

func (ls *LocalStorage) resolve(assetID string) (string, error) {
	if assetID == "" {
		return "", ErrInvalidAssetID
	}
	clean := path.Clean("/" + assetID)
	if clean == "/" || strings.Contains(assetID, "..") {
		return "", ErrInvalidAssetID
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// ValidateImage enforces the JPEG/PNG and size rules on an upload.
// The declared content type and the sniffed bytes must both be acceptable.
func ValidateImage(fileHeader *multipart.FileHeader) error {
	if fileHeader == nil {
		return ErrUnreadableUpload
	}
	if fileHeader.Size > validation.MaxImageSize {
		return ErrFileTooLarge
	}

	if declared := fileHeader.Header.Get("Content-Type"); declared != "" && !validation.IsAllowedImageType(declared) {
		return ErrUnsupportedFormat
	}

	f, err := fileHeader.Open()
	if err != nil {
		return ErrUnreadableUpload
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return ErrUnreadableUpload
	}
	if !validation.IsAllowedImageType(http.DetectContentType(head[:n])) {
		return ErrUnsupportedFormat
	}
	return nil
}
