package filestorage

import (
	"context"
	"errors"
	"mime/multipart"
)

// Asset is a stored file: the public URL and the id used to delete it later
type Asset struct {
	URL     string
	AssetID string
}

// AssetStore uploads and deletes media assets
type AssetStore interface {
	// Upload stores the file under folder and returns where it can be fetched
	Upload(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (*Asset, error)

	// Delete removes an asset; deleting a missing asset is not an error
	Delete(ctx context.Context, assetID string) error
}

// Asset folders
const (
	FolderAvatars      = "avatars"
	FolderPublications = "publications"
)

// Validation errors returned by ValidateImage
var (
	ErrFileTooLarge      = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedFormat = errors.New("only JPEG and PNG images are allowed")
	ErrInvalidAssetID    = errors.New("invalid asset id")
	ErrUnreadableUpload  = errors.New("uploaded file could not be read")
)
