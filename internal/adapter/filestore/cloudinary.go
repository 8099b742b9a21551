package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/rl1809/micro-shop/internal/port"
)

var _ port.FileStore = (*Cloudinary)(nil)

// Cloudinary stores uploads in a Cloudinary account. The key is the asset's
// public id.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinary(cloudURL string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(cloudURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) Save(ctx context.Context, folder, filename string, r io.Reader) (port.StoredFile, error) {
	result, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:   folder,
		PublicID: strings.TrimSuffix(path.Base(filename), path.Ext(filename)),
	})
	if err != nil {
		return port.StoredFile{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if result.Error.Message != "" {
		return port.StoredFile{}, errors.New("cloudinary upload: " + result.Error.Message)
	}

	return port.StoredFile{URL: result.SecureURL, Key: result.PublicID}, nil
}

func (c *Cloudinary) Delete(ctx context.Context, key string) error {
	result, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: key})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if result.Error.Message != "" {
		return errors.New("cloudinary destroy: " + result.Error.Message)
	}
	return nil
}
