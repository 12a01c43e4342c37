// Package assets converts binary uploads into self-contained inline
// representations (data URLs) before they are attached to a draft or entity.
package assets

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/fablepress/core/internal/models"
)

// EncodeDataURL wraps raw bytes as a data URL.
func EncodeDataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// Input is one binary upload to encode.
type Input struct {
	Filename string
	MimeType string
	Reader   io.Reader
}

type result struct {
	image models.Image
	err   error
}

// EncodeAll reads every input concurrently and collects the encoded images
// as each read completes. The returned order is completion order, not input
// order; callers append the batch to an ordered list in one operation.
// A failed read drops that file and is reported in the joined error while
// the remaining files still encode.
func EncodeAll(ctx context.Context, inputs []Input) ([]models.Image, error) {
	if len(inputs) == 0 {
		return []models.Image{}, nil
	}

	results := make(chan result, len(inputs))
	for _, in := range inputs {
		go func(in Input) {
			data, err := io.ReadAll(in.Reader)
			if err != nil {
				results <- result{err: fmt.Errorf("read %s: %w", in.Filename, err)}
				return
			}
			results <- result{image: models.Image{
				Filename: in.Filename,
				MimeType: in.MimeType,
				Content:  EncodeDataURL(in.MimeType, data),
				Alt:      in.Filename,
			}}
		}(in)
	}

	images := make([]models.Image, 0, len(inputs))
	var errs []error
	for range inputs {
		select {
		case r := <-results:
			if r.err != nil {
				errs = append(errs, r.err)
				continue
			}
			images = append(images, r.image)
		case <-ctx.Done():
			return images, ctx.Err()
		}
	}
	return images, errors.Join(errs...)
}

// EncodeAvatar encodes a single upload as a profile avatar.
func EncodeAvatar(mimeType string, r io.Reader) (*models.Avatar, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read avatar: %w", err)
	}
	return &models.Avatar{
		MimeType: mimeType,
		Content:  EncodeDataURL(mimeType, data),
	}, nil
}
