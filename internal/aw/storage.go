package aw

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
)

// Storage wraps the blob store surface for one bucket.
type Storage struct {
	client   *Client
	bucketID string
}

// NewStorage creates the blob service bound to a bucket ID.
func NewStorage(c *Client, bucketID string) *Storage {
	return &Storage{client: c, bucketID: bucketID}
}

type file struct {
	ID string `json:"$id"`
}

// CreateFile uploads a blob and returns its stable file ID.
func (s *Storage) CreateFile(ctx context.Context, fileID, name string, contents io.Reader) (string, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		var err error
		defer func() { _ = pw.CloseWithError(err) }()
		if err = form.WriteField("fileId", fileID); err != nil {
			return
		}
		var part io.Writer
		if part, err = form.CreateFormFile("file", name); err != nil {
			return
		}
		if _, err = io.Copy(part, contents); err != nil {
			return
		}
		err = form.Close()
	}()

	var created file
	path := fmt.Sprintf("/storage/buckets/%s/files", s.bucketID)
	if err := s.client.upload(ctx, path, pr, form.FormDataContentType(), &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// DeleteFile removes a blob by ID.
func (s *Storage) DeleteFile(ctx context.Context, fileID string) error {
	path := fmt.Sprintf("/storage/buckets/%s/files/%s", s.bucketID, fileID)
	return s.client.call(ctx, "DELETE", path, nil, nil, nil)
}

// ViewURL returns the public retrieval URL for a stored blob.
func (s *Storage) ViewURL(fileID string) string {
	return fmt.Sprintf("%s/storage/buckets/%s/files/%s/view?project=%s",
		s.client.Endpoint(), s.bucketID, fileID, s.client.Project())
}
