package client

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/valetkey/internal/client/models"
	"github.com/dmitrijs2005/valetkey/internal/netx"
)

type uploadURLRequest struct {
	FileName string     `json:"fileName" validate:"required,max=255"`
	FileSize int64      `json:"fileSize" validate:"min=0"`
	FolderID *models.ID `json:"folderId,omitempty"`
}

// GenerateUploadURL creates the provisional file record and returns where to
// PUT its bytes.
func (c *HTTPClient) GenerateUploadURL(ctx context.Context, fileName string, fileSize int64, folderID models.ID) (*models.UploadTarget, error) {
	req := uploadURLRequest{FileName: fileName, FileSize: fileSize}
	if !folderID.IsZero() {
		req.FolderID = &folderID
	}
	if err := check(req); err != nil {
		return nil, err
	}

	var out models.UploadTarget
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/files/upload-url", body: req, out: &out}); err != nil {
		return nil, err
	}
	if out.UploadURL == "" || out.FileID.IsZero() {
		return nil, &APIError{Kind: ErrServer, Method: http.MethodPost, Path: "/api/files/upload-url",
			Message: "upload target is incomplete"}
	}
	return &out, nil
}

// Transfer PUTs the file bytes straight to object storage. The request goes
// through the anonymous client: the URL is not on the API host and must not
// carry session cookies.
func (c *HTTPClient) Transfer(ctx context.Context, uploadURL string, body io.Reader, size int64, contentType string) error {
	if uploadURL == "" {
		return validationError("upload url is required")
	}
	err := netx.Put(ctx, c.anon, uploadURL, body, size, contentType)
	if err == nil {
		return nil
	}
	c.log.Debug(ctx, "direct transfer failed", "error", err)
	return transferError(err)
}

func transferError(err error) error {
	var se *netx.StatusError
	if errors.As(err, &se) {
		return &APIError{Kind: ErrTransferFailed, Status: se.StatusCode, Err: err}
	}
	return &APIError{Kind: ErrTransferFailed, Err: err}
}

type confirmRequest struct {
	FileID      models.ID `json:"fileId" validate:"required"`
	ContentType string    `json:"contentType"`
}

type fileEnvelope struct {
	Message string       `json:"message"`
	File    *models.File `json:"file"`
}

// ConfirmUpload finalises the record created by GenerateUploadURL.
func (c *HTTPClient) ConfirmUpload(ctx context.Context, fileID models.ID, contentType string) (*models.File, error) {
	req := confirmRequest{FileID: fileID, ContentType: contentType}
	if err := check(req); err != nil {
		return nil, err
	}

	var out fileEnvelope
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/files/upload/confirm", body: req, out: &out}); err != nil {
		return nil, err
	}
	if out.File == nil {
		return &models.File{ID: fileID, ContentType: contentType}, nil
	}
	return out.File, nil
}

// Download streams a pre-signed GET URL into w without session cookies.
func (c *HTTPClient) Download(ctx context.Context, downloadURL string, w io.Writer) (int64, error) {
	if downloadURL == "" {
		return 0, validationError("download url is required")
	}
	n, err := netx.Get(ctx, c.anon, downloadURL, w)
	if err != nil {
		return n, transferError(err)
	}
	return n, nil
}
