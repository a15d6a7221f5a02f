package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/valetkey/internal/client/models"
)

func filePath(id models.ID, suffix string) string {
	return "/api/files/" + url.PathEscape(id.String()) + suffix
}

func folderQuery(q url.Values, key string, id models.ID) url.Values {
	if q == nil {
		q = url.Values{}
	}
	if !id.IsZero() {
		q.Set(key, id.String())
	}
	return q
}

// ListFiles returns one page of the files directly inside folderID (root
// when zero).
func (c *HTTPClient) ListFiles(ctx context.Context, folderID models.ID, page, size int) (*models.FilePage, error) {
	if err := check(pageRequest{Page: page, Size: size}); err != nil {
		return nil, err
	}
	q := folderQuery(pageQuery(page, size), "folderId", folderID)

	var out models.FilePage
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/files/list", query: q, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

type allIDsResponse struct {
	FileIDs []models.ID `json:"fileIds"`
	Count   int         `json:"count"`
}

// AllFileIDs returns the ids of every file in folderID, across all pages.
func (c *HTTPClient) AllFileIDs(ctx context.Context, folderID models.ID) ([]models.ID, error) {
	var out allIDsResponse
	q := folderQuery(nil, "folderId", folderID)
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/files/all-ids", query: q, out: &out}); err != nil {
		return nil, err
	}
	if out.FileIDs == nil {
		out.FileIDs = []models.ID{}
	}
	return out.FileIDs, nil
}

// SearchFiles matches file names across all folders.
func (c *HTTPClient) SearchFiles(ctx context.Context, query string, page, size int) (*models.FilePage, error) {
	query, err := requireText("search query", query)
	if err != nil {
		return nil, err
	}
	if err := check(pageRequest{Page: page, Size: size}); err != nil {
		return nil, err
	}
	q := pageQuery(page, size)
	q.Set("query", query)

	var out models.FilePage
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/files/search", query: q, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetFile(ctx context.Context, id models.ID) (*models.File, error) {
	if err := requireID("file id", id); err != nil {
		return nil, err
	}
	var out models.File
	if err := c.do(ctx, request{method: http.MethodGet, path: filePath(id, ""), out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// FileDownloadURL asks for a short-lived pre-signed GET URL.
func (c *HTTPClient) FileDownloadURL(ctx context.Context, id models.ID) (*models.DownloadLink, error) {
	if err := requireID("file id", id); err != nil {
		return nil, err
	}
	var out models.DownloadLink
	if err := c.do(ctx, request{method: http.MethodGet, path: filePath(id, "/download"), out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteFile(ctx context.Context, id models.ID) error {
	if err := requireID("file id", id); err != nil {
		return err
	}
	return c.do(ctx, request{method: http.MethodDelete, path: filePath(id, "")})
}

// PermanentDeleteFile removes a file and its bytes irreversibly, whether or
// not it was soft-deleted first.
func (c *HTTPClient) PermanentDeleteFile(ctx context.Context, id models.ID) error {
	if err := requireID("file id", id); err != nil {
		return err
	}
	return c.do(ctx, request{method: http.MethodDelete, path: filePath(id, "/permanent")})
}

// MoveFile moves a file; a zero target means root.
func (c *HTTPClient) MoveFile(ctx context.Context, id, targetFolderID models.ID) error {
	if err := requireID("file id", id); err != nil {
		return err
	}
	q := folderQuery(nil, "targetFolderId", targetFolderID)
	return c.do(ctx, request{method: http.MethodPut, path: filePath(id, "/move"), query: q})
}

type renameRequest struct {
	NewName string `json:"newName" validate:"required,max=255"`
}

func (c *HTTPClient) RenameFile(ctx context.Context, id models.ID, newName string) error {
	if err := requireID("file id", id); err != nil {
		return err
	}
	name, err := requireText("new name", newName)
	if err != nil {
		return err
	}
	req := renameRequest{NewName: name}
	if err := check(req); err != nil {
		return err
	}
	return c.do(ctx, request{method: http.MethodPut, path: filePath(id, "/rename"), body: req})
}

func (c *HTTPClient) GeneratePublicLink(ctx context.Context, id models.ID) (*models.PublicLink, error) {
	if err := requireID("file id", id); err != nil {
		return nil, err
	}
	var out models.PublicLink
	if err := c.do(ctx, request{method: http.MethodPost, path: filePath(id, "/share"), out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) RevokePublicLink(ctx context.Context, id models.ID) error {
	if err := requireID("file id", id); err != nil {
		return err
	}
	return c.do(ctx, request{method: http.MethodDelete, path: filePath(id, "/share")})
}

func (c *HTTPClient) StorageInfo(ctx context.Context) (*models.StorageInfo, error) {
	var out models.StorageInfo
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/files/storage", out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

type bulkRequest struct {
	FileIDs        []models.ID `json:"fileIds" validate:"required,min=1,dive,required"`
	TargetFolderID *models.ID  `json:"targetFolderId,omitempty"`
}

type countResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// BulkDelete deletes ids in one request and returns the server's count.
func (c *HTTPClient) BulkDelete(ctx context.Context, ids []models.ID) (int, error) {
	req := bulkRequest{FileIDs: ids}
	if err := check(req); err != nil {
		return 0, err
	}
	var out countResponse
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/files/bulk-delete", body: req, out: &out}); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// BulkMove moves ids into targetFolderID (root when zero).
func (c *HTTPClient) BulkMove(ctx context.Context, ids []models.ID, targetFolderID models.ID) (int, error) {
	req := bulkRequest{FileIDs: ids}
	if !targetFolderID.IsZero() {
		req.TargetFolderID = &targetFolderID
	}
	if err := check(req); err != nil {
		return 0, err
	}
	var out countResponse
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/files/bulk-move", body: req, out: &out}); err != nil {
		return 0, err
	}
	return out.Count, nil
}
