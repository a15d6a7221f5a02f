package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/valetkey/internal/client/models"
)

// folderPath builds /api/folders/{id}{suffix}, using the literal "root"
// segment when id is zero.
func folderPath(id models.ID, suffix string) string {
	seg := "root"
	if !id.IsZero() {
		seg = url.PathEscape(id.String())
	}
	return "/api/folders/" + seg + suffix
}

type createFolderRequest struct {
	FolderName     string     `json:"folderName" validate:"required,max=255"`
	ParentFolderID *models.ID `json:"parentFolderId,omitempty"`
}

type folderEnvelope struct {
	Message string         `json:"message"`
	Folder  *models.Folder `json:"folder"`
}

type foldersResponse struct {
	Folders []models.Folder `json:"folders"`
}

// CreateFolder creates name under parentID (root when zero).
func (c *HTTPClient) CreateFolder(ctx context.Context, name string, parentID models.ID) (*models.Folder, error) {
	name, err := requireText("folder name", name)
	if err != nil {
		return nil, err
	}
	req := createFolderRequest{FolderName: name}
	if !parentID.IsZero() {
		req.ParentFolderID = &parentID
	}
	if err := check(req); err != nil {
		return nil, err
	}

	var out folderEnvelope
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/folders/create", body: req, out: &out}); err != nil {
		return nil, err
	}
	if out.Folder == nil {
		return &models.Folder{Name: name, ParentFolderID: parentID}, nil
	}
	return out.Folder, nil
}

// ListFolders returns the immediate children of parentID (root when zero).
func (c *HTTPClient) ListFolders(ctx context.Context, parentID models.ID) ([]models.Folder, error) {
	var out foldersResponse
	q := folderQuery(nil, "parentFolderId", parentID)
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/folders/list", query: q, out: &out}); err != nil {
		return nil, err
	}
	return nonNilFolders(out.Folders), nil
}

func (c *HTTPClient) GetFolder(ctx context.Context, id models.ID) (*models.Folder, error) {
	if err := requireID("folder id", id); err != nil {
		return nil, err
	}
	var out models.Folder
	if err := c.do(ctx, request{method: http.MethodGet, path: folderPath(id, ""), out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

type treeResponse struct {
	Tree []models.FolderNode `json:"tree"`
}

// FolderTree returns the user's whole folder hierarchy.
func (c *HTTPClient) FolderTree(ctx context.Context) ([]models.FolderNode, error) {
	var out treeResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/folders/tree", out: &out}); err != nil {
		return nil, err
	}
	if out.Tree == nil {
		out.Tree = []models.FolderNode{}
	}
	return out.Tree, nil
}

func (c *HTTPClient) FolderContents(ctx context.Context, id models.ID, page, size int) (*models.FolderContents, error) {
	if err := check(pageRequest{Page: page, Size: size}); err != nil {
		return nil, err
	}
	var out models.FolderContents
	if err := c.do(ctx, request{method: http.MethodGet, path: folderPath(id, "/contents"), query: pageQuery(page, size), out: &out}); err != nil {
		return nil, err
	}
	out.Folders = nonNilFolders(out.Folders)
	return &out, nil
}

// DeleteFolder removes a folder. With deleteContents false the backend
// refuses non-empty folders.
func (c *HTTPClient) DeleteFolder(ctx context.Context, id models.ID, deleteContents bool) error {
	if err := requireID("folder id", id); err != nil {
		return err
	}
	q := url.Values{}
	q.Set("deleteContents", strconv.FormatBool(deleteContents))
	return c.do(ctx, request{method: http.MethodDelete, path: folderPath(id, ""), query: q})
}

func (c *HTTPClient) RenameFolder(ctx context.Context, id models.ID, newName string) error {
	if err := requireID("folder id", id); err != nil {
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
	return c.do(ctx, request{method: http.MethodPut, path: folderPath(id, "/rename"), body: req})
}

// MoveFolder re-parents a folder; a zero target means root.
func (c *HTTPClient) MoveFolder(ctx context.Context, id, targetParentID models.ID) error {
	if err := requireID("folder id", id); err != nil {
		return err
	}
	q := folderQuery(nil, "targetParentFolderId", targetParentID)
	return c.do(ctx, request{method: http.MethodPut, path: folderPath(id, "/move"), query: q})
}

type breadcrumbResponse struct {
	Breadcrumb []models.BreadcrumbItem `json:"breadcrumb"`
}

// Breadcrumb returns the path from root to id, root first.
func (c *HTTPClient) Breadcrumb(ctx context.Context, id models.ID) ([]models.BreadcrumbItem, error) {
	var out breadcrumbResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: folderPath(id, "/breadcrumb"), out: &out}); err != nil {
		return nil, err
	}
	if out.Breadcrumb == nil {
		out.Breadcrumb = []models.BreadcrumbItem{}
	}
	return out.Breadcrumb, nil
}

func (c *HTTPClient) SearchFolders(ctx context.Context, query string) ([]models.Folder, error) {
	query, err := requireText("search query", query)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("query", query)

	var out foldersResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/folders/search", query: q, out: &out}); err != nil {
		return nil, err
	}
	return nonNilFolders(out.Folders), nil
}

func nonNilFolders(f []models.Folder) []models.Folder {
	if f == nil {
		return []models.Folder{}
	}
	return f
}
