package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/valetkey/internal/client/models"
)

// AuthAPI covers the session endpoints.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*models.User, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
}

// FileAPI covers file metadata, listing and bulk operations.
type FileAPI interface {
	ListFiles(ctx context.Context, folderID models.ID, page, size int) (*models.FilePage, error)
	AllFileIDs(ctx context.Context, folderID models.ID) ([]models.ID, error)
	SearchFiles(ctx context.Context, query string, page, size int) (*models.FilePage, error)
	GetFile(ctx context.Context, id models.ID) (*models.File, error)
	FileDownloadURL(ctx context.Context, id models.ID) (*models.DownloadLink, error)
	DeleteFile(ctx context.Context, id models.ID) error
	PermanentDeleteFile(ctx context.Context, id models.ID) error
	MoveFile(ctx context.Context, id, targetFolderID models.ID) error
	RenameFile(ctx context.Context, id models.ID, newName string) error
	GeneratePublicLink(ctx context.Context, id models.ID) (*models.PublicLink, error)
	RevokePublicLink(ctx context.Context, id models.ID) error
	StorageInfo(ctx context.Context) (*models.StorageInfo, error)
	BulkDelete(ctx context.Context, ids []models.ID) (int, error)
	BulkMove(ctx context.Context, ids []models.ID, targetFolderID models.ID) (int, error)
}

// UploadAPI is the three-step direct upload protocol.
type UploadAPI interface {
	GenerateUploadURL(ctx context.Context, fileName string, fileSize int64, folderID models.ID) (*models.UploadTarget, error)
	Transfer(ctx context.Context, uploadURL string, body io.Reader, size int64, contentType string) error
	ConfirmUpload(ctx context.Context, fileID models.ID, contentType string) (*models.File, error)
}

// FolderAPI covers the folder hierarchy.
type FolderAPI interface {
	CreateFolder(ctx context.Context, name string, parentID models.ID) (*models.Folder, error)
	ListFolders(ctx context.Context, parentID models.ID) ([]models.Folder, error)
	GetFolder(ctx context.Context, id models.ID) (*models.Folder, error)
	FolderTree(ctx context.Context) ([]models.FolderNode, error)
	FolderContents(ctx context.Context, id models.ID, page, size int) (*models.FolderContents, error)
	DeleteFolder(ctx context.Context, id models.ID, deleteContents bool) error
	RenameFolder(ctx context.Context, id models.ID, newName string) error
	MoveFolder(ctx context.Context, id, targetParentID models.ID) error
	Breadcrumb(ctx context.Context, id models.ID) ([]models.BreadcrumbItem, error)
	SearchFolders(ctx context.Context, query string) ([]models.Folder, error)
}

// PublicAPI is reachable without a session.
type PublicAPI interface {
	PublicFile(ctx context.Context, token string) (*models.PublicFile, error)
	PublicDownloadURL(ctx context.Context, token string) (*models.DownloadLink, error)
	Download(ctx context.Context, downloadURL string, w io.Writer) (int64, error)
}

// Client is the complete valetkey API surface.
type Client interface {
	AuthAPI
	FileAPI
	UploadAPI
	FolderAPI
	PublicAPI
}

var _ Client = (*HTTPClient)(nil)
