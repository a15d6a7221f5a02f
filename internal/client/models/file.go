package models

// File is the metadata of one stored file. The bytes live in object storage
// and are only reachable through short-lived pre-signed URLs.
type File struct {
	ID                ID         `json:"id"`
	FileName          string     `json:"fileName"`
	OriginalName      string     `json:"originalName,omitempty"`
	FileSize          int64      `json:"fileSize"`
	FileSizeFormatted string     `json:"fileSizeFormatted,omitempty"`
	ContentType       string     `json:"contentType,omitempty"`
	UploadedAt        Timestamp  `json:"uploadedAt"`
	LastModified      Timestamp  `json:"lastModified"`
	IsPublic          bool       `json:"isPublic"`
	PublicLinkToken   string     `json:"publicLinkToken,omitempty"`
	FolderID          ID         `json:"folderId"`
	FolderName        string     `json:"folderName,omitempty"`
	FolderPath        string     `json:"folderPath,omitempty"`
	Folder            *FolderRef `json:"folder,omitempty"`
}

// FolderRef is the short folder description embedded in file metadata.
type FolderRef struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// Location returns the folder path the file lives in, "/" for root.
func (f File) Location() string {
	if f.FolderPath != "" {
		return f.FolderPath
	}
	if f.Folder != nil && f.Folder.Path != "" {
		return f.Folder.Path
	}
	return "/"
}

// FilePage is one page of a file listing or search.
type FilePage struct {
	Files       []File `json:"files"`
	CurrentPage int    `json:"currentPage"`
	TotalPages  int    `json:"totalPages"`
	TotalItems  int64  `json:"totalItems"`
	HasNext     bool   `json:"hasNext"`
	HasPrevious bool   `json:"hasPrevious"`
	Query       string `json:"query,omitempty"`
}

// IDs returns the ids of the files on the page, in order.
func (p FilePage) IDs() []ID {
	ids := make([]ID, 0, len(p.Files))
	for _, f := range p.Files {
		ids = append(ids, f.ID)
	}
	return ids
}

// UploadTarget is the answer to an upload-url request: a provisional file
// record plus the pre-signed PUT URL for its bytes.
type UploadTarget struct {
	UploadURL        string `json:"uploadUrl"`
	FileID           ID     `json:"fileId"`
	ObjectKey        string `json:"objectKey"`
	ExpiresInMinutes int    `json:"expiresInMinutes"`
}

// DownloadLink is a pre-signed GET URL.
type DownloadLink struct {
	DownloadURL      string `json:"downloadUrl"`
	ExpiresInMinutes int    `json:"expiresInMinutes"`
}

// PublicLink is the result of sharing a file.
type PublicLink struct {
	Token     string `json:"publicLinkToken"`
	PublicURL string `json:"publicUrl"`
}

// PublicFile is what an anonymous visitor may see about a shared file.
type PublicFile struct {
	ID          ID        `json:"id"`
	FileName    string    `json:"fileName"`
	FileSize    int64     `json:"fileSize"`
	ContentType string    `json:"contentType"`
	UploadedAt  Timestamp `json:"uploadedAt"`
	Uploader    string    `json:"uploader"`
}
