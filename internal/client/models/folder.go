package models

// Folder is a node of the user's folder hierarchy.
type Folder struct {
	ID               ID         `json:"id"`
	Name             string     `json:"name"`
	FullPath         string     `json:"fullPath"`
	ParentFolderID   ID         `json:"parentFolderId"`
	ParentFolderName string     `json:"parentFolderName,omitempty"`
	CreatedAt        Timestamp  `json:"createdAt"`
	UpdatedAt        Timestamp  `json:"updatedAt"`
	SubFolderCount   int        `json:"subFolderCount,omitempty"`
	FileCount        int        `json:"fileCount,omitempty"`
	Parent           *FolderRef `json:"parent,omitempty"`
}

// ParentID returns the parent folder id from whichever field the backend
// filled in.
func (f Folder) ParentID() ID {
	if !f.ParentFolderID.IsZero() {
		return f.ParentFolderID
	}
	if f.Parent != nil {
		return f.Parent.ID
	}
	return ""
}

// FolderNode is one entry of the recursive folder tree.
type FolderNode struct {
	ID        ID           `json:"id"`
	Name      string       `json:"name"`
	Path      string       `json:"path"`
	CreatedAt Timestamp    `json:"createdAt"`
	Children  []FolderNode `json:"children,omitempty"`
}

// BreadcrumbItem is one hop of the path from root to the current folder.
// The root item has a zero ID.
type BreadcrumbItem struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// FolderContents is the folder-view summary of a folder.
type FolderContents struct {
	Folders   []Folder `json:"folders"`
	FileCount int64    `json:"fileCount"`
}
