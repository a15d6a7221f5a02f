package dashboard

import "github.com/dmitrijs2005/valetkey/internal/client/models"

// State is everything the dashboard shows. Views get copies from
// Controller.Snapshot and never mutate the controller's own state.
type State struct {
	CurrentFolder models.ID
	Breadcrumb    []models.BreadcrumbItem
	Files         []models.File
	// Folders are the immediate children of CurrentFolder.
	Folders []models.Folder
	// Tree is the whole hierarchy flattened, for move targets.
	Tree        []models.Folder
	Storage     *models.StorageInfo
	Pagination  Pagination
	SearchQuery string
	Selection   Selection
}

func (s State) Searching() bool { return s.SearchQuery != "" }

// VisibleFolders is nil while a search is shown.
func (s State) VisibleFolders() []models.Folder {
	if s.Searching() {
		return nil
	}
	return s.Folders
}

// Path renders the breadcrumb as "My Files / A / B".
func (s State) Path() string {
	if len(s.Breadcrumb) == 0 {
		return rootName
	}
	out := ""
	for i, b := range s.Breadcrumb {
		if i > 0 {
			out += " / "
		}
		out += b.Name
	}
	return out
}

func (s State) clone() State {
	c := s
	c.Breadcrumb = append([]models.BreadcrumbItem(nil), s.Breadcrumb...)
	c.Files = append([]models.File(nil), s.Files...)
	c.Folders = append([]models.Folder(nil), s.Folders...)
	c.Tree = append([]models.Folder(nil), s.Tree...)
	if s.Storage != nil {
		st := *s.Storage
		c.Storage = &st
	}
	c.Selection = s.Selection.clone()
	return c
}
