package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/valetkey/internal/client/dashboard"
	"github.com/dmitrijs2005/valetkey/internal/client/models"
	"github.com/dustin/go-humanize"
)

const timeLayout = "2006-01-02 15:04"

func (a *App) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
}

func formatSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

func formatTime(t models.Timestamp) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(timeLayout)
}

// renderFolder prints the current folder, or search results, with the
// pagination footer.
func (a *App) renderFolder(s dashboard.State) {
	if s.Searching() {
		fmt.Fprintf(a.out, "Search results for %q\n", s.SearchQuery)
	} else {
		fmt.Fprintf(a.out, "%s\n", s.Path())
	}

	if folders := s.VisibleFolders(); len(folders) > 0 {
		w := a.table()
		fmt.Fprintln(w, "\tID\tFOLDER\tFILES\tSUBFOLDERS")
		for _, f := range folders {
			fmt.Fprintf(w, "d\t%s\t%s/\t%d\t%d\n", f.ID, f.Name, f.FileCount, f.SubFolderCount)
		}
		w.Flush()
	}

	if len(s.Files) == 0 {
		if s.Searching() {
			fmt.Fprintln(a.out, "No files match")
		} else {
			fmt.Fprintln(a.out, "No files in this folder")
		}
	} else {
		w := a.table()
		fmt.Fprintln(w, "\tID\tNAME\tSIZE\tUPLOADED\tSHARED")
		for _, f := range s.Files {
			mark := " "
			if s.Selection.Contains(f.ID) {
				mark = "*"
			}
			name := f.FileName
			if s.Searching() {
				name = strings.TrimRight(f.Location(), "/") + "/" + f.FileName
			}
			shared := ""
			if f.IsPublic {
				shared = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", mark, f.ID, name, formatSize(f.FileSize), formatTime(f.UploadedAt), shared)
		}
		w.Flush()
	}

	fmt.Fprintln(a.out, pageLine(s.Pagination))
	if n := s.Selection.Len(); n > 0 {
		fmt.Fprintf(a.out, "%d selected\n", n)
	}
}

// pageLine shows pages one-based.
func pageLine(p dashboard.Pagination) string {
	total := p.TotalPages
	if total < 1 {
		total = 1
	}
	return fmt.Sprintf("Page %d of %d (%d items)", p.CurrentPage+1, total, p.TotalItems)
}

func (a *App) renderTree(tree []models.Folder) {
	if len(tree) == 0 {
		fmt.Fprintln(a.out, "No folders")
		return
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tPATH")
	for _, f := range tree {
		path := f.FullPath
		if path == "" {
			path = "/" + f.Name
		}
		fmt.Fprintf(w, "%s\t%s\n", f.ID, path)
	}
	w.Flush()
}

func (a *App) renderFolders(folders []models.Folder) {
	w := a.table()
	fmt.Fprintln(w, "ID\tNAME\tPATH")
	for _, f := range folders {
		fmt.Fprintf(w, "%s\t%s\t%s\n", f.ID, f.Name, f.FullPath)
	}
	w.Flush()
}

func (a *App) renderFolderInfo(f *models.Folder) {
	w := a.table()
	fmt.Fprintf(w, "ID:\t%s\n", f.ID)
	fmt.Fprintf(w, "Name:\t%s\n", f.Name)
	fmt.Fprintf(w, "Path:\t%s\n", f.FullPath)
	parent := "My Files"
	if f.ParentFolderName != "" {
		parent = f.ParentFolderName
	} else if f.Parent != nil {
		parent = f.Parent.Name
	}
	fmt.Fprintf(w, "Parent:\t%s\n", parent)
	fmt.Fprintf(w, "Files:\t%d\n", f.FileCount)
	fmt.Fprintf(w, "Subfolders:\t%d\n", f.SubFolderCount)
	fmt.Fprintf(w, "Created:\t%s\n", formatTime(f.CreatedAt))
	w.Flush()
}

func (a *App) renderFileInfo(f *models.File) {
	w := a.table()
	fmt.Fprintf(w, "ID:\t%s\n", f.ID)
	fmt.Fprintf(w, "Name:\t%s\n", f.FileName)
	fmt.Fprintf(w, "Size:\t%s\n", formatSize(f.FileSize))
	fmt.Fprintf(w, "Type:\t%s\n", f.ContentType)
	fmt.Fprintf(w, "Folder:\t%s\n", f.Location())
	fmt.Fprintf(w, "Uploaded:\t%s\n", formatTime(f.UploadedAt))
	if f.IsPublic && f.PublicLinkToken != "" {
		fmt.Fprintf(w, "Public link:\t%s\n", a.dash.PublicURL(f.PublicLinkToken))
	} else {
		fmt.Fprintf(w, "Public link:\t-\n")
	}
	w.Flush()
}

func (a *App) renderStorage(s *models.StorageInfo) {
	if s == nil {
		fmt.Fprintln(a.out, "Storage usage unavailable")
		return
	}
	used, quota := s.UsedFormatted, s.QuotaFormatted
	if used == "" {
		used = formatSize(s.Used)
	}
	if quota == "" {
		quota = formatSize(s.Quota)
	}
	fmt.Fprintf(a.out, "Storage: %s / %s (%.1f%%)\n", used, quota, float64(s.UsagePercentage))
}

func (a *App) renderPublicFile(f *models.PublicFile) {
	w := a.table()
	fmt.Fprintf(w, "File:\t%s\n", f.FileName)
	fmt.Fprintf(w, "Size:\t%s\n", formatSize(f.FileSize))
	fmt.Fprintf(w, "Type:\t%s\n", f.ContentType)
	fmt.Fprintf(w, "Shared by:\t%s\n", f.Uploader)
	fmt.Fprintf(w, "Uploaded:\t%s (%s)\n", formatTime(f.UploadedAt), humanize.Time(f.UploadedAt.Time))
	w.Flush()
}
