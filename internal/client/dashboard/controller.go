// Package dashboard holds the logged-in view: the current folder, its files
// page by page, the folder tree, breadcrumb, storage usage and the file
// selection, plus every action the user can take on them.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/dmitrijs2005/valetkey/internal/client/client"
	"github.com/dmitrijs2005/valetkey/internal/client/models"
	"github.com/dmitrijs2005/valetkey/internal/logging"
	"golang.org/x/sync/errgroup"
)

const (
	rootName        = "My Files"
	DefaultPageSize = 20
)

var (
	ErrCancelled      = errors.New("cancelled")
	ErrNoSelection    = errors.New("no files selected")
	ErrPageOutOfRange = errors.New("page out of range")
)

// API is the part of the backend the dashboard uses.
type API interface {
	client.FileAPI
	client.FolderAPI
}

// ConfirmFunc asks the user to approve a destructive action.
type ConfirmFunc func(prompt string) bool

type Options struct {
	PageSize int
	// PublicBaseURL prefixes share links: <base>/public/<token>.
	PublicBaseURL string
	Confirm       ConfirmFunc
	Logger        logging.Logger
}

type Controller struct {
	api        API
	log        logging.Logger
	confirm    ConfirmFunc
	publicBase string

	mu    sync.Mutex
	state State
	// gen changes on every view change; refreshes started under an older
	// generation are discarded.
	gen uint64
}

func New(api API, opts Options) *Controller {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Confirm == nil {
		opts.Confirm = func(string) bool { return true }
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	return &Controller{
		api:        api,
		log:        log,
		confirm:    opts.Confirm,
		publicBase: strings.TrimRight(opts.PublicBaseURL, "/"),
		state:      State{Pagination: Pagination{PageSize: opts.PageSize}},
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Reset forgets everything loaded so far, e.g. after logout. Refreshes
// still in flight are discarded.
func (c *Controller) Reset() {
	c.change(func(s *State) {
		*s = State{Pagination: Pagination{PageSize: s.Pagination.PageSize}}
	})
}

// view is what a refresh needs to know about the state it was started for.
type view struct {
	gen    uint64
	folder models.ID
	page   int
	size   int
	query  string
}

func (c *Controller) currentView() view {
	c.mu.Lock()
	defer c.mu.Unlock()
	return view{
		gen:    c.gen,
		folder: c.state.CurrentFolder,
		page:   c.state.Pagination.CurrentPage,
		size:   c.state.Pagination.PageSize,
		query:  c.state.SearchQuery,
	}
}

// change applies fn to the state and starts a new generation.
func (c *Controller) change(fn func(s *State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	fn(&c.state)
}

// target starts a new generation for the view fn describes. The state
// itself is untouched until a load of that view succeeds.
func (c *Controller) target(fn func(v *view)) view {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	v := view{
		gen:    c.gen,
		folder: c.state.CurrentFolder,
		page:   c.state.Pagination.CurrentPage,
		size:   c.state.Pagination.PageSize,
		query:  c.state.SearchQuery,
	}
	fn(&v)
	return v
}

// Refresh reloads everything the dashboard shows. The calls run
// concurrently and the result is committed only if all of them succeed;
// otherwise the error is logged and the previous state stays.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.load(ctx, c.currentView(), nil)
}

// load fetches v and, if it is still the latest view, commits its folder,
// page and query together with the data. onCommit runs under the lock
// right before the data is stored.
func (c *Controller) load(ctx context.Context, v view, onCommit func(s *State)) error {
	var (
		page     *models.FilePage
		children []models.Folder
		tree     []models.FolderNode
		crumbs   []models.BreadcrumbItem
		storage  *models.StorageInfo
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if v.query != "" {
			page, err = c.api.SearchFiles(gctx, v.query, 0, v.size)
		} else {
			page, err = c.api.ListFiles(gctx, v.folder, v.page, v.size)
		}
		return wrap("files", err)
	})
	g.Go(func() (err error) {
		children, err = c.api.ListFolders(gctx, v.folder)
		return wrap("folders", err)
	})
	g.Go(func() (err error) {
		tree, err = c.api.FolderTree(gctx)
		return wrap("folder tree", err)
	})
	g.Go(func() (err error) {
		crumbs, err = c.api.Breadcrumb(gctx, v.folder)
		return wrap("breadcrumb", err)
	})
	g.Go(func() (err error) {
		storage, err = c.api.StorageInfo(gctx)
		return wrap("storage", err)
	})

	if err := g.Wait(); err != nil {
		c.log.Warn(ctx, "dashboard refresh failed", "folder", v.folder, "page", v.page, "error", err)
		return fmt.Errorf("refresh: %w", err)
	}

	flat := models.FlattenTree(tree)
	if len(flat) == 0 {
		flat = children
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != v.gen {
		c.log.Debug(ctx, "discarding stale refresh", "folder", v.folder)
		return nil
	}
	s := &c.state
	if onCommit != nil {
		onCommit(s)
	}
	s.CurrentFolder = v.folder
	s.SearchQuery = v.query
	s.Pagination.CurrentPage = v.page
	if v.query != "" {
		s.Pagination.CurrentPage = 0
	}
	s.Files = page.Files
	s.Folders = children
	s.Tree = flat
	s.Breadcrumb = crumbs
	s.Storage = storage
	s.Pagination.Apply(*page)
	return nil
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", what, err)
}

// Navigate opens folderID (root when zero). The dashboard only switches
// folders once the new folder has loaded.
func (c *Controller) Navigate(ctx context.Context, folderID models.ID) error {
	v := c.target(func(v *view) {
		v.folder = folderID
		v.query = ""
		v.page = 0
	})
	return c.load(ctx, v, func(s *State) { s.Selection.Clear() })
}

// Back goes to the parent shown in the breadcrumb, or to root.
func (c *Controller) Back(ctx context.Context) error {
	c.mu.Lock()
	var target models.ID
	if n := len(c.state.Breadcrumb); n > 1 {
		target = c.state.Breadcrumb[n-2].ID
	}
	c.mu.Unlock()
	return c.Navigate(ctx, target)
}

func (c *Controller) NextPage(ctx context.Context) error {
	c.mu.Lock()
	p := c.state.Pagination
	c.mu.Unlock()
	if !p.HasNext() {
		return ErrPageOutOfRange
	}
	return c.GoToPage(ctx, p.CurrentPage+1)
}

func (c *Controller) PrevPage(ctx context.Context) error {
	c.mu.Lock()
	p := c.state.Pagination
	c.mu.Unlock()
	if !p.HasPrevious() {
		return ErrPageOutOfRange
	}
	return c.GoToPage(ctx, p.CurrentPage-1)
}

// GoToPage loads a zero-based page of the folder listing. Search results
// are a single page.
func (c *Controller) GoToPage(ctx context.Context, page int) error {
	c.mu.Lock()
	ok := c.state.Pagination.InRange(page) && !c.state.Searching()
	c.mu.Unlock()
	if !ok {
		return ErrPageOutOfRange
	}
	v := c.target(func(v *view) { v.page = page })
	return c.load(ctx, v, nil)
}

// Search shows the first page of files whose names match query, across all
// folders. A blank query returns to the folder view.
func (c *Controller) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		v := c.target(func(v *view) {
			v.query = ""
			v.page = 0
		})
		return c.load(ctx, v, nil)
	}

	v := c.target(func(v *view) {})
	page, err := c.api.SearchFiles(ctx, query, 0, v.size)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != v.gen {
		return nil
	}
	c.state.Selection.Clear()
	c.state.SearchQuery = query
	c.state.Files = page.Files
	c.state.Pagination.CurrentPage = 0
	c.state.Pagination.Apply(*page)
	return nil
}

// Toggle flips id in the selection.
func (c *Controller) Toggle(id models.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Selection.Toggle(id)
}

func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Selection.Clear()
}

// SelectPage selects exactly the files on the current page.
func (c *Controller) SelectPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]models.ID, 0, len(c.state.Files))
	for _, f := range c.state.Files {
		ids = append(ids, f.ID)
	}
	c.state.Selection.Replace(ids)
	return c.state.Selection.Len()
}

// SelectAllRecords selects every file of the current folder on every page.
func (c *Controller) SelectAllRecords(ctx context.Context) (int, error) {
	v := c.currentView()
	ids, err := c.api.AllFileIDs(ctx, v.folder)
	if err != nil {
		return 0, fmt.Errorf("select all: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Selection.Replace(ids)
	return c.state.Selection.Len(), nil
}

func (c *Controller) selected() []models.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Selection.IDs()
}

// BulkDelete deletes the selection after confirmation.
func (c *Controller) BulkDelete(ctx context.Context) (int, error) {
	ids := c.selected()
	if len(ids) == 0 {
		return 0, ErrNoSelection
	}
	if !c.confirm(fmt.Sprintf("Delete %d selected file(s)?", len(ids))) {
		return 0, ErrCancelled
	}
	n, err := c.api.BulkDelete(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("bulk delete: %w", err)
	}
	c.ClearSelection()
	c.refreshAfter(ctx)
	return n, nil
}

// BulkMove moves the selection into target (root when zero).
func (c *Controller) BulkMove(ctx context.Context, target models.ID) (int, error) {
	ids := c.selected()
	if len(ids) == 0 {
		return 0, ErrNoSelection
	}
	n, err := c.api.BulkMove(ctx, ids, target)
	if err != nil {
		return 0, fmt.Errorf("bulk move: %w", err)
	}
	c.ClearSelection()
	c.refreshAfter(ctx)
	return n, nil
}

// refreshAfter reloads after a successful action. A failed reload is
// already logged and does not undo the action.
func (c *Controller) refreshAfter(ctx context.Context) {
	_ = c.Refresh(ctx)
}

func (c *Controller) FileInfo(ctx context.Context, id models.ID) (*models.File, error) {
	f, err := c.api.GetFile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("file info: %w", err)
	}
	return f, nil
}

func (c *Controller) RenameFile(ctx context.Context, id models.ID, name string) error {
	if err := c.api.RenameFile(ctx, id, name); err != nil {
		return fmt.Errorf("rename file: %w", err)
	}
	c.refreshAfter(ctx)
	return nil
}

func (c *Controller) MoveFile(ctx context.Context, id, target models.ID) error {
	if err := c.api.MoveFile(ctx, id, target); err != nil {
		return fmt.Errorf("move file: %w", err)
	}
	c.refreshAfter(ctx)
	return nil
}

func (c *Controller) DeleteFile(ctx context.Context, id models.ID) error {
	if !c.confirm(fmt.Sprintf("Delete file %s?", id)) {
		return ErrCancelled
	}
	if err := c.api.DeleteFile(ctx, id); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	c.refreshAfter(ctx)
	return nil
}

// PermanentDeleteFile removes a file and its bytes for good; it also works
// on a file that was already soft-deleted.
func (c *Controller) PermanentDeleteFile(ctx context.Context, id models.ID) error {
	if !c.confirm(fmt.Sprintf("Permanently delete file %s? This cannot be undone.", id)) {
		return ErrCancelled
	}
	if err := c.api.PermanentDeleteFile(ctx, id); err != nil {
		return fmt.Errorf("permanently delete file: %w", err)
	}
	c.refreshAfter(ctx)
	return nil
}

// ShareFile makes a file public and returns the link to hand out.
func (c *Controller) ShareFile(ctx context.Context, id models.ID) (string, error) {
	link, err := c.api.GeneratePublicLink(ctx, id)
	if err != nil {
		return "", fmt.Errorf("share file: %w", err)
	}
	c.refreshAfter(ctx)
	return c.PublicURL(link.Token), nil
}

// PublicURL is the address of the public view for token.
func (c *Controller) PublicURL(token string) string {
	return c.publicBase + "/public/" + url.PathEscape(token)
}

func (c *Controller) UnshareFile(ctx context.Context, id models.ID) error {
	if !c.confirm(fmt.Sprintf("Revoke the public link of file %s?", id)) {
		return ErrCancelled
	}
	if err := c.api.RevokePublicLink(ctx, id); err != nil {
		return fmt.Errorf("unshare file: %w", err)
	}
	c.refreshAfter(ctx)
	return nil
}

func (c *Controller) DownloadURL(ctx context.Context, id models.ID) (*models.DownloadLink, error) {
	link, err := c.api.FileDownloadURL(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	return link, nil
}

// CreateFolder creates name inside the current folder.
func (c *Controller) CreateFolder(ctx context.Context, name string) (*models.Folder, error) {
	v := c.currentView()
	f, err := c.api.CreateFolder(ctx, name, v.folder)
	if err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}
	c.refreshAfter(ctx)
	return f, nil
}

func (c *Controller) RenameFolder(ctx context.Context, id models.ID, name string) error {
	if err := c.api.RenameFolder(ctx, id, name); err != nil {
		return fmt.Errorf("rename folder: %w", err)
	}
	c.refreshAfter(ctx)
	return nil
}

func (c *Controller) MoveFolder(ctx context.Context, id, target models.ID) error {
	if err := c.api.MoveFolder(ctx, id, target); err != nil {
		return fmt.Errorf("move folder: %w", err)
	}
	c.refreshAfter(ctx)
	return nil
}

// DeleteFolder removes a folder after confirmation. If the user is inside
// it, the dashboard returns to root.
func (c *Controller) DeleteFolder(ctx context.Context, id models.ID, deleteContents bool) error {
	prompt := fmt.Sprintf("Delete folder %s?", id)
	if deleteContents {
		prompt = fmt.Sprintf("Delete folder %s and everything in it?", id)
	}
	if !c.confirm(prompt) {
		return ErrCancelled
	}
	if err := c.api.DeleteFolder(ctx, id, deleteContents); err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}

	if c.inside(id) {
		return c.Navigate(ctx, "")
	}
	c.refreshAfter(ctx)
	return nil
}

func (c *Controller) inside(id models.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.CurrentFolder == id {
		return true
	}
	for _, b := range c.state.Breadcrumb {
		if b.ID == id {
			return true
		}
	}
	return false
}

func (c *Controller) FolderInfo(ctx context.Context, id models.ID) (*models.Folder, error) {
	f, err := c.api.GetFolder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("folder info: %w", err)
	}
	return f, nil
}

func (c *Controller) SearchFolders(ctx context.Context, query string) ([]models.Folder, error) {
	fs, err := c.api.SearchFolders(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search folders: %w", err)
	}
	return fs, nil
}
