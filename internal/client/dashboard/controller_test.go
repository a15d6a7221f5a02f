package dashboard

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"testing"

	"github.com/dmitrijs2005/valetkey/internal/client/apitest"
	"github.com/dmitrijs2005/valetkey/internal/client/client"
	"github.com/dmitrijs2005/valetkey/internal/client/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "alice"

func id(n int64) models.ID { return models.ID(strconv.FormatInt(n, 10)) }

type fixture struct {
	srv     *apitest.Server
	api     *client.HTTPClient
	ctl     *Controller
	prompts []string
	approve bool
}

func newFixture(t *testing.T, pageSize int) *fixture {
	t.Helper()
	f := &fixture{srv: apitest.New(t), approve: true}
	f.srv.AddUser(owner, "pw")
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	f.api, err = client.New(client.Options{BaseURL: f.srv.URL(), Jar: jar})
	require.NoError(t, err)
	_, err = f.api.Login(context.Background(), owner, "pw")
	require.NoError(t, err)

	f.ctl = New(f.api, Options{
		PageSize:      pageSize,
		PublicBaseURL: "https://share.example/",
		Confirm: func(p string) bool {
			f.prompts = append(f.prompts, p)
			return f.approve
		},
	})
	return f
}

func (f *fixture) seedFiles(folder int64, n int) []int64 {
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, f.srv.SeedFile(owner, folder, "f"+strconv.Itoa(i)+".txt", []byte("data"), "text/plain"))
	}
	return ids
}

func TestRefresh_LoadsEverything(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 20)
	docs := f.srv.SeedFolder(owner, "Docs", 0)
	f.srv.SeedFolder(owner, "Work", docs)
	f.seedFiles(0, 3)

	require.NoError(t, f.ctl.Refresh(ctx))
	s := f.ctl.Snapshot()
	assert.Len(t, s.Files, 3)
	require.Len(t, s.Folders, 1)
	assert.Equal(t, "Docs", s.Folders[0].Name)
	assert.Len(t, s.Tree, 2)
	require.Len(t, s.Breadcrumb, 1)
	assert.Equal(t, "My Files", s.Path())
	require.NotNil(t, s.Storage)
	assert.EqualValues(t, 12, s.Storage.Used)
	assert.EqualValues(t, 3, s.Pagination.TotalItems)
}

func TestRefresh_FailureKeepsPreviousState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 20)
	f.seedFiles(0, 2)
	require.NoError(t, f.ctl.Refresh(ctx))
	before := f.ctl.Snapshot()

	f.seedFiles(0, 2)
	f.srv.Fail("folders.tree", http.StatusInternalServerError, "boom")
	err := f.ctl.Refresh(ctx)
	require.ErrorIs(t, err, client.ErrServer)

	after := f.ctl.Snapshot()
	assert.Len(t, after.Files, 2)
	assert.Empty(t, cmp.Diff(before.Files, after.Files))
}

func TestNavigate_ResetsPageAndSelection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	docs := f.srv.SeedFolder(owner, "Docs", 0)
	f.seedFiles(0, 5)
	f.seedFiles(docs, 1)

	require.NoError(t, f.ctl.Refresh(ctx))
	require.NoError(t, f.ctl.NextPage(ctx))
	f.ctl.SelectPage()
	s := f.ctl.Snapshot()
	require.Equal(t, 1, s.Pagination.CurrentPage)
	require.Equal(t, 2, s.Selection.Len())

	require.NoError(t, f.ctl.Navigate(ctx, id(docs)))
	s = f.ctl.Snapshot()
	assert.Equal(t, id(docs), s.CurrentFolder)
	assert.Zero(t, s.Pagination.CurrentPage)
	assert.Zero(t, s.Selection.Len())
	assert.Len(t, s.Files, 1)
	assert.Equal(t, "My Files / Docs", s.Path())
}

func TestBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 20)
	a := f.srv.SeedFolder(owner, "A", 0)
	b := f.srv.SeedFolder(owner, "B", a)

	require.NoError(t, f.ctl.Navigate(ctx, id(b)))
	require.NoError(t, f.ctl.Back(ctx))
	assert.Equal(t, id(a), f.ctl.Snapshot().CurrentFolder)

	require.NoError(t, f.ctl.Back(ctx))
	assert.True(t, f.ctl.Snapshot().CurrentFolder.IsZero())

	require.NoError(t, f.ctl.Back(ctx))
	assert.True(t, f.ctl.Snapshot().CurrentFolder.IsZero(), "root stays root")
}

func TestPaging(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	f.seedFiles(0, 5)

	require.NoError(t, f.ctl.Refresh(ctx))
	s := f.ctl.Snapshot()
	assert.Equal(t, 3, s.Pagination.TotalPages)
	assert.ErrorIs(t, f.ctl.PrevPage(ctx), ErrPageOutOfRange)

	require.NoError(t, f.ctl.GoToPage(ctx, 2))
	s = f.ctl.Snapshot()
	assert.Len(t, s.Files, 1)
	assert.False(t, s.Pagination.HasNext())
	assert.ErrorIs(t, f.ctl.NextPage(ctx), ErrPageOutOfRange)
	assert.ErrorIs(t, f.ctl.GoToPage(ctx, 3), ErrPageOutOfRange)

	require.NoError(t, f.ctl.PrevPage(ctx))
	assert.Equal(t, 1, f.ctl.Snapshot().Pagination.CurrentPage)
}

func TestPaging_FailedLoadKeepsPage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	f.seedFiles(0, 5)
	require.NoError(t, f.ctl.Refresh(ctx))
	before := f.ctl.Snapshot()

	f.srv.Fail("folders.tree", http.StatusInternalServerError, "boom")
	require.ErrorIs(t, f.ctl.NextPage(ctx), client.ErrServer)
	s := f.ctl.Snapshot()
	assert.Zero(t, s.Pagination.CurrentPage, "page and files stay in step")
	assert.Empty(t, cmp.Diff(before.Files, s.Files))

	f.srv.ClearFailures()
	require.NoError(t, f.ctl.NextPage(ctx))
	s = f.ctl.Snapshot()
	assert.Equal(t, 1, s.Pagination.CurrentPage)
	assert.NotEqual(t, before.Files[0].ID, s.Files[0].ID)
}

func TestNavigate_FailedLoadKeepsFolder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 20)
	docs := f.srv.SeedFolder(owner, "Docs", 0)
	require.NoError(t, f.ctl.Refresh(ctx))
	f.ctl.SelectPage()

	f.srv.Fail("folders.tree", http.StatusInternalServerError, "boom")
	require.ErrorIs(t, f.ctl.Navigate(ctx, id(docs)), client.ErrServer)
	s := f.ctl.Snapshot()
	assert.True(t, s.CurrentFolder.IsZero())
	assert.Equal(t, "My Files", s.Path())

	f.srv.ClearFailures()
	_, err := f.ctl.CreateFolder(ctx, "Inbox")
	require.NoError(t, err)
	s = f.ctl.Snapshot()
	assert.True(t, s.CurrentFolder.IsZero())
	assert.Len(t, s.Folders, 2, "new folder lands next to Docs in root")
}

func TestPaging_RejectedWhileSearching(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	f.seedFiles(0, 5)
	require.NoError(t, f.ctl.Refresh(ctx))
	require.NoError(t, f.ctl.Search(ctx, "f"))

	calls := f.srv.TotalCalls()
	assert.ErrorIs(t, f.ctl.NextPage(ctx), ErrPageOutOfRange)
	assert.ErrorIs(t, f.ctl.GoToPage(ctx, 1), ErrPageOutOfRange)
	assert.Equal(t, calls, f.srv.TotalCalls())

	s := f.ctl.Snapshot()
	assert.True(t, s.Searching())
	assert.Zero(t, s.Pagination.CurrentPage)
}

func TestSelectAllRecords_UsesServerTotal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	f.seedFiles(0, 5)
	require.NoError(t, f.ctl.Refresh(ctx))

	assert.Equal(t, 2, f.ctl.SelectPage())
	n, err := f.ctl.SelectAllRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 5, f.ctl.Snapshot().Selection.Len())
}

func TestBulkDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 20)
	ids := f.seedFiles(0, 3)
	require.NoError(t, f.ctl.Refresh(ctx))

	calls := f.srv.TotalCalls()
	_, err := f.ctl.BulkDelete(ctx)
	require.ErrorIs(t, err, ErrNoSelection)
	assert.Equal(t, calls, f.srv.TotalCalls(), "empty selection makes no request")
	assert.Empty(t, f.prompts)

	f.ctl.Toggle(id(ids[0]))
	f.ctl.Toggle(id(ids[1]))
	f.approve = false
	_, err = f.ctl.BulkDelete(ctx)
	require.ErrorIs(t, err, ErrCancelled)
	assert.Zero(t, f.srv.Calls("files.bulk-delete"))

	f.approve = true
	n, err := f.ctl.BulkDelete(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	s := f.ctl.Snapshot()
	assert.Zero(t, s.Selection.Len())
	assert.Len(t, s.Files, 1)
	assert.Len(t, f.prompts, 2)
}

func TestBulkMove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 20)
	dest := f.srv.SeedFolder(owner, "Dest", 0)
	ids := f.seedFiles(0, 2)
	require.NoError(t, f.ctl.Refresh(ctx))

	f.ctl.SelectPage()
	n, err := f.ctl.BulkMove(ctx, id(dest))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	folder, _ := f.srv.FileFolder(ids[0])
	assert.Equal(t, dest, folder)
	assert.Empty(t, f.ctl.Snapshot().Files)
	assert.Empty(t, f.prompts)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 20)
	docs := f.srv.SeedFolder(owner, "Docs", 0)
	f.srv.SeedFile(owner, docs, "report.pdf", []byte("x"), "")
	f.srv.SeedFile(owner, 0, "holiday.jpg", []byte("x"), "")
	require.NoError(t, f.ctl.Refresh(ctx))
	f.ctl.SelectPage()

	require.NoError(t, f.ctl.Search(ctx, " report "))
	s := f.ctl.Snapshot()
	assert.True(t, s.Searching())
	assert.Nil(t, s.VisibleFolders())
	require.Len(t, s.Files, 1)
	assert.Equal(t, "report.pdf", s.Files[0].FileName)
	assert.Zero(t, s.Selection.Len())

	require.NoError(t, f.ctl.Search(ctx, "  "))
	s = f.ctl.Snapshot()
	assert.False(t, s.Searching())
	assert.Len(t, s.VisibleFolders(), 1)
	assert.Len(t, s.Files, 1)
	assert.Equal(t, "holiday.jpg", s.Files[0].FileName)
}

func TestSingleFileActions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 20)
	dest := f.srv.SeedFolder(owner, "Dest", 0)
	ids := f.seedFiles(0, 2)
	require.NoError(t, f.ctl.Refresh(ctx))
	f.ctl.Toggle(id(ids[1]))

	require.NoError(t, f.ctl.RenameFile(ctx, id(ids[0]), "renamed.txt"))
	info, err := f.ctl.FileInfo(ctx, id(ids[0]))
	require.NoError(t, err)
	assert.Equal(t, "renamed.txt", info.FileName)

	link, err := f.ctl.ShareFile(ctx, id(ids[0]))
	require.NoError(t, err)
	assert.Regexp(t, `^https://share\.example/public/[0-9a-f]+$`, link)
	files := f.ctl.Snapshot().Files
	shared := false
	for _, fl := range files {
		if fl.ID == id(ids[0]) {
			shared = fl.IsPublic
		}
	}
	assert.True(t, shared)

	require.NoError(t, f.ctl.UnshareFile(ctx, id(ids[0])))

	dl, err := f.ctl.DownloadURL(ctx, id(ids[0]))
	require.NoError(t, err)
	assert.NotEmpty(t, dl.DownloadURL)

	require.NoError(t, f.ctl.MoveFile(ctx, id(ids[0]), id(dest)))
	assert.Len(t, f.ctl.Snapshot().Files, 1)

	require.NoError(t, f.ctl.DeleteFile(ctx, id(ids[1])))
	s := f.ctl.Snapshot()
	assert.Empty(t, s.Files)
	assert.Equal(t, 1, s.Selection.Len(), "single-file actions leave the selection alone")

	f.approve = false
	assert.ErrorIs(t, f.ctl.DeleteFile(ctx, id(ids[0])), ErrCancelled)
}

func TestPermanentDeleteFile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 20)
	ids := f.seedFiles(0, 2)
	require.NoError(t, f.ctl.Refresh(ctx))

	require.NoError(t, f.ctl.DeleteFile(ctx, id(ids[0])))
	require.NoError(t, f.ctl.PermanentDeleteFile(ctx, id(ids[0])))
	record, blob := f.srv.Stored(ids[0])
	assert.False(t, record)
	assert.False(t, blob)
	assert.Contains(t, f.prompts[len(f.prompts)-1], "cannot be undone")

	f.approve = false
	calls := f.srv.Calls("files.purge")
	assert.ErrorIs(t, f.ctl.PermanentDeleteFile(ctx, id(ids[1])), ErrCancelled)
	assert.Equal(t, calls, f.srv.Calls("files.purge"))
	assert.Len(t, f.ctl.Snapshot().Files, 1)

	f.approve = true
	require.NoError(t, f.ctl.PermanentDeleteFile(ctx, id(ids[1])))
	assert.Empty(t, f.ctl.Snapshot().Files)
}

func TestFolderActions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 20)

	calls := f.srv.TotalCalls()
	_, err := f.ctl.CreateFolder(ctx, "   ")
	require.ErrorIs(t, err, client.ErrValidation)
	assert.Equal(t, calls, f.srv.TotalCalls())

	docs, err := f.ctl.CreateFolder(ctx, "Docs")
	require.NoError(t, err)
	assert.Len(t, f.ctl.Snapshot().Folders, 1)

	require.NoError(t, f.ctl.Navigate(ctx, docs.ID))
	sub, err := f.ctl.CreateFolder(ctx, "Sub")
	require.NoError(t, err)
	assert.Equal(t, docs.ID, sub.ParentID())

	require.NoError(t, f.ctl.RenameFolder(ctx, sub.ID, "Inner"))
	found, err := f.ctl.SearchFolders(ctx, "inner")
	require.NoError(t, err)
	require.Len(t, found, 1)

	info, err := f.ctl.FolderInfo(ctx, sub.ID)
	require.NoError(t, err)
	require.NotNil(t, info.Parent)
	assert.Equal(t, "Docs", info.Parent.Name)

	require.NoError(t, f.ctl.MoveFolder(ctx, sub.ID, ""))
	assert.Empty(t, f.ctl.Snapshot().Folders)

	require.NoError(t, f.ctl.DeleteFolder(ctx, docs.ID, false))
	s := f.ctl.Snapshot()
	assert.True(t, s.CurrentFolder.IsZero(), "deleting the open folder returns to root")
	assert.Len(t, s.Folders, 1)
	assert.Contains(t, f.prompts[len(f.prompts)-1], "Delete folder")
}

type gatedAPI struct {
	API
	block   models.ID
	entered chan struct{}
	release chan struct{}
}

func (g *gatedAPI) ListFiles(ctx context.Context, folder models.ID, page, size int) (*models.FilePage, error) {
	if folder == g.block {
		g.entered <- struct{}{}
		<-g.release
	}
	return g.API.ListFiles(ctx, folder, page, size)
}

func TestRefresh_StaleResultDiscarded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 20)
	docs := f.srv.SeedFolder(owner, "Docs", 0)
	f.seedFiles(0, 3)
	f.srv.SeedFile(owner, docs, "inside.txt", []byte("x"), "")

	gated := &gatedAPI{API: f.api, block: "", entered: make(chan struct{}), release: make(chan struct{})}
	ctl := New(gated, Options{PageSize: 20})

	done := make(chan error, 1)
	go func() { done <- ctl.Refresh(ctx) }()
	<-gated.entered

	require.NoError(t, ctl.Navigate(ctx, id(docs)))
	close(gated.release)
	require.NoError(t, <-done)

	s := ctl.Snapshot()
	assert.Equal(t, id(docs), s.CurrentFolder)
	require.Len(t, s.Files, 1)
	assert.Equal(t, "inside.txt", s.Files[0].FileName)
}

func TestTreeFallsBackToChildren(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 20)
	f.srv.SeedFolder(owner, "Docs", 0)

	ctl := New(&emptyTreeAPI{API: f.api}, Options{})
	require.NoError(t, ctl.Refresh(ctx))
	s := ctl.Snapshot()
	require.Len(t, s.Tree, 1)
	assert.Equal(t, "Docs", s.Tree[0].Name)
}

type emptyTreeAPI struct{ API }

func (emptyTreeAPI) FolderTree(context.Context) ([]models.FolderNode, error) {
	return []models.FolderNode{}, nil
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)
	docs := f.srv.SeedFolder(owner, "Docs", 0)
	f.seedFiles(docs, 2)
	require.NoError(t, f.ctl.Navigate(ctx, id(docs)))
	f.ctl.SelectPage()

	f.ctl.Reset()
	s := f.ctl.Snapshot()
	assert.True(t, s.CurrentFolder.IsZero())
	assert.Empty(t, s.Files)
	assert.Nil(t, s.Storage)
	assert.Zero(t, s.Selection.Len())
	assert.Equal(t, 5, s.Pagination.PageSize)
}
