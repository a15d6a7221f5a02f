package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"testing"

	"github.com/dmitrijs2005/valetkey/internal/client/apitest"
	"github.com/dmitrijs2005/valetkey/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func id(n int64) models.ID { return models.ID(strconv.FormatInt(n, 10)) }

func newTestClient(t *testing.T, srv *apitest.Server) *HTTPClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	c, err := New(Options{BaseURL: srv.URL(), Jar: jar})
	require.NoError(t, err)
	return c
}

func loggedIn(t *testing.T) (*apitest.Server, *HTTPClient) {
	t.Helper()
	srv := apitest.New(t)
	srv.AddUser("alice", "secret")
	c := newTestClient(t, srv)
	_, err := c.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	return srv, c
}

func TestAuth_LoginLogout(t *testing.T) {
	ctx := context.Background()
	srv := apitest.New(t)
	srv.AddUser("alice", "secret")
	c := newTestClient(t, srv)

	_, err := c.CurrentUser(ctx)
	require.ErrorIs(t, err, ErrAuthRequired)

	_, err = c.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrAuthRequired)
	assert.Equal(t, "Invalid credentials", Message(err))

	u, err := c.Login(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.True(t, u.CanWrite)

	me, err := c.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)

	require.NoError(t, c.Logout(ctx))
	_, err = c.CurrentUser(ctx)
	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestValidation_NoNetworkCall(t *testing.T) {
	ctx := context.Background()
	srv := apitest.New(t)
	c := newTestClient(t, srv)

	calls := []func() error{
		func() error { _, err := c.Login(ctx, "", "pw"); return err },
		func() error { _, err := c.Login(ctx, "alice", ""); return err },
		func() error { _, err := c.ListFiles(ctx, "", -1, 20); return err },
		func() error { _, err := c.ListFiles(ctx, "", 0, 0); return err },
		func() error { _, err := c.SearchFiles(ctx, "   ", 0, 20); return err },
		func() error { _, err := c.GetFile(ctx, ""); return err },
		func() error { return c.DeleteFile(ctx, "") },
		func() error { return c.PermanentDeleteFile(ctx, " ") },
		func() error { return c.RenameFile(ctx, "1", " ") },
		func() error { return c.RenameFile(ctx, "1", strings.Repeat("x", 256)) },
		func() error { _, err := c.BulkDelete(ctx, nil); return err },
		func() error { _, err := c.BulkMove(ctx, []models.ID{"1", ""}, ""); return err },
		func() error { _, err := c.GenerateUploadURL(ctx, "", 1, ""); return err },
		func() error { _, err := c.GenerateUploadURL(ctx, "a.txt", -1, ""); return err },
		func() error { _, err := c.ConfirmUpload(ctx, "", "text/plain"); return err },
		func() error { return c.Transfer(ctx, "", nil, 0, "") },
		func() error { _, err := c.Download(ctx, "", &bytes.Buffer{}); return err },
		func() error { _, err := c.CreateFolder(ctx, "  ", ""); return err },
		func() error { return c.DeleteFolder(ctx, "", true) },
		func() error { return c.RenameFolder(ctx, "2", "") },
		func() error { return c.MoveFolder(ctx, "", "3") },
		func() error { _, err := c.SearchFolders(ctx, ""); return err },
		func() error { _, err := c.PublicFile(ctx, ""); return err },
		func() error { _, err := c.PublicDownloadURL(ctx, " "); return err },
	}
	for i, call := range calls {
		err := call()
		assert.ErrorIs(t, err, ErrValidation, "call %d", i)
	}
	assert.Zero(t, srv.TotalCalls())
}

func TestUpload_ThreeSteps(t *testing.T) {
	ctx := context.Background()
	srv, c := loggedIn(t)
	docs := srv.SeedFolder("alice", "Docs", 0)

	content := []byte("quarterly numbers")
	target, err := c.GenerateUploadURL(ctx, "report.csv", int64(len(content)), id(docs))
	require.NoError(t, err)
	assert.Equal(t, 15, target.ExpiresInMinutes)
	assert.NotEmpty(t, target.ObjectKey)

	var req map[string]any
	require.NoError(t, json.Unmarshal(srv.LastBody("files.upload-url"), &req))
	assert.Equal(t, "report.csv", req["fileName"])
	assert.EqualValues(t, docs, req["folderId"])

	require.NoError(t, c.Transfer(ctx, target.UploadURL, bytes.NewReader(content), int64(len(content)), "text/csv"))
	assert.Empty(t, srv.LastCookies("storage.put"), "session cookie must not reach object storage")

	f, err := c.ConfirmUpload(ctx, target.FileID, "text/csv")
	require.NoError(t, err)
	assert.Equal(t, target.FileID, f.ID)
	assert.Equal(t, "report.csv", f.FileName)
	assert.Equal(t, "/Docs", f.Location())

	data, ct, ok := srv.Object(target.ObjectKey)
	require.True(t, ok)
	assert.Equal(t, content, data)
	assert.Equal(t, "text/csv", ct)

	link, err := c.FileDownloadURL(ctx, f.ID)
	require.NoError(t, err)
	var buf bytes.Buffer
	n, err := c.Download(ctx, link.DownloadURL, &buf)
	require.NoError(t, err)
	assert.EqualValues(t, len(content), n)
	assert.Equal(t, content, buf.Bytes())
}

func TestUpload_RootOmitsFolder(t *testing.T) {
	srv, c := loggedIn(t)
	_, err := c.GenerateUploadURL(context.Background(), "a.txt", 1, "")
	require.NoError(t, err)

	var req map[string]any
	require.NoError(t, json.Unmarshal(srv.LastBody("files.upload-url"), &req))
	_, has := req["folderId"]
	assert.False(t, has)
}

func TestTransfer_Failure(t *testing.T) {
	ctx := context.Background()
	srv, c := loggedIn(t)

	err := c.Transfer(ctx, srv.Storage.URL+"/bucket/key", strings.NewReader("x"), 1, "")
	require.ErrorIs(t, err, ErrTransferFailed)
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusForbidden, ae.Status)

	_, err = c.Download(ctx, srv.Storage.URL+"/bucket/key", &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrTransferFailed)
}

func TestConfirm_WithoutObject(t *testing.T) {
	ctx := context.Background()
	_, c := loggedIn(t)

	target, err := c.GenerateUploadURL(ctx, "a.txt", 1, "")
	require.NoError(t, err)
	_, err = c.ConfirmUpload(ctx, target.FileID, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFiles_ListingAndPaging(t *testing.T) {
	ctx := context.Background()
	srv, c := loggedIn(t)
	var ids []int64
	for i := 0; i < 5; i++ {
		ids = append(ids, srv.SeedFile("alice", 0, "file"+strconv.Itoa(i)+".txt", []byte("x"), "text/plain"))
	}
	srv.SeedFile("alice", srv.SeedFolder("alice", "Sub", 0), "nested.txt", []byte("y"), "")

	page, err := c.ListFiles(ctx, "", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	assert.EqualValues(t, 5, page.TotalItems)
	assert.True(t, page.HasNext)
	assert.False(t, page.HasPrevious)
	assert.Equal(t, []models.ID{id(ids[4]), id(ids[3])}, page.IDs(), "newest first")

	last, err := c.ListFiles(ctx, "", 2, 2)
	require.NoError(t, err)
	assert.Len(t, last.Files, 1)
	assert.False(t, last.HasNext)

	all, err := c.AllFileIDs(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 5)

	found, err := c.SearchFiles(ctx, "NESTED", 0, 20)
	require.NoError(t, err)
	require.Len(t, found.Files, 1)
	assert.Equal(t, "/Sub", found.Files[0].Location())
}

func TestFiles_Mutations(t *testing.T) {
	ctx := context.Background()
	srv, c := loggedIn(t)
	fid := srv.SeedFile("alice", 0, "a.txt", []byte("hello"), "text/plain")
	dest := srv.SeedFolder("alice", "Dest", 0)

	require.NoError(t, c.RenameFile(ctx, id(fid), "  b.txt "))
	assert.JSONEq(t, `{"newName":"b.txt"}`, string(srv.LastBody("files.rename")))

	f, err := c.GetFile(ctx, id(fid))
	require.NoError(t, err)
	assert.Equal(t, "b.txt", f.FileName)

	require.NoError(t, c.MoveFile(ctx, id(fid), id(dest)))
	folder, ok := srv.FileFolder(fid)
	require.True(t, ok)
	assert.Equal(t, dest, folder)

	require.NoError(t, c.MoveFile(ctx, id(fid), ""))
	folder, _ = srv.FileFolder(fid)
	assert.Zero(t, folder)

	require.NoError(t, c.DeleteFile(ctx, id(fid)))
	_, err = c.GetFile(ctx, id(fid))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFiles_SoftThenPermanentDelete(t *testing.T) {
	ctx := context.Background()
	srv, c := loggedIn(t)
	fid := srv.SeedFile("alice", 0, "old.log", []byte("bytes"), "text/plain")

	require.NoError(t, c.DeleteFile(ctx, id(fid)))
	record, blob := srv.Stored(fid)
	assert.True(t, record, "soft delete keeps the record")
	assert.True(t, blob, "soft delete keeps the bytes")
	assert.Zero(t, srv.FileCount("alice"))

	require.NoError(t, c.PermanentDeleteFile(ctx, id(fid)))
	assert.Equal(t, 1, srv.Calls("files.purge"))
	record, blob = srv.Stored(fid)
	assert.False(t, record)
	assert.False(t, blob)

	err := c.PermanentDeleteFile(ctx, id(fid))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFiles_PermanentDeleteLiveFile(t *testing.T) {
	ctx := context.Background()
	srv, c := loggedIn(t)
	fid := srv.SeedFile("alice", 0, "a.txt", []byte("x"), "")
	other := srv.SeedFile("bob", 0, "b.txt", []byte("y"), "")

	require.NoError(t, c.PermanentDeleteFile(ctx, id(fid)))
	record, _ := srv.Stored(fid)
	assert.False(t, record)

	assert.ErrorIs(t, c.PermanentDeleteFile(ctx, id(other)), ErrNotFound)
	record, _ = srv.Stored(other)
	assert.True(t, record)
}

func TestFiles_Bulk(t *testing.T) {
	ctx := context.Background()
	srv, c := loggedIn(t)
	a := srv.SeedFile("alice", 0, "a", []byte("1"), "")
	b := srv.SeedFile("alice", 0, "b", []byte("2"), "")
	keep := srv.SeedFile("alice", 0, "c", []byte("3"), "")
	dest := srv.SeedFolder("alice", "Dest", 0)

	n, err := c.BulkMove(ctx, []models.ID{id(a), id(b)}, id(dest))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	folder, _ := srv.FileFolder(a)
	assert.Equal(t, dest, folder)

	n, err = c.BulkDelete(ctx, []models.ID{id(a), id(b)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, srv.FileCount("alice"))
	_, ok := srv.FileFolder(keep)
	assert.True(t, ok)
}

func TestStorageInfo(t *testing.T) {
	srv, c := loggedIn(t)
	srv.SeedFile("alice", 0, "a", make([]byte, 2048), "")

	info, err := c.StorageInfo(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2048, info.Used)
	assert.EqualValues(t, 1<<30, info.Quota)
	assert.Equal(t, "2.00 KB", info.UsedFormatted)
	assert.InDelta(t, 0.0, float64(info.UsagePercentage), 0.01)
}

func TestShare_PublicAccess(t *testing.T) {
	ctx := context.Background()
	srv, c := loggedIn(t)
	fid := srv.SeedFile("alice", 0, "photo.jpg", []byte("jpeg"), "image/jpeg")

	link, err := c.GeneratePublicLink(ctx, id(fid))
	require.NoError(t, err)
	require.NotEmpty(t, link.Token)
	assert.Equal(t, "/public/"+link.Token, link.PublicURL)

	pf, err := c.PublicFile(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, "photo.jpg", pf.FileName)
	assert.Equal(t, "alice", pf.Uploader)
	assert.Empty(t, srv.LastCookies("public.get"), "public lookups are anonymous")

	dl, err := c.PublicDownloadURL(ctx, link.Token)
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = c.Download(ctx, dl.DownloadURL, &buf)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", buf.String())

	require.NoError(t, c.RevokePublicLink(ctx, id(fid)))
	_, err = c.PublicFile(ctx, link.Token)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Invalid or expired public link", Message(err))
}

func TestFolders(t *testing.T) {
	ctx := context.Background()
	srv, c := loggedIn(t)

	docs, err := c.CreateFolder(ctx, "Docs", "")
	require.NoError(t, err)
	assert.Equal(t, "/Docs", docs.FullPath)
	assert.JSONEq(t, `{"folderName":"Docs"}`, string(srv.LastBody("folders.create")))

	work, err := c.CreateFolder(ctx, "Work", docs.ID)
	require.NoError(t, err)
	assert.Equal(t, docs.ID, work.ParentID())

	_, err = c.CreateFolder(ctx, "Work", docs.ID)
	assert.ErrorIs(t, err, ErrValidation)

	roots, err := c.ListFolders(ctx, "")
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, 1, roots[0].SubFolderCount)

	tree, err := c.FolderTree(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, models.CountNodes(tree))

	crumbs, err := c.Breadcrumb(ctx, work.ID)
	require.NoError(t, err)
	require.Len(t, crumbs, 3)
	assert.True(t, crumbs[0].ID.IsZero())
	assert.Equal(t, work.ID, crumbs[2].ID)

	rootCrumbs, err := c.Breadcrumb(ctx, "")
	require.NoError(t, err)
	assert.Len(t, rootCrumbs, 1)

	got, err := c.GetFolder(ctx, work.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Parent)
	assert.Equal(t, "Docs", got.Parent.Name)

	contents, err := c.FolderContents(ctx, "", 0, 20)
	require.NoError(t, err)
	assert.Len(t, contents.Folders, 1)

	require.NoError(t, c.RenameFolder(ctx, work.ID, "Jobs"))
	found, err := c.SearchFolders(ctx, "job")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "/Docs/Jobs", found[0].FullPath)

	err = c.MoveFolder(ctx, docs.ID, work.ID)
	assert.ErrorIs(t, err, ErrValidation, "no cycles")
	require.NoError(t, c.MoveFolder(ctx, work.ID, ""))

	srv.SeedFile("alice", 0, "x", []byte("x"), "")
	err = c.DeleteFolder(ctx, docs.ID, false)
	require.NoError(t, err, "empty after the move")

	fid, _ := strconv.ParseInt(work.ID.String(), 10, 64)
	srv.SeedFile("alice", fid, "inside", []byte("x"), "")
	err = c.DeleteFolder(ctx, work.ID, false)
	assert.ErrorIs(t, err, ErrValidation)
	require.NoError(t, c.DeleteFolder(ctx, work.ID, true))
	assert.Equal(t, 1, srv.FileCount("alice"))
}

func TestSessionExpiry(t *testing.T) {
	srv, c := loggedIn(t)
	srv.ExpireSessions()
	_, err := c.ListFiles(context.Background(), "", 0, 20)
	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestInjectedServerFailure(t *testing.T) {
	srv, c := loggedIn(t)
	srv.Fail("files.list", http.StatusInternalServerError, "database down")
	_, err := c.ListFiles(context.Background(), "", 0, 20)
	require.ErrorIs(t, err, ErrServer)
	assert.Equal(t, "database down", Message(err))
}
