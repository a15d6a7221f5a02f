package share

import (
	"bytes"
	"context"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"testing"

	"github.com/dmitrijs2005/valetkey/internal/client/apitest"
	"github.com/dmitrijs2005/valetkey/internal/client/client"
	"github.com/dmitrijs2005/valetkey/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoute(t *testing.T) {
	tests := []struct {
		in   string
		want Route
	}{
		{"/public/abc123", Route{Kind: RoutePublic, Token: "abc123"}},
		{"/public/abc123/", Route{Kind: RoutePublic, Token: "abc123"}},
		{"https://files.example.com/public/tok", Route{Kind: RoutePublic, Token: "tok"}},
		{"/public/a%20b", Route{Kind: RoutePublic, Token: "a b"}},
		{"/public/", Route{Kind: RouteMain}},
		{"/public/a/b", Route{Kind: RouteMain}},
		{"/", Route{Kind: RouteMain}},
		{"/dashboard", Route{Kind: RouteMain}},
		{"", Route{Kind: RouteMain}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRoute(tt.in))
		})
	}
}

func TestTokenArg(t *testing.T) {
	tok, ok := TokenArg("abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	tok, ok = TokenArg("http://h/public/xyz")
	assert.True(t, ok)
	assert.Equal(t, "xyz", tok)

	_, ok = TokenArg("/somewhere/else")
	assert.False(t, ok)
	_, ok = TokenArg(" ")
	assert.False(t, ok)
}

func TestView_SharedThenRevoked(t *testing.T) {
	ctx := context.Background()
	srv := apitest.New(t)
	srv.AddUser("alice", "pw")
	fid := srv.SeedFile("alice", 0, "X.bin", []byte("0123456789"), "application/octet-stream")

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	owner, err := client.New(client.Options{BaseURL: srv.URL(), Jar: jar})
	require.NoError(t, err)
	_, err = owner.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	fileID := models.ID(strconv.FormatInt(fid, 10))
	link, err := owner.GeneratePublicLink(ctx, fileID)
	require.NoError(t, err)
	meta, err := owner.GetFile(ctx, fileID)
	require.NoError(t, err)

	visitor, err := client.New(client.Options{BaseURL: srv.URL()})
	require.NoError(t, err)
	v := NewView(visitor, nil)

	res := v.Open(ctx, link.Token)
	require.True(t, res.Found)
	assert.Equal(t, "X.bin", res.File.FileName)
	assert.EqualValues(t, 10, res.File.FileSize)
	assert.True(t, meta.UploadedAt.Equal(res.File.UploadedAt.Time))
	assert.Zero(t, srv.Calls("public.download"), "download url is fetched on demand only")

	u, err := v.DownloadURL(ctx, link.Token)
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = visitor.Download(ctx, u, &buf)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", buf.String())

	require.NoError(t, owner.RevokePublicLink(ctx, fileID))
	res = v.Open(ctx, link.Token)
	assert.False(t, res.Found)
	assert.Nil(t, res.File)
	assert.Equal(t, NotFoundMessage, res.Message)

	_, err = v.DownloadURL(ctx, link.Token)
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestView_AnyFailureIsNotFound(t *testing.T) {
	srv := apitest.New(t)
	srv.Fail("public.get", http.StatusInternalServerError, "db down")
	c, err := client.New(client.Options{BaseURL: srv.URL()})
	require.NoError(t, err)

	res := NewView(c, nil).Open(context.Background(), "whatever")
	assert.False(t, res.Found)
	assert.Equal(t, NotFoundMessage, res.Message)

	res = NewView(c, nil).Open(context.Background(), "")
	assert.False(t, res.Found)
}
