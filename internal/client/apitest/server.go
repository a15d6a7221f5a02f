// Package apitest runs an in-memory valetkey backend for tests: the REST API
// with cookie sessions, plus an object store reached through real SigV4
// pre-signed URLs. Individual routes can be made to fail on demand.
package apitest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gorilla/mux"
)

const (
	SessionCookie = "JSESSIONID"
	bucket        = "valetkey-test"
	presignTTL    = 15 * time.Minute
	defaultQuota  = int64(1 << 30)
	timeLayout    = "2006-01-02T15:04:05.000000"
)

type user struct {
	id       int64
	name     string
	password string
	role     string
	quota    int64
}

type file struct {
	id          int64
	owner       string
	name        string
	size        int64
	contentType string
	uploadedAt  time.Time
	modifiedAt  time.Time
	folderID    int64
	confirmed   bool
	// deleted files are soft-deleted: hidden everywhere, bytes kept until
	// a permanent delete.
	deleted   bool
	token     string
	objectKey string
}

func (f *file) live() bool { return f.confirmed && !f.deleted }

type folder struct {
	id        int64
	owner     string
	name      string
	parentID  int64
	createdAt time.Time
	updatedAt time.Time
}

type object struct {
	data        []byte
	contentType string
}

type failure struct {
	status  int
	message string
}

// Server is the fake backend. API serves the REST endpoints; Storage serves
// the pre-signed object URLs.
type Server struct {
	API     *httptest.Server
	Storage *httptest.Server

	presign *s3.PresignClient

	mu       sync.Mutex
	nextID   int64
	users    map[string]*user
	sessions map[string]string
	files    map[int64]*file
	folders  map[int64]*folder
	objects  map[string]object
	failures map[string]failure
	calls    map[string]int
	bodies   map[string][]byte
	cookies  map[string][]string
}

// New starts the fake backend and stops it when t finishes.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		nextID:   100,
		users:    map[string]*user{},
		sessions: map[string]string{},
		files:    map[int64]*file{},
		folders:  map[int64]*folder{},
		objects:  map[string]object{},
		failures: map[string]failure{},
		calls:    map[string]int{},
		bodies:   map[string][]byte{},
		cookies:  map[string][]string{},
	}

	s.Storage = httptest.NewServer(s.storageRouter())
	s.API = httptest.NewServer(s.apiRouter())
	t.Cleanup(func() {
		s.API.Close()
		s.Storage.Close()
	})

	s3c := s3.New(s3.Options{
		Region:       "us-east-1",
		Credentials:  credentials.NewStaticCredentialsProvider("AKIDTEST", "SECRETTEST", ""),
		BaseEndpoint: aws.String(s.Storage.URL),
		UsePathStyle: true,
	})
	s.presign = s3.NewPresignClient(s3c)
	return s
}

// URL returns the API base URL.
func (s *Server) URL() string { return s.API.URL }

// AddUser registers an account and returns its id.
func (s *Server) AddUser(name, password string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.users[name] = &user{id: id, name: name, password: password, role: "USER", quota: defaultQuota}
	return id
}

// Fail makes route answer status with message until ClearFailures.
func (s *Server) Fail(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, message: message}
}

func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = map[string]failure{}
}

// Calls returns how many times route was hit.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// TotalCalls returns the number of API and storage requests served.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// LastBody returns the request body of the latest call to route.
func (s *Server) LastBody(route string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.bodies[route]...)
}

// LastCookies returns the Cookie header values seen on the latest call to route.
func (s *Server) LastCookies(route string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.cookies[route]...)
}

// ExpireSessions drops every server-side session.
func (s *Server) ExpireSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = map[string]string{}
}

// Object returns the stored bytes under key.
func (s *Server) Object(key string) ([]byte, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[key]
	return o.data, o.contentType, ok
}

// SeedFolder creates a folder directly. parent 0 means root.
func (s *Server) SeedFolder(owner, name string, parent int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	id := s.id()
	s.folders[id] = &folder{id: id, owner: owner, name: name, parentID: parent, createdAt: now, updatedAt: now}
	return id
}

// SeedFile stores a confirmed file with content directly.
func (s *Server) SeedFile(owner string, folderID int64, name string, content []byte, contentType string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	now := time.Now().Add(time.Duration(id) * time.Millisecond)
	key := objectKey(owner, id, name)
	s.objects[key] = object{data: append([]byte(nil), content...), contentType: contentType}
	s.files[id] = &file{
		id: id, owner: owner, name: name, size: int64(len(content)), contentType: contentType,
		uploadedAt: now, modifiedAt: now, folderID: folderID, confirmed: true, objectKey: key,
	}
	return id
}

// FileCount returns the visible files owned by owner; soft-deleted files
// are not counted.
func (s *Server) FileCount(owner string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, f := range s.files {
		if f.owner == owner && f.live() {
			n++
		}
	}
	return n
}

// Stored reports whether a record for file id exists, soft-deleted or
// not, and whether its bytes are still in the object store.
func (s *Server) Stored(id int64) (record, blob bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok {
		return false, false
	}
	_, blob = s.objects[f.objectKey]
	return true, blob
}

// FileFolder returns the folder a file lives in and whether it exists.
func (s *Server) FileFolder(id int64) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok {
		return 0, false
	}
	return f.folderID, true
}

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

func objectKey(owner string, id int64, name string) string {
	return "users/" + owner + "/" + strconv.FormatInt(id, 10) + "/" + name
}

// instrument counts calls, records bodies and applies injected failures.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if route := mux.CurrentRoute(r); route != nil {
			name = route.GetName()
		}

		var body []byte
		if r.Body != nil && !strings.HasPrefix(name, "storage.") {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		s.mu.Lock()
		s.calls[name]++
		s.bodies[name] = body
		s.cookies[name] = r.Header.Values("Cookie")
		f, failing := s.failures[name]
		s.mu.Unlock()

		if failing {
			writeMessage(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"message": msg})
}

func readJSON(r *http.Request, v any) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}

// optionalID parses an optional numeric query parameter; "" and "null" are 0.
func optionalID(r *http.Request, key string) (int64, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" || v == "null" {
		return 0, true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	return n, err == nil
}

func pathID(r *http.Request) int64 {
	n, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return n
}

func paging(r *http.Request) (page, size int) {
	page, size = 0, 20
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && v > 0 {
		size = v
	}
	return page, size
}

func (s *Server) presignPut(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

func (s *Server) presignGet(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

func sortFilesNewestFirst(fs []*file) {
	sort.Slice(fs, func(i, j int) bool {
		if fs[i].uploadedAt.Equal(fs[j].uploadedAt) {
			return fs[i].id > fs[j].id
		}
		return fs[i].uploadedAt.After(fs[j].uploadedAt)
	})
}
