package apitest

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ctxKey struct{}

func (s *Server) apiRouter() http.Handler {
	r := mux.NewRouter()
	r.Use(s.instrument)

	r.HandleFunc("/login", s.login).Methods(http.MethodPost).Name("login")
	r.HandleFunc("/logout", s.logout).Methods(http.MethodPost).Name("logout")
	r.HandleFunc("/user", s.currentUser).Methods(http.MethodGet).Name("user")

	pub := r.PathPrefix("/api/public/files").Subrouter()
	pub.HandleFunc("/{token}", s.publicFile).Methods(http.MethodGet).Name("public.get")
	pub.HandleFunc("/{token}/download", s.publicDownload).Methods(http.MethodGet).Name("public.download")

	files := r.PathPrefix("/api/files").Subrouter()
	files.Use(s.authenticated)
	files.HandleFunc("/upload-url", s.uploadURL).Methods(http.MethodPost).Name("files.upload-url")
	files.HandleFunc("/upload/confirm", s.confirmUpload).Methods(http.MethodPost).Name("files.confirm")
	files.HandleFunc("/list", s.listFiles).Methods(http.MethodGet).Name("files.list")
	files.HandleFunc("/all-ids", s.allIDs).Methods(http.MethodGet).Name("files.all-ids")
	files.HandleFunc("/search", s.searchFiles).Methods(http.MethodGet).Name("files.search")
	files.HandleFunc("/storage", s.storageInfo).Methods(http.MethodGet).Name("files.storage")
	files.HandleFunc("/bulk-delete", s.bulkDelete).Methods(http.MethodPost).Name("files.bulk-delete")
	files.HandleFunc("/bulk-move", s.bulkMove).Methods(http.MethodPost).Name("files.bulk-move")
	files.HandleFunc("/{id:[0-9]+}", s.getFile).Methods(http.MethodGet).Name("files.get")
	files.HandleFunc("/{id:[0-9]+}", s.deleteFile).Methods(http.MethodDelete).Name("files.delete")
	files.HandleFunc("/{id:[0-9]+}/permanent", s.purgeFile).Methods(http.MethodDelete).Name("files.purge")
	files.HandleFunc("/{id:[0-9]+}/download", s.fileDownload).Methods(http.MethodGet).Name("files.download")
	files.HandleFunc("/{id:[0-9]+}/move", s.moveFile).Methods(http.MethodPut).Name("files.move")
	files.HandleFunc("/{id:[0-9]+}/rename", s.renameFile).Methods(http.MethodPut).Name("files.rename")
	files.HandleFunc("/{id:[0-9]+}/share", s.shareFile).Methods(http.MethodPost).Name("files.share")
	files.HandleFunc("/{id:[0-9]+}/share", s.unshareFile).Methods(http.MethodDelete).Name("files.unshare")

	folders := r.PathPrefix("/api/folders").Subrouter()
	folders.Use(s.authenticated)
	folders.HandleFunc("/create", s.createFolder).Methods(http.MethodPost).Name("folders.create")
	folders.HandleFunc("/list", s.listFolders).Methods(http.MethodGet).Name("folders.list")
	folders.HandleFunc("/tree", s.folderTree).Methods(http.MethodGet).Name("folders.tree")
	folders.HandleFunc("/search", s.searchFolders).Methods(http.MethodGet).Name("folders.search")
	folders.HandleFunc("/root/contents", s.folderContents).Methods(http.MethodGet).Name("folders.contents")
	folders.HandleFunc("/root/breadcrumb", s.breadcrumb).Methods(http.MethodGet).Name("folders.breadcrumb")
	folders.HandleFunc("/{id:[0-9]+}/contents", s.folderContents).Methods(http.MethodGet).Name("folders.contents")
	folders.HandleFunc("/{id:[0-9]+}/breadcrumb", s.breadcrumb).Methods(http.MethodGet).Name("folders.breadcrumb")
	folders.HandleFunc("/{id:[0-9]+}/rename", s.renameFolder).Methods(http.MethodPut).Name("folders.rename")
	folders.HandleFunc("/{id:[0-9]+}/move", s.moveFolder).Methods(http.MethodPut).Name("folders.move")
	folders.HandleFunc("/{id:[0-9]+}", s.getFolder).Methods(http.MethodGet).Name("folders.get")
	folders.HandleFunc("/{id:[0-9]+}", s.deleteFolder).Methods(http.MethodDelete).Name("folders.delete")

	return r
}

// authenticated rejects requests without a live session.
func (s *Server) authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := s.sessionUser(r)
		if u == nil {
			writeMessage(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, u.name)))
	})
}

func owner(r *http.Request) string {
	name, _ := r.Context().Value(ctxKey{}).(string)
	return name
}

func (s *Server) sessionUser(r *http.Request) *user {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.sessions[c.Value]
	if !ok {
		return nil
	}
	return s.users[name]
}

func userMap(u *user) map[string]any {
	return map[string]any{
		"id":       u.id,
		"username": u.name,
		"role":     u.role,
		"create":   true,
		"read":     true,
		"write":    true,
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !readJSON(r, &req) {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	s.mu.Lock()
	u, ok := s.users[req.Username]
	if !ok || u.password != req.Password {
		s.mu.Unlock()
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	sid := uuid.NewString()
	s.sessions[sid] = u.name
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: sid, Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, map[string]any{"message": "Login successful", "user": userMap(u)})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, c.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) {
	u := s.sessionUser(r)
	if u == nil {
		writeMessage(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, userMap(u))
}

func (s *Server) publicFile(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	s.mu.Lock()
	f := s.byToken(token)
	s.mu.Unlock()
	if f == nil {
		writeMessage(w, http.StatusNotFound, "Invalid or expired public link")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":          f.id,
		"fileName":    f.name,
		"fileSize":    f.size,
		"contentType": f.contentType,
		"uploadedAt":  formatTime(f.uploadedAt),
		"uploader":    f.owner,
	})
}

func (s *Server) publicDownload(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	s.mu.Lock()
	f := s.byToken(token)
	s.mu.Unlock()
	if f == nil {
		writeMessage(w, http.StatusNotFound, "Invalid or expired public link")
		return
	}
	u, err := s.presignGet(r.Context(), f.objectKey)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"downloadUrl": u, "expiresInMinutes": 60})
}

func (s *Server) byToken(token string) *file {
	if token == "" {
		return nil
	}
	for _, f := range s.files {
		if f.live() && f.token == token {
			return f
		}
	}
	return nil
}
