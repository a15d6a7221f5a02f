package apitest

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) storageRouter() http.Handler {
	r := mux.NewRouter()
	r.Use(s.instrument)
	r.HandleFunc("/{bucket}/{key:.+}", s.putObject).Methods(http.MethodPut).Name("storage.put")
	r.HandleFunc("/{bucket}/{key:.+}", s.getObject).Methods(http.MethodGet).Name("storage.get")
	return r
}

func signed(r *http.Request) bool {
	q := r.URL.Query()
	return q.Get("X-Amz-Signature") != "" && q.Get("X-Amz-Credential") != ""
}

func s3Error(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, "<Error><Code>"+code+"</Code></Error>")
}

func (s *Server) putObject(w http.ResponseWriter, r *http.Request) {
	if !signed(r) {
		s3Error(w, http.StatusForbidden, "AccessDenied")
		return
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		s3Error(w, http.StatusBadRequest, "IncompleteBody")
		return
	}
	key := mux.Vars(r)["key"]

	s.mu.Lock()
	s.objects[key] = object{data: data, contentType: r.Header.Get("Content-Type")}
	s.mu.Unlock()

	w.WriteHeader(http.StatusOK)
}

func (s *Server) getObject(w http.ResponseWriter, r *http.Request) {
	if !signed(r) {
		s3Error(w, http.StatusForbidden, "AccessDenied")
		return
	}
	key := mux.Vars(r)["key"]

	s.mu.Lock()
	o, ok := s.objects[key]
	s.mu.Unlock()

	if !ok {
		s3Error(w, http.StatusNotFound, "NoSuchKey")
		return
	}
	if o.contentType != "" {
		w.Header().Set("Content-Type", o.contentType)
	}
	_, _ = w.Write(o.data)
}
