package apitest

import (
	"net/http"
	"sort"
	"strings"
	"time"
)

func (s *Server) pathOf(id int64) string {
	var parts []string
	for id != 0 {
		fo, ok := s.folders[id]
		if !ok {
			break
		}
		parts = append([]string{fo.name}, parts...)
		id = fo.parentID
	}
	return "/" + strings.Join(parts, "/")
}

func (s *Server) childrenOf(who string, parent int64) []*folder {
	out := make([]*folder, 0)
	for _, fo := range s.folders {
		if fo.owner == who && fo.parentID == parent {
			out = append(out, fo)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func (s *Server) fileCountIn(who string, folderID int64) int {
	n := 0
	for _, f := range s.files {
		if f.owner == who && f.live() && f.folderID == folderID {
			n++
		}
	}
	return n
}

func (s *Server) folderMap(fo *folder) map[string]any {
	m := map[string]any{
		"id":             fo.id,
		"name":           fo.name,
		"fullPath":       s.pathOf(fo.id),
		"parentFolderId": nil,
		"createdAt":      formatTime(fo.createdAt),
		"updatedAt":      formatTime(fo.updatedAt),
		"subFolderCount": len(s.childrenOf(fo.owner, fo.id)),
		"fileCount":      s.fileCountIn(fo.owner, fo.id),
	}
	if p, ok := s.folders[fo.parentID]; ok {
		m["parentFolderId"] = p.id
		m["parentFolderName"] = p.name
	}
	return m
}

func (s *Server) folderMaps(fs []*folder) []map[string]any {
	out := make([]map[string]any, 0, len(fs))
	for _, fo := range fs {
		out = append(out, s.folderMap(fo))
	}
	return out
}

func (s *Server) ownedFolderFromPath(r *http.Request) *folder {
	fo, ok := s.folders[pathID(r)]
	if !ok || fo.owner != owner(r) {
		return nil
	}
	return fo
}

func (s *Server) nameTaken(who string, parent int64, name string, except int64) bool {
	for _, fo := range s.childrenOf(who, parent) {
		if fo.id != except && strings.EqualFold(fo.name, name) {
			return true
		}
	}
	return false
}

func (s *Server) createFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FolderName     string `json:"folderName"`
		ParentFolderID *int64 `json:"parentFolderId"`
	}
	if !readJSON(r, &req) || strings.TrimSpace(req.FolderName) == "" {
		writeMessage(w, http.StatusBadRequest, "Folder name is required")
		return
	}
	name := strings.TrimSpace(req.FolderName)
	var parent int64
	if req.ParentFolderID != nil {
		parent = *req.ParentFolderID
	}
	who := owner(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ownedFolder(who, parent) {
		writeMessage(w, http.StatusBadRequest, "Parent folder not found")
		return
	}
	if s.nameTaken(who, parent, name, 0) {
		writeMessage(w, http.StatusBadRequest, "Folder with this name already exists")
		return
	}
	now := time.Now()
	fo := &folder{id: s.id(), owner: who, name: name, parentID: parent, createdAt: now, updatedAt: now}
	s.folders[fo.id] = fo
	writeJSON(w, http.StatusOK, map[string]any{"message": "Folder created successfully", "folder": s.folderMap(fo)})
}

func (s *Server) listFolders(w http.ResponseWriter, r *http.Request) {
	parent, ok := optionalID(r, "parentFolderId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid parentFolderId")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"folders": s.folderMaps(s.childrenOf(owner(r), parent))})
}

func (s *Server) treeOf(who string, parent int64) []map[string]any {
	out := make([]map[string]any, 0)
	for _, fo := range s.childrenOf(who, parent) {
		n := map[string]any{
			"id":        fo.id,
			"name":      fo.name,
			"path":      s.pathOf(fo.id),
			"createdAt": formatTime(fo.createdAt),
		}
		if kids := s.treeOf(who, fo.id); len(kids) > 0 {
			n["children"] = kids
		}
		out = append(out, n)
	}
	return out
}

func (s *Server) folderTree(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"tree": s.treeOf(owner(r), 0)})
}

func (s *Server) searchFolders(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("query")))
	if query == "" {
		writeMessage(w, http.StatusBadRequest, "Query is required")
		return
	}
	who := owner(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*folder, 0)
	for _, fo := range s.folders {
		if fo.owner == who && strings.Contains(strings.ToLower(fo.name), query) {
			out = append(out, fo)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	writeJSON(w, http.StatusOK, map[string]any{"folders": s.folderMaps(out), "query": r.URL.Query().Get("query")})
}

// folderID resolves the {id} path variable; the /root/ routes have none.
func (s *Server) folderID(r *http.Request) (int64, bool) {
	id := pathID(r)
	if id == 0 {
		return 0, true
	}
	return id, s.ownedFolder(owner(r), id)
}

func (s *Server) folderContents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.folderID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Folder not found")
		return
	}
	who := owner(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"folders":   s.folderMaps(s.childrenOf(who, id)),
		"fileCount": s.fileCountIn(who, id),
	})
}

func (s *Server) breadcrumb(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.folderID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Folder not found")
		return
	}
	var chain []map[string]any
	for id != 0 {
		fo := s.folders[id]
		chain = append([]map[string]any{{"id": fo.id, "name": fo.name, "path": s.pathOf(fo.id)}}, chain...)
		id = fo.parentID
	}
	out := append([]map[string]any{{"id": nil, "name": "My Files", "path": "/"}}, chain...)
	writeJSON(w, http.StatusOK, map[string]any{"breadcrumb": out})
}

func (s *Server) getFolder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fo := s.ownedFolderFromPath(r)
	if fo == nil {
		writeMessage(w, http.StatusNotFound, "Folder not found")
		return
	}
	m := s.folderMap(fo)
	if p, ok := s.folders[fo.parentID]; ok {
		m["parent"] = map[string]any{"id": p.id, "name": p.name, "path": s.pathOf(p.id)}
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) renameFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewName string `json:"newName"`
	}
	if !readJSON(r, &req) || strings.TrimSpace(req.NewName) == "" {
		writeMessage(w, http.StatusBadRequest, "New name is required")
		return
	}
	name := strings.TrimSpace(req.NewName)
	s.mu.Lock()
	defer s.mu.Unlock()
	fo := s.ownedFolderFromPath(r)
	if fo == nil {
		writeMessage(w, http.StatusNotFound, "Folder not found")
		return
	}
	if s.nameTaken(fo.owner, fo.parentID, name, fo.id) {
		writeMessage(w, http.StatusBadRequest, "Folder with this name already exists")
		return
	}
	fo.name = name
	fo.updatedAt = time.Now()
	writeJSON(w, http.StatusOK, map[string]any{"message": "Folder renamed successfully", "folder": s.folderMap(fo)})
}

func (s *Server) moveFolder(w http.ResponseWriter, r *http.Request) {
	target, ok := optionalID(r, "targetParentFolderId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid targetParentFolderId")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fo := s.ownedFolderFromPath(r)
	if fo == nil {
		writeMessage(w, http.StatusNotFound, "Folder not found")
		return
	}
	if !s.ownedFolder(fo.owner, target) {
		writeMessage(w, http.StatusBadRequest, "Target folder not found")
		return
	}
	for id := target; id != 0; id = s.folders[id].parentID {
		if id == fo.id {
			writeMessage(w, http.StatusBadRequest, "Cannot move a folder into itself or its subfolder")
			return
		}
	}
	if s.nameTaken(fo.owner, target, fo.name, fo.id) {
		writeMessage(w, http.StatusBadRequest, "Folder with this name already exists")
		return
	}
	fo.parentID = target
	fo.updatedAt = time.Now()
	writeJSON(w, http.StatusOK, map[string]any{"message": "Folder moved successfully", "folder": s.folderMap(fo)})
}

func (s *Server) deleteFolder(w http.ResponseWriter, r *http.Request) {
	deleteContents := r.URL.Query().Get("deleteContents") == "true"
	s.mu.Lock()
	defer s.mu.Unlock()
	fo := s.ownedFolderFromPath(r)
	if fo == nil {
		writeMessage(w, http.StatusNotFound, "Folder not found")
		return
	}
	empty := len(s.childrenOf(fo.owner, fo.id)) == 0 && s.fileCountIn(fo.owner, fo.id) == 0
	if !empty && !deleteContents {
		writeMessage(w, http.StatusBadRequest, "Folder is not empty")
		return
	}
	s.removeFolderLocked(fo)
	writeMessage(w, http.StatusOK, "Folder deleted successfully")
}

func (s *Server) removeFolderLocked(fo *folder) {
	for _, c := range s.childrenOf(fo.owner, fo.id) {
		s.removeFolderLocked(c)
	}
	for _, f := range s.files {
		if f.owner == fo.owner && f.folderID == fo.id {
			s.removeFileLocked(f)
		}
	}
	delete(s.folders, fo.id)
}
