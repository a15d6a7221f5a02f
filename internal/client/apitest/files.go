package apitest

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

func (s *Server) fileMap(f *file) map[string]any {
	m := map[string]any{
		"id":                f.id,
		"fileName":          f.name,
		"originalName":      f.name,
		"fileSize":          f.size,
		"fileSizeFormatted": formatBytes(f.size),
		"contentType":       f.contentType,
		"uploadedAt":        formatTime(f.uploadedAt),
		"lastModified":      formatTime(f.modifiedAt),
		"isPublic":          f.token != "",
		"folderId":          nil,
	}
	if fo, ok := s.folders[f.folderID]; ok {
		m["folderId"] = fo.id
		m["folderName"] = fo.name
		m["folderPath"] = s.pathOf(fo.id)
	}
	return m
}

func (s *Server) ownedFile(r *http.Request) *file {
	f, ok := s.files[pathID(r)]
	if !ok || !f.live() || f.owner != owner(r) {
		return nil
	}
	return f
}

func (s *Server) ownedFolder(who string, id int64) bool {
	if id == 0 {
		return true
	}
	fo, ok := s.folders[id]
	return ok && fo.owner == who
}

func (s *Server) uploadURL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FileName string `json:"fileName"`
		FileSize int64  `json:"fileSize"`
		FolderID *int64 `json:"folderId"`
	}
	if !readJSON(r, &req) || strings.TrimSpace(req.FileName) == "" {
		writeMessage(w, http.StatusBadRequest, "File name is required")
		return
	}
	who := owner(r)

	s.mu.Lock()
	var folderID int64
	if req.FolderID != nil {
		folderID = *req.FolderID
	}
	if !s.ownedFolder(who, folderID) {
		s.mu.Unlock()
		writeMessage(w, http.StatusBadRequest, "Folder not found")
		return
	}
	if s.usedLocked(who)+req.FileSize > s.users[who].quota {
		s.mu.Unlock()
		writeMessage(w, http.StatusBadRequest, "Storage quota exceeded")
		return
	}
	id := s.id()
	now := time.Now()
	key := objectKey(who, id, req.FileName)
	s.files[id] = &file{
		id: id, owner: who, name: req.FileName, size: req.FileSize,
		uploadedAt: now, modifiedAt: now, folderID: folderID, objectKey: key,
	}
	s.mu.Unlock()

	u, err := s.presignPut(r.Context(), key)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"uploadUrl":        u,
		"fileId":           id,
		"objectKey":        key,
		"expiresInMinutes": int(presignTTL / time.Minute),
	})
}

func (s *Server) confirmUpload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FileID      int64  `json:"fileId"`
		ContentType string `json:"contentType"`
	}
	if !readJSON(r, &req) {
		writeMessage(w, http.StatusBadRequest, "fileId is required")
		return
	}
	who := owner(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[req.FileID]
	if !ok || f.owner != who {
		writeMessage(w, http.StatusNotFound, "File not found")
		return
	}
	o, stored := s.objects[f.objectKey]
	if !stored {
		writeMessage(w, http.StatusBadRequest, "File was not uploaded to storage")
		return
	}
	f.confirmed = true
	f.size = int64(len(o.data))
	f.contentType = req.ContentType
	if f.contentType == "" {
		f.contentType = o.contentType
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "File uploaded successfully", "file": s.fileMap(f)})
}

func (s *Server) filesIn(who string, folderID int64) []*file {
	out := make([]*file, 0)
	for _, f := range s.files {
		if f.owner == who && f.live() && f.folderID == folderID {
			out = append(out, f)
		}
	}
	sortFilesNewestFirst(out)
	return out
}

func (s *Server) writePage(w http.ResponseWriter, all []*file, page, size int, extra map[string]any) {
	total := len(all)
	totalPages := (total + size - 1) / size
	start := page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	items := make([]map[string]any, 0, end-start)
	for _, f := range all[start:end] {
		items = append(items, s.fileMap(f))
	}
	resp := map[string]any{
		"files":       items,
		"currentPage": page,
		"totalPages":  totalPages,
		"totalItems":  total,
		"hasNext":     page < totalPages-1,
		"hasPrevious": page > 0,
	}
	for k, v := range extra {
		resp[k] = v
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listFiles(w http.ResponseWriter, r *http.Request) {
	folderID, ok := optionalID(r, "folderId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid folderId")
		return
	}
	page, size := paging(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.writePage(w, s.filesIn(owner(r), folderID), page, size, nil)
}

func (s *Server) allIDs(w http.ResponseWriter, r *http.Request) {
	folderID, ok := optionalID(r, "folderId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid folderId")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0)
	for _, f := range s.filesIn(owner(r), folderID) {
		ids = append(ids, f.id)
	}
	writeJSON(w, http.StatusOK, map[string]any{"fileIds": ids, "count": len(ids)})
}

func (s *Server) searchFiles(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("query")))
	if query == "" {
		writeMessage(w, http.StatusBadRequest, "Query is required")
		return
	}
	page, size := paging(r)
	who := owner(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*file, 0)
	for _, f := range s.files {
		if f.owner == who && f.live() && strings.Contains(strings.ToLower(f.name), query) {
			out = append(out, f)
		}
	}
	sortFilesNewestFirst(out)
	s.writePage(w, out, page, size, map[string]any{"query": r.URL.Query().Get("query")})
}

func (s *Server) getFile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.ownedFile(r)
	if f == nil {
		writeMessage(w, http.StatusNotFound, "File not found")
		return
	}
	m := s.fileMap(f)
	if fo, ok := s.folders[f.folderID]; ok {
		m["folder"] = map[string]any{"id": fo.id, "name": fo.name, "path": s.pathOf(fo.id)}
	}
	if f.token != "" {
		m["publicLinkToken"] = f.token
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) fileDownload(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	f := s.ownedFile(r)
	var key string
	if f != nil {
		key = f.objectKey
	}
	s.mu.Unlock()
	if f == nil {
		writeMessage(w, http.StatusNotFound, "File not found")
		return
	}
	u, err := s.presignGet(r.Context(), key)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"downloadUrl": u, "expiresInMinutes": int(presignTTL / time.Minute)})
}

func (s *Server) deleteFile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.ownedFile(r)
	if f == nil {
		writeMessage(w, http.StatusNotFound, "File not found")
		return
	}
	f.deleted = true
	f.token = ""
	writeMessage(w, http.StatusOK, "File deleted successfully")
}

// purgeFile removes a file for good, including one already soft-deleted.
func (s *Server) purgeFile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[pathID(r)]
	if !ok || !f.confirmed || f.owner != owner(r) {
		writeMessage(w, http.StatusNotFound, "File not found")
		return
	}
	s.removeFileLocked(f)
	writeMessage(w, http.StatusOK, "File permanently deleted")
}

func (s *Server) removeFileLocked(f *file) {
	delete(s.objects, f.objectKey)
	delete(s.files, f.id)
}

func (s *Server) moveFile(w http.ResponseWriter, r *http.Request) {
	target, ok := optionalID(r, "targetFolderId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid targetFolderId")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.ownedFile(r)
	if f == nil {
		writeMessage(w, http.StatusNotFound, "File not found")
		return
	}
	if !s.ownedFolder(f.owner, target) {
		writeMessage(w, http.StatusBadRequest, "Target folder not found")
		return
	}
	f.folderID = target
	f.modifiedAt = time.Now()
	writeJSON(w, http.StatusOK, map[string]any{"message": "File moved successfully", "file": s.fileMap(f)})
}

func (s *Server) renameFile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewName string `json:"newName"`
	}
	if !readJSON(r, &req) || strings.TrimSpace(req.NewName) == "" {
		writeMessage(w, http.StatusBadRequest, "New name is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.ownedFile(r)
	if f == nil {
		writeMessage(w, http.StatusNotFound, "File not found")
		return
	}
	f.name = strings.TrimSpace(req.NewName)
	f.modifiedAt = time.Now()
	writeJSON(w, http.StatusOK, map[string]any{"message": "File renamed successfully", "file": s.fileMap(f)})
}

func (s *Server) shareFile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.ownedFile(r)
	if f == nil {
		writeMessage(w, http.StatusNotFound, "File not found")
		return
	}
	if f.token == "" {
		f.token = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"publicLinkToken": f.token,
		"publicUrl":       "/public/" + f.token,
	})
}

func (s *Server) unshareFile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.ownedFile(r)
	if f == nil {
		writeMessage(w, http.StatusNotFound, "File not found")
		return
	}
	f.token = ""
	writeMessage(w, http.StatusOK, "Public link revoked")
}

func (s *Server) usedLocked(who string) int64 {
	var used int64
	for _, f := range s.files {
		if f.owner == who && f.live() {
			used += f.size
		}
	}
	return used
}

func (s *Server) storageInfo(w http.ResponseWriter, r *http.Request) {
	who := owner(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	used := s.usedLocked(who)
	quota := s.users[who].quota
	pct := 0.0
	if quota > 0 {
		pct = float64(used) * 100 / float64(quota)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"storageUsed":               used,
		"storageQuota":              quota,
		"storageRemaining":          quota - used,
		"storageUsedFormatted":      formatBytes(used),
		"storageQuotaFormatted":     formatBytes(quota),
		"storageRemainingFormatted": formatBytes(quota - used),
		"usagePercentage":           formatPercent(pct),
	})
}

type bulkBody struct {
	FileIDs        []int64 `json:"fileIds"`
	TargetFolderID *int64  `json:"targetFolderId"`
}

func (s *Server) bulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkBody
	if !readJSON(r, &req) || len(req.FileIDs) == 0 {
		writeMessage(w, http.StatusBadRequest, "fileIds is required")
		return
	}
	who := owner(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range req.FileIDs {
		f, ok := s.files[id]
		if !ok || f.owner != who {
			writeMessage(w, http.StatusInternalServerError, "File not found: "+itoa(id))
			return
		}
	}
	for _, id := range req.FileIDs {
		s.removeFileLocked(s.files[id])
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Files deleted successfully", "count": len(req.FileIDs)})
}

func (s *Server) bulkMove(w http.ResponseWriter, r *http.Request) {
	var req bulkBody
	if !readJSON(r, &req) || len(req.FileIDs) == 0 {
		writeMessage(w, http.StatusBadRequest, "fileIds is required")
		return
	}
	var target int64
	if req.TargetFolderID != nil {
		target = *req.TargetFolderID
	}
	who := owner(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ownedFolder(who, target) {
		writeMessage(w, http.StatusInternalServerError, "Target folder not found")
		return
	}
	for _, id := range req.FileIDs {
		f, ok := s.files[id]
		if !ok || f.owner != who {
			writeMessage(w, http.StatusInternalServerError, "File not found: "+itoa(id))
			return
		}
	}
	for _, id := range req.FileIDs {
		s.files[id].folderID = target
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Files moved successfully", "count": len(req.FileIDs)})
}
