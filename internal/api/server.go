// Package api serves the editing UI and lets it write content files back
// to the data directory.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"micelio/internal/config"
	"micelio/internal/content"
)

const (
	BackupSuffix = ".bak"

	maxBodyBytes    = 16 << 20
	shutdownTimeout = 10 * time.Second
)

// ErrNotAllowed is returned when a save names a file outside the allow list.
var ErrNotAllowed = errors.New("file not allowed")

// ErrInvalidPayload is returned when the data to save is not a JSON object
// or array.
var ErrInvalidPayload = errors.New("data must be a JSON object or array")

type SaveRequest struct {
	Path string          `json:"path"`
	Data json.RawMessage `json:"data"`
}

type SaveResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	File    string `json:"file"`
}

type FileInfo struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

type FilesResponse struct {
	Files []FileInfo `json:"files"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type Server struct {
	dataDir   string
	indexFile string
	allowed   []string
	log       *zap.Logger
}

func New(cfg *config.ProjectConfig, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		dataDir:   cfg.DataDir,
		indexFile: cfg.Server.IndexFile,
		allowed:   cfg.Server.AllowedFiles,
		log:       log.Named("api"),
	}
}

// Handler returns the complete HTTP handler, CORS and request logging
// included.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods("GET")
	r.HandleFunc("/api/save", s.handleSave).Methods("POST")
	r.HandleFunc("/api/files", s.handleFiles).Methods("GET")
	r.PathPrefix("/data/").Handler(http.StripPrefix("/data/", http.FileServer(readOnlyDir(s.dataDir)))).Methods("GET", "HEAD")
	return cors(s.logRequests(r))
}

// ListenAndServe serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) (err error) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("Server listening", zap.String("addr", addr), zap.String("data", s.dataDir))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if er := srv.Shutdown(shutdownCtx); er != nil {
		err = multierr.Append(err, fmt.Errorf("shutting down server: %w", er))
	}
	if er := <-errc; er != nil && !errors.Is(er, http.ErrServerClosed) {
		err = multierr.Append(err, er)
	}
	return err
}

func (s *Server) isAllowed(name string) bool {
	for _, allowed := range s.allowed {
		if name == allowed {
			return true
		}
	}
	return false
}

// Save writes data to the allowed file named by the base name of p. The
// previous content is kept next to it with BackupSuffix. Nothing on disk is
// touched when the name is not allowed.
func (s *Server) Save(p string, data json.RawMessage) (*SaveResponse, error) {
	name := path.Base(strings.ReplaceAll(p, `\`, "/"))
	if !s.isAllowed(name) {
		return nil, fmt.Errorf("%w: %s", ErrNotAllowed, name)
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') || !json.Valid(data) {
		return nil, ErrInvalidPayload
	}

	target := filepath.Join(s.dataDir, name)
	backedUp, err := content.WriteJSON(target, data, BackupSuffix)
	if err != nil {
		return nil, fmt.Errorf("saving %s: %w", name, err)
	}

	s.log.Info("File saved", zap.String("file", target), zap.Bool("backup", backedUp))
	return &SaveResponse{
		Success: true,
		Message: fmt.Sprintf("%s saved", p),
		File:    name,
	}, nil
}

// Files reports every allowed file and whether it currently exists.
func (s *Server) Files() []FileInfo {
	files := make([]FileInfo, 0, len(s.allowed))
	for _, name := range s.allowed {
		_, err := os.Stat(filepath.Join(s.dataDir, name))
		files = append(files, FileInfo{
			Name:   name,
			Path:   path.Join(filepath.ToSlash(s.dataDir), name),
			Exists: err == nil,
		})
	}
	return files
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(s.indexFile); err != nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "<h1>Error</h1><p>index.html not found</p>")
		return
	}
	http.ServeFile(w, r, s.indexFile)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid JSON body"})
		return
	}

	resp, err := s.Save(req.Path, req.Data)
	switch {
	case errors.Is(err, ErrNotAllowed):
		s.log.Warn("Save refused", zap.String("path", req.Path))
		writeJSON(w, http.StatusForbidden, errorResponse{Detail: err.Error()})
	case errors.Is(err, ErrInvalidPayload):
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: err.Error()})
	case err != nil:
		s.log.Error("Save failed", zap.String("path", req.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: err.Error()})
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, FilesResponse{Files: s.Files()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
