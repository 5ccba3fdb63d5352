package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/innovinitylabs/obsidian-paste-image-rename/internal/config"
	"github.com/innovinitylabs/obsidian-paste-image-rename/internal/renamer"
	"github.com/innovinitylabs/obsidian-paste-image-rename/internal/vault"
	"github.com/innovinitylabs/obsidian-paste-image-rename/pkg/types"
)

type APIErrorResponse struct {
	Message string `json:"message"`
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIErrorResponse{Message: message})
}

func writeValidationError(w http.ResponseWriter, field, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(config.ValidationError{
		Field:   field,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// Version handler

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"version": s.version})
}

// Settings handlers

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.currentSettings())
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	settings := config.DefaultSettings()
	if err := json.NewDecoder(r.Body).Decode(settings); err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := settings.Validate(); err != nil {
		var validationErr *config.ValidationError
		if errors.As(err, &validationErr) {
			writeValidationError(w, validationErr.Field, validationErr.Message)
			return
		}
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.SaveSettings(settings); err != nil {
			writeAPIError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	writeJSON(w, map[string]string{"status": "ok"})
}

// Recent vault handler

func (s *Server) handleRecentVaults(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, []string{})
		return
	}

	recent, err := s.store.LoadRecentVaults()
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recent == nil {
		recent = []string{}
	}
	writeJSON(w, recent)
}

// Scan and apply handlers

type ScanRequest struct {
	Vault  string `json:"vault"`
	Note   string `json:"note"`
	Action string `json:"action"`
	Format string `json:"format,omitempty"`
}

type ScanResponse struct {
	Renames     []types.RenameTask     `json:"renames,omitempty"`
	Conversions []types.ConversionTask `json:"conversions,omitempty"`
}

func parseFormat(raw string) (types.OutputFormat, error) {
	if raw == "" {
		return types.FormatAuto, nil
	}
	f := types.OutputFormat(raw)
	switch f {
	case types.FormatAuto, types.FormatJPG, types.FormatWebP, types.FormatAVIF, types.FormatPNG, types.FormatGIF:
		return f, nil
	}
	return "", fmt.Errorf("unknown format: %s", raw)
}

func (s *Server) newRenamer(vaultPath string) (*renamer.Renamer, error) {
	v, err := vault.New(vaultPath)
	if err != nil {
		return nil, err
	}
	if s.store != nil {
		if err := s.store.AddRecentVault(vaultPath); err != nil {
			return nil, err
		}
	}
	return renamer.New(s.currentSettings(), v)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Vault == "" {
		writeValidationError(w, "vault", "vault path is required")
		return
	}
	if req.Note == "" {
		writeValidationError(w, "note", "note path is required")
		return
	}

	rn, err := s.newRenamer(req.Vault)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer rn.Close()

	switch req.Action {
	case "", "rename":
		tasks, err := rn.ProposeRenames(req.Note, nil)
		if err != nil {
			writeAPIError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, ScanResponse{Renames: tasks})

	case "convert":
		format, err := parseFormat(req.Format)
		if err != nil {
			writeValidationError(w, "format", err.Error())
			return
		}
		tasks, err := rn.ProposeConversions(req.Note, format, nil)
		if err != nil {
			writeAPIError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, ScanResponse{Conversions: tasks})

	default:
		writeValidationError(w, "action", "action must be rename or convert")
	}
}

type ApplyRequest struct {
	Vault       string                 `json:"vault"`
	Note        string                 `json:"note"`
	Action      string                 `json:"action"`
	Renames     []types.RenameTask     `json:"renames,omitempty"`
	Conversions []types.ConversionTask `json:"conversions,omitempty"`
}

var runMutex sync.Mutex

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	if !runMutex.TryLock() {
		writeAPIError(w, http.StatusConflict, "a batch is already running")
		return
	}

	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		runMutex.Unlock()
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Vault == "" {
		runMutex.Unlock()
		writeValidationError(w, "vault", "vault path is required")
		return
	}
	if req.Action != "rename" && req.Action != "convert" {
		runMutex.Unlock()
		writeValidationError(w, "action", "action must be rename or convert")
		return
	}

	writeJSON(w, map[string]string{"status": "started"})

	go func() {
		defer runMutex.Unlock()
		defer func() {
			if rec := recover(); rec != nil {
				s.broadcastProgress(renamer.ProgressUpdate{Type: "error", Error: fmt.Sprintf("internal error: %v", rec)})
			}
		}()

		rn, err := s.newRenamer(req.Vault)
		if err != nil {
			s.broadcastProgress(renamer.ProgressUpdate{Type: "error", Error: err.Error()})
			return
		}
		defer rn.Close()

		rn.SetProgressCallback(func(update renamer.ProgressUpdate) {
			s.broadcastProgress(update)
		})

		switch req.Action {
		case "rename":
			_, err = rn.ApplyRenames(req.Note, req.Renames)
		case "convert":
			_, err = rn.ApplyConversions(req.Note, req.Conversions)
		}
		if err != nil {
			s.broadcastProgress(renamer.ProgressUpdate{Type: "error", Error: err.Error()})
		}
	}()
}

type UndoRequest struct {
	Vault string `json:"vault"`
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	var req UndoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Vault == "" {
		writeValidationError(w, "vault", "vault path is required")
		return
	}

	rn, err := s.newRenamer(req.Vault)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer rn.Close()

	reverted, err := rn.Undo()
	if err != nil {
		writeAPIError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, map[string]int{"reverted": reverted})
}

func (s *Server) broadcastJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.hub.broadcast <- data
}

func (s *Server) broadcastProgress(update renamer.ProgressUpdate) {
	s.broadcastJSON(update)
}

// Preset handlers

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	pm, err := config.NewPresetManager()
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}

	presets, err := pm.ListPresets()
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, presets)
}

func (s *Server) handleSavePreset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string           `json:"name"`
		Description string           `json:"description"`
		Settings    *config.Settings `json:"settings"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		writeAPIError(w, http.StatusBadRequest, "preset name is required")
		return
	}
	if req.Settings == nil {
		req.Settings = s.currentSettings()
	}

	pm, err := config.NewPresetManager()
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}

	preset, err := config.SettingsToPreset(req.Settings, req.Name, req.Description)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := pm.SavePreset(preset); err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleLoadPreset(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeAPIError(w, http.StatusBadRequest, "preset name is required")
		return
	}

	pm, err := config.NewPresetManager()
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}

	preset, err := pm.LoadPreset(name)
	if err != nil {
		writeAPIError(w, http.StatusNotFound, err.Error())
		return
	}

	settings, err := config.PresetToSettings(preset)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, settings)
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeAPIError(w, http.StatusBadRequest, "preset name is required")
		return
	}

	pm, err := config.NewPresetManager()
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := pm.DeletePreset(name); err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}
