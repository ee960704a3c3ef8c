package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iconsports/demandscope/engine/catalog"
	"github.com/iconsports/demandscope/engine/domain"
	"github.com/iconsports/demandscope/engine/ingest"
	"github.com/iconsports/demandscope/engine/pipeline"
	"github.com/iconsports/demandscope/engine/store"
	"github.com/iconsports/demandscope/pkg/mid"
)

const maxBodyBytes = 1 << 20

// Dashboard actions accepted by POST /api/dataforseo.
const (
	actionSearchVolume     = "search_volume"
	actionPlayerData       = "player_data"
	actionTestConnection   = "test_connection"
	actionMicroTest        = "run_micro_test"
	actionFullProduction   = "run_full_production_test"
	actionCollectAllData   = "collect_all_data"
	invalidActionMessage   = "Invalid action. Use: search_volume, player_data, test_connection, run_micro_test, run_full_production_test, or collect_all_data"
	providerFailureMessage = "Failed to fetch data from DataForSEO"
)

type server struct {
	svc           *pipeline.Service
	store         *store.FileStore
	secret        string
	secureCookies bool
	logger        *slog.Logger
}

// ActionRequest is the JSON body for POST /api/dataforseo. Fields beyond
// Action are read only by the actions that need them.
type ActionRequest struct {
	Action        string   `json:"action"`
	Keywords      []string `json:"keywords,omitempty"`
	LocationCode  int      `json:"locationCode,omitempty"`
	LanguageCode  string   `json:"languageCode,omitempty"`
	PlayerName    string   `json:"playerName,omitempty"`
	LocationCodes []int    `json:"locationCodes,omitempty"`
	DateFrom      string   `json:"dateFrom,omitempty"`
	DateTo        string   `json:"dateTo,omitempty"`
}

// --- Responses ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// statusFor maps pipeline errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRealMoneyDisabled):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrCostLimitExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrRunNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) fail(w http.ResponseWriter, action string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("action failed", "action", action, "err", err)
		writeJSON(w, status, map[string]any{
			"success": false,
			"error":   providerFailureMessage,
			"details": err.Error(),
		})
		return
	}
	s.logger.Warn("action rejected", "action", action, "status", status, "err", err)
	writeError(w, status, err.Error())
}

// --- Handlers ---

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"apiMode": s.svc.APIMode(),
	})
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	if s.secret != "" && !mid.CheckSecret(s.secret, body.Password) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid password"})
		return
	}
	if s.secret != "" {
		http.SetCookie(w, mid.SessionCookie(s.secret, s.secureCookies))
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, mid.SessionCookie("", s.secureCookies))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *server) handleStoredData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if id := strings.TrimSpace(r.URL.Query().Get("id")); id != "" {
		run, err := s.store.Get(ctx, id)
		if errors.Is(err, domain.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "Stored result not found")
			return
		}
		if err != nil {
			s.logger.Error("read stored run failed", "id", id, "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"success": false,
				"error":   "Failed to retrieve stored data",
				"details": err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": run})
		return
	}

	runs, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("list stored runs failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Failed to retrieve stored data",
			"details": err.Error(),
		})
		return
	}
	if runs == nil {
		runs = []domain.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"data":             runs,
		"storageDirectory": s.store.Dir(),
	})
}

func (s *server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ctx := r.Context()

	switch req.Action {
	case actionSearchVolume:
		if len(req.Keywords) == 0 {
			writeError(w, http.StatusBadRequest, "Keywords array is required")
			return
		}
		records, err := s.svc.SearchVolume(ctx, req.Keywords, req.LocationCode, req.LanguageCode)
		if err != nil {
			s.fail(w, req.Action, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    nonNil(records),
			"count":   len(records),
		})

	case actionPlayerData:
		if strings.TrimSpace(req.PlayerName) == "" {
			writeError(w, http.StatusBadRequest, "Player name is required")
			return
		}
		report, err := s.svc.PlayerData(ctx, req.PlayerName, req.LocationCodes, req.DateFrom, req.DateTo)
		if err != nil {
			s.fail(w, req.Action, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": report})

	case actionTestConnection:
		records, err := s.svc.TestConnection(ctx)
		if err != nil {
			s.fail(w, req.Action, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"message":  "DataForSEO connection successful",
			"testData": nonNil(records),
		})

	case actionMicroTest:
		s.respondRun(w, req.Action, fmt.Sprintf("Micro test completed successfully using %s API", modeLabel(s.svc.APIMode())),
			func() (*pipeline.RunReport, error) { return s.svc.RunMicroTest(ctx, req.DateFrom, req.DateTo) })

	case actionFullProduction:
		s.respondRun(w, req.Action, "Full production test completed successfully",
			func() (*pipeline.RunReport, error) { return s.svc.RunFullProductionTest(ctx, req.DateFrom, req.DateTo) })

	case actionCollectAllData:
		s.respondRun(w, req.Action, "Data collection completed successfully",
			func() (*pipeline.RunReport, error) { return s.svc.CollectAllData(ctx, req.DateFrom, req.DateTo) })

	default:
		writeError(w, http.StatusBadRequest, invalidActionMessage)
	}
}

func (s *server) respondRun(w http.ResponseWriter, action, message string, exec func() (*pipeline.RunReport, error)) {
	report, err := exec()
	if err != nil {
		s.fail(w, action, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": message,
		"data":    report,
	})
}

func modeLabel(mode string) string {
	if mode == "live" {
		return "Live"
	}
	return "Sandbox"
}

func nonNil(records []domain.KeywordRecord) []domain.KeywordRecord {
	if records == nil {
		return []domain.KeywordRecord{}
	}
	return records
}

// maxReportBytes bounds one multipart upload to POST /api/reports.
const maxReportBytes = 10 << 20

// handleReports imports uploaded keyword research CSVs (form field "files")
// as one run. The optional "market" field names the market for rows
// without a country.
func (s *server) handleReports(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxReportBytes)
	if err := r.ParseMultipartForm(maxReportBytes); err != nil {
		writeError(w, http.StatusBadRequest, "multipart form with report files is required")
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "at least one report file is required")
		return
	}
	name := r.FormValue("market")
	if name == "" {
		name = "United States"
	}
	fallback, ok := catalog.FindMarket(name)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown market %q", name))
		return
	}

	var rows []ingest.Row
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		got, err := ingest.ReadCSV(f)
		f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%s: %v", fh.Filename, err))
			return
		}
		rows = append(rows, got...)
	}

	report, err := s.svc.ImportReport(r.Context(), rows, fallback)
	if err != nil {
		s.fail(w, "import_reports", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"message":          fmt.Sprintf("Successfully processed %d files", len(files)),
		"recordsProcessed": report.Run.ProcessedResults.Processed,
		"data":             report,
	})
}
