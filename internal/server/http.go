package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
)

// maximum accepted mission document size
const maxMissionBytes = 4 << 20

// NewMux routes the battle API.
func NewMux(h *Hub, log *slog.Logger) *http.ServeMux {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /battles", func(w http.ResponseWriter, r *http.Request) {
		createBattle(h, w, r)
	})
	mux.HandleFunc("GET /battles", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, h.List())
	})
	mux.HandleFunc("GET /battles/{id}", func(w http.ResponseWriter, r *http.Request) {
		lb, err := h.Get(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, lb.Battle.Snapshot())
	})
	mux.HandleFunc("GET /battles/{id}/history", func(w http.ResponseWriter, r *http.Request) {
		replay(h, w, r)
	})
	mux.HandleFunc("DELETE /battles/{id}", func(w http.ResponseWriter, r *http.Request) {
		res, err := h.Stop(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	})
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		serveWS(h, log, w, r)
	})
	return mux
}

func createBattle(h *Hub, w http.ResponseWriter, r *http.Request) {
	doc, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxMissionBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	if len(doc) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("empty mission document"))
		return
	}
	query := r.URL.Query()
	lb, err := h.CreateBattle(query.Get("name"), doc, parseSettingsOverrides(query))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, createBattleResponse{
		ID:     lb.ID,
		Name:   lb.Name,
		Stream: "/ws?battle=" + lb.ID,
		State:  lb.Battle.Snapshot(),
	})
}

// replay serves the battle as it was at ?at= seconds of battle time.
func replay(h *Hub, w http.ResponseWriter, r *http.Request) {
	lb, err := h.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	at, err := strconv.ParseFloat(r.URL.Query().Get("at"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid replay time: %w", err))
		return
	}
	snap, ok := lb.History().At(at)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("no history recorded yet"))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
