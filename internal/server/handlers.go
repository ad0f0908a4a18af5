package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/tomaslau/focusonly/internal/model"
	"github.com/tomaslau/focusonly/internal/tabs"
	"github.com/tomaslau/focusonly/internal/validate"
)

// Tab event types posted by the extension
const (
	EventNavigationCompleted = "navigation_completed"
	EventActivated           = "activated"
	EventHistoryStateUpdated = "history_state_updated"
	EventRemoved             = "removed"
)

// TabEvent is a browser tab lifecycle notification
type TabEvent struct {
	Type    string `json:"type" validate:"required,oneof=navigation_completed activated history_state_updated removed"`
	TabID   int    `json:"tabId" validate:"gte=0"`
	URL     string `json:"url,omitempty"`
	Active  bool   `json:"active,omitempty"`
	FrameID int    `json:"frameId,omitempty"`
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var ev TabEvent
	if err := decodeBody(w, r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(ev); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	orch, tracker := s.deps.Orchestrator, s.deps.Tabs
	switch ev.Type {
	case EventNavigationCompleted:
		tracker.Navigate(ev.TabID, ev.URL)
		if ev.Active {
			tracker.Activate(ev.TabID)
		}
		orch.NavigationCompleted(ev.TabID, ev.Active)
	case EventActivated:
		if ev.URL != "" {
			tracker.Navigate(ev.TabID, ev.URL)
		}
		tracker.Activate(ev.TabID)
		orch.Activated(ev.TabID)
	case EventHistoryStateUpdated:
		if ev.URL != "" && ev.FrameID == 0 {
			tracker.Navigate(ev.TabID, ev.URL)
		}
		orch.HistoryStateUpdated(ev.TabID, ev.FrameID)
	case EventRemoved:
		orch.Closed(ev.TabID)
		tracker.Remove(ev.TabID)
	}

	writeJSON(w, http.StatusAccepted, model.Ack{OK: true})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var msg model.Message
	if err := decodeBody(w, r, &msg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := s.deps.Orchestrator.HandleMessage(r.Context(), msg)
	switch {
	case errors.Is(err, tabs.ErrUnknownMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		s.log.Error().Err(err).Str("type", string(msg.Type)).Msg("message failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

// handleStream pushes STATUS_UPDATE messages until the client goes away
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	patterns, anyOrigin := s.originPatterns()
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:     patterns,
		InsecureSkipVerify: anyOrigin,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	updates, unsubscribe := s.deps.Hub.Subscribe()
	defer unsubscribe()

	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusGoingAway, "")
			return
		case msg, ok := <-updates:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, conn, msg)
			cancel()
			if err != nil {
				s.log.Debug().Err(err).Msg("stream write")
				return
			}
		}
	}
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Stats.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleResetStats(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Stats.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, model.Stats{})
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.Cache.ClearAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
