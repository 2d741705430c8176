package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/unglihq/ungli/internal/completion"
	"github.com/unglihq/ungli/internal/config"
	"github.com/unglihq/ungli/internal/interview"
	"github.com/unglihq/ungli/internal/observability"
	"github.com/unglihq/ungli/internal/research"
	"github.com/unglihq/ungli/internal/transcript"
)

type Server struct {
	cfg           config.Config
	store         transcript.Store
	rec           *transcript.Recorder
	engine        *interview.Engine
	runner        *research.Runner
	researchStore research.Store
	metrics       *observability.Metrics
	upgrader      websocket.Upgrader
}

func New(cfg config.Config, store transcript.Store, rec *transcript.Recorder, engine *interview.Engine, runner *research.Runner, researchStore research.Store, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:           cfg,
		store:         store,
		rec:           rec,
		engine:        engine,
		runner:        runner,
		researchStore: researchStore,
		metrics:       metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Default: only allow browser websocket connections from the
				// same origin, so other websites cannot drive the interview
				// if the server is ever exposed beyond localhost.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/conversations", s.handleCreateConversation)
	r.Get("/v1/conversations", s.handleListConversations)
	r.Get("/v1/conversations/{id}/messages", s.handleListMessages)
	r.Post("/v1/conversations/{id}/messages", s.handlePostMessage)

	r.Get("/v1/chat/init", s.handleChatInit)
	r.Get("/v1/chat/ws", s.handleChatWS)

	r.Post("/v1/research/{id}/run", s.handleResearchRun)
	r.Get("/v1/research/{id}", s.handleResearchStatus)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

type createConversationRequest struct {
	Title      string `json:"title"`
	SessionKey string `json:"session_key"`
}

type conversationResponse struct {
	Conversation transcript.Conversation `json:"conversation"`
	Turns        []transcript.Turn       `json:"turns,omitempty"`
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		req.Title = "Product discovery"
	}

	conv, err := s.store.CreateConversation(r.Context(), transcript.Conversation{
		Title:      req.Title,
		SessionKey: strings.TrimSpace(req.SessionKey),
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	opening, err := s.rec.RecordAssistantTurn(r.Context(), conv.ID, interview.OpeningQuestion, conv.CreatedAt)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	s.metrics.CountConversationEvent("created")

	respondJSON(w, http.StatusCreated, conversationResponse{
		Conversation: conv,
		Turns:        []transcript.Turn{opening},
	})
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := s.store.ListConversations(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"conversations": convs})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.GetConversation(r.Context(), id); err != nil {
		respondConversationError(w, err)
		return
	}
	turns, err := s.store.ListTurns(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"turns": turns})
}

type postMessageRequest struct {
	Text string `json:"text"`
}

type postMessageResponse struct {
	UserTurn      transcript.Turn `json:"user_turn"`
	AssistantTurn transcript.Turn `json:"assistant_turn"`
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req postMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "body with text is required")
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "text must not be empty")
		return
	}
	if _, err := s.store.GetConversation(r.Context(), id); err != nil {
		respondConversationError(w, err)
		return
	}

	userTurn, assistantTurn, err := s.advanceConversation(r, id, text)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, postMessageResponse{UserTurn: userTurn, AssistantTurn: assistantTurn})
}

// advanceConversation runs the shared record/engine/record path used by both
// the REST and websocket chat surfaces. Gateway failures become the apology
// message; the assistant turn is recorded either way.
func (s *Server) advanceConversation(r *http.Request, conversationID, text string) (transcript.Turn, transcript.Turn, error) {
	ctx := r.Context()
	history, err := s.store.ListTurns(ctx, conversationID)
	if err != nil {
		return transcript.Turn{}, transcript.Turn{}, err
	}
	userTurn, err := s.rec.RecordUserTurn(ctx, conversationID, text)
	if err != nil {
		return transcript.Turn{}, transcript.Turn{}, err
	}

	reply, err := s.engine.NextQuestion(ctx, history, text)
	if err != nil {
		if !completion.IsGatewayError(err) {
			return transcript.Turn{}, transcript.Turn{}, err
		}
		s.metrics.CountConversationEvent("gateway_apology")
		reply = interview.ApologyMessage
	}

	assistantTurn, err := s.rec.RecordAssistantTurn(ctx, conversationID, reply, userTurn.CreatedAt)
	if err != nil {
		return transcript.Turn{}, transcript.Turn{}, err
	}
	return userTurn, assistantTurn, nil
}

func (s *Server) handleChatInit(w http.ResponseWriter, r *http.Request) {
	sessionKey := strings.TrimSpace(r.URL.Query().Get("session_key"))
	if sessionKey == "" {
		respondError(w, http.StatusBadRequest, "missing_session_key", "query parameter session_key is required")
		return
	}
	conv, turns, err := interview.EnsureConversation(r.Context(), s.store, s.rec, sessionKey)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, conversationResponse{Conversation: conv, Turns: turns})
}

func (s *Server) handleResearchRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.GetConversation(r.Context(), id); err != nil {
		respondConversationError(w, err)
		return
	}
	turns, err := s.store.ListTurns(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	if err := s.runner.Start(id, turns); err != nil {
		if errors.Is(err, research.ErrRunInFlight) {
			respondError(w, http.StatusConflict, "run_in_flight", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "research_error", err.Error())
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]any{"status": research.RunStatusRunning})
}

func (s *Server) handleResearchStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.GetConversation(r.Context(), id); err != nil {
		respondConversationError(w, err)
		return
	}
	results, err := s.researchStore.ListResults(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	resp := map[string]any{"results": results}
	if state, ok := s.runner.Status(id); ok {
		resp["run"] = state
	}
	respondJSON(w, http.StatusOK, resp)
}

func respondConversationError(w http.ResponseWriter, err error) {
	if errors.Is(err, transcript.ErrConversationNotFound) {
		respondError(w, http.StatusNotFound, "conversation_not_found", err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, "store_error", err.Error())
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
