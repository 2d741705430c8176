package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/unglihq/ungli/internal/protocol"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsReadTimeout  = 120 * time.Second
)

func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conversationID := strings.TrimSpace(r.URL.Query().Get("conversation_id"))
	if conversationID == "" {
		respondError(w, http.StatusBadRequest, "missing_conversation_id", "query parameter conversation_id is required")
		return
	}
	if _, err := s.store.GetConversation(r.Context(), conversationID); err != nil {
		respondConversationError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.metrics.CountConversationEvent("ws_connected")
	if s.metrics != nil {
		s.metrics.ActiveConversations.Inc()
		defer s.metrics.ActiveConversations.Dec()
	}
	defer s.metrics.CountConversationEvent("ws_disconnected")

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		if msgType != websocket.TextMessage {
			continue
		}

		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			s.countWSMessage("inbound", "invalid")
			if !s.writeWS(conn, protocol.NewErrorEvent(conversationID, "invalid_client_message", err.Error())) {
				return
			}
			continue
		}
		user, ok := parsed.(protocol.UserMessage)
		if !ok || user.ConversationID != conversationID {
			if !s.writeWS(conn, protocol.NewErrorEvent(conversationID, "invalid_client_message", "conversation_id mismatch")) {
				return
			}
			continue
		}
		s.countWSMessage("inbound", string(protocol.TypeUserMessage))

		_, assistantTurn, err := s.advanceConversation(r, conversationID, strings.TrimSpace(user.Text))
		if err != nil {
			if !s.writeWS(conn, protocol.NewErrorEvent(conversationID, "store_error", err.Error())) {
				return
			}
			continue
		}
		if !s.writeWS(conn, protocol.NewAssistantMessage(conversationID, assistantTurn.Text, assistantTurn.CreatedAt)) {
			return
		}
		s.countWSMessage("outbound", string(protocol.TypeAssistantMessage))
	}
}

func (s *Server) writeWS(conn *websocket.Conn, msg any) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(msg) == nil
}

func (s *Server) countWSMessage(direction, msgType string) {
	if s.metrics == nil {
		return
	}
	s.metrics.WSMessages.WithLabelValues(direction, msgType).Inc()
}
