package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/amorlink/amorlink/models"
)

// authedRouter wires the handler behind a stub that injects the
// authenticated user id, the way Authorize does in production.
func authedRouter(userID uint, method, path string, handler gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userID", userID)
	})
	router.Handle(method, path, handler)
	return router
}

func TestHandleSendMessageSuccess(t *testing.T) {
	msg := &models.ChatMessage{MessageID: uuid.New(), SenderID: 1, Content: "oi"}
	s := &Server{ChatService: &fakeChatService{sendMsg: msg}}

	router := authedRouter(1, http.MethodPost, "/api/v1/chat/send", s.handleSendMessage())

	body, _ := json.Marshal(models.SendMessageRequest{RecipientID: 2, Content: "oi"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/send", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestHandleSendMessagePaymentRequired(t *testing.T) {
	s := &Server{ChatService: &fakeChatService{
		insufficient: &models.InsufficientCredits{
			CurrentCredits:  3,
			RequiredCredits: 10,
			ModelName:       "Luna",
			CreditsURL:      "https://app.example.com/credits",
		},
	}}

	router := authedRouter(1, http.MethodPost, "/api/v1/chat/send", s.handleSendMessage())

	body, _ := json.Marshal(models.SendMessageRequest{RecipientID: 2, Content: "oi"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/send", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want 402", w.Code)
	}

	var resp struct {
		InsufficientCredits bool   `json:"insufficient_credits"`
		CurrentCredits      int    `json:"current_credits"`
		RequiredCredits     int    `json:"required_credits"`
		ModelName           string `json:"model_name"`
		CreditsURL          string `json:"credits_url"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.InsufficientCredits || resp.CurrentCredits != 3 || resp.RequiredCredits != 10 {
		t.Errorf("detail = %+v", resp)
	}
	if resp.ModelName != "Luna" || resp.CreditsURL != "https://app.example.com/credits" {
		t.Errorf("detail = %+v", resp)
	}
}

func TestHandleSendMessageMissingFields(t *testing.T) {
	s := &Server{ChatService: &fakeChatService{}}

	router := authedRouter(1, http.MethodPost, "/api/v1/chat/send", s.handleSendMessage())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/send", bytes.NewReader([]byte(`{"recipient_id": 2}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleMarkReadInvalidPeer(t *testing.T) {
	s := &Server{ChatService: &fakeChatService{}}

	router := authedRouter(1, http.MethodPatch, "/api/v1/chat/read/:peerID", s.handleMarkRead())

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/chat/read/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
