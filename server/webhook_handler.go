package server

import (
	"log"
	"net/http"

	"github.com/amorlink/amorlink/models"
	"github.com/amorlink/amorlink/server/response"
	"github.com/gin-gonic/gin"
)

// handleWhatsAppWebhook receives bridge events: a model answering from
// WhatsApp. Discarded events are acknowledged with 200 so the bridge stops
// retrying them.
func (s *Server) handleWhatsAppWebhook() gin.HandlerFunc {
	return func(c *gin.Context) {
		var event models.BridgeEvent
		if err := c.ShouldBindJSON(&event); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		inbound, apiErr := s.WhatsAppService.ClassifyInbound(c.Request.Context(), &event)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		if inbound == nil {
			response.JSON(c, "event ignored", http.StatusOK, nil, nil)
			return
		}

		msg, apiErr := s.ChatService.DeliverInbound(inbound.Model.ID, inbound.Client.ID, inbound.Content)
		if apiErr != nil {
			// free the dedup marker so the bridge's retry is not dropped
			s.WhatsAppService.ReleaseInbound(c.Request.Context(), inbound.BridgeMessageID)
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}

		log.Printf("bridge message %s delivered from model %d to client %d", msg.MessageID, inbound.Model.ID, inbound.Client.ID)
		response.JSON(c, "message processed successfully", http.StatusOK, gin.H{
			"message_id": msg.MessageID,
			"client_id":  inbound.Client.ID,
			"model_id":   inbound.Model.ID,
		}, nil)
	}
}

func (s *Server) handlePaymentWebhook() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.PaymentWebhookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		txn, apiErr := s.CreditService.ProcessPaymentWebhook(&req)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}

		response.JSON(c, "webhook processed", http.StatusOK, gin.H{
			"transaction_id": txn.TransactionID,
			"status":         txn.Status,
		}, nil)
	}
}
