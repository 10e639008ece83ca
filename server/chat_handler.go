package server

import (
	"net/http"
	"strconv"

	errs "github.com/amorlink/amorlink/errors"
	"github.com/amorlink/amorlink/models"
	"github.com/amorlink/amorlink/server/response"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleListConversations() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")

		conversations, apiErr := s.ChatService.ListConversations(userID)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}

		response.JSON(c, "", http.StatusOK, gin.H{"conversations": conversations}, nil)
	}
}

func (s *Server) handleGetConversation() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")
		peerID, err := paramUint(c, "peerID")
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("invalid peer id", http.StatusBadRequest))
			return
		}

		messages, apiErr := s.ChatService.GetConversation(userID, peerID)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}

		response.JSON(c, "", http.StatusOK, gin.H{"messages": messages}, nil)
	}
}

func (s *Server) handleSendMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")

		var req models.SendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "recipient and content are required", http.StatusBadRequest, nil, err)
			return
		}

		msg, insufficient, apiErr := s.ChatService.SendMessage(userID, req.RecipientID, req.Content, req.Type)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		if insufficient != nil {
			c.JSON(http.StatusPaymentRequired, gin.H{
				"success":              false,
				"message":              "insufficient credits",
				"insufficient_credits": true,
				"current_credits":      insufficient.CurrentCredits,
				"required_credits":     insufficient.RequiredCredits,
				"model_name":           insufficient.ModelName,
				"credits_url":          insufficient.CreditsURL,
			})
			return
		}

		response.JSON(c, "message sent successfully", http.StatusOK, gin.H{"message": msg}, nil)
	}
}

func (s *Server) handleMarkRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")
		peerID, err := paramUint(c, "peerID")
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("invalid peer id", http.StatusBadRequest))
			return
		}

		if apiErr := s.ChatService.MarkRead(userID, peerID); apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}

		response.JSON(c, "messages marked as read", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleGetModelPrice() gin.HandlerFunc {
	return func(c *gin.Context) {
		modelID, err := paramUint(c, "modelID")
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("invalid model id", http.StatusBadRequest))
			return
		}

		price, name, apiErr := s.ModelService.PriceForModel(modelID)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}

		response.JSON(c, "", http.StatusOK, gin.H{
			"model_id":          modelID,
			"model_name":        name,
			"price_per_message": price,
		}, nil)
	}
}

func (s *Server) handleChatUpload() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")

		fileHeader, err := c.FormFile("image")
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("missing or invalid file", http.StatusBadRequest))
			return
		}

		media, err := s.MediaService.UploadChatImage(fileHeader, userID)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.New("failed to upload file", http.StatusInternalServerError))
			return
		}

		response.JSON(c, "upload successful", http.StatusCreated, media, nil)
	}
}

func paramUint(c *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}
