package server

import (
	"math"
	"net/http"
	"strconv"

	"github.com/amorlink/amorlink/models"
	"github.com/amorlink/amorlink/server/response"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleCreditPackages() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.JSON(c, "", http.StatusOK, gin.H{"packages": s.CreditService.Packages()}, nil)
	}
}

func (s *Server) handlePurchaseCredits() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")

		var req models.PurchaseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		txn, apiErr := s.CreditService.Purchase(userID, &req)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}

		response.JSON(c, "transaction created, awaiting payment confirmation", http.StatusCreated, gin.H{"transaction": txn}, nil)
	}
}

func (s *Server) handleListTransactions() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

		txns, total, apiErr := s.CreditService.Transactions(userID, page, limit)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}

		if limit < 1 {
			limit = 10
		}
		response.JSON(c, "", http.StatusOK, gin.H{
			"transactions": txns,
			"total":        total,
			"total_pages":  int(math.Ceil(float64(total) / float64(limit))),
			"current_page": page,
		}, nil)
	}
}

func (s *Server) handleCreditBalance() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")

		credits, apiErr := s.CreditService.Balance(userID)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}

		response.JSON(c, "", http.StatusOK, gin.H{"credits": credits}, nil)
	}
}
