package server

import (
	"math"
	"net/http"
	"strconv"

	errs "github.com/amorlink/amorlink/errors"
	"github.com/amorlink/amorlink/server/response"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleListModels() gin.HandlerFunc {
	return func(c *gin.Context) {
		onlineOnly := c.Query("online") == "true"
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))

		profiles, total, apiErr := s.ModelService.ListModels(onlineOnly, page, limit)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}

		if limit < 1 {
			limit = 12
		}
		response.JSON(c, "", http.StatusOK, gin.H{
			"models":       profiles,
			"total":        total,
			"total_pages":  int(math.Ceil(float64(total) / float64(limit))),
			"current_page": page,
		}, nil)
	}
}

func (s *Server) handleGetModel() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramUint(c, "id")
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("invalid model id", http.StatusBadRequest))
			return
		}

		profile, apiErr := s.ModelService.GetModel(id)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}

		response.JSON(c, "", http.StatusOK, gin.H{"model": profile}, nil)
	}
}
