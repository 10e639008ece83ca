package server

import (
	"fmt"
	"net/http"
	"os"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func (s *Server) setupRouter() *gin.Engine {
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "test" {
		r := gin.New()
		s.defineRoutes(r)
		return r
	}

	r := gin.New()
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.MaxMultipartMemory = 32 << 20
	s.defineRoutes(r)

	return r
}

func (s *Server) defineRoutes(router *gin.Engine) {
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{Rate: time.Minute, Limit: 60})
	limitRate := limitWebhookRate(store)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "amorlink API is running",
			"version": "1.0.0",
		})
	})

	router.GET("/ws", s.handleWS())

	webhooks := router.Group("/api/webhook")
	webhooks.Use(limitRate)
	webhooks.POST("/whatsapp", s.handleWhatsAppWebhook())
	webhooks.POST("/payment", s.handlePaymentWebhook())

	apirouter := router.Group("/api/v1")
	apirouter.POST("/auth/signup", limitRate, s.handleSignup())
	apirouter.POST("/auth/login", limitRate, s.handleLogin())
	apirouter.POST("/auth/set-password/:token", limitRate, s.handleSetPassword())
	apirouter.GET("/models", s.handleListModels())
	apirouter.GET("/models/:id", s.handleGetModel())
	apirouter.GET("/chat/model-price/:modelID", s.handleGetModelPrice())

	authorized := apirouter.Group("/")
	authorized.Use(s.Authorize())
	authorized.GET("/auth/logout", s.handleLogout())
	authorized.GET("/me", s.handleShowProfile())
	authorized.GET("/chat/conversations", s.handleListConversations())
	authorized.GET("/chat/conversation/:peerID", s.handleGetConversation())
	authorized.POST("/chat/send", s.handleSendMessage())
	authorized.PATCH("/chat/read/:peerID", s.handleMarkRead())
	authorized.POST("/chat/upload", s.handleChatUpload())
	authorized.GET("/credits/packages", s.handleCreditPackages())
	authorized.POST("/credits/purchase", s.handlePurchaseCredits())
	authorized.GET("/credits/transactions", s.handleListTransactions())
	authorized.GET("/credits/balance", s.handleCreditBalance())
}
