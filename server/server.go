package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amorlink/amorlink/config"
	"github.com/amorlink/amorlink/db"
	"github.com/amorlink/amorlink/mailingservices"
	"github.com/amorlink/amorlink/realtime"
	"github.com/amorlink/amorlink/services"
)

type Server struct {
	Config          *config.Config
	Mail            *mailingservices.Mailgun
	AuthRepository  db.AuthRepository
	AuthService     services.AuthService
	ChatService     services.ChatService
	CreditService   services.CreditService
	ModelService    services.ModelService
	MediaService    services.MediaService
	WhatsAppService services.WhatsAppService
	Hub             *realtime.Hub
}

func (s *Server) Start() {
	port := s.Config.Port
	if port == 0 {
		port = 5000
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.setupRouter(),
	}

	go func() {
		log.Printf("server running on port %d", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	log.Println("server exited")
}
