package main

import (
	"log"

	"github.com/go-redis/redis/v8"

	"github.com/amorlink/amorlink/config"
	"github.com/amorlink/amorlink/db"
	"github.com/amorlink/amorlink/mailingservices"
	"github.com/amorlink/amorlink/realtime"
	"github.com/amorlink/amorlink/server"
	"github.com/amorlink/amorlink/services"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	mailgunClient := &mailingservices.Mailgun{}
	mailgunClient.Init()

	gormDB := db.GetDB(conf)

	var rdb *redis.Client
	if conf.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: conf.RedisAddr})
	}

	authRepo := db.NewAuthRepo(gormDB)
	chatRepo := db.NewChatRepo(gormDB)
	modelRepo := db.NewModelRepo(gormDB)
	transactionRepo := db.NewTransactionRepo(gormDB)
	mediaRepo := db.NewMediaRepo(gormDB)

	hub := realtime.NewHub()

	authService := services.NewAuthService(authRepo, mailgunClient, conf)
	modelService := services.NewModelService(modelRepo, conf)
	whatsappService := services.NewWhatsAppService(authRepo, rdb, conf)
	chatService := services.NewChatService(chatRepo, authRepo, modelService, hub, whatsappService, conf)
	creditService := services.NewCreditService(transactionRepo, authRepo, conf)
	mediaService := services.NewMediaService(mediaRepo, conf)

	s := &server.Server{
		Config:          conf,
		Mail:            mailgunClient,
		AuthRepository:  authRepo,
		AuthService:     authService,
		ChatService:     chatService,
		CreditService:   creditService,
		ModelService:    modelService,
		MediaService:    mediaService,
		WhatsAppService: whatsappService,
		Hub:             hub,
	}

	s.Start()
}
