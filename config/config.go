package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Debug                    bool   `envconfig:"debug"`
	Port                     int    `envconfig:"port"`
	Env                      string `envconfig:"env"`
	Host                     string `envconfig:"host"`
	BaseUrl                  string `envconfig:"base_url"`
	PostgresHost             string `envconfig:"postgres_host"`
	PostgresUser             string `envconfig:"postgres_user"`
	PostgresDB               string `envconfig:"postgres_db"`
	PostgresPort             int    `envconfig:"postgres_port"`
	PostgresPassword         string `envconfig:"postgres_password"`
	RedisAddr                string `envconfig:"redis_addr"`
	JWTSecret                string `envconfig:"jwt_secret"`
	MailgunApiKey            string `envconfig:"mg_public_api_key"`
	MgEmailFrom              string `envconfig:"email_from"`
	MgDomain                 string `envconfig:"mg_domain"`
	FrontendURL              string `envconfig:"frontend_url"`
	WhatsappWebhookURL       string `envconfig:"whatsapp_webhook_url"`
	WhatsappInstance         string `envconfig:"whatsapp_instance"`
	DefaultMessagePrice      int    `envconfig:"default_message_price"`
	AwsBucket                string `envconfig:"aws_bucket"`
	AccessControlAllowOrigin string `envconfig:"access_control_allow_origin"`
}

func Load() (*Config, error) {
	env := os.Getenv("GIN_MODE")
	if env != "release" {
		if err := godotenv.Load("./.env"); err != nil {
			log.Printf("couldn't load env vars: %v", err)
		}
	}

	c := &Config{}
	err := envconfig.Process("amorlink", c)
	if err != nil {
		return nil, err
	}
	if c.DefaultMessagePrice == 0 {
		c.DefaultMessagePrice = 5
	}
	return c, nil
}
