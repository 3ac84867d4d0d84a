package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything read from the environment at startup.
type Config struct {
	Port      string
	MongoURI  string
	MongoDB   string
	RedisAddr string
	JWTSecret []byte
	UploadDir string
}

// Load reads .env (when present) and the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	cfg := Config{
		Port:      getenv("PORT", ":8080"),
		MongoURI:  getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:   getenv("MONGO_DB", "sen_panier_bio"),
		RedisAddr: getenv("REDIS_ADDR", "localhost:6379"),
		JWTSecret: []byte(getenv("JWT_SECRET", "")),
		UploadDir: getenv("UPLOAD_DIR", "./static/uploads"),
	}

	if len(cfg.JWTSecret) == 0 {
		log.Fatal("JWT_SECRET must be set")
	}
	if cfg.Port[0] != ':' {
		cfg.Port = ":" + cfg.Port
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
