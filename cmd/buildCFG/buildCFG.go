package buildCFG

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
)

type ServerConfig struct {
	Port      string
	JWTSecret string
}

type RabbitConfig struct {
	Url      string
	Exchange string
	Queue    string
}

type SMTPConfig struct {
	Host string
	Port int
	From string
	Pass string
}

type StorageConfig struct {
	URL    string
	APIKey string
	Bucket string
}

// env wins over the yaml value so secrets stay out of the file.
func fromEnv(envKey, fallback string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return fallback
}

func BuildServerConfig(cfg *config.Config, log *zerolog.Logger) ServerConfig {
	port := cfg.GetString("server.port")
	if port == "" {
		port = "8080"
		log.Warn().Msg("server.port not set, defaulting to 8080")
	}
	secret := fromEnv("JWT_SECRET", cfg.GetString("server.jwt_secret"))
	if secret == "" {
		log.Warn().Msg("JWT secret not set, bearer tokens will not verify")
	}
	return ServerConfig{Port: port, JWTSecret: secret}
}

func BuildDBConfig(cfg *config.Config, log *zerolog.Logger) (string, []string, *dbpg.Options, error) {
	host := cfg.GetString("db.host")
	port := cfg.GetInt("db.port")
	user := cfg.GetString("db.user")
	pass := fromEnv("DB_PASSWORD", cfg.GetString("db.password"))
	name := cfg.GetString("db.name")
	ssl := cfg.GetString("db.sslmode")

	if host == "" || user == "" || name == "" {
		return "", nil, nil, fmt.Errorf("db.host, db.user and db.name are required")
	}
	if port == 0 {
		port = 5432
	}
	if ssl == "" {
		ssl = "disable"
	}

	masterDSN := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, pass, name, ssl,
	)

	var slaveDSNs []string
	for _, slaveHost := range cfg.GetStringSlice("db.slaves") {
		slaveDSNs = append(slaveDSNs, fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			slaveHost, port, user, pass, name, ssl,
		))
	}

	opts := &dbpg.Options{
		MaxOpenConns: cfg.GetInt("db.max_open_conns"),
		MaxIdleConns: cfg.GetInt("db.max_idle_conns"),
	}

	log.Info().Str("host", host).Str("db", name).Int("slaves", len(slaveDSNs)).Msg("database config loaded")
	return masterDSN, slaveDSNs, opts, nil
}

func BuildRabbitConfig(cfg *config.Config, log *zerolog.Logger) (RabbitConfig, error) {
	rc := RabbitConfig{
		Url:      fromEnv("RABBIT_URL", cfg.GetString("rabbit.url")),
		Exchange: cfg.GetString("rabbit.exchange"),
		Queue:    cfg.GetString("rabbit.queue"),
	}
	if rc.Url == "" {
		return rc, fmt.Errorf("rabbit.url is required")
	}
	if rc.Exchange == "" {
		rc.Exchange = "payment.expiry"
	}
	if rc.Queue == "" {
		rc.Queue = "payment.expiry.queue"
	}
	log.Info().Str("exchange", rc.Exchange).Str("queue", rc.Queue).Msg("rabbit config loaded")
	return rc, nil
}

func BuildSMTPConfig(cfg *config.Config, log *zerolog.Logger) SMTPConfig {
	sc := SMTPConfig{
		Host: cfg.GetString("smtp.host"),
		Port: cfg.GetInt("smtp.port"),
		From: cfg.GetString("smtp.from"),
		Pass: fromEnv("SMTP_PASSWORD", cfg.GetString("smtp.password")),
	}
	if sc.Port == 0 {
		sc.Port = 587
	}
	if sc.Host == "" {
		log.Warn().Msg("smtp.host not set, emails will fail")
	}
	return sc
}

func BuildStorageConfig(cfg *config.Config, log *zerolog.Logger) StorageConfig {
	st := StorageConfig{
		URL:    cfg.GetString("storage.url"),
		APIKey: fromEnv("STORAGE_API_KEY", cfg.GetString("storage.api_key")),
		Bucket: cfg.GetString("storage.bucket"),
	}
	if st.Bucket == "" {
		st.Bucket = "avatars"
	}
	if st.URL == "" {
		log.Warn().Msg("storage.url not set, avatar uploads will fail")
	}
	return st
}
