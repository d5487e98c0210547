package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kat-co/vala"
	"github.com/spf13/viper"
)

type Config struct {
	Debug     bool
	TestMode  bool
	Env       string // DEV (default), TEST, QA, PROD
	Build     string
	AppName   string
	SecretKey string

	DefaultFromEmail mail.Address
	SendgridAPIKey   string
	RollbarToken     string

	Server struct {
		Host               string
		Port               int
		SessionCookie      string
		JWTExpirationDelta time.Duration
		ShutdownTimeout    time.Duration
	}

	// Database is the managed backend this application delegates all
	// persistence to. URL is the backend endpoint; Project is the
	// backend-side database name.
	Database struct {
		URL     string
		Project string
	}

	Sessions struct {
		Addr     string
		Password string
	}
}

func (conf *Config) ServerAddress() string {
	return conf.Server.Host + ":" + strconv.Itoa(conf.Server.Port)
}

// CheckBackend reports whether the settings needed to reach the backend are
// present. It is called on first backend use rather than at startup so that a
// misconfigured build only fails the first real call.
func (conf *Config) CheckBackend() error {
	return vala.BeginValidation().Validate(
		vala.StringNotEmpty(conf.Database.URL, "database.url"),
		vala.StringNotEmpty(conf.Database.Project, "database.project"),
	).Check()
}

// NewConfig loads configuration from config/.env.<env> (if present) and the
// environment, on top of defaults.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "GrammarLab")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "x2mp)3qr&c8dkye5u+9h$7=(fz!w4v#n6s_gt^0ba1lj5oi8em")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.sessionCookie", "glab_session")
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.shutdownTimeout", 20*time.Second)
	v.SetDefault("database.url", "")
	v.SetDefault("database.project", "")
	v.SetDefault("sessions.addr", "")
	v.SetDefault("sessions.password", "")

	env := os.Getenv("ENV")
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:     v.GetBool("debug"),
		TestMode:  v.GetBool("testMode"),
		Env:       env,
		Build:     v.GetString("build"),
		AppName:   v.GetString("appName"),
		SecretKey: v.GetString("secretKey"),
		DefaultFromEmail: mail.Address{
			Name:    v.GetString("appName"),
			Address: v.GetString("defaultFromEmail"),
		},
		SendgridAPIKey: v.GetString("sendgridApiKey"),
		RollbarToken:   v.GetString("rollbarToken"),
	}
	conf.Server.Host = v.GetString("server.host")
	conf.Server.Port = v.GetInt("server.port")
	conf.Server.SessionCookie = v.GetString("server.sessionCookie")
	conf.Server.JWTExpirationDelta = v.GetDuration("server.jwtExpirationDelta")
	conf.Server.ShutdownTimeout = v.GetDuration("server.shutdownTimeout")
	conf.Database.URL = v.GetString("database.url")
	conf.Database.Project = v.GetString("database.project")
	conf.Sessions.Addr = v.GetString("sessions.addr")
	conf.Sessions.Password = v.GetString("sessions.password")
	return conf
}
