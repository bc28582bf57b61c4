package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var Conf *Config

type (
	Config struct {
		Debug    bool
		TestMode bool
		Env      string // DEV (local; default), TEST, QA, PROD
		Build    string
		WorkDir  string

		AppName   string
		Timezone  string
		TaxRate   float64
		PortalURL string
		SecretKey []byte

		DefaultFromEmail mail.Address
		PurchasingEmail  mail.Address
		SendgridApiKey   string
		RollbarToken     string

		PasswordResetTimeoutDelta time.Duration

		Server        ServerConfig
		Database      DatabaseConfig
		Session       SessionConfig
		Alerts        AlertsConfig
		Notifications NotificationsConfig
		SSO           SSOConfig
	}

	ServerConfig struct {
		Host string
		Addr string
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	SessionConfig struct {
		CookieName string
		TTL        time.Duration
	}

	AlertsConfig struct {
		LowStockThreshold int
	}

	NotificationsConfig struct {
		BadgeLimit        int
		PollInterval      time.Duration
		MaxStreamDuration time.Duration
	}

	SSOConfig struct {
		CodeTTL  time.Duration
		TokenTTL time.Duration
		Clients  []SSOClientConfig
	}

	// SSOClientConfig registers one portal allowed to exchange codes for tokens.
	SSOClientConfig struct {
		ID           string
		Name         string
		Secret       string
		RedirectURIs []string
	}
)

func (dc DatabaseConfig) Address() string {
	return dc.Host + ":" + dc.Port
}

func init() {
	Conf = loadConfig()
}

func loadConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "TelePoint Back Office")
	v.SetDefault("timezone", "Europe/Rome")
	v.SetDefault("taxRate", 0.22)
	v.SetDefault("portalURL", "http://localhost:3000")
	v.SetDefault("secretKey", "f1x&2a(pz)38y-6@qdmv^_h5s!jw*74bc+kg9e0ronu$tl%i")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("purchasingEmail", "purchasing@localhost")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.addr", ":8000")

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.name", "backoffice")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "backoffice")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("session.cookieName", "bo_session")
	v.SetDefault("session.ttl", 12*time.Hour)

	v.SetDefault("alerts.lowStockThreshold", 5)

	v.SetDefault("notifications.badgeLimit", 10)
	v.SetDefault("notifications.pollInterval", 5*time.Second)
	v.SetDefault("notifications.maxStreamDuration", 300*time.Second)

	v.SetDefault("sso.codeTTL", 5*time.Minute)
	v.SetDefault("sso.tokenTTL", time.Hour)

	env := os.Getenv("ENV")
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:    v.GetBool("debug"),
		TestMode: v.GetBool("testMode"),
		Env:      env,
		Build:    v.GetString("build"),
		WorkDir:  wd,

		AppName:   v.GetString("appName"),
		Timezone:  v.GetString("timezone"),
		TaxRate:   v.GetFloat64("taxRate"),
		PortalURL: v.GetString("portalURL"),
		SecretKey: []byte(v.GetString("secretKey")),

		DefaultFromEmail: mail.Address{Address: v.GetString("defaultFromEmail")},
		PurchasingEmail:  mail.Address{Address: v.GetString("purchasingEmail")},
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),

		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),

		Server: ServerConfig{
			Host: v.GetString("server.host"),
			Addr: v.GetString("server.addr"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Name:          v.GetString("database.name"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Session: SessionConfig{
			CookieName: v.GetString("session.cookieName"),
			TTL:        v.GetDuration("session.ttl"),
		},
		Alerts: AlertsConfig{
			LowStockThreshold: v.GetInt("alerts.lowStockThreshold"),
		},
		Notifications: NotificationsConfig{
			BadgeLimit:        v.GetInt("notifications.badgeLimit"),
			PollInterval:      v.GetDuration("notifications.pollInterval"),
			MaxStreamDuration: v.GetDuration("notifications.maxStreamDuration"),
		},
		SSO: SSOConfig{
			CodeTTL:  v.GetDuration("sso.codeTTL"),
			TokenTTL: v.GetDuration("sso.tokenTTL"),
		},
	}
	loadSSOClients(v, conf)
	return conf
}

// loadSSOClients reads the registered SSO client list. Clients are declared as a
// comma-separated list of IDs; per-client settings hang off "sso.client.<id>.*".
func loadSSOClients(v *viper.Viper, conf *Config) {
	for _, id := range strings.Split(v.GetString("sso.clients"), ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		prefix := "sso.client." + id + "."
		client := SSOClientConfig{
			ID:     id,
			Name:   v.GetString(prefix + "name"),
			Secret: v.GetString(prefix + "secret"),
		}
		for _, uri := range strings.Split(v.GetString(prefix+"redirectURIs"), ",") {
			if uri = strings.TrimSpace(uri); uri != "" {
				client.RedirectURIs = append(client.RedirectURIs, uri)
			}
		}
		conf.SSO.Clients = append(conf.SSO.Clients, client)
	}
}

// Location resolves the configured business timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Getwd returns the app's root directory.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd: %v", err)
	}
	return wd
}
