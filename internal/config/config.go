// Package config collects the service settings from environment
// variables.
package config

import (
	"github.com/caarlos0/env/v11"
)

// Settings holds everything the service reads from its environment.
// Defaults mirror a local development setup.
type Settings struct {
	Port       int    `env:"PORT"        envDefault:"8080"`
	MongoURI   string `env:"MONGO_URI"   envDefault:"mongodb://localhost:27017"`
	MongoDB    string `env:"MONGO_DB"    envDefault:"careTeam"`
	GinLogging string `env:"GIN_LOGGING" envDefault:"on"`
	StaticDir  string `env:"STATIC_DIR"  envDefault:"./static"`

	EmailProvider string `env:"EMAIL_PROVIDER" envDefault:"smtp"`
	SenderEmail   string `env:"SENDER_EMAIL"   envDefault:"noreply@contacts-app.com"`
	SenderName    string `env:"SENDER_NAME"    envDefault:"Contacts App"`
	SMTPServer    string `env:"SMTP_SERVER"    envDefault:"smtp.gmail.com"`
	SMTPPort      int    `env:"SMTP_PORT"      envDefault:"587"`
	SMTPUsername  string `env:"SMTP_USERNAME"`
	SMTPPassword  string `env:"SMTP_PASSWORD"`

	SMSProvider string `env:"SMS_PROVIDER" envDefault:"twilio"`
}

// Load parses the settings from the process environment.
func Load() (Settings, error) {
	var settings Settings
	err := env.Parse(&settings)
	return settings, err
}
