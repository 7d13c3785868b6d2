package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/dirk.krummacker/careteam-service/internal/config"
	"gitlab.com/dirk.krummacker/careteam-service/internal/messaging"
	"gitlab.com/dirk.krummacker/careteam-service/internal/service"
	"gitlab.com/dirk.krummacker/careteam-service/internal/store"
)

// Usage example on the command line:
// > PORT=8080 MONGO_URI=mongodb://localhost:27017 GIN_MODE=release GIN_LOGGING=OFF go run main.go
func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	settings, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load settings")
	}

	db, err := store.Connect(context.Background(), settings.MongoURI, settings.MongoDB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to document store")
	}

	service.SetupLogger(log)
	service.SetupStores(store.NewContactStore(db), store.NewMessageStore(db))
	service.SetupMessaging(
		messaging.NewEmailMessenger(settings, log),
		&messaging.SMSMessenger{Provider: settings.SMSProvider},
	)
	router := service.SetupHttpRouter(settings)

	log.Info().Int("port", settings.Port).Msg("starting contacts service")
	if err := router.Run(fmt.Sprintf(":%d", settings.Port)); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
