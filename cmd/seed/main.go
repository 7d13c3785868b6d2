package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/dirk.krummacker/careteam-service/internal/config"
	"gitlab.com/dirk.krummacker/careteam-service/internal/model"
	"gitlab.com/dirk.krummacker/careteam-service/internal/store"
)

// Usage example on the command line:
// > MONGO_URI=mongodb://localhost:27017 go run main.go
func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	settings, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load settings")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := store.Connect(ctx, settings.MongoURI, settings.MongoDB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to document store")
	}
	contacts := store.NewContactStore(db)

	// Initial test data. A contact is skipped if one with the same name is
	// already present.
	initialContacts := []model.Contact{
		{
			First: "Dirk",
			Last:  "Krummacker",
			Email: []string{"dirk.krummacker@example.com"},
			Phone: []string{"+420 123 456 789"},
		},
		{
			First: "Pavla",
			Last:  "Krummackerova",
			Email: []string{"pavla.krummackerova@example.com"},
			Phone: []string{"+420 023 454 244"},
		},
		{
			First: "Adam",
			Last:  "Krummacker",
			Phone: []string{"+420 333 555 777"},
		},
		{
			First: "David",
			Last:  "Krummacker",
			Phone: []string{"+420 333 555 777"},
		},
	}
	for _, contact := range initialContacts {
		if failures := contact.Validate(); len(failures) > 0 {
			log.Fatal().Interface("details", failures).Msg("seed data does not validate")
		}
		existing, err := contacts.FindByName(ctx, contact.First, contact.Last)
		if err != nil {
			log.Fatal().Err(err).Msg("could not check for existing contact")
		}
		if len(existing) > 0 {
			log.Info().Str("name", contact.FullName()).Msg("contact already present")
			continue
		}
		id, err := contacts.Insert(ctx, &contact)
		if err != nil {
			log.Fatal().Err(err).Msg("could not insert contact")
		}
		log.Info().Str("name", contact.FullName()).Str("id", id).Msg("contact created")
	}
}
