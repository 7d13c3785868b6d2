package store

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"gitlab.com/dirk.krummacker/careteam-service/internal/docid"
	"gitlab.com/dirk.krummacker/careteam-service/internal/model"
)

// Collection names within the service database.
const (
	usersCollection    = "users"
	messagesCollection = "messages"
)

// Connect dials the document store, verifies the connection with a ping
// and returns a handle to the service database.
func Connect(ctx context.Context, uri string, database string, log zerolog.Logger) (*mongo.Database, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, err
	}
	log.Info().Str("database", database).Msg("connected to document store")
	return client.Database(database), nil
}

// NewContactStore returns a ContactStore backed by the users collection.
func NewContactStore(db *mongo.Database) ContactStore {
	return &mongoContactStore{coll: db.Collection(usersCollection)}
}

// NewMessageStore returns a MessageStore backed by the messages
// collection.
func NewMessageStore(db *mongo.Database) MessageStore {
	return &mongoMessageStore{coll: db.Collection(messagesCollection)}
}

type mongoContactStore struct {
	coll *mongo.Collection
}

func (s *mongoContactStore) FindAll(ctx context.Context) ([]model.Contact, error) {
	return s.find(ctx, bson.D{})
}

func (s *mongoContactStore) Search(ctx context.Context, query string) ([]model.Contact, error) {
	if query == "" {
		return s.FindAll(ctx)
	}
	pattern := regexp.QuoteMeta(query)
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "first", Value: bson.D{{Key: "$regex", Value: pattern}, {Key: "$options", Value: "i"}}}},
		bson.D{{Key: "last", Value: bson.D{{Key: "$regex", Value: pattern}, {Key: "$options", Value: "i"}}}},
	}}}
	return s.find(ctx, filter)
}

func (s *mongoContactStore) FindByName(ctx context.Context, first string, last string) ([]model.Contact, error) {
	return s.find(ctx, bson.D{{Key: "first", Value: first}, {Key: "last", Value: last}})
}

func (s *mongoContactStore) find(ctx context.Context, filter bson.D) ([]model.Contact, error) {
	cursor, err := s.coll.Find(ctx, filter, options.Find().SetLimit(listLimit))
	if err != nil {
		return nil, err
	}
	contacts := []model.Contact{}
	if err := cursor.All(ctx, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (s *mongoContactStore) FindByID(ctx context.Context, id string) (*model.Contact, error) {
	var contact model.Contact
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&contact)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (s *mongoContactStore) Insert(ctx context.Context, contact *model.Contact) (string, error) {
	if contact.Id == "" {
		contact.Id = docid.New()
	}
	if _, err := s.coll.InsertOne(ctx, contact); err != nil {
		return "", err
	}
	return contact.Id, nil
}

func (s *mongoContactStore) Update(ctx context.Context, id string, contact *model.Contact) (int64, error) {
	// The _id is immutable; never carry it into the $set document.
	contact.Id = ""
	result, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: contact}})
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}

func (s *mongoContactStore) Delete(ctx context.Context, id string) (int64, error) {
	result, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (s *mongoContactStore) MarkDuplicate(ctx context.Context, id string) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "possible_duplicate", Value: true}}}})
	return err
}

type mongoMessageStore struct {
	coll *mongo.Collection
}

func (s *mongoMessageStore) Insert(ctx context.Context, message *model.Message) (string, error) {
	if message.Id == "" {
		message.Id = docid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	if _, err := s.coll.InsertOne(ctx, message); err != nil {
		return "", err
	}
	return message.Id, nil
}

func (s *mongoMessageStore) SetStatus(ctx context.Context, id string, status string, errText string, sentAt *time.Time) error {
	update := bson.D{{Key: "status", Value: status}, {Key: "error", Value: errText}}
	if sentAt != nil {
		update = append(update, bson.E{Key: "sent_at", Value: sentAt})
	}
	_, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: update}})
	return err
}

func (s *mongoMessageStore) FindByID(ctx context.Context, id string) (*model.Message, error) {
	var message model.Message
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&message)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &message, nil
}
