package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/astrocall/callgate/internal/domain"
)

type sessionDoc struct {
	ID        string     `bson:"_id"`
	UserID    string     `bson:"userId"`
	AstroID   string     `bson:"astroId"`
	Status    string     `bson:"status"`
	CreatedAt time.Time  `bson:"createdAt"`
	StartedAt *time.Time `bson:"startedAt,omitempty"`
	EndedAt   *time.Time `bson:"endedAt,omitempty"`
}

type astrologerDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Bio       string    `bson:"bio,omitempty"`
	Languages string    `bson:"languages,omitempty"`
	PhotoURL  string    `bson:"photoUrl,omitempty"`
	IsOnline  bool      `bson:"isOnline"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type reviewDoc struct {
	ID        string    `bson:"_id"`
	SessionID string    `bson:"sessionId"`
	UserID    string    `bson:"userId"`
	AstroID   string    `bson:"astroId"`
	Rating    int       `bson:"rating"`
	Comment   string    `bson:"comment,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
}

// Mongo bundles the per-collection stores behind one connection. Every
// read goes to the server; session status can change between any two
// requests, so nothing here caches.
type Mongo struct {
	Sessions    *MongoSessions
	Astrologers *MongoAstrologers
	Reviews     *MongoReviews
}

type MongoSessions struct{ coll *mongo.Collection }

type MongoAstrologers struct{ coll *mongo.Collection }

type MongoReviews struct{ coll *mongo.Collection }

// ConnectMongo dials the server, pings it, and returns the stores plus a
// disconnect func for shutdown.
func ConnectMongo(ctx context.Context, uri, database string) (*Mongo, func(context.Context) error, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("pinging mongo: %w", err)
	}

	db := client.Database(database)
	m := &Mongo{
		Sessions:    &MongoSessions{coll: db.Collection("sessions")},
		Astrologers: &MongoAstrologers{coll: db.Collection("astrologers")},
		Reviews:     &MongoReviews{coll: db.Collection("reviews")},
	}
	log.Info().Str("module", "store.mongo").Str("database", database).Msg("connected")
	return m, client.Disconnect, nil
}

func (m *MongoSessions) Create(ctx context.Context, s *domain.Session) error {
	if _, err := m.coll.InsertOne(ctx, toSessionDoc(s)); err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

func (m *MongoSessions) Get(ctx context.Context, id string) (*domain.Session, error) {
	var doc sessionDoc
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding session: %w", err)
	}
	return fromSessionDoc(&doc), nil
}

func (m *MongoSessions) Update(ctx context.Context, s *domain.Session) error {
	res, err := m.coll.UpdateOne(ctx, bson.M{"_id": s.ID}, bson.M{"$set": bson.M{
		"status":    string(s.Status),
		"startedAt": s.StartedAt,
		"endedAt":   s.EndedAt,
	}})
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoSessions) ListByParticipant(ctx context.Context, id domain.UserID) ([]*domain.Session, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"userId": string(id)},
		bson.M{"astroId": string(id)},
	}}
	cur, err := m.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	var docs []sessionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding sessions: %w", err)
	}
	out := make([]*domain.Session, 0, len(docs))
	for i := range docs {
		out = append(out, fromSessionDoc(&docs[i]))
	}
	return out, nil
}

func (m *MongoAstrologers) Upsert(ctx context.Context, a *domain.Astrologer) error {
	doc := astrologerDoc{
		ID:        string(a.ID),
		Name:      a.Name,
		Bio:       a.Bio,
		Languages: a.Languages,
		PhotoURL:  a.PhotoURL,
		IsOnline:  a.IsOnline,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upserting astrologer: %w", err)
	}
	return nil
}

func (m *MongoAstrologers) Get(ctx context.Context, id domain.UserID) (*domain.Astrologer, error) {
	var doc astrologerDoc
	err := m.coll.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding astrologer: %w", err)
	}
	return fromAstrologerDoc(&doc), nil
}

func (m *MongoAstrologers) ListOnline(ctx context.Context) ([]*domain.Astrologer, error) {
	cur, err := m.coll.Find(ctx, bson.M{"isOnline": true})
	if err != nil {
		return nil, fmt.Errorf("listing astrologers: %w", err)
	}
	var docs []astrologerDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding astrologers: %w", err)
	}
	out := make([]*domain.Astrologer, 0, len(docs))
	for i := range docs {
		out = append(out, fromAstrologerDoc(&docs[i]))
	}
	return out, nil
}

func (m *MongoAstrologers) SetPresence(ctx context.Context, id domain.UserID, online bool, now time.Time) error {
	res, err := m.coll.UpdateOne(ctx, bson.M{"_id": string(id)}, bson.M{"$set": bson.M{
		"isOnline":  online,
		"updatedAt": now,
	}})
	if err != nil {
		return fmt.Errorf("setting presence: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoReviews) Create(ctx context.Context, r *domain.Review) error {
	doc := reviewDoc{
		ID:        r.ID,
		SessionID: r.SessionID,
		UserID:    string(r.UserID),
		AstroID:   string(r.AstroID),
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
	if _, err := m.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("inserting review: %w", err)
	}
	return nil
}

func (m *MongoReviews) ListByAstrologer(ctx context.Context, id domain.UserID) ([]*domain.Review, error) {
	cur, err := m.coll.Find(ctx, bson.M{"astroId": string(id)}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	var docs []reviewDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding reviews: %w", err)
	}
	out := make([]*domain.Review, 0, len(docs))
	for i := range docs {
		d := &docs[i]
		out = append(out, &domain.Review{
			ID:        d.ID,
			SessionID: d.SessionID,
			UserID:    domain.UserID(d.UserID),
			AstroID:   domain.UserID(d.AstroID),
			Rating:    d.Rating,
			Comment:   d.Comment,
			CreatedAt: d.CreatedAt,
		})
	}
	return out, nil
}

func toSessionDoc(s *domain.Session) *sessionDoc {
	return &sessionDoc{
		ID:        s.ID,
		UserID:    string(s.UserID),
		AstroID:   string(s.AstroID),
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt,
		StartedAt: s.StartedAt,
		EndedAt:   s.EndedAt,
	}
}

func fromSessionDoc(d *sessionDoc) *domain.Session {
	return &domain.Session{
		ID:        d.ID,
		UserID:    domain.UserID(d.UserID),
		AstroID:   domain.UserID(d.AstroID),
		Status:    domain.SessionStatus(d.Status),
		CreatedAt: d.CreatedAt,
		StartedAt: d.StartedAt,
		EndedAt:   d.EndedAt,
	}
}

func fromAstrologerDoc(d *astrologerDoc) *domain.Astrologer {
	return &domain.Astrologer{
		ID:        domain.UserID(d.ID),
		Name:      d.Name,
		Bio:       d.Bio,
		Languages: d.Languages,
		PhotoURL:  d.PhotoURL,
		IsOnline:  d.IsOnline,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
