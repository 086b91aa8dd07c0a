package items

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the Mongo collection holding vault items.
const CollectionName = "items"

type itemDoc struct {
	ID         string    `bson:"_id"`
	OwnerID    string    `bson:"owner_id"`
	TopicName  string    `bson:"topic_name"`
	Envelope   string    `bson:"envelope,omitempty"`
	IsFavorite bool      `bson:"is_favorite"`
	CreatedAt  time.Time `bson:"created_at"`
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll}
}

func (r *MongoRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	prepare(item)
	item.CreatedAt = item.CreatedAt.Truncate(time.Millisecond)

	doc := itemDoc{
		ID:         item.ID,
		OwnerID:    item.OwnerID,
		TopicName:  item.TopicName,
		Envelope:   item.Envelope.String(),
		IsFavorite: item.IsFavorite,
		CreatedAt:  item.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*models.Item, error) {
	var doc itemDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	env, err := cryptox.ParseEnvelope(doc.Envelope)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", doc.ID, err)
	}
	return &models.Item{
		ID:         doc.ID,
		OwnerID:    doc.OwnerID,
		TopicName:  doc.TopicName,
		Envelope:   env,
		IsFavorite: doc.IsFavorite,
		CreatedAt:  doc.CreatedAt,
	}, nil
}

func (r *MongoRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Item, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetProjection(bson.M{"envelope": 0})

	cur, err := r.coll.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to select items: %w", err)
	}
	defer cur.Close(ctx)

	var result []*models.Item
	for cur.Next(ctx) {
		var doc itemDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		result = append(result, &models.Item{
			ID:         doc.ID,
			OwnerID:    doc.OwnerID,
			TopicName:  doc.TopicName,
			IsFavorite: doc.IsFavorite,
			CreatedAt:  doc.CreatedAt,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *MongoRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return res.DeletedCount == 1, nil
}
