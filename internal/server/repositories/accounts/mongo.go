package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionName is the Mongo collection holding accounts.
const CollectionName = "accounts"

type accountDoc struct {
	ID           string    `bson:"_id"`
	UserName     string    `bson:"username"`
	PasswordHash string    `bson:"password_hash"`
	AnswerHashes []string  `bson:"answer_hashes"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (d *accountDoc) toModel() (*models.Account, error) {
	if len(d.AnswerHashes) != common.SecurityAnswerCount {
		return nil, fmt.Errorf("account %s: expected 3 answer hashes, got %d", d.ID, len(d.AnswerHashes))
	}
	a := &models.Account{ID: d.ID, UserName: d.UserName, PasswordHash: d.PasswordHash, CreatedAt: d.CreatedAt}
	copy(a.AnswerHashes[:], d.AnswerHashes)
	return a, nil
}

// MongoRepository keeps accounts in a collection with a unique index on
// username (see repomanager).
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll}
}

func (r *MongoRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	prepare(account)
	// Mongo stores milliseconds.
	account.CreatedAt = account.CreatedAt.Truncate(time.Millisecond)

	doc := accountDoc{
		ID:           account.ID,
		UserName:     account.UserName,
		PasswordHash: account.PasswordHash,
		AnswerHashes: account.AnswerHashes[:],
		CreatedAt:    account.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, common.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}

func (r *MongoRepository) FindByUserName(ctx context.Context, userName string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"username": userName})
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.Account, error) {
	var doc accountDoc
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc.toModel()
}
