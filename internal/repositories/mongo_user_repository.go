package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"loginpage/internal/models"
)

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(coll *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{coll: coll}
}

// EnsureIndexes creates the unique email index and the token lookup index.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys:    bson.D{{Key: "verificationToken", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("verification_token"),
		},
	})
	if err != nil {
		return fmt.Errorf("users ensure indexes: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("users insert: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.D{{Key: "type", Value: models.UserType}, {Key: "email", Value: email}})
}

func (r *MongoUserRepository) GetByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	return r.findOne(ctx, bson.D{{Key: "type", Value: models.UserType}, {Key: "verificationToken", Value: token}})
}

func (r *MongoUserRepository) Replace(ctx context.Context, user *models.User) error {
	filter := bson.D{{Key: "_id", Value: user.ID}, {Key: "type", Value: user.Type}}
	res, err := r.coll.ReplaceOne(ctx, filter, user)
	if err != nil {
		return fmt.Errorf("users replace: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) Ping(ctx context.Context) error {
	return r.coll.Database().RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.D) (*models.User, error) {
	var u models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("users find: %w", err)
	}
	return &u, nil
}
