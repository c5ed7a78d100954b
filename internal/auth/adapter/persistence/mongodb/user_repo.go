package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/auth/domain/repository"
	"showcase-platform/internal/auth/usecase"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAuthRepository implements the AuthRepository interface using MongoDB
type MongoAuthRepository struct {
	db                 *mongo.Database
	usersCollection    *mongo.Collection
	sessionsCollection *mongo.Collection
}

// NewMongoAuthRepository creates a new MongoDB auth repository
func NewMongoAuthRepository(db *mongo.Database) (*MongoAuthRepository, error) {
	repo := &MongoAuthRepository{
		db:                 db,
		usersCollection:    db.Collection("users"),
		sessionsCollection: db.Collection("sessions"),
	}

	ctx := context.Background()

	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email"),
		},
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_id"),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("uniq_username"),
		},
		{
			Keys: bson.D{{Key: "roles", Value: 1}, {Key: "status", Value: 1}},
		},
	}
	if _, err := repo.usersCollection.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return nil, fmt.Errorf("failed to create user indexes: %w", err)
	}

	sessionIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			// Mongo removes sessions once expires_at has passed.
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
	if _, err := repo.sessionsCollection.Indexes().CreateMany(ctx, sessionIndexes); err != nil {
		return nil, fmt.Errorf("failed to create session indexes: %w", err)
	}

	return repo, nil
}

func duplicateKeyError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "username") {
		return usecase.ErrUsernameTaken
	}
	return usecase.ErrEmailTaken
}

// CreateUser creates a new user in the database
func (r *MongoAuthRepository) CreateUser(ctx context.Context, user *model.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}
	if user.ID == "" {
		user.ID = primitive.NewObjectID().Hex()
	}

	res, err := r.usersCollection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateKeyError(err)
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ObjectID = oid
	}
	return nil
}

func (r *MongoAuthRepository) findUser(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	if err := r.usersCollection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	if user.ID == "" && !user.ObjectID.IsZero() {
		user.ID = user.ObjectID.Hex()
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (r *MongoAuthRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if email == "" {
		return nil, errors.New("email cannot be empty")
	}
	return r.findUser(ctx, bson.M{"email": strings.ToLower(email)})
}

// GetUserByID retrieves a user by ID
func (r *MongoAuthRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, errors.New("user ID cannot be empty")
	}
	return r.findUser(ctx, bson.M{"id": id})
}

// ListUsers returns users ordered by creation time.
func (r *MongoAuthRepository) ListUsers(ctx context.Context, filter repository.UserFilter) ([]*model.User, error) {
	query := bson.M{}
	if filter.Role != "" {
		query["roles"] = filter.Role
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}
	if filter.Offset > 0 {
		opts.SetSkip(filter.Offset)
	}

	cursor, err := r.usersCollection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := make([]*model.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser replaces the stored user document.
func (r *MongoAuthRepository) UpdateUser(ctx context.Context, user *model.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}
	update := bson.M{"$set": bson.M{
		"email":         user.Email,
		"username":      user.Username,
		"password_hash": user.PasswordHash,
		"roles":         user.Roles,
		"status":        user.Status,
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"last_login":    user.LastLogin,
		"settings":      user.Settings,
		"cognito_id":    user.CognitoID,
		"updated_at":    user.UpdatedAt,
	}}
	res, err := r.usersCollection.UpdateOne(ctx, bson.M{"id": user.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateKeyError(err)
		}
		return err
	}
	if res.MatchedCount == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// DeleteUser removes a user by ID.
func (r *MongoAuthRepository) DeleteUser(ctx context.Context, id string) error {
	res, err := r.usersCollection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// CreateSession creates a new session
func (r *MongoAuthRepository) CreateSession(ctx context.Context, session *model.Session) error {
	if session == nil || session.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	_, err := r.sessionsCollection.InsertOne(ctx, session)
	return err
}

// GetSessionByID retrieves a session by ID
func (r *MongoAuthRepository) GetSessionByID(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := r.sessionsCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// UpdateSession stores activity and expiry changes.
func (r *MongoAuthRepository) UpdateSession(ctx context.Context, session *model.Session) error {
	update := bson.M{"$set": bson.M{
		"expires_at":    session.ExpiresAt,
		"last_activity": session.LastActivity,
		"is_active":     session.IsActive,
	}}
	res, err := r.sessionsCollection.UpdateOne(ctx, bson.M{"_id": session.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return usecase.ErrSessionNotFound
	}
	return nil
}

// DeleteSession deletes a session by ID
func (r *MongoAuthRepository) DeleteSession(ctx context.Context, id string) error {
	result, err := r.sessionsCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return usecase.ErrSessionNotFound
	}
	return nil
}

// DeleteUserSessions ends every session of a user.
func (r *MongoAuthRepository) DeleteUserSessions(ctx context.Context, userID string) error {
	_, err := r.sessionsCollection.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}

var _ repository.AuthRepository = (*MongoAuthRepository)(nil)
