package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/stackpeak/account-system/internal/core/domain"
)

const collectionUsers = "users"

// UserRepository persists user records in MongoDB. Methods called with a
// context produced by InTransaction join that transaction's session.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(collectionUsers)}
}

type mongoTermination struct {
	ApprovedBy      primitive.ObjectID `bson:"approved_by"`
	TerminationDate time.Time          `bson:"termination_date"`
}

type mongoUser struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	UserName           string             `bson:"user_name"`
	Email              string             `bson:"email"`
	PasswordHash       string             `bson:"password_hash"`
	TenantID           primitive.ObjectID `bson:"tenant_id"`
	Role               string             `bson:"role"`
	IsTerminated       bool               `bson:"is_terminated"`
	TerminationDetails *mongoTermination  `bson:"termination_details,omitempty"`
	CreatedAt          time.Time          `bson:"created_at"`
}

func (mu *mongoUser) toDomain() *domain.User {
	u := &domain.User{
		ID:           mu.ID.Hex(),
		UserName:     mu.UserName,
		Email:        mu.Email,
		PasswordHash: mu.PasswordHash,
		TenantID:     mu.TenantID.Hex(),
		Role:         mu.Role,
		IsTerminated: mu.IsTerminated,
		CreatedAt:    mu.CreatedAt.UTC(),
	}
	if mu.TerminationDetails != nil {
		u.TerminationDetails = &domain.TerminationDetails{
			ApprovedBy:      mu.TerminationDetails.ApprovedBy.Hex(),
			TerminationDate: mu.TerminationDetails.TerminationDate.UTC(),
		}
	}
	return u
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	tenantID, err := primitive.ObjectIDFromHex(user.TenantID)
	if err != nil {
		return nil, domain.NotFoundError("tenant not found")
	}

	doc := mongoUser{
		UserName:     user.UserName,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		TenantID:     tenantID,
		Role:         user.Role,
		CreatedAt:    user.CreatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.Conflict("user email already exists")
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFoundError("user not found")
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.NotFoundError("user not found")
	}

	var mu mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFoundError("user not found")
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(tenantID)
	if err != nil {
		return nil, domain.NotFoundError("tenant not found")
	}

	cursor, err := r.coll.Find(ctx, bson.M{"tenant_id": oid})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []domain.User
	for cursor.Next(ctx) {
		var mu mongoUser
		if err := cursor.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, *mu.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateUserName renames the user. The filter re-checks tenant ownership
// and not-terminated at write time.
func (r *UserRepository) UpdateUserName(ctx context.Context, userID, tenantID, userName string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, domain.NotFoundError("user not found")
	}
	tenantOID, err := primitive.ObjectIDFromHex(tenantID)
	if err != nil {
		return false, domain.NotFoundError("tenant not found")
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{
			"_id":           oid,
			"tenant_id":     tenantOID,
			"is_terminated": bson.M{"$ne": true},
		},
		bson.M{"$set": bson.M{"user_name": userName}},
	)
	if err != nil {
		return false, fmt.Errorf("update user name: %w", err)
	}
	return res.MatchedCount == 1, nil
}

// CountActiveAdmins counts non-terminated ADMIN users in the tenant. Inside
// a transaction the count is taken from the same snapshot as the eventual
// write.
func (r *UserRepository) CountActiveAdmins(ctx context.Context, tenantID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(tenantID)
	if err != nil {
		return 0, domain.NotFoundError("tenant not found")
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{
		"tenant_id":     oid,
		"role":          domain.RoleAdmin,
		"is_terminated": bson.M{"$ne": true},
	})
	if err != nil {
		return 0, fmt.Errorf("count active admins: %w", err)
	}
	return n, nil
}

// Terminate flips is_terminated with a filter that re-checks tenant
// ownership and not-already-terminated at write time. A false return means
// the predicate rejected the write.
func (r *UserRepository) Terminate(ctx context.Context, userID, tenantID, approvedBy string, at time.Time) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, domain.NotFoundError("user not found")
	}
	tenantOID, err := primitive.ObjectIDFromHex(tenantID)
	if err != nil {
		return false, domain.NotFoundError("tenant not found")
	}
	actorOID, err := primitive.ObjectIDFromHex(approvedBy)
	if err != nil {
		return false, domain.NotFoundError("approving user not found")
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{
			"_id":           oid,
			"tenant_id":     tenantOID,
			"is_terminated": bson.M{"$ne": true},
		},
		bson.M{"$set": bson.M{
			"is_terminated": true,
			"termination_details": mongoTermination{
				ApprovedBy:      actorOID,
				TerminationDate: at,
			},
		}},
	)
	if err != nil {
		return false, fmt.Errorf("terminate user: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// InTransaction runs fn in a multi-document transaction with snapshot read
// concern and majority write concern, so the admin count and the
// termination write observe one consistent snapshot. Domain errors returned
// by fn abort the transaction and propagate unchanged; only errors the
// driver labels transient are retried.
func (r *UserRepository) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.coll.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, txnOpts)
	return err
}

// EnsureUserIndexes creates the unique email index and the tenant/role
// index backing admin counts.
func EnsureUserIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := db.Collection(collectionUsers).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "role", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}
