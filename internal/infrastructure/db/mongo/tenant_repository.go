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

	"github.com/stackpeak/account-system/internal/core/domain"
)

const collectionTenants = "tenants"

type TenantRepository struct {
	coll *mongo.Collection
}

func NewTenantRepository(db *mongo.Database) *TenantRepository {
	return &TenantRepository{coll: db.Collection(collectionTenants)}
}

type mongoTenant struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Domain    string             `bson:"domain"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (mt *mongoTenant) toDomain() *domain.Tenant {
	return &domain.Tenant{
		ID:        mt.ID.Hex(),
		Name:      mt.Name,
		Domain:    mt.Domain,
		CreatedAt: mt.CreatedAt.UTC(),
	}
}

func (r *TenantRepository) Create(ctx context.Context, tenant *domain.Tenant) (*domain.Tenant, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoTenant{
		Name:      tenant.Name,
		Domain:    tenant.Domain,
		CreatedAt: time.Now().UTC(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.Conflict("tenant domain already exists")
		}
		return nil, fmt.Errorf("insert tenant: %w", err)
	}

	created := *tenant
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	created.CreatedAt = doc.CreatedAt
	return &created, nil
}

func (r *TenantRepository) FindByID(ctx context.Context, id string) (*domain.Tenant, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.NotFoundError("tenant not found")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mt mongoTenant
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFoundError("tenant not found")
		}
		return nil, fmt.Errorf("find tenant by id: %w", err)
	}
	return mt.toDomain(), nil
}

func (r *TenantRepository) FindByDomain(ctx context.Context, tenantDomain string) (*domain.Tenant, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mt mongoTenant
	if err := r.coll.FindOne(ctx, bson.M{"domain": tenantDomain}).Decode(&mt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFoundError("tenant not found")
		}
		return nil, fmt.Errorf("find tenant by domain: %w", err)
	}
	return mt.toDomain(), nil
}

func (r *TenantRepository) List(ctx context.Context) ([]domain.Tenant, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer cursor.Close(ctx)

	var tenants []domain.Tenant
	for cursor.Next(ctx) {
		var mt mongoTenant
		if err := cursor.Decode(&mt); err != nil {
			return nil, fmt.Errorf("decode tenant: %w", err)
		}
		tenants = append(tenants, *mt.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return tenants, nil
}

// EnsureTenantIndexes creates the unique domain index.
func EnsureTenantIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := db.Collection(collectionTenants).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "domain", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create tenant indexes: %w", err)
	}
	return nil
}
