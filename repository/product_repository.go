package repository

import (
	"context"
	"errors"
	"fmt"

	"catalog-service/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProductRepository is the document-store backed ProductRepo.
type MongoProductRepository struct {
	collection *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{
		collection: db.Collection("products"),
	}
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoProductRepository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *MongoProductRepository) findOne(ctx context.Context, filter bson.M) (*models.Product, error) {
	var product models.Product
	err := r.collection.FindOne(ctx, filter).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo FindOne failed: %w", err)
	}
	return &product, nil
}

func (r *MongoProductRepository) Find(ctx context.Context, filter ListFilter) ([]*models.Product, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.IsActive != nil {
		query["is_active"] = *filter.IsActive
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		findOptions.SetLimit(int64(filter.Limit))
	}
	if filter.Skip > 0 {
		findOptions.SetSkip(int64(filter.Skip))
	}

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, fmt.Errorf("mongo Find failed: %w", err)
	}
	defer cursor.Close(ctx)

	products := []*models.Product{}
	if err = cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	_, err := r.collection.InsertOne(ctx, product)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	if err != nil {
		return fmt.Errorf("mongo InsertOne failed: %w", err)
	}
	return nil
}

func (r *MongoProductRepository) InsertMany(ctx context.Context, products []models.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, 0, len(products))
	for _, p := range products {
		docs = append(docs, p)
	}
	result, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return 0, fmt.Errorf("mongo InsertMany failed: %w: %v", ErrDuplicateKey, err)
		}
		return 0, fmt.Errorf("mongo InsertMany failed: %w", err)
	}
	return len(result.InsertedIDs), nil
}

func (r *MongoProductRepository) FindByIDAndUpdate(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var product models.Product
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(updates)}, opts).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrDuplicateKey
	}
	if err != nil {
		return nil, fmt.Errorf("mongo FindOneAndUpdate failed: %w", err)
	}
	return &product, nil
}

func (r *MongoProductRepository) FindByIDAndDelete(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo FindOneAndDelete failed: %w", err)
	}
	return &product, nil
}

func (r *MongoProductRepository) FindExistingSlugs(ctx context.Context, slugs []string) ([]string, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	opts := options.Find().SetProjection(bson.M{"slug": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"slug": bson.M{"$in": slugs}}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo Find slugs failed: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Slug string `bson:"slug"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode slugs: %w", err)
	}
	existing := make([]string, 0, len(rows))
	for _, row := range rows {
		existing = append(existing, row.Slug)
	}
	return existing, nil
}

// EnsureIndexes creates the unique slug index and the listing index.
func (r *MongoProductRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("slug_unique"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_at_desc"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("category_created_at"),
		},
	})
	if err != nil {
		return fmt.Errorf("create product indexes: %w", err)
	}
	return nil
}
