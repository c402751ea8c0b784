package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"catalog-service/database"
	"catalog-service/models"
	awspkg "catalog-service/pkg/aws"
	"catalog-service/repository"
	"catalog-service/services"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
)

type productSource interface {
	Find(ctx context.Context, filter repository.ListFilter) ([]*models.Product, error)
}

type productSink interface {
	InsertMany(ctx context.Context, products []models.Product) (int, error)
}

func main() {
	var mongoURI, dbName, table, region, endpoint string
	var batch int
	flag.StringVar(&mongoURI, "mongo", os.Getenv("MONGO_URI"), "MongoDB URI")
	flag.StringVar(&dbName, "db", os.Getenv("MONGO_DB_NAME"), "MongoDB database name")
	flag.StringVar(&table, "table", os.Getenv("DDB_TABLE_PRODUCTS"), "DynamoDB table name")
	flag.StringVar(&region, "region", os.Getenv("AWS_REGION"), "AWS region")
	flag.StringVar(&endpoint, "endpoint", os.Getenv("AWS_ENDPOINT"), "AWS endpoint override")
	flag.IntVar(&batch, "batch", 500, "Products per batch")
	flag.Parse()

	if mongoURI == "" || dbName == "" {
		log.Fatal("MONGO_URI and MONGO_DB_NAME must be set or provided via flags")
	}
	if table == "" {
		table = "Products"
	}

	ctx := context.Background()
	mclient, db, err := database.ConnectMongo(ctx, mongoURI, dbName)
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer database.CloseMongo(mclient)

	awsCfg, err := awspkg.LoadAWSConfig(ctx, awspkg.Options{Region: region, Endpoint: endpoint})
	if err != nil {
		log.Fatalf("aws config: %v", err)
	}
	dst := repository.NewDynamoAdapter(dynamodb.NewFromConfig(awsCfg), table)

	count, err := migrate(ctx, repository.NewMongoProductRepository(db), dst, batch)
	if err != nil {
		log.Fatalf("migration stopped after %d products: %v", count, err)
	}
	fmt.Printf("Migration complete. migrated=%d\n", count)
}

// migrate copies every product from src to dst in pages of batch, filling
// in fields that older documents may lack.
func migrate(ctx context.Context, src productSource, dst productSink, batch int) (int, error) {
	if batch <= 0 {
		batch = 500
	}
	var count int
	for skip := 0; ; skip += batch {
		page, err := src.Find(ctx, repository.ListFilter{Limit: batch, Skip: skip})
		if err != nil {
			return count, fmt.Errorf("read page at %d: %w", skip, err)
		}
		if len(page) == 0 {
			return count, nil
		}

		products := make([]models.Product, 0, len(page))
		for _, p := range page {
			products = append(products, backfill(*p))
		}
		n, err := dst.InsertMany(ctx, products)
		count += n
		if err != nil {
			return count, fmt.Errorf("write page at %d: %w", skip, err)
		}
		log.Printf("migrated %d products", count)

		if len(page) < batch {
			return count, nil
		}
	}
}

func backfill(p models.Product) models.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	if p.Slug == "" {
		p.Slug = services.Slugify(p.Name)
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p
}
