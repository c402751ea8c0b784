package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"catalog-service/database"
	"catalog-service/models"
	awspkg "catalog-service/pkg/aws"
	"catalog-service/repository"
	"catalog-service/services"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	storeBackend string
	mongoURI     string
	mongoDB      string
	ddbTable     string
	awsRegion    string
	awsEndpoint  string
)

var runCmd = &cobra.Command{
	Use:   "run <file.csv>",
	Short: "Import a CSV file into the catalog store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()
		return importFile(ctx, services.NewBulkImporter(store), args[0], cmd.OutOrStdout())
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <file.csv>",
	Short: "Validate a CSV file without writing anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return importFile(cmd.Context(), services.NewBulkImporter(dryRunStore{}), args[0], cmd.OutOrStdout())
	},
}

func init() {
	runCmd.Flags().StringVar(&storeBackend, "store", envOr("STORE_BACKEND", "mongo"), "Product store: mongo or dynamodb")
	runCmd.Flags().StringVar(&mongoURI, "mongo-uri", envOr("MONGO_URI", "mongodb://localhost:27017"), "MongoDB URI")
	runCmd.Flags().StringVar(&mongoDB, "db", envOr("MONGO_DB_NAME", "catalog"), "MongoDB database name")
	runCmd.Flags().StringVar(&ddbTable, "table", envOr("DDB_TABLE_PRODUCTS", "Products"), "DynamoDB table name")
	runCmd.Flags().StringVar(&awsRegion, "region", envOr("AWS_REGION", "us-east-1"), "AWS region")
	runCmd.Flags().StringVar(&awsEndpoint, "endpoint", os.Getenv("AWS_ENDPOINT"), "AWS endpoint override (LocalStack)")
}

func importFile(ctx context.Context, importer *services.BulkImporter, path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	result, err := importer.Import(ctx, f)
	if err != nil {
		return err
	}

	zap.L().Info("import finished",
		zap.String("file", path),
		zap.Int("inserted", result.InsertedCount),
		zap.Int("errors", result.ErrorCount))

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func openStore(ctx context.Context) (services.ProductInserter, func(), error) {
	switch storeBackend {
	case "mongo":
		client, db, err := database.ConnectMongo(ctx, mongoURI, mongoDB)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewMongoProductRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			zap.L().Warn("failed to ensure indexes", zap.Error(err))
		}
		return repo, func() { _ = database.CloseMongo(client) }, nil
	case "dynamodb":
		cfg, err := awspkg.LoadAWSConfig(ctx, awspkg.Options{Region: awsRegion, Endpoint: awsEndpoint})
		if err != nil {
			return nil, nil, err
		}
		return repository.NewDynamoAdapter(dynamodb.NewFromConfig(cfg), ddbTable), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q (want mongo or dynamodb)", storeBackend)
	}
}

// dryRunStore accepts every insert without writing and reports no slug conflicts.
type dryRunStore struct{}

func (dryRunStore) InsertMany(_ context.Context, products []models.Product) (int, error) {
	return len(products), nil
}

func (dryRunStore) FindExistingSlugs(context.Context, []string) ([]string, error) {
	return nil, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
