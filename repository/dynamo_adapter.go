package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"catalog-service/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// DynamoAdapter is a DynamoDB-backed ProductRepo implementation.
// It stores products in a table with primary key `product_id` (string).
type DynamoAdapter struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoAdapter(client *dynamodb.Client, table string) *DynamoAdapter {
	return &DynamoAdapter{client: client, table: table}
}

type ddbProduct struct {
	ProductID   string   `dynamodbav:"product_id"`
	Name        string   `dynamodbav:"name"`
	Slug        string   `dynamodbav:"slug"`
	Description string   `dynamodbav:"description"`
	Price       float64  `dynamodbav:"price"`
	Images      []string `dynamodbav:"images,omitempty"`
	Tags        []string `dynamodbav:"tags,omitempty"`
	Category    string   `dynamodbav:"category"`
	Stock       int      `dynamodbav:"stock"`
	IsActive    bool     `dynamodbav:"is_active"`
	CreatedAt   string   `dynamodbav:"created_at"`
	UpdatedAt   string   `dynamodbav:"updated_at"`
}

func toDDB(p *models.Product) ddbProduct {
	return ddbProduct{
		ProductID:   p.ID.String(),
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		Images:      p.Images,
		Tags:        p.Tags,
		Category:    p.Category,
		Stock:       p.Stock,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (dp *ddbProduct) toModel() *models.Product {
	p := &models.Product{
		Name:        dp.Name,
		Slug:        dp.Slug,
		Description: dp.Description,
		Price:       dp.Price,
		Images:      dp.Images,
		Tags:        dp.Tags,
		Category:    dp.Category,
		Stock:       dp.Stock,
		IsActive:    dp.IsActive,
	}
	p.ID, _ = uuid.Parse(dp.ProductID)
	if t, err := time.Parse(time.RFC3339Nano, dp.CreatedAt); err == nil {
		p.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, dp.UpdatedAt); err == nil {
		p.UpdatedAt = t
	}
	return p
}

func unmarshalProduct(item map[string]types.AttributeValue) (*models.Product, error) {
	var dp ddbProduct
	if err := attributevalue.UnmarshalMap(item, &dp); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return dp.toModel(), nil
}

func (d *DynamoAdapter) key(id uuid.UUID) (map[string]types.AttributeValue, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"product_id": id.String()})
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}
	return key, nil
}

func (d *DynamoAdapter) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	key, err := d.key(id)
	if err != nil {
		return nil, err
	}
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{TableName: &d.table, Key: key})
	if err != nil {
		return nil, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	return unmarshalProduct(out.Item)
}

// FindBySlug scans with a filter (for production, use a GSI on slug).
func (d *DynamoAdapter) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	products, err := d.scan(ctx, "slug = :slug", map[string]string{":slug": slug})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrNotFound
	}
	return products[0], nil
}

// Find scans the table, applies the filter, sorts newest first and pages in memory.
func (d *DynamoAdapter) Find(ctx context.Context, filter ListFilter) ([]*models.Product, error) {
	var clauses []string
	values := map[string]interface{}{}
	if filter.Category != "" {
		clauses = append(clauses, "category = :category")
		values[":category"] = filter.Category
	}
	if filter.IsActive != nil {
		clauses = append(clauses, "is_active = :active")
		values[":active"] = *filter.IsActive
	}

	products, err := d.scan(ctx, strings.Join(clauses, " AND "), values)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})

	if filter.Skip > 0 {
		if filter.Skip >= len(products) {
			return []*models.Product{}, nil
		}
		products = products[filter.Skip:]
	}
	if filter.Limit > 0 && len(products) > filter.Limit {
		products = products[:filter.Limit]
	}
	return products, nil
}

func (d *DynamoAdapter) scan(ctx context.Context, filterExpr string, values interface{}) ([]*models.Product, error) {
	input := &dynamodb.ScanInput{TableName: &d.table}
	if filterExpr != "" {
		exprVals, err := attributevalue.MarshalMap(values)
		if err != nil {
			return nil, fmt.Errorf("marshal filter values: %w", err)
		}
		input.FilterExpression = aws.String(filterExpr)
		input.ExpressionAttributeValues = exprVals
	}

	products := []*models.Product{}
	paginator := dynamodb.NewScanPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan page failed: %w", err)
		}
		for _, it := range page.Items {
			p, err := unmarshalProduct(it)
			if err != nil {
				return nil, err
			}
			products = append(products, p)
		}
	}
	return products, nil
}

func (d *DynamoAdapter) Create(ctx context.Context, product *models.Product) error {
	item, err := attributevalue.MarshalMap(toDDB(product))
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &d.table,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(product_id)"),
	})
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return ErrDuplicateKey
	}
	if err != nil {
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

// InsertMany uses BatchWriteItem (chunks of 25)
func (d *DynamoAdapter) InsertMany(ctx context.Context, products []models.Product) (int, error) {
	const chunkSize = 25
	written := 0
	for i := 0; i < len(products); i += chunkSize {
		end := i + chunkSize
		if end > len(products) {
			end = len(products)
		}
		writeReqs := make([]types.WriteRequest, 0, end-i)
		for idx := range products[i:end] {
			item, err := attributevalue.MarshalMap(toDDB(&products[i+idx]))
			if err != nil {
				return written, fmt.Errorf("marshal batch item: %w", err)
			}
			writeReqs = append(writeReqs, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
		}
		req := &dynamodb.BatchWriteItemInput{RequestItems: map[string][]types.WriteRequest{d.table: writeReqs}}
		// Unprocessed items are resubmitted with a short linear backoff.
		attempts := 0
		for {
			out, err := d.client.BatchWriteItem(ctx, req)
			if err != nil {
				return written, fmt.Errorf("batch write failed: %w", err)
			}
			unp := out.UnprocessedItems[d.table]
			if len(unp) == 0 {
				break
			}
			req.RequestItems[d.table] = unp
			attempts++
			if attempts >= 3 {
				return written, fmt.Errorf("batch write had %d unprocessed items after retries", len(unp))
			}
			time.Sleep(time.Duration(attempts*300) * time.Millisecond)
		}
		written += end - i
	}
	return written, nil
}

// FindByIDAndUpdate performs UpdateItem by setting provided attributes and returns the new item.
func (d *DynamoAdapter) FindByIDAndUpdate(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Product, error) {
	if len(updates) == 0 {
		return d.FindByID(ctx, id)
	}

	// deterministic expression order keeps requests reproducible
	fields := make([]string, 0, len(updates))
	for k := range updates {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	sets := make([]string, 0, len(fields))
	exprNames := make(map[string]string, len(fields))
	exprVals := make(map[string]types.AttributeValue, len(fields))
	for i, k := range fields {
		v := updates[k]
		if t, ok := v.(time.Time); ok {
			v = t.UTC().Format(time.RFC3339Nano)
		}
		namePh := fmt.Sprintf("#f%d", i)
		valPh := fmt.Sprintf(":v%d", i)
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal update value: %w", err)
		}
		sets = append(sets, fmt.Sprintf("%s = %s", namePh, valPh))
		exprNames[namePh] = k
		exprVals[valPh] = av
	}

	key, err := d.key(id)
	if err != nil {
		return nil, err
	}
	out, err := d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 &d.table,
		Key:                       key,
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       aws.String("attribute_exists(product_id)"),
		ExpressionAttributeNames:  exprNames,
		ExpressionAttributeValues: exprVals,
		ReturnValues:              types.ReturnValueAllNew,
	})
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update item failed: %w", err)
	}
	return unmarshalProduct(out.Attributes)
}

func (d *DynamoAdapter) FindByIDAndDelete(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	key, err := d.key(id)
	if err != nil {
		return nil, err
	}
	out, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           &d.table,
		Key:                 key,
		ConditionExpression: aws.String("attribute_exists(product_id)"),
		ReturnValues:        types.ReturnValueAllOld,
	})
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete item failed: %w", err)
	}
	return unmarshalProduct(out.Attributes)
}

func (d *DynamoAdapter) FindExistingSlugs(ctx context.Context, slugs []string) ([]string, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	// FilterExpression: slug IN (:s0, :s1...); DynamoDB caps IN at 100 operands.
	const maxOperands = 100
	var existing []string
	for start := 0; start < len(slugs); start += maxOperands {
		end := start + maxOperands
		if end > len(slugs) {
			end = len(slugs)
		}
		placeholders := make([]string, 0, end-start)
		values := make(map[string]string, end-start)
		for i, s := range slugs[start:end] {
			ph := fmt.Sprintf(":s%d", i)
			placeholders = append(placeholders, ph)
			values[ph] = s
		}
		products, err := d.scan(ctx, fmt.Sprintf("slug IN (%s)", strings.Join(placeholders, ", ")), values)
		if err != nil {
			return nil, fmt.Errorf("scan for slugs failed: %w", err)
		}
		for _, p := range products {
			existing = append(existing, p.Slug)
		}
	}
	return existing, nil
}

func (d *DynamoAdapter) EnsureIndexes(ctx context.Context) error {
	// Dynamo table / GSI creation should be handled by infrastructure init or IaC.
	return nil
}
