package dynamodb

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"clothing-api/application/ports"
	"clothing-api/domain/core/entities"
	"clothing-api/domain/core/valueobjects"
	"clothing-api/infrastructure/persistence/abstractions"
	apperrors "clothing-api/pkg/errors"
	"clothing-api/pkg/utils"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the repository.
// *dynamodb.Client satisfies it; tests substitute a mock.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// ClothingRepository implements ports.ClothingRepository on a single
// DynamoDB table keyed by "id".
type ClothingRepository struct {
	client    DynamoDBAPI
	tableName string
	logger    *zap.Logger
	now       func() time.Time
}

// Option customizes a ClothingRepository
type Option func(*ClothingRepository)

// WithClock replaces the time source used for createdAt/updatedAt
func WithClock(now func() time.Time) Option {
	return func(r *ClothingRepository) { r.now = now }
}

// NewClothingRepository creates a new ClothingRepository
func NewClothingRepository(client DynamoDBAPI, tableName string, logger *zap.Logger, opts ...Option) *ClothingRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &ClothingRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
		now:       utils.MonotonicClock(time.Now),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ ports.ClothingRepository = (*ClothingRepository)(nil)

func (r *ClothingRepository) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		entities.FieldID: &types.AttributeValueMemberS{Value: id},
	}
}

// Create persists a new item. The put is conditional on the id being unused.
func (r *ClothingRepository) Create(ctx context.Context, data entities.Payload) (*entities.ClothingItem, error) {
	fields, err := entities.Sanitize(data)
	if err != nil {
		return nil, abstractions.InvalidInput(err)
	}

	id := valueobjects.NewItemID().String()
	item := entities.NewClothingItem(id, fields, utils.FormatISO(r.now()))

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, apperrors.NewStoreWriteError("creating clothing item", id, err)
	}

	cond, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(entities.FieldID))).
		Build()
	if err != nil {
		return nil, apperrors.NewStoreWriteError("creating clothing item", id, err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      av,
		ConditionExpression:       cond.Condition(),
		ExpressionAttributeNames:  cond.Names(),
		ExpressionAttributeValues: cond.Values(),
	})
	if err != nil {
		return nil, apperrors.NewStoreWriteError("creating clothing item", id, err)
	}

	r.logger.Debug("Clothing item created", zap.String("itemID", id))
	return item, nil
}

// FindAll scans the whole table with the SDK paginator, one page at a time.
func (r *ClothingRepository) FindAll(ctx context.Context, opts ports.FindAllOptions) ([]*entities.ClothingItem, error) {
	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
		Limit:     aws.Int32(int32(opts.PageSize())),
	})

	items := make([]*entities.ClothingItem, 0)
	pages := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, apperrors.NewStoreReadError("scanning clothing items", "", err)
		}
		pages++

		var batch []*entities.ClothingItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, apperrors.NewStoreReadError("scanning clothing items", "", err)
		}
		items = append(items, batch...)
	}

	r.logger.Debug("Clothing items scanned",
		zap.Int("count", len(items)),
		zap.Int("pages", pages),
	)
	return items, nil
}

// FindByID returns nil, nil for an empty id or a missing item.
func (r *ClothingRepository) FindByID(ctx context.Context, id string) (*entities.ClothingItem, error) {
	if id == "" {
		return nil, nil
	}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       r.key(id),
	})
	if err != nil {
		return nil, apperrors.NewStoreReadError("getting clothing item", id, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var item entities.ClothingItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, apperrors.NewStoreReadError("getting clothing item", id, err)
	}
	return &item, nil
}

// Update applies the whitelisted fields of data and returns the stored
// record. A missing item yields NotFound instead of an upsert.
func (r *ClothingRepository) Update(ctx context.Context, id string, data entities.Payload) (*entities.ClothingItem, error) {
	if id == "" {
		return nil, abstractions.MissingID()
	}

	fields, err := entities.Sanitize(data)
	if err != nil {
		return nil, abstractions.InvalidInput(err)
	}
	plan, err := abstractions.BuildUpdatePlan(fields, utils.FormatISO(r.now()))
	if err != nil {
		return nil, abstractions.InvalidInput(err)
	}

	input, err := r.updateInput(id, plan)
	if err != nil {
		return nil, apperrors.NewStoreWriteError("updating clothing item", id, err)
	}

	out, err := r.client.UpdateItem(ctx, input)
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return nil, abstractions.NotFound(id)
		}
		return nil, apperrors.NewStoreWriteError("updating clothing item", id, err)
	}

	var item entities.ClothingItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return nil, apperrors.NewStoreWriteError("updating clothing item", id, err)
	}

	r.logger.Debug("Clothing item updated",
		zap.String("itemID", id),
		zap.Strings("fields", plan.Fields()),
	)
	return &item, nil
}

// updateInput renders the plan with an existence condition. The builder's
// numbered placeholders (#0, :0) never collide with the plan's #f<i>/:v<i>.
func (r *ClothingRepository) updateInput(id string, plan abstractions.UpdatePlan) (*dynamodb.UpdateItemInput, error) {
	cond, err := expression.NewBuilder().
		WithCondition(expression.AttributeExists(expression.Name(entities.FieldID))).
		Build()
	if err != nil {
		return nil, err
	}

	names := plan.Names()
	for placeholder, name := range cond.Names() {
		names[placeholder] = name
	}

	values := make(map[string]types.AttributeValue, len(plan.Assignments))
	for placeholder, value := range plan.Values() {
		av, err := attributevalue.Marshal(value)
		if err != nil {
			return nil, err
		}
		values[placeholder] = av
	}
	for placeholder, value := range cond.Values() {
		values[placeholder] = value
	}

	return &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       r.key(id),
		UpdateExpression:          aws.String(plan.UpdateExpression()),
		ConditionExpression:       cond.Condition(),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	}, nil
}

// Delete removes the item and returns its prior state, or nil when nothing
// was stored under id.
func (r *ClothingRepository) Delete(ctx context.Context, id string) (*entities.ClothingItem, error) {
	if id == "" {
		return nil, abstractions.MissingID()
	}

	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.tableName),
		Key:          r.key(id),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return nil, apperrors.NewStoreWriteError("deleting clothing item", id, err)
	}
	if len(out.Attributes) == 0 {
		return nil, nil
	}

	var item entities.ClothingItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return nil, apperrors.NewStoreWriteError("deleting clothing item", id, err)
	}

	r.logger.Debug("Clothing item deleted", zap.String("itemID", id))
	return &item, nil
}
