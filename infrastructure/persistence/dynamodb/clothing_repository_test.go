package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"clothing-api/application/ports"
	"clothing-api/domain/core/entities"
	apperrors "clothing-api/pkg/errors"
)

type MockDynamoDB struct {
	mock.Mock
}

func (m *MockDynamoDB) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*dynamodb.PutItemOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDynamoDB) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*dynamodb.GetItemOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDynamoDB) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*dynamodb.UpdateItemOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDynamoDB) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*dynamodb.DeleteItemOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDynamoDB) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*dynamodb.ScanOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newTestRepository(client *MockDynamoDB) *ClothingRepository {
	return NewClothingRepository(client, "clothing_items", zap.NewNop(), WithClock(func() time.Time { return fixedNow }))
}

func marshalItem(t *testing.T, item *entities.ClothingItem) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(item)
	require.NoError(t, err)
	return av
}

func TestCreate_PersistsSanitizedItem(t *testing.T) {
	// Arrange
	client := new(MockDynamoDB)
	repo := newTestRepository(client)
	var stored map[string]types.AttributeValue

	client.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		return aws.ToString(in.TableName) == "clothing_items" &&
			assert.ObjectsAreEqual(map[string]string{"#0": "id"}, in.ExpressionAttributeNames)
	})).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*dynamodb.PutItemInput).Item
	}).Return(&dynamodb.PutItemOutput{}, nil).Once()

	// Act
	item, err := repo.Create(context.Background(), entities.Payload{
		"id":       "client-id",
		"name":     "Rain jacket",
		"brand":    "Acme",
		"size":     "L",
		"color":    "",
		"price":    "89.90",
		"wishlist": "true",
		"extra":    "ignored",
	})

	// Assert
	require.NoError(t, err)
	client.AssertExpectations(t)
	assert.NotEqual(t, "client-id", item.ID)
	assert.Equal(t, "2024-05-01T10:00:00.000Z", item.CreatedAt)
	assert.Equal(t, item.CreatedAt, item.UpdatedAt)
	assert.True(t, item.Wishlist)
	require.NotNil(t, item.Price)
	assert.Equal(t, 89.9, *item.Price)

	assert.Contains(t, stored, "wishlist")
	assert.NotContains(t, stored, "color")
	assert.NotContains(t, stored, "extra")
	assert.NotContains(t, stored, "notes")
	assert.Equal(t, &types.AttributeValueMemberBOOL{Value: true}, stored["wishlist"])
}

func TestCreate_ThenFindByIDRoundTrips(t *testing.T) {
	client := new(MockDynamoDB)
	repo := newTestRepository(client)
	var stored map[string]types.AttributeValue

	client.On("PutItem", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*dynamodb.PutItemInput).Item
	}).Return(&dynamodb.PutItemOutput{}, nil)

	created, err := repo.Create(context.Background(), entities.Payload{
		"name": "Boots", "brand": "Acme", "size": "42", "color": "brown", "price": 120.0, "notes": "resoled",
	})
	require.NoError(t, err)

	client.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
		key, ok := in.Key["id"].(*types.AttributeValueMemberS)
		return ok && key.Value == created.ID
	})).Return(&dynamodb.GetItemOutput{Item: stored}, nil)

	found, err := repo.FindByID(context.Background(), created.ID)

	require.NoError(t, err)
	assert.Equal(t, created, found)
}

func TestCreate_RejectsInvalidPriceWithoutStoreCall(t *testing.T) {
	client := new(MockDynamoDB)
	repo := newTestRepository(client)

	_, err := repo.Create(context.Background(), entities.Payload{"name": "Hat", "price": -5.0})

	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidArgument(err))
	assert.Equal(t, "Invalid price value", apperrors.GetAppError(err).Message)
	client.AssertNotCalled(t, "PutItem", mock.Anything, mock.Anything)
}

func TestCreate_StoreFailureIsAnnotated(t *testing.T) {
	client := new(MockDynamoDB)
	repo := newTestRepository(client)
	cause := errors.New("service unavailable")
	client.On("PutItem", mock.Anything, mock.Anything).Return(nil, cause)

	_, err := repo.Create(context.Background(), entities.Payload{"name": "Hat"})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStoreWrite))
	assert.ErrorIs(t, err, cause)
	assert.Regexp(t, `^error creating clothing item [0-9a-f-]{36}: service unavailable$`, apperrors.GetAppError(err).Message)
}

func TestFindAll_FollowsContinuationTokens(t *testing.T) {
	// Arrange: 250 items served as pages of 100, 100, 50
	client := new(MockDynamoDB)
	repo := newTestRepository(client)

	page := func(start, n int) []map[string]types.AttributeValue {
		items := make([]map[string]types.AttributeValue, 0, n)
		for i := start; i < start+n; i++ {
			items = append(items, marshalItem(t, &entities.ClothingItem{ID: fmt.Sprintf("item-%03d", i)}))
		}
		return items
	}
	token := func(id string) map[string]types.AttributeValue {
		return map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}}
	}
	startsAfter := func(id string) interface{} {
		return mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
			if aws.ToInt32(in.Limit) != 100 {
				return false
			}
			if id == "" {
				return in.ExclusiveStartKey == nil
			}
			key, ok := in.ExclusiveStartKey["id"].(*types.AttributeValueMemberS)
			return ok && key.Value == id
		})
	}

	client.On("Scan", mock.Anything, startsAfter("")).
		Return(&dynamodb.ScanOutput{Items: page(0, 100), LastEvaluatedKey: token("item-099")}, nil).Once()
	client.On("Scan", mock.Anything, startsAfter("item-099")).
		Return(&dynamodb.ScanOutput{Items: page(100, 100), LastEvaluatedKey: token("item-199")}, nil).Once()
	client.On("Scan", mock.Anything, startsAfter("item-199")).
		Return(&dynamodb.ScanOutput{Items: page(200, 50)}, nil).Once()

	// Act
	items, err := repo.FindAll(context.Background(), ports.FindAllOptions{})

	// Assert
	require.NoError(t, err)
	assert.Len(t, items, 250)
	assert.Equal(t, "item-249", items[249].ID)
	client.AssertNumberOfCalls(t, "Scan", 3)
}

func TestFindAll_PageFailureDiscardsResults(t *testing.T) {
	client := new(MockDynamoDB)
	repo := newTestRepository(client)

	client.On("Scan", mock.Anything, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		return in.ExclusiveStartKey == nil
	})).Return(&dynamodb.ScanOutput{
		Items:            []map[string]types.AttributeValue{marshalItem(t, &entities.ClothingItem{ID: "a"})},
		LastEvaluatedKey: map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: "a"}},
	}, nil).Once()
	client.On("Scan", mock.Anything, mock.Anything).Return(nil, errors.New("throttled")).Once()

	items, err := repo.FindAll(context.Background(), ports.FindAllOptions{LimitPerPage: 1})

	assert.Nil(t, items)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStoreRead))
}

func TestFindAll_EmptyTableReturnsEmptySlice(t *testing.T) {
	client := new(MockDynamoDB)
	repo := newTestRepository(client)
	client.On("Scan", mock.Anything, mock.Anything).Return(&dynamodb.ScanOutput{}, nil).Once()

	items, err := repo.FindAll(context.Background(), ports.FindAllOptions{LimitPerPage: 25})

	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestFindByID_EmptyAndMissing(t *testing.T) {
	client := new(MockDynamoDB)
	repo := newTestRepository(client)

	item, err := repo.FindByID(context.Background(), "")
	assert.NoError(t, err)
	assert.Nil(t, item)
	client.AssertNotCalled(t, "GetItem", mock.Anything, mock.Anything)

	client.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)
	item, err = repo.FindByID(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, item)
}

func TestUpdate_RendersPlanWithExistenceCondition(t *testing.T) {
	// Arrange
	client := new(MockDynamoDB)
	repo := newTestRepository(client)
	price := 10.0
	updated := &entities.ClothingItem{
		ID: "abc", Name: "Boots", Price: &price,
		CreatedAt: "2024-04-01T00:00:00.000Z", UpdatedAt: "2024-05-01T10:00:00.000Z",
	}
	var input *dynamodb.UpdateItemInput

	client.On("UpdateItem", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		input = args.Get(1).(*dynamodb.UpdateItemInput)
	}).Return(&dynamodb.UpdateItemOutput{Attributes: marshalItem(t, updated)}, nil).Once()

	// Act
	item, err := repo.Update(context.Background(), "abc", entities.Payload{
		"price":     10.0,
		"brand":     "",
		"createdAt": "overwritten?",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, updated, item)
	require.NotNil(t, input)
	assert.Equal(t, "SET #f0 = :v0, #updatedAt = :updatedAt", aws.ToString(input.UpdateExpression))
	assert.Contains(t, aws.ToString(input.ConditionExpression), "attribute_exists")
	assert.Equal(t, types.ReturnValueAllNew, input.ReturnValues)
	assert.Equal(t, map[string]string{"#f0": "price", "#updatedAt": "updatedAt", "#0": "id"}, input.ExpressionAttributeNames)
	assert.Equal(t, &types.AttributeValueMemberN{Value: "10"}, input.ExpressionAttributeValues[":v0"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "2024-05-01T10:00:00.000Z"}, input.ExpressionAttributeValues[":updatedAt"])
	assert.Len(t, input.ExpressionAttributeValues, 2)
}

func TestUpdate_MissingItemIsNotFound(t *testing.T) {
	client := new(MockDynamoDB)
	repo := newTestRepository(client)
	client.On("UpdateItem", mock.Anything, mock.Anything).
		Return(nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")})

	_, err := repo.Update(context.Background(), "ghost", entities.Payload{"name": "x"})

	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdate_InvalidArguments(t *testing.T) {
	client := new(MockDynamoDB)
	repo := newTestRepository(client)

	_, err := repo.Update(context.Background(), "", entities.Payload{"name": "x"})
	assert.True(t, apperrors.IsInvalidArgument(err))

	_, err = repo.Update(context.Background(), "abc", entities.Payload{"name": "", "id": "new"})
	assert.True(t, apperrors.IsInvalidArgument(err))
	assert.Equal(t, "No valid fields for update", apperrors.GetAppError(err).Message)

	client.AssertNotCalled(t, "UpdateItem", mock.Anything, mock.Anything)
}

func TestUpdate_StoreFailureIsAnnotated(t *testing.T) {
	client := new(MockDynamoDB)
	repo := newTestRepository(client)
	client.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	_, err := repo.Update(context.Background(), "abc", entities.Payload{"notes": "n"})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStoreWrite))
	assert.Equal(t, "error updating clothing item abc: boom", apperrors.GetAppError(err).Message)
}

func TestDelete_TwiceReturnsItemThenNil(t *testing.T) {
	client := new(MockDynamoDB)
	repo := newTestRepository(client)
	existing := &entities.ClothingItem{ID: "abc", Name: "Scarf", CreatedAt: "t", UpdatedAt: "t"}

	allOld := mock.MatchedBy(func(in *dynamodb.DeleteItemInput) bool {
		return in.ReturnValues == types.ReturnValueAllOld
	})
	client.On("DeleteItem", mock.Anything, allOld).
		Return(&dynamodb.DeleteItemOutput{Attributes: marshalItem(t, existing)}, nil).Once()
	client.On("DeleteItem", mock.Anything, allOld).
		Return(&dynamodb.DeleteItemOutput{}, nil).Once()

	first, err := repo.Delete(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, existing, first)

	second, err := repo.Delete(context.Background(), "abc")
	require.NoError(t, err)
	assert.Nil(t, second)

	_, err = repo.Delete(context.Background(), "")
	assert.True(t, apperrors.IsInvalidArgument(err))
}
