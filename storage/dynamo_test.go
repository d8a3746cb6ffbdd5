package storage

import (
	"context"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

// Runs against localstack, e.g. DYNAMODB_ENDPOINT=http://localhost:4566.
func dynamoClient(t *testing.T) *dynamodb.Client {
	t.Helper()
	endpoint := os.Getenv("DYNAMODB_ENDPOINT")
	if endpoint == "" {
		t.Skip("DYNAMODB_ENDPOINT not set")
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion("us-east-1"))
	require.NoError(t, err, "failed to load config")

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
}

func createTable(t *testing.T, client *dynamodb.Client, name string, withSortKey bool) {
	t.Helper()
	ctx := context.Background()

	attributes := []types.AttributeDefinition{{AttributeName: aws.String("PK"), AttributeType: types.ScalarAttributeTypeS}}
	schema := []types.KeySchemaElement{{AttributeName: aws.String("PK"), KeyType: types.KeyTypeHash}}
	if withSortKey {
		attributes = append(attributes, types.AttributeDefinition{AttributeName: aws.String("SK"), AttributeType: types.ScalarAttributeTypeS})
		schema = append(schema, types.KeySchemaElement{AttributeName: aws.String("SK"), KeyType: types.KeyTypeRange})
	}

	_, err := client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:            aws.String(name),
		AttributeDefinitions: attributes,
		KeySchema:            schema,
		BillingMode:          types.BillingModePayPerRequest,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_, err := client.DeleteTable(context.Background(), &dynamodb.DeleteTableInput{TableName: aws.String(name)})
		if err != nil {
			t.Logf("failed to delete table %s: %v", name, err)
		}
	})
}

func TestDynamoBackendContract(t *testing.T) {
	client := dynamoClient(t)

	runBackendContract(t, func(t *testing.T) backend {
		polls, votes, users := uniqueName("Polls"), uniqueName("Votes"), uniqueName("Users")
		createTable(t, client, polls, false)
		createTable(t, client, votes, true)
		createTable(t, client, users, false)

		return backend{
			polls: &DynamoPollStorage{Client: client, TableName: polls},
			votes: &DynamoVoteStorage{Client: client, TableName: votes, PollsTableName: polls},
			users: &DynamoUserStorage{Client: client, TableName: users},
		}
	})
}
