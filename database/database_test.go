package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestDisconnectNil(t *testing.T) {
	assert.NoError(t, Disconnect(nil))
}

func TestConnectRejectsBadURI(t *testing.T) {
	_, err := Connect(context.Background(), "not-a-mongo-uri", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 attempts")
}

func TestEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates both collections' indexes", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "createdCollectionAutomatically", Value: true}),
			mtest.CreateSuccessResponse(bson.E{Key: "createdCollectionAutomatically", Value: true}),
		)
		require.NoError(mt, EnsureIndexes(context.Background(), mt.DB))
	})
}
