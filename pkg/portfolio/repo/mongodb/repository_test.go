package mongodb_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tendant/portfolio-content/pkg/portfolio"
	"github.com/tendant/portfolio-content/pkg/portfolio/repo/mongodb"
	"github.com/tendant/portfolio-content/pkg/portfolio/repo/repotest"
)

func TestRepository(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	client, err := mongodb.Connect(ctx, uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	repotest.Run(t, func(t *testing.T) portfolio.Repository {
		name := "portfolio_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		db := client.Database(name)
		t.Cleanup(func() { _ = db.Drop(context.Background()) })

		repo := mongodb.New(db)
		require.NoError(t, repo.EnsureIndexes(ctx))
		return repo
	})
}
