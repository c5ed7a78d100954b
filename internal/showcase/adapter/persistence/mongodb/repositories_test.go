package mongodb_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"showcase-platform/internal/showcase/adapter/persistence/mongodb"
	"showcase-platform/internal/showcase/domain/model"
	"showcase-platform/internal/showcase/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ShowcaseRepoTestSuite struct {
	suite.Suite
	client    *mongo.Client
	database  *mongo.Database
	showcases *mongodb.ShowcaseRepository
	analytics *mongodb.AnalyticsRepository
}

func (suite *ShowcaseRepoTestSuite) SetupSuite() {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(2*time.Second))
	if err != nil {
		suite.T().Skip("MongoDB not available for testing")
		return
	}
	if err := client.Ping(ctx, nil); err != nil {
		suite.T().Skip("MongoDB not available for testing")
		return
	}
	suite.client = client
	suite.database = client.Database("showcase_test_" + uuid.NewString()[:8])

	suite.showcases, err = mongodb.NewShowcaseRepository(suite.database)
	require.NoError(suite.T(), err)
	suite.analytics, err = mongodb.NewAnalyticsRepository(suite.database)
	require.NoError(suite.T(), err)
}

func (suite *ShowcaseRepoTestSuite) TearDownSuite() {
	if suite.client != nil {
		suite.database.Drop(context.Background())
		suite.client.Disconnect(context.Background())
	}
}

func newShowcase(userID, username string) *model.Showcase {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.Showcase{
		ID:          uuid.NewString(),
		UserID:      userID,
		Username:    username,
		Projects:    []model.Project{{ID: "p-1", Title: "Week 1", IsIncluded: true}},
		Visibility:  model.Visibility{AccessType: model.AccessPrivate},
		Publication: model.Publication{Status: model.PublicationDraft},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (suite *ShowcaseRepoTestSuite) TestUniqueUserAndUsername() {
	ctx := context.Background()
	require.NoError(suite.T(), suite.showcases.Create(ctx, newShowcase("u-unique", "unique-one")))

	err := suite.showcases.Create(ctx, newShowcase("u-unique", "unique-two"))
	assert.ErrorIs(suite.T(), err, repository.ErrDuplicate)
	err = suite.showcases.Create(ctx, newShowcase("u-other", "unique-one"))
	assert.ErrorIs(suite.T(), err, repository.ErrDuplicate)
}

func (suite *ShowcaseRepoTestSuite) TestLookupsAndUpdate() {
	ctx := context.Background()
	sc := newShowcase("u-lookup", "lookup")
	require.NoError(suite.T(), suite.showcases.Create(ctx, sc))

	byName, err := suite.showcases.GetByUsername(ctx, "lookup")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), sc.ID, byName.ID)
	assert.Equal(suite.T(), "Week 1", byName.Projects[0].Title)

	sc.Publication.Status = model.PublicationPublished
	require.NoError(suite.T(), suite.showcases.Update(ctx, sc))
	published, err := suite.showcases.List(ctx, true)
	require.NoError(suite.T(), err)
	found := false
	for _, p := range published {
		found = found || p.ID == sc.ID
	}
	assert.True(suite.T(), found)

	require.NoError(suite.T(), suite.showcases.IncrementViews(ctx, sc.ID, true, time.Now()))
	require.NoError(suite.T(), suite.showcases.IncrementViews(ctx, sc.ID, false, time.Now()))
	byUser, err := suite.showcases.GetByUserID(ctx, "u-lookup")
	require.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 2, byUser.Analytics.TotalViews)
	assert.EqualValues(suite.T(), 1, byUser.Analytics.UniqueViews)
	assert.NotNil(suite.T(), byUser.Analytics.LastViewedAt)

	require.NoError(suite.T(), suite.showcases.Delete(ctx, sc.ID))
	_, err = suite.showcases.GetByID(ctx, sc.ID)
	assert.ErrorIs(suite.T(), err, repository.ErrNotFound)
	assert.ErrorIs(suite.T(), suite.showcases.IncrementViews(ctx, sc.ID, false, time.Now()), repository.ErrNotFound)
}

func (suite *ShowcaseRepoTestSuite) TestRecordViewConcurrently() {
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := suite.analytics.RecordView(ctx, model.View{
				ShowcaseID: "sc-concurrent",
				At:         at,
				Referrer:   "github.com",
				Country:    "US",
				Device:     model.DeviceDesktop,
				Unique:     i%2 == 0,
			})
			assert.NoError(suite.T(), err)
		}(i)
	}
	wg.Wait()
	require.NoError(suite.T(), suite.analytics.RecordView(ctx, model.View{ShowcaseID: "sc-concurrent", At: at, ProjectID: "p-1"}))

	days, err := suite.analytics.Range(ctx, "sc-concurrent", "2024-03-01", "2024-03-01")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), days, 1)
	d := days[0]
	assert.Equal(suite.T(), model.ViewCounts{Total: 20, Unique: 10}, d.Views)
	assert.Equal(suite.T(), []model.Counter{{Key: "github.com", Count: 20}}, d.Referrers)
	assert.Equal(suite.T(), []model.Counter{{Key: "p-1", Count: 1}}, d.ProjectViews)

	require.NoError(suite.T(), suite.analytics.DeleteShowcase(ctx, "sc-concurrent"))
	days, err = suite.analytics.Range(ctx, "sc-concurrent", "2024-01-01", "2024-12-31")
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), days)
}

func TestShowcaseRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ShowcaseRepoTestSuite))
}
