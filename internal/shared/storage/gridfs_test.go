package storage

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func mongoURI() string {
	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		return uri
	}
	return "mongodb://localhost:27017"
}

func TestGridFSStore_BucketPerOperation(t *testing.T) {
	// Connect does not dial; no server is needed to build bucket handles.
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURI()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	s := NewGridFSStore(client.Database("unused"), "storage_")
	a, err := s.bucket(BucketShowcase)
	require.NoError(t, err)
	b, err := s.bucket(BucketShowcase)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

func TestGridFSStore_DeadlineHonoursContext(t *testing.T) {
	s := &GridFSStore{timeout: time.Minute}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	want, _ := ctx.Deadline()
	assert.Equal(t, want, s.deadline(ctx))

	long, cancelLong := context.WithTimeout(context.Background(), time.Hour)
	defer cancelLong()
	assert.WithinDuration(t, time.Now().Add(time.Minute), s.deadline(long), 5*time.Second)
}

func TestGridFSStore_ConcurrentPutGet(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI()).SetServerSelectionTimeout(2*time.Second))
	if err != nil || client.Ping(ctx, nil) != nil {
		t.Skip("MongoDB not available for testing")
	}
	db := client.Database("showcase_storage_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	s := NewGridFSStore(db, "")
	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("public/user%d/index.html", i)
			body := fmt.Sprintf("<html>%d</html>", i)
			for rev := 0; rev < 3; rev++ {
				if _, err := s.Put(context.Background(), BucketShowcase, key, []byte(body), ""); err != nil {
					errs <- err
					return
				}
				obj, err := s.Get(context.Background(), BucketShowcase, key)
				if err != nil {
					errs <- err
					return
				}
				if string(obj.Data) != body {
					errs <- fmt.Errorf("%s: got %q", key, obj.Data)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	list, err := s.List(context.Background(), BucketShowcase, "public/")
	require.NoError(t, err)
	assert.Len(t, list, workers)
}
