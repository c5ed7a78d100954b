package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSStore keeps each bucket in its own GridFS bucket named "<prefix><bucket>".
// A gridfs.Bucket carries its read and write deadlines as mutable state, so every
// operation opens its own handle.
type GridFSStore struct {
	db      *mongo.Database
	prefix  string
	timeout time.Duration
}

var _ ObjectStore = (*GridFSStore)(nil)

type gridFile struct {
	ID         primitive.ObjectID `bson:"_id"`
	Filename   string             `bson:"filename"`
	Length     int64              `bson:"length"`
	UploadDate time.Time          `bson:"uploadDate"`
	Metadata   struct {
		ContentType string `bson:"contentType"`
	} `bson:"metadata"`
}

// NewGridFSStore creates a GridFS backed store. prefix namespaces the GridFS buckets,
// e.g. "storage_" yields "storage_showcase.files".
func NewGridFSStore(db *mongo.Database, prefix string) *GridFSStore {
	return &GridFSStore{
		db:      db,
		prefix:  prefix,
		timeout: 30 * time.Second,
	}
}

// bucket opens a handle for one operation. Bucket handles are cheap: they wrap the
// files and chunks collections without a round trip.
func (s *GridFSStore) bucket(name string) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(s.prefix+name))
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket %s: %w", name, err)
	}
	return b, nil
}

// deadline is the earlier of ctx's deadline and the store timeout.
func (s *GridFSStore) deadline(ctx context.Context) time.Time {
	d := time.Now().Add(s.timeout)
	if cd, ok := ctx.Deadline(); ok && cd.Before(d) {
		return cd
	}
	return d
}

func (s *GridFSStore) find(ctx context.Context, b *gridfs.Bucket, filter interface{}) ([]gridFile, error) {
	cursor, err := b.FindContext(ctx, filter, options.GridFSFind().SetSort(bson.D{{Key: "filename", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var files []gridFile
	if err := cursor.All(ctx, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (s *GridFSStore) Put(ctx context.Context, bucket, key string, data []byte, contentType string) (ObjectInfo, error) {
	if err := ValidateKey(key); err != nil {
		return ObjectInfo{}, err
	}
	if contentType == "" {
		contentType = DetectContentType(key, data)
	}
	b, err := s.bucket(bucket)
	if err != nil {
		return ObjectInfo{}, err
	}

	existing, err := s.find(ctx, b, bson.M{"filename": key})
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("lookup %s/%s: %w", bucket, key, err)
	}

	if err := b.SetWriteDeadline(s.deadline(ctx)); err != nil {
		return ObjectInfo{}, err
	}
	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})
	if _, err := b.UploadFromStream(key, bytes.NewReader(data), opts); err != nil {
		return ObjectInfo{}, fmt.Errorf("upload %s/%s: %w", bucket, key, err)
	}

	// Older revisions are removed only after the new one is in place.
	for _, f := range existing {
		if err := b.DeleteContext(ctx, f.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return ObjectInfo{}, fmt.Errorf("remove old revision of %s/%s: %w", bucket, key, err)
		}
	}

	return ObjectInfo{Key: key, ContentType: contentType, Size: int64(len(data)), UpdatedAt: time.Now()}, nil
}

func (s *GridFSStore) Get(ctx context.Context, bucket, key string) (*Object, error) {
	b, err := s.bucket(bucket)
	if err != nil {
		return nil, err
	}
	files, err := s.find(ctx, b, bson.M{"filename": key})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrObjectNotFound
	}
	f := files[len(files)-1]

	if err := b.SetReadDeadline(s.deadline(ctx)); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := b.DownloadToStream(f.ID, &buf); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("download %s/%s: %w", bucket, key, err)
	}
	return &Object{
		Key:         key,
		ContentType: f.Metadata.ContentType,
		Size:        f.Length,
		Data:        buf.Bytes(),
		UpdatedAt:   f.UploadDate,
	}, nil
}

func (s *GridFSStore) List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	b, err := s.bucket(bucket)
	if err != nil {
		return nil, err
	}
	files, err := s.find(ctx, b, prefixFilter(prefix))
	if err != nil {
		return nil, err
	}
	out := make([]ObjectInfo, 0, len(files))
	for _, f := range files {
		out = append(out, ObjectInfo{
			Key:         f.Filename,
			ContentType: f.Metadata.ContentType,
			Size:        f.Length,
			UpdatedAt:   f.UploadDate,
		})
	}
	return out, nil
}

func (s *GridFSStore) Delete(ctx context.Context, bucket, key string) error {
	b, err := s.bucket(bucket)
	if err != nil {
		return err
	}
	files, err := s.find(ctx, b, bson.M{"filename": key})
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return ErrObjectNotFound
	}
	for _, f := range files {
		if err := b.DeleteContext(ctx, f.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return err
		}
	}
	return nil
}

func (s *GridFSStore) DeletePrefix(ctx context.Context, bucket, prefix string) (int, error) {
	b, err := s.bucket(bucket)
	if err != nil {
		return 0, err
	}
	files, err := s.find(ctx, b, prefixFilter(prefix))
	if err != nil {
		return 0, err
	}
	n := 0
	for _, f := range files {
		if err := b.DeleteContext(ctx, f.ID); err != nil {
			if errors.Is(err, gridfs.ErrFileNotFound) {
				continue
			}
			return n, err
		}
		n++
	}
	return n, nil
}

func prefixFilter(prefix string) bson.M {
	if prefix == "" {
		return bson.M{}
	}
	return bson.M{"filename": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}
}
