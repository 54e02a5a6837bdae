package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkhouse/storyapi/internal/core"
	"github.com/inkhouse/storyapi/internal/data"
	"github.com/inkhouse/storyapi/internal/domain/model"
)

type fakeObjectStore struct {
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeObjectStore) Put(_ context.Context, key string, body io.Reader, contentType string) (int64, error) {
	if f.putErr != nil {
		return 0, f.putErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return 0, err
	}
	f.objects[key] = b
	f.types[key] = contentType
	return int64(len(b)), nil
}

func (f *fakeObjectStore) Get(_ context.Context, key, byteRange string) (*core.ObjectRange, error) {
	b, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such object")
	}
	_ = byteRange
	return &core.ObjectRange{
		Body:          io.NopCloser(bytes.NewReader(b)),
		ContentType:   f.types[key],
		ContentLength: int64(len(b)),
	}, nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	delete(f.types, key)
	return nil
}

type fakeMediaRepo struct {
	rows      map[string]*model.MediaObject
	createErr error
	nextID    int
}

func newFakeMediaRepo() *fakeMediaRepo {
	return &fakeMediaRepo{rows: map[string]*model.MediaObject{}}
}

func (f *fakeMediaRepo) Create(_ context.Context, req *model.CreateMediaRequest, key string, size int64) (*model.MediaObject, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	obj := &model.MediaObject{
		ID:          string(rune('a' + f.nextID)),
		StoryID:     req.StoryID,
		Kind:        req.Kind,
		Key:         key,
		ContentType: req.ContentType,
		SizeBytes:   size,
	}
	f.rows[obj.ID] = obj
	return obj, nil
}

func (f *fakeMediaRepo) GetByID(_ context.Context, id string) (*model.MediaObject, error) {
	if obj, ok := f.rows[id]; ok {
		return obj, nil
	}
	return nil, data.ErrMediaNotFound
}

func (f *fakeMediaRepo) ListByStory(_ context.Context, storyID int64) ([]*model.MediaObject, error) {
	var out []*model.MediaObject
	for _, obj := range f.rows {
		if obj.StoryID != nil && *obj.StoryID == storyID {
			out = append(out, obj)
		}
	}
	return out, nil
}

func (f *fakeMediaRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := f.rows[id]; !ok {
		return false, nil
	}
	delete(f.rows, id)
	return true, nil
}

func TestMediaService_Upload_Open_Delete(t *testing.T) {
	repo := newFakeMediaRepo()
	store := newFakeObjectStore()
	svc := NewMediaService(MediaServiceOptions{Repo: repo, Store: store})

	ctx := context.Background()
	obj, err := svc.Upload(ctx, &model.CreateMediaRequest{
		Kind:        model.MediaKindImage,
		ContentType: "image/png",
	}, strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, int64(9), obj.SizeBytes)
	assert.True(t, strings.HasPrefix(obj.Key, "media/image/"))

	got, rng, err := svc.Open(ctx, obj.ID, "")
	require.NoError(t, err)
	defer rng.Body.Close()
	assert.Equal(t, obj.Key, got.Key)
	b, err := io.ReadAll(rng.Body)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(b))

	ok, err := svc.Delete(ctx, obj.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// bytes are gone with the row
	assert.Empty(t, store.objects)
	_, _, err = svc.Open(ctx, obj.ID, "")
	assert.ErrorIs(t, err, data.ErrMediaNotFound)
}

func TestMediaService_Upload_MetadataFailureCleansUpObject(t *testing.T) {
	repo := newFakeMediaRepo()
	repo.createErr = errors.New("insert failed")
	store := newFakeObjectStore()
	svc := NewMediaService(MediaServiceOptions{Repo: repo, Store: store})

	_, err := svc.Upload(context.Background(), &model.CreateMediaRequest{
		Kind:        model.MediaKindVideo,
		ContentType: "video/mp4",
	}, strings.NewReader("mp4"))
	require.Error(t, err)
	assert.Empty(t, store.objects)
}

func TestMediaService_Upload_RejectsInvalidRequest(t *testing.T) {
	svc := NewMediaService(MediaServiceOptions{Repo: newFakeMediaRepo(), Store: newFakeObjectStore()})

	_, err := svc.Upload(context.Background(), &model.CreateMediaRequest{
		Kind:        model.MediaKindImage,
		ContentType: "text/plain",
	}, strings.NewReader("x"))
	require.Error(t, err)
}
