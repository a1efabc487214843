package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = data
	f.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		uri     string
		want    Location
		name    string
		wantErr bool
	}{
		{uri: "board.kicad_sch", want: Location{Scheme: SchemeFile, Path: "board.kicad_sch"}, name: "board.kicad_sch"},
		{uri: "/tmp/out/net.json", want: Location{Scheme: SchemeFile, Path: "/tmp/out/net.json"}, name: "net.json"},
		{uri: "file:///data/a.kicad_sch", want: Location{Scheme: SchemeFile, Path: "/data/a.kicad_sch"}, name: "a.kicad_sch"},
		{uri: "s3://designs/boards/rev2/main.kicad_sch", want: Location{Scheme: SchemeS3, Bucket: "designs", Key: "boards/rev2/main.kicad_sch"}, name: "main.kicad_sch"},
		{uri: "s3://designs", wantErr: true},
		{uri: "s3:///key", wantErr: true},
		{uri: "gs://bucket/key", wantErr: true},
		{uri: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			loc, err := ParseLocation(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, loc)
			assert.Equal(t, tt.name, loc.Name())
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := New(nil, nil)
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.json")

	require.NoError(t, store.Create(ctx, path, []byte(`{"nets":{}}`)))

	data, err := store.ReadAll(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, `{"nets":{}}`, string(data))

	// Create replaces existing content
	require.NoError(t, store.Create(ctx, "file://"+filepath.ToSlash(path), []byte("{}")))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestOpenMissingFile(t *testing.T) {
	store := New(nil, nil)
	_, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "missing.kicad_sch"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestS3RoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	store := NewWithS3(fake, nil)

	require.NoError(t, store.Create(ctx, "s3://out/run/divider.json", []byte(`{"a":1}`)))
	assert.Equal(t, "application/json", fake.types["out/run/divider.json"])

	data, err := store.ReadAll(ctx, "s3://out/run/divider.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	_, err = store.Open(ctx, "s3://out/run/missing.json")
	assert.ErrorContains(t, err, "NoSuchKey")
}

func TestNewS3ClientEndpoint(t *testing.T) {
	client, err := NewS3Client(context.Background(), map[string]string{
		"endpoint":          "localhost:9000",
		"region":            "us-east-1",
		"access_key_id":     "minio",
		"secret_access_key": "minio123",
		"use_ssl":           "false",
	})
	require.NoError(t, err)

	opts := client.Options()
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://localhost:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "us-east-1", opts.Region)
}
