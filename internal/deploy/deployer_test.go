package deploy

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/config"
)

// fakeS3 stores objects in memory and counts read calls.
type fakeS3 struct {
	objects      map[string][]byte
	contentTypes map[string]string
	gets         int
	putErr       error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = data
	if in.ContentType != nil {
		f.contentTypes[*in.Key] = *in.ContentType
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.gets++
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(data)))}, nil
}

// fakeCloudFront records invalidation requests.
type fakeCloudFront struct {
	batches []*cftypes.InvalidationBatch
}

func (f *fakeCloudFront) CreateInvalidation(_ context.Context, in *cloudfront.CreateInvalidationInput, _ ...func(*cloudfront.Options)) (*cloudfront.CreateInvalidationOutput, error) {
	f.batches = append(f.batches, in.InvalidationBatch)
	return &cloudfront.CreateInvalidationOutput{
		Invalidation: &cftypes.Invalidation{Id: aws.String("INV123")},
	}, nil
}

func outputTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func siteTarget() config.Target {
	return config.Target{Bucket: "test-bucket", Prefix: "site/"}
}

func TestDeploy_UploadsAllFilesUnderPrefix(t *testing.T) {
	out := outputTree(t, map[string]string{
		"index.html":          "<html></html>",
		"contacto/index.html": "<html>form</html>",
		"assets/js/site.js":   "'use strict';",
	})
	s3c := newFakeS3()

	result, err := New(s3c, nil, siteTarget(), Options{}).Deploy(context.Background(), out)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Uploaded)
	assert.Equal(t, 0, result.Skipped)

	// index.html lands at site/index.html.
	assert.Contains(t, s3c.objects, "site/index.html")
	assert.Contains(t, s3c.objects, "site/contacto/index.html")
	assert.Contains(t, s3c.objects, "site/assets/js/site.js")
	assert.Contains(t, s3c.objects, "site/"+ManifestKey)

	assert.Equal(t, "text/html; charset=utf-8", s3c.contentTypes["site/index.html"])
	assert.Equal(t, "application/javascript; charset=utf-8", s3c.contentTypes["site/assets/js/site.js"])
}

func TestDeploy_SkipsUnchangedFilesOnRedeploy(t *testing.T) {
	out := outputTree(t, map[string]string{
		"index.html": "<html>v1</html>",
		"about.html": "<html>about</html>",
	})
	s3c := newFakeS3()
	target := siteTarget()

	_, err := New(s3c, nil, target, Options{}).Deploy(context.Background(), out)
	require.NoError(t, err)

	// Redeploy without changes: everything is skipped.
	result, err := New(s3c, nil, target, Options{}).Deploy(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Uploaded)
	assert.Equal(t, 2, result.Skipped)

	// Change one file: only it is re-uploaded.
	require.NoError(t, os.WriteFile(filepath.Join(out, "index.html"), []byte("<html>v2</html>"), 0o644))
	result, err = New(s3c, nil, target, Options{}).Deploy(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Uploaded)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, "<html>v2</html>", string(s3c.objects["site/index.html"]))
}

func TestDeploy_ForceUploadsEverything(t *testing.T) {
	out := outputTree(t, map[string]string{"index.html": "<html></html>"})
	s3c := newFakeS3()
	target := siteTarget()

	_, err := New(s3c, nil, target, Options{}).Deploy(context.Background(), out)
	require.NoError(t, err)

	result, err := New(s3c, nil, target, Options{Force: true}).Deploy(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Uploaded)
	assert.Equal(t, 0, result.Skipped)
}

func TestDeploy_DryRunTouchesNothing(t *testing.T) {
	out := outputTree(t, map[string]string{"index.html": "<html></html>"})
	s3c := newFakeS3()
	cf := &fakeCloudFront{}
	target := siteTarget()
	target.DistributionID = "E123ABC"

	result, err := New(s3c, cf, target, Options{DryRun: true}).Deploy(context.Background(), out)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Uploaded)
	assert.Empty(t, s3c.objects, "dry run must not upload")
	assert.Zero(t, s3c.gets, "dry run must not fetch the remote manifest")
	assert.Empty(t, cf.batches, "dry run must not invalidate")
}

func TestDeploy_DryRunNeedsNoClients(t *testing.T) {
	out := outputTree(t, map[string]string{"index.html": "<html></html>"})

	// The deploy command builds a dry-run deployer without AWS clients.
	result, err := New(nil, nil, siteTarget(), Options{DryRun: true}).Deploy(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Uploaded)
	assert.Equal(t, 0, result.Skipped)
}

func TestDeploy_InvalidatesDistribution(t *testing.T) {
	out := outputTree(t, map[string]string{"index.html": "<html></html>"})
	s3c := newFakeS3()
	cf := &fakeCloudFront{}
	target := siteTarget()
	target.DistributionID = "E123ABC"

	result, err := New(s3c, cf, target, Options{}).Deploy(context.Background(), out)
	require.NoError(t, err)

	assert.Equal(t, "INV123", result.InvalidationID)
	require.Len(t, cf.batches, 1)
	assert.Equal(t, []string{"/*"}, cf.batches[0].Paths.Items)
	assert.True(t, strings.HasPrefix(*cf.batches[0].CallerReference, "sitegen-"))
}

func TestDeploy_NoDistributionSkipsInvalidation(t *testing.T) {
	out := outputTree(t, map[string]string{"index.html": "<html></html>"})
	s3c := newFakeS3()

	result, err := New(s3c, nil, siteTarget(), Options{}).Deploy(context.Background(), out)
	require.NoError(t, err)
	assert.Empty(t, result.InvalidationID)
}

func TestDeploy_MissingOutputDir(t *testing.T) {
	_, err := New(newFakeS3(), nil, siteTarget(), Options{}).
		Deploy(context.Background(), filepath.Join(t.TempDir(), "dist"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run a build first")
}

func TestDeploy_UploadFailureAborts(t *testing.T) {
	out := outputTree(t, map[string]string{"index.html": "<html></html>"})
	s3c := newFakeS3()
	s3c.putErr = assert.AnError

	_, err := New(s3c, nil, siteTarget(), Options{}).Deploy(context.Background(), out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload index.html")
}
