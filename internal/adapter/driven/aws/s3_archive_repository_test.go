package aws

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	data, _ := io.ReadAll(params.Body)
	f.body = string(data)
	return &s3.PutObjectOutput{}, nil
}

func TestUpload(t *testing.T) {
	local := filepath.Join(t.TempDir(), "plan-meta_20240220_100000.csv")
	if err := os.WriteFile(local, []byte("a,b\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fake := &fakeS3{}
	repo := &S3ArchiveRepositoryImpl{client: fake}

	location, err := repo.Upload(context.Background(), local, "reports", "/realloc/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if location != "s3://reports/realloc/plan-meta_20240220_100000.csv" {
		t.Errorf("location = %s", location)
	}
	if aws.ToString(fake.input.ContentType) != "text/csv" || fake.body != "a,b\n" {
		t.Errorf("input = %+v body=%q", fake.input, fake.body)
	}
}

func TestUpload_Errors(t *testing.T) {
	repo := &S3ArchiveRepositoryImpl{client: &fakeS3{err: errors.New("access denied")}}

	if _, err := repo.Upload(context.Background(), "x.csv", "", ""); err == nil {
		t.Error("empty bucket: want error")
	}
	if _, err := repo.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), "b", ""); err == nil {
		t.Error("missing file: want error")
	}

	local := filepath.Join(t.TempDir(), "plan.pdf")
	os.WriteFile(local, []byte("%PDF"), 0o600)
	if _, err := repo.Upload(context.Background(), local, "b", ""); err == nil {
		t.Error("put failure: want error")
	}
}

func TestObjectKey(t *testing.T) {
	tests := []struct{ prefix, path, want string }{
		{"", "/tmp/a.json", "a.json"},
		{"reports", "/tmp/a.json", "reports/a.json"},
		{"a/b/", "a.pdf", "a/b/a.pdf"},
	}
	for _, tt := range tests {
		if got := objectKey(tt.prefix, tt.path); got != tt.want {
			t.Errorf("objectKey(%q, %q) = %q; want %q", tt.prefix, tt.path, got, tt.want)
		}
	}
}
