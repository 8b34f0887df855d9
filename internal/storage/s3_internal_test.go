package storage

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"speteval/internal/config"
)

func TestNewS3DisablesSDKRetries(t *testing.T) {
	src, err := NewS3(config.S3{Bucket: "corpus", Region: "us-east-1", Endpoint: "http://127.0.0.1:9000", MaxRetries: 3})
	if err != nil {
		t.Fatalf("NewS3 returned error: %v", err)
	}
	client, ok := src.client.(*s3.Client)
	if !ok {
		t.Fatalf("unexpected client type %T", src.client)
	}
	if _, ok := client.Options().Retryer.(aws.NopRetryer); !ok {
		t.Fatalf("expected SDK retries disabled, got %T", client.Options().Retryer)
	}
	if src.maxRetries != 3 {
		t.Fatalf("maxRetries = %d, want 3", src.maxRetries)
	}
}
