package dbconnections

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioBlockStorageTestingConnection struct {
	MinioBlockStorageProductionConnection
}

// NewMinioBlockStorageTestingConnection connects to the server pointed by
// IMGPIPE_TESTING_MINIO_ENDPOINT using a fresh bucket, the test is skipped
// when the variable is not set.
func NewMinioBlockStorageTestingConnection(t *testing.T) *MinioBlockStorageTestingConnection {
	endpoint := os.Getenv("IMGPIPE_TESTING_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("IMGPIPE_TESTING_MINIO_ENDPOINT is not set")
	}

	conn, err := NewMinioBlockStorageProductionConnection(context.Background(), MinioBlockStorageProductionConnectionConfig{
		Endpoint:  endpoint,
		AccessKey: testingServerAccessKey,
		SecretKey: testingServerSecretKey,
		Bucket:    getRandomTestingBucketName(endpoint),
		Location:  "us-east-1",
		UseSSL:    false,
	})
	if err != nil {
		panic("Error when connecting to minio block storage: " + err.Error())
	}

	testingConn := &MinioBlockStorageTestingConnection{conn}
	t.Cleanup(testingConn.dropTestBucket)

	return testingConn
}

func (c *MinioBlockStorageTestingConnection) dropTestBucket() {
	ctx := context.Background()

	names, err := c.ListObjectNames(ctx)
	if err != nil {
		panic("Error when listing objects of test bucket: " + err.Error())
	}

	for _, name := range names {
		if err := c.DeleteObject(ctx, name); err != nil {
			panic("Error when cleaning test bucket: " + err.Error())
		}
	}

	if err := c.client.RemoveBucket(ctx, c.config.Bucket); err != nil {
		panic("Error when dropping test bucket: " + err.Error())
	}
}

func getRandomTestingBucketName(endpoint string) string {
	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(testingServerAccessKey, testingServerSecretKey, ""),
		Secure: false,
	})
	if err != nil {
		panic("Error when generating random name of test bucket: " + err.Error())
	}

	for i := 0; i < 10; i++ {
		id := uuid.New().String()
		bucketName := id + "-testing-bucket"

		exists, err := minioClient.BucketExists(context.Background(), bucketName)
		if err != nil {
			panic("Error when checking if bucket name exists: " + err.Error())
		}
		if !exists {
			return bucketName
		}
	}

	panic("Could not generate random bucket name")
}

const testingServerAccessKey = "minio"
const testingServerSecretKey = "minio123"
