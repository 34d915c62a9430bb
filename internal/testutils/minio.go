//go:build integration

package testutils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gocloud.dev/blob"
)

const (
	minioAccessKey = "minioadmin"
	minioSecretKey = "minioadmin"
)

// MinioBucket is an S3 bucket served by a MinIO container.
type MinioBucket struct {
	Container testcontainers.Container

	// URL opens the bucket with gocloud.dev/blob/s3blob.
	URL string
}

// Open opens the bucket. The caller must Close it.
func (m *MinioBucket) Open(ctx context.Context) (*blob.Bucket, error) {
	return blob.OpenBucket(ctx, m.URL)
}

// StartMinio runs a MinIO container with an empty bucket named bucket and
// terminates it when the test ends. AWS credentials for the container are
// exported to the test environment.
func StartMinio(t *testing.T, ctx context.Context, bucket string) *MinioBucket {
	t.Helper()

	netName := fmt.Sprintf("ftp-backup-minio-%d", time.Now().UnixNano())
	network, err := testcontainers.GenericNetwork(ctx, testcontainers.GenericNetworkRequest{
		NetworkRequest: testcontainers.NetworkRequest{Name: netName},
	})
	if err != nil {
		t.Fatalf("create network: %v", err)
	}
	t.Cleanup(func() { network.Remove(context.Background()) })

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:          "minio/minio:latest",
			ExposedPorts:   []string{"9000/tcp"},
			Networks:       []string{netName},
			NetworkAliases: map[string][]string{netName: {"minio"}},
			Env: map[string]string{
				"MINIO_ROOT_USER":     minioAccessKey,
				"MINIO_ROOT_PASSWORD": minioSecretKey,
			},
			Cmd:        []string{"server", "/data"},
			WaitingFor: wait.ForHTTP("/minio/health/ready").WithPort("9000"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start minio: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate minio: %v", err)
		}
	})

	makeBucket(t, ctx, netName, bucket)

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("minio host: %v", err)
	}
	port, err := container.MappedPort(ctx, "9000")
	if err != nil {
		t.Fatalf("minio port: %v", err)
	}

	t.Setenv("AWS_ACCESS_KEY_ID", minioAccessKey)
	t.Setenv("AWS_SECRET_ACCESS_KEY", minioSecretKey)

	return &MinioBucket{
		Container: container,
		URL: fmt.Sprintf("s3://%s?endpoint=http://%s:%s&use_path_style=true&disable_https=true&region=us-east-1",
			bucket, host, port.Port()),
	}
}

// makeBucket creates bucket with a one-shot minio/mc container on the same
// network as the server.
func makeBucket(t *testing.T, ctx context.Context, netName, bucket string) {
	t.Helper()

	script := fmt.Sprintf("/usr/bin/mc alias set local http://minio:9000 %s %s && /usr/bin/mc mb local/%s",
		minioAccessKey, minioSecretKey, bucket)

	mc, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:      "minio/mc:latest",
			Networks:   []string{netName},
			Entrypoint: []string{"/bin/sh", "-c"},
			Cmd:        []string{script},
			WaitingFor: wait.ForExit(),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("create bucket %s: %v", bucket, err)
	}
	defer mc.Terminate(ctx)

	state, err := mc.State(ctx)
	if err != nil {
		t.Fatalf("mc state: %v", err)
	}
	if state.ExitCode != 0 {
		t.Fatalf("mc mb %s exited with %d", bucket, state.ExitCode)
	}
}

// CompareObject reads key from bkt in chunks and fails the test when it
// differs from expected.
func CompareObject(t *testing.T, ctx context.Context, bkt *blob.Bucket, key string, expected []byte) {
	t.Helper()

	r, err := bkt.NewReader(ctx, key, nil)
	if err != nil {
		t.Fatalf("open %s: %v", key, err)
	}
	defer r.Close()

	buf := make([]byte, 64*1024)
	offset := 0
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if offset+n > len(expected) {
				t.Fatalf("%s: more data than expected (%d bytes)", key, len(expected))
			}
			if !bytes.Equal(buf[:n], expected[offset:offset+n]) {
				t.Fatalf("%s: data mismatch at offset %d", key, offset)
			}
			offset += n
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("%s: read error at offset %d: %v", key, offset, err)
		}
	}

	if offset != len(expected) {
		t.Fatalf("%s: got %d bytes, want %d", key, offset, len(expected))
	}
}
