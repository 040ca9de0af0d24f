package minio

import (
	"context"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/haroldove90-spec/Cowele/internal/config"
	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Интеграционные тесты для пакета minio:
//   - поднимают реальный MinIO через testcontainers-go;
//   - проверяют New (успех и отсутствие бакета) и Upload с публичным URL.
//
// Запуск:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/minio -v -race -count=1

const (
	rootUser     = "root"
	rootPassword = "rootpass"
	bucket       = "bathrooms"
)

func startMinio(t *testing.T, createBucket bool) (config.ObjectsConfig, *mclient.Client) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image: "docker.io/minio/minio:latest",
		Env: map[string]string{
			"MINIO_ROOT_USER":     rootUser,
			"MINIO_ROOT_PASSWORD": rootPassword,
		},
		Cmd:          []string{"server", "/data"},
		ExposedPorts: []string{"9000/tcp"},
		WaitingFor:   wait.ForListeningPort("9000/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "9000/tcp")

	admin, err := mclient.New(host+":"+port.Port(), &mclient.Options{
		Creds:  credentials.NewStaticV4(rootUser, rootPassword, ""),
		Secure: false,
	})
	require.NoError(t, err)

	if createBucket {
		require.NoError(t, admin.MakeBucket(ctx, bucket, mclient.MakeBucketOptions{Region: "us-east-1"}))
	}

	cfg := config.ObjectsConfig{
		Driver:    config.ObjectsMinio,
		Bucket:    bucket,
		Endpoint:  fmt.Sprintf("http://%s:%s", host, port.Port()),
		AccessKey: rootUser,
		SecretKey: rootPassword,
	}

	return cfg, admin
}

func TestIntegration_New_BucketMissing(t *testing.T) {
	cfg, _ := startMinio(t, false)

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
}

func TestIntegration_Upload(t *testing.T) {
	cfg, admin := startMinio(t, true)
	ctx := context.Background()

	o, err := New(ctx, cfg)
	require.NoError(t, err)

	url, err := o.Upload(ctx, "1700000000000_foto_bano.jpg", "image/jpeg", []byte("jpeg-bytes"))
	require.NoError(t, err)
	require.Equal(t, cfg.Endpoint+"/"+bucket+"/1700000000000_foto_bano.jpg", url)

	obj, err := admin.GetObject(ctx, bucket, "1700000000000_foto_bano.jpg", mclient.GetObjectOptions{})
	require.NoError(t, err)
	data, err := io.ReadAll(obj)
	require.NoError(t, err)
	require.Equal(t, "jpeg-bytes", string(data))

	info, err := admin.StatObject(ctx, bucket, "1700000000000_foto_bano.jpg", mclient.StatObjectOptions{})
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", info.ContentType)

	cfg.PublicBaseURL = "https://cdn.cowele.mx/bathrooms/"
	o, err = New(ctx, cfg)
	require.NoError(t, err)

	url, err = o.Upload(ctx, "avatar_p1_1700000000000", "image/png", []byte("png"))
	require.NoError(t, err)
	require.Equal(t, "https://cdn.cowele.mx/bathrooms/avatar_p1_1700000000000", url)

	_, err = o.Upload(ctx, "", "image/png", nil)
	require.Error(t, err)
}
