// minio предоставляет реализацию storage.Objects на базе MinIO/S3.
// Конструктор нормализует endpoint, настраивает Secure/creds и проверяет
// наличие целевого бакета; Upload кладёт объект и собирает публичный URL.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/haroldove90-spec/Cowele/internal/config"
	"github.com/haroldove90-spec/Cowele/internal/storage"
	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Objects: адаптер MinIO для фотографий мест и аватаров.
type Objects struct {
	bucket  string
	baseURL string
	client  *mclient.Client
}

// New создает и инициализирует клиент MinIO.
// Если PublicBaseURL не задан, публичный URL собирается как <endpoint>/<bucket>/<key>.
func New(ctx context.Context, cfg config.ObjectsConfig) (*Objects, error) {
	const op = "storage/minio/New"

	endpoint := cfg.Endpoint
	secure := strings.HasPrefix(endpoint, "https://")
	scheme := "http"

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	if secure {
		scheme = "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !exists {
		return nil, fmt.Errorf("%s: bucket %q does not exist", op, cfg.Bucket)
	}

	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		base = scheme + "://" + endpoint + "/" + cfg.Bucket
	}

	return &Objects{bucket: cfg.Bucket, baseURL: base, client: client}, nil
}

// Upload кладёт объект в бакет и возвращает его публичный URL.
func (o *Objects) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	const op = "storage/minio/Upload"

	if key == "" {
		return "", fmt.Errorf("%s: empty key", op)
	}

	_, err := o.client.PutObject(ctx, o.bucket, key, bytes.NewReader(data), int64(len(data)), mclient.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return o.baseURL + "/" + key, nil
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.Objects = (*Objects)(nil)
