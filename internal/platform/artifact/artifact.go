package artifact

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/bookgraph/internal/platform/logger"
)

const gcsScheme = "gs://"

// Location is a parsed artifact reference. Bucket is empty for local paths.
type Location struct {
	Bucket string
	Object string
	Path   string
}

func (l Location) Remote() bool { return l.Bucket != "" }

func (l Location) String() string {
	if l.Remote() {
		return gcsScheme + l.Bucket + "/" + l.Object
	}
	return l.Path
}

// ParseLocation accepts a filesystem path or a gs://bucket/object URI.
func ParseLocation(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Location{}, fmt.Errorf("artifact location is empty")
	}
	if !strings.HasPrefix(raw, gcsScheme) {
		return Location{Path: raw}, nil
	}
	rest := strings.TrimPrefix(raw, gcsScheme)
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || strings.TrimLeft(object, "/") == "" {
		return Location{}, fmt.Errorf("invalid gcs uri %q: want gs://bucket/object", raw)
	}
	return Location{Bucket: bucket, Object: strings.TrimLeft(object, "/")}, nil
}

// Opener opens artifacts by location string.
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// Store opens local files directly and gs:// objects through a lazily created storage client.
type Store struct {
	log *logger.Logger

	mu  sync.Mutex
	gcs *storage.Client
}

func NewStore(log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{log: log.With("client", "Artifact")}
}

func (s *Store) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}
	if !loc.Remote() {
		f, err := os.Open(loc.Path)
		if err != nil {
			return nil, fmt.Errorf("open artifact %s: %w", loc.Path, err)
		}
		return f, nil
	}
	client, err := s.client(ctx)
	if err != nil {
		return nil, err
	}
	r, err := client.Bucket(loc.Bucket).Object(loc.Object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open artifact %s: %w", loc, err)
	}
	s.log.Debug("Opened remote artifact", "location", loc.String(), "size", r.Attrs.Size)
	return r, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gcs == nil {
		return nil
	}
	err := s.gcs.Close()
	s.gcs = nil
	return err
}

func (s *Store) client(ctx context.Context) (*storage.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gcs != nil {
		return s.gcs, nil
	}
	c, err := storage.NewClient(ctx, clientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	s.gcs = c
	return c, nil
}

func clientOptionsFromEnv() []option.ClientOption {
	if strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST")) != "" {
		return []option.ClientOption{option.WithoutAuthentication()}
	}
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadOnly)}
	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	switch {
	case creds == "":
	case strings.HasPrefix(creds, "{"):
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	default:
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	return opts
}
