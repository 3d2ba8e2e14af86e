package wakes

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/platform/wakeup"
)

const (
	fieldWakes   = "wakes"
	fieldKey     = "key"
	fieldAt      = "at"
	fieldMessage = "message"
)

// errMalformedWake is returned for entries missing required fields.
var errMalformedWake = errors.New("malformed wake entry")

// FileRepository persists pending wakes to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the JSON file.
	path string
	// mu protects concurrent access to the file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the pending wakes from disk.
// It returns wakeup.ErrNotFound when the file does not exist yet.
func (r *FileRepository) Load(_ context.Context) ([]domain.Wake, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, wakeup.ErrNotFound
		}

		return nil, fmt.Errorf("read wakes file: %w", err)
	}

	var document structpb.Struct
	if err = protojson.Unmarshal(contents, &document); err != nil {
		return nil, fmt.Errorf("decode wakes file: %w", err)
	}

	return fromProto(&document)
}

// Save writes the pending wakes to disk.
func (r *FileRepository) Save(_ context.Context, wakes []domain.Wake) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	document, err := toProto(wakes)
	if err != nil {
		return fmt.Errorf("encode wakes: %w", err)
	}

	marshalOptions := protojson.MarshalOptions{
		Multiline: true,
	}

	data, err := marshalOptions.Marshal(document)
	if err != nil {
		return fmt.Errorf("encode wakes: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write wakes file: %w", err)
	}

	return nil
}

// fromProto converts the stored document into domain wakes.
func fromProto(document *structpb.Struct) ([]domain.Wake, error) {
	list := document.GetFields()[fieldWakes].GetListValue()
	if list == nil {
		return nil, nil
	}

	result := make([]domain.Wake, 0, len(list.GetValues()))

	for i, value := range list.GetValues() {
		fields := value.GetStructValue().GetFields()

		key := fields[fieldKey].GetStringValue()
		if key == "" {
			return nil, fmt.Errorf("entry %d: %w", i, errMalformedWake)
		}

		at, err := time.Parse(time.RFC3339Nano, fields[fieldAt].GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w: %w", i, errMalformedWake, err)
		}

		result = append(result, domain.Wake{
			Key:     domain.Key(key),
			At:      at.Local(),
			Message: fields[fieldMessage].GetStringValue(),
		})
	}

	return result, nil
}

// toProto converts domain wakes into the stored document.
func toProto(wakes []domain.Wake) (*structpb.Struct, error) {
	entries := make([]any, 0, len(wakes))
	for _, w := range wakes {
		entries = append(entries, map[string]any{
			fieldKey:     w.Key.String(),
			fieldAt:      w.At.Format(time.RFC3339Nano),
			fieldMessage: w.Message,
		})
	}

	return structpb.NewStruct(map[string]any{
		fieldWakes: entries,
	})
}
