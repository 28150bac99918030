package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"

	"github.com/baharkarakas/rentacar-backend/internal/models"
	"github.com/google/uuid"
)

// Memory keeps uploaded images in process. It copies the file contents so
// callers can remove their temp files right away.
type Memory struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte
}

func NewMemory(baseURL string) *Memory {
	if baseURL == "" {
		baseURL = "memory://images"
	}
	return &Memory{baseURL: baseURL, objects: map[string][]byte{}}
}

func (m *Memory) Upload(ctx context.Context, localPath, folder string) (models.Image, error) {
	if err := ctx.Err(); err != nil {
		return models.Image{}, err
	}
	b, err := os.ReadFile(localPath)
	if err != nil {
		return models.Image{}, fmt.Errorf("read %s: %w", localPath, err)
	}
	key := path.Join(folder, uuid.NewString()+filepath.Ext(localPath))

	m.mu.Lock()
	m.objects[key] = b
	m.mu.Unlock()
	return models.Image{URL: m.baseURL + "/" + key, Handle: key}, nil
}

func (m *Memory) Delete(_ context.Context, handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[handle]; !ok {
		return fmt.Errorf("object %s not found", handle)
	}
	delete(m.objects, handle)
	return nil
}

func (m *Memory) Has(handle string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[handle]
	return ok
}

// Handles lists stored keys in sorted order.
func (m *Memory) Handles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
