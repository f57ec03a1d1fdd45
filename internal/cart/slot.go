package cart

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Slot is a durable named payload owned by one session or user.
// Load returns nil, nil when nothing has been saved under name.
type Slot interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
}

// Slots hands out the Slot for an owner. Delete drops everything the owner
// has saved.
type Slots interface {
	For(owner string) Slot
	Delete(ctx context.Context, owner string) error
}

// MemorySlots keeps payloads in a map. Nothing survives a restart.
type MemorySlots struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemorySlots() *MemorySlots { return &MemorySlots{data: map[string][]byte{}} }

func (m *MemorySlots) For(owner string) Slot { return &memorySlot{parent: m, owner: owner} }

// Put stores raw bytes, bypassing any encoding.
func (m *MemorySlots) Put(owner, name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[owner+"/"+name] = append([]byte(nil), data...)
}

// Get returns the raw bytes saved for owner and name.
func (m *MemorySlots) Get(owner, name string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data[owner+"/"+name]...)
}

func (m *MemorySlots) Delete(ctx context.Context, owner string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if strings.HasPrefix(k, owner+"/") {
			delete(m.data, k)
		}
	}
	return nil
}

type memorySlot struct {
	parent *MemorySlots
	owner  string
}

func (s *memorySlot) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	b, ok := s.parent.data[s.owner+"/"+name]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), b...), nil
}

func (s *memorySlot) Save(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.parent.Put(s.owner, name, data)
	return nil
}

// FileSlots writes one JSON file per owner and slot name under dir.
type FileSlots struct {
	dir string
}

func NewFileSlots(dir string) *FileSlots { return &FileSlots{dir: dir} }

func (f *FileSlots) For(owner string) Slot { return &fileSlot{dir: f.dir, owner: owner} }

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]`)

func (f *FileSlots) Delete(ctx context.Context, owner string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	files, err := filepath.Glob(filepath.Join(f.dir, unsafeName.ReplaceAllString(owner, "_")+".*.json"))
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

type fileSlot struct {
	dir   string
	owner string
}

func (s *fileSlot) path(name string) string {
	file := unsafeName.ReplaceAllString(s.owner, "_") + "." + unsafeName.ReplaceAllString(name, "_") + ".json"
	return filepath.Join(s.dir, file)
}

func (s *fileSlot) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

func (s *fileSlot) Save(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("slot dir: %w", err)
	}
	p := s.path(name)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}
