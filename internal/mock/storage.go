package mock

import (
	"context"
	"io"
	"sync"

	"github.com/fhuszti/medias-display-go/internal/port"
)

// Storage implements port.Storage for tests. Files maps object keys to their
// content; a key absent from Files is read with ReadErrByKey[key] or NotFoundErr.
type Storage struct {
	mu sync.Mutex

	// stored values
	Files       map[string][]byte
	ContentType string
	StatInfoOut port.FileInfo
	ExistsOut   bool

	// errors
	InitBucketErr error
	StatErr       error
	SaveErr       error
	FileExistsErr error
	NotFoundErr   error
	ReadErrByKey  map[string][]error

	// captured inputs
	SavedKey  string
	SavedData []byte
	SavedOpts map[string]string

	// call flags
	InitBucketCalled bool
	StatCalled       bool
	SaveCalled       bool
	FileExistsCalled bool
	ReadCalls        map[string]int
}

func (m *Storage) InitBucket(ctx context.Context, bucket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitBucketCalled = true
	return m.InitBucketErr
}

func (m *Storage) FileExists(ctx context.Context, bucket, fileKey string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FileExistsCalled = true
	if m.FileExistsErr != nil {
		return false, m.FileExistsErr
	}
	return m.ExistsOut, nil
}

func (m *Storage) StatFile(ctx context.Context, bucket, fileKey string) (port.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatCalled = true
	if m.StatErr != nil {
		return port.FileInfo{}, m.StatErr
	}
	return m.StatInfoOut, nil
}

// ReadFile pops one queued error for the key (if any) before serving Files.
func (m *Storage) ReadFile(ctx context.Context, bucket, fileKey string) ([]byte, port.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadCalls == nil {
		m.ReadCalls = map[string]int{}
	}
	m.ReadCalls[fileKey]++

	if errs := m.ReadErrByKey[fileKey]; len(errs) > 0 {
		m.ReadErrByKey[fileKey] = errs[1:]
		return nil, port.FileInfo{}, errs[0]
	}
	data, ok := m.Files[fileKey]
	if !ok {
		return nil, port.FileInfo{}, m.NotFoundErr
	}
	return data, port.FileInfo{SizeBytes: int64(len(data)), ContentType: m.ContentType}, nil
}

func (m *Storage) SaveFile(ctx context.Context, bucket, fileKey string, reader io.Reader, fileSize int64, opts map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalled = true
	m.SavedKey = fileKey
	m.SavedOpts = opts
	if m.SaveErr != nil {
		return m.SaveErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.SavedData = data
	return nil
}

// Reads returns how many times fileKey was read.
func (m *Storage) Reads(fileKey string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ReadCalls[fileKey]
}
