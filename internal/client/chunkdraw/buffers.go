package chunkdraw

import "sync"

// Buffer is a GPU-side buffer handle owned by the renderer.
type Buffer interface {
	Release()
}

// BufferAllocator uploads little-endian vertex and index bytes.
type BufferAllocator interface {
	CreateVertexBuffer(data []byte) (Buffer, error)
	CreateIndexBuffer(data []byte) (Buffer, error)
}

type Buffers struct {
	Vertex     Buffer
	Index      Buffer
	IndexCount uint32
}

func (b *Buffers) release() {
	if b == nil {
		return
	}
	if b.Vertex != nil {
		b.Vertex.Release()
	}
	if b.Index != nil {
		b.Index.Release()
	}
}

// HostBuffer keeps uploaded bytes in memory.
type HostBuffer struct {
	Data  []byte
	owner *HostAllocator
}

func (b *HostBuffer) Release() {
	if b.owner == nil {
		return
	}
	b.owner.mu.Lock()
	b.owner.live--
	b.owner.mu.Unlock()
	b.owner = nil
}

// HostAllocator is a BufferAllocator for headless clients and tests. It
// tracks how many buffers are alive.
type HostAllocator struct {
	mu       sync.Mutex
	live     int
	uploaded int64
}

func (a *HostAllocator) create(data []byte) (Buffer, error) {
	a.mu.Lock()
	a.live++
	a.uploaded += int64(len(data))
	a.mu.Unlock()
	return &HostBuffer{Data: append([]byte(nil), data...), owner: a}, nil
}

func (a *HostAllocator) CreateVertexBuffer(data []byte) (Buffer, error) { return a.create(data) }
func (a *HostAllocator) CreateIndexBuffer(data []byte) (Buffer, error)  { return a.create(data) }

func (a *HostAllocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}

func (a *HostAllocator) UploadedBytes() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.uploaded
}
