// Package memdev provides a demonstrative in-memory device implementing
// the SyncIO and Lifecycle capability interfaces, for registration in the
// HAL device table. Its sharded locking is grounded on the reference
// backend's Memory implementation (backend/mem.go in the upstream block
// device library): lock only the shards an access actually touches, so
// concurrent I/O from unrelated offsets does not serialize on one mutex.
package memdev

import (
	"sync"

	"github.com/osalkit/osal/internal/abi"
	"github.com/osalkit/osal/internal/interfaces"
)

// ShardSize bounds how many bytes a single shard lock protects.
const ShardSize = 64 * 1024

// Config is the Device's Config value a DeviceDescriptor carries; the
// registry passes it back to Init unchanged.
type Config struct {
	SizeBytes int
}

// Device is a sharded, fixed-size RAM disk.
type Device struct {
	data    []byte
	shards  []sync.RWMutex
	started bool
	mu      sync.Mutex // guards started, not data
}

// New constructs a Device of the given size, pre-sized into ShardSize
// shards per the teacher's sharding scheme.
func New(size int) *Device {
	numShards := (size + ShardSize - 1) / ShardSize
	if numShards < 1 {
		numShards = 1
	}
	return &Device{
		data:   make([]byte, size),
		shards: make([]sync.RWMutex, numShards),
	}
}

// Init adapts New into the abi.DeviceDescriptor.Init signature, reading
// the device size from d.Config (an *memdev.Config).
func Init(d *abi.DeviceDescriptor) (any, abi.Status) {
	cfg, ok := d.Config.(*Config)
	if !ok || cfg == nil || cfg.SizeBytes <= 0 {
		return nil, abi.InvalidParam
	}
	return New(cfg.SizeBytes), abi.OK
}

func (d *Device) shardRange(off int64, length int) (start, end int) {
	start = int(off) / ShardSize
	end = int(off+int64(length)-1) / ShardSize
	if end >= len(d.shards) {
		end = len(d.shards) - 1
	}
	return start, end
}

// Read implements interfaces.SyncIO.
func (d *Device) Read(p []byte, off int64) (int, abi.Status) {
	if off < 0 || off >= int64(len(d.data)) {
		return 0, abi.InvalidParam
	}
	if avail := int64(len(d.data)) - off; int64(len(p)) > avail {
		p = p[:avail]
	}

	start, end := d.shardRange(off, len(p))
	for i := start; i <= end; i++ {
		d.shards[i].RLock()
	}
	n := copy(p, d.data[off:off+int64(len(p))])
	for i := start; i <= end; i++ {
		d.shards[i].RUnlock()
	}
	return n, abi.OK
}

// Write implements interfaces.SyncIO.
func (d *Device) Write(p []byte, off int64) (int, abi.Status) {
	if off < 0 || off >= int64(len(d.data)) {
		return 0, abi.InvalidParam
	}
	if avail := int64(len(d.data)) - off; int64(len(p)) > avail {
		p = p[:avail]
	}

	start, end := d.shardRange(off, len(p))
	for i := start; i <= end; i++ {
		d.shards[i].Lock()
	}
	n := copy(d.data[off:off+int64(len(p))], p)
	for i := start; i <= end; i++ {
		d.shards[i].Unlock()
	}
	return n, abi.OK
}

// ReadAsync implements interfaces.AsyncIO by running Read inline and
// invoking done before returning; a real platform would post the
// completion from an interrupt or DMA-complete callback instead.
func (d *Device) ReadAsync(p []byte, off int64, done func(n int, status abi.Status)) {
	n, status := d.Read(p, off)
	done(n, status)
}

// WriteAsync mirrors ReadAsync for writes.
func (d *Device) WriteAsync(p []byte, off int64, done func(n int, status abi.Status)) {
	n, status := d.Write(p, off)
	done(n, status)
}

// Start implements interfaces.Lifecycle.
func (d *Device) Start() abi.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.started = true
	return abi.OK
}

// Stop implements interfaces.Lifecycle.
func (d *Device) Stop() abi.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.started = false
	return abi.OK
}

// Close implements interfaces.Lifecycle, releasing the backing buffer.
func (d *Device) Close() abi.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.started = false
	d.data = nil
	return abi.OK
}

// Size returns the device's capacity in bytes.
func (d *Device) Size() int { return len(d.data) }

var (
	_ interfaces.SyncIO    = (*Device)(nil)
	_ interfaces.AsyncIO   = (*Device)(nil)
	_ interfaces.Lifecycle = (*Device)(nil)
)
