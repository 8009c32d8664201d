package device

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/osalkit/osal/internal/abi"
)

func TestDeviceGetBoundaryScenario(t *testing.T) {
	// spec.md §8 boundary scenario 6.
	r := NewRegistry()
	var initCalls atomic.Int32

	r.Register(&abi.DeviceDescriptor{
		Name:  "dev0",
		State: &abi.DeviceState{},
		Init: func(*abi.DeviceDescriptor) (any, abi.Status) {
			initCalls.Add(1)
			return 0xBEEF, abi.OK
		},
	})

	api, status := r.Get("dev0")
	require.True(t, status.OK())
	require.Equal(t, 0xBEEF, api)

	api2, status2 := r.Get("dev0")
	require.True(t, status2.OK())
	require.Equal(t, 0xBEEF, api2)

	require.EqualValues(t, 1, initCalls.Load())
}

func TestDeviceFindUnknownName(t *testing.T) {
	r := NewRegistry()
	_, status := r.Find("missing")
	require.Equal(t, abi.NotSupported, status)
}

func TestDeviceGetPropagatesInitFailure(t *testing.T) {
	r := NewRegistry()
	r.Register(&abi.DeviceDescriptor{
		Name:  "broken",
		State: &abi.DeviceState{},
		Init: func(*abi.DeviceDescriptor) (any, abi.Status) {
			return nil, abi.IO
		},
	})

	_, status := r.Get("broken")
	require.Equal(t, abi.IO, status)
}

func TestDeviceGetTreatsNilAPIAsFailure(t *testing.T) {
	r := NewRegistry()
	r.Register(&abi.DeviceDescriptor{
		Name:  "nilapi",
		State: &abi.DeviceState{},
		Init: func(*abi.DeviceDescriptor) (any, abi.Status) {
			return nil, abi.OK
		},
	})

	_, status := r.Get("nilapi")
	require.Equal(t, abi.GenericError, status)
}

func TestDeviceGetInitializesOnlyOnceUnderConcurrency(t *testing.T) {
	r := NewRegistry()
	var initCalls atomic.Int32
	r.Register(&abi.DeviceDescriptor{
		Name:  "dev0",
		State: &abi.DeviceState{},
		Init: func(*abi.DeviceDescriptor) (any, abi.Status) {
			initCalls.Add(1)
			return 1, abi.OK
		},
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Get("dev0")
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, initCalls.Load())
}

func TestDeviceInvariantInitializedImpliesAPINonNilAndOK(t *testing.T) {
	state := &abi.DeviceState{}
	require.False(t, state.IsInitialized())
	state.API = "x"
	state.InitResult = abi.OK
	state.MarkInitialized()
	require.True(t, state.IsInitialized())
}
