// Command osalctl exercises a System end to end from the command line:
// it registers an in-memory device, spawns a producer/consumer task pair
// wired through a queue and an event group, and runs until interrupted.
// The flag parsing and signal-driven shutdown sequence are adapted from
// the upstream block device library's cmd/ublk-mem tool.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/osalkit/osal"
	"github.com/osalkit/osal/devices/memdev"
	"github.com/osalkit/osal/internal/logging"
)

func main() {
	var (
		sizeStr = flag.String("size", "64K", "Size of the in-memory device (e.g., 64K, 1M)")
		verbose = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	size, err := parseSize(*sizeStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid size %q: %v\n", *sizeStr, err)
		os.Exit(1)
	}

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	sys := osal.New(nil)
	sys.Diagnostics.RegisterErrorCallback(func(status osal.Status, module, message string) {
		logger.Errorf("[%s] %s: %s", module, status, message)
	})

	sys.RegisterDevice(&osal.DeviceDescriptor{
		Name:  "ram0",
		Config: &memdev.Config{SizeBytes: int(size)},
		State: &osal.DeviceState{},
		Init:  memdev.Init,
	})

	api, status := sys.GetDevice("ram0")
	if !status.OK() {
		logger.Errorf("GetDevice failed: %s", status)
		os.Exit(1)
	}
	dev := api.(*memdev.Device)
	logger.Infof("device ready: %d bytes", dev.Size())

	qh, status := sys.CreateQueue(8, 16)
	if !status.OK() {
		logger.Errorf("CreateQueue failed: %s", status)
		os.Exit(1)
	}
	eh, _ := sys.CreateEventGroup()

	stop := make(chan struct{})
	sys.CreateTask("producer", 10, nil, func(any) {
		var seq uint64
		for {
			select {
			case <-stop:
				return
			default:
			}
			buf := make([]byte, 8)
			for i := range buf {
				buf[i] = byte(seq >> (8 * i))
			}
			sys.SendQueue(qh, buf, osal.TimeoutPoll)
			seq++
			sys.SetEventBits(eh, 0x01)
			time.Sleep(10 * time.Millisecond)
		}
	}, nil)

	sys.CreateTask("consumer", 10, nil, func(any) {
		buf := make([]byte, 8)
		for {
			select {
			case <-stop:
				return
			default:
			}
			if status := sys.ReceiveQueue(qh, buf, 50); status.OK() {
				logger.Debugf("consumed %x", buf)
			}
		}
	}, nil)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	fmt.Printf("osalctl running with device %q (%d bytes); press Ctrl+C to stop\n", "ram0", dev.Size())
	<-sigCh
	close(stop)

	snap := sys.Diagnostics.Snapshot()
	fmt.Printf("final diagnostics: active=%v peak=%v errors=%v\n", snap.Active, snap.Peak, snap.Errors)
}

func parseSize(s string) (int64, error) {
	s = strings.ToUpper(s)
	multiplier := int64(1)
	numStr := s
	switch {
	case strings.HasSuffix(s, "K"):
		multiplier, numStr = 1024, strings.TrimSuffix(s, "K")
	case strings.HasSuffix(s, "M"):
		multiplier, numStr = 1024*1024, strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "G"):
		multiplier, numStr = 1024*1024*1024, strings.TrimSuffix(s, "G")
	}
	n, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return 0, err
	}
	return n * multiplier, nil
}
