//go:build linux

package harness

import (
	"encoding/binary"
	"runtime"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

type perfEvent struct {
	name   string
	typ    uint32
	config uint64
	fds    []int // One per CPU
}

type linuxPerfCounters struct {
	events []*perfEvent
}

func openPerfCounters() (perfCounters, error) {
	c := &linuxPerfCounters{events: []*perfEvent{
		{name: "cycles", typ: unix.PERF_TYPE_HARDWARE, config: unix.PERF_COUNT_HW_CPU_CYCLES},
		{name: "instructions", typ: unix.PERF_TYPE_HARDWARE, config: unix.PERF_COUNT_HW_INSTRUCTIONS},
		{name: "cache-misses", typ: unix.PERF_TYPE_HARDWARE, config: unix.PERF_COUNT_HW_CACHE_MISSES},
	}}
	for _, e := range c.events {
		for cpu := 0; cpu < runtime.NumCPU(); cpu++ {
			attr := unix.PerfEventAttr{
				Type:   e.typ,
				Size:   uint32(unsafe.Sizeof(unix.PerfEventAttr{})),
				Config: e.config,
				Bits:   unix.PerfBitDisabled,
			}
			fd, err := unix.PerfEventOpen(&attr, -1, cpu, -1, unix.PERF_FLAG_FD_CLOEXEC)
			if err != nil {
				c.close()
				return nil, errors.Wrapf(err, "perf_event_open(%s, cpu %d)", e.name, cpu)
			}
			e.fds = append(e.fds, fd)
		}
	}
	return c, nil
}

func (c *linuxPerfCounters) ioctl(req uint) error {
	for _, e := range c.events {
		for _, fd := range e.fds {
			if err := unix.IoctlSetInt(fd, req, 0); err != nil {
				return errors.Wrapf(err, "ioctl on %s counter", e.name)
			}
		}
	}
	return nil
}

func (c *linuxPerfCounters) start() error {
	if err := c.ioctl(unix.PERF_EVENT_IOC_RESET); err != nil {
		return err
	}
	return c.ioctl(unix.PERF_EVENT_IOC_ENABLE)
}

func (c *linuxPerfCounters) stop() (map[string]uint64, error) {
	if err := c.ioctl(unix.PERF_EVENT_IOC_DISABLE); err != nil {
		return nil, err
	}
	values := make(map[string]uint64, len(c.events))
	var buf [8]byte
	for _, e := range c.events {
		for _, fd := range e.fds {
			n, err := unix.Read(fd, buf[:])
			if err != nil {
				return nil, errors.Wrapf(err, "reading %s counter", e.name)
			}
			if n != len(buf) {
				return nil, errors.Errorf("short read of %s counter: %d bytes", e.name, n)
			}
			values[e.name] += binary.NativeEndian.Uint64(buf[:])
		}
	}
	return values, nil
}

func (c *linuxPerfCounters) close() {
	for _, e := range c.events {
		for _, fd := range e.fds {
			_ = unix.Close(fd)
		}
		e.fds = nil
	}
}
