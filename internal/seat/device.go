package seat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gvalkov/golang-evdev"

	"github.com/bnema/wlcore/internal/logger"
)

var deviceLogger = logger.WithPrefix("seat.device")

// DeviceClass is what capability an opened evdev node offers, inspected
// from its reported event-type bits (spec.md §4.4 "Device lifecycle":
// "On device-added, inspect capabilities").
type DeviceClass int

const (
	DeviceNone DeviceClass = iota
	DeviceKeyboard
	DevicePointer
	DeviceTouch
)

// Device wraps one opened evdev input node.
type Device struct {
	Path   string
	Name   string
	Class  DeviceClass
	handle *evdev.InputDevice
}

// OpenDevice opens path and classifies its capability.
func OpenDevice(path string) (*Device, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("seat: open device %s: %w", path, err)
	}
	return &Device{
		Path:   path,
		Name:   dev.Name,
		Class:  classify(dev),
		handle: dev,
	}, nil
}

func classify(dev *evdev.InputDevice) DeviceClass {
	if dev.Capabilities == nil {
		return DeviceNone
	}
	_, hasAbs := dev.CapabilitiesFlat[evdev.EV_ABS]
	_, hasRel := dev.CapabilitiesFlat[evdev.EV_REL]
	keys, hasKey := dev.CapabilitiesFlat[evdev.EV_KEY]

	switch {
	case hasAbs:
		return DeviceTouch
	case hasRel && hasKeyRange(keys, evdev.BTN_LEFT, evdev.BTN_TASK):
		return DevicePointer
	case hasKey:
		return DeviceKeyboard
	default:
		return DeviceNone
	}
}

func hasKeyRange(keys []int, lo, hi int) bool {
	for _, k := range keys {
		if k >= lo && k <= hi {
			return true
		}
	}
	return false
}

// ReadEvents blocks reading the next batch of raw events from the
// device. Returns a wrapped error on failure (device unplugged, I/O
// error); the caller treats that as a device-removed signal.
func (d *Device) ReadEvents() ([]evdev.InputEvent, error) {
	events, err := d.handle.Read()
	if err != nil {
		return nil, fmt.Errorf("seat: read %s: %w", d.Path, err)
	}
	return events, nil
}

// Close releases the device handle.
func (d *Device) Close() error {
	return d.handle.File.Close()
}

// Fd returns the device node's file descriptor, for registering with the
// Event Spine's epoll readability API (spec.md §4.4 devices are driven
// by the same single-threaded loop as every other callback).
func (d *Device) Fd() int {
	return int(d.handle.File.Fd())
}

// ScanInputDevices lists every /dev/input/event* node currently present,
// the same directory evdev.ListInputDevices walks, used both for the
// initial device enumeration and for the polling hotplug fallback
// (grounded on the teacher's DeviceMonitor.getCurrentDevices).
func ScanInputDevices() ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, fmt.Errorf("seat: read /dev/input: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "event") {
			paths = append(paths, filepath.Join("/dev/input", e.Name()))
		}
	}
	return paths, nil
}
