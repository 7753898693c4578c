package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bnema/wlcore/internal/bus"
	"github.com/bnema/wlcore/internal/compositor"
	"github.com/bnema/wlcore/internal/config"
	"github.com/bnema/wlcore/internal/geom"
	"github.com/bnema/wlcore/internal/logger"
	"github.com/bnema/wlcore/internal/seat"
	"github.com/bnema/wlcore/internal/spine"
)

var (
	socketName string
	logLevel   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the compositor core",
	Long: `Run starts the Event Spine, opens the Wayland display socket, and
drives every engine (surface, shell, seat, output, window mechanics)
until it receives SIGINT or SIGTERM.`,
	RunE: runCompositor,
}

func init() {
	runCmd.Flags().StringVar(&socketName, "socket", "", "Wayland display socket name (default from config)")
	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	viper.BindPFlag("socket.name", runCmd.Flags().Lookup("socket"))
}

func runCompositor(cmd *cobra.Command, args []string) error {
	if err := config.Init(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := config.Get()

	logger.SetLevel(logLevel)

	loop, err := spine.New()
	if err != nil {
		return fmt.Errorf("start event spine: %w", err)
	}
	defer loop.Close()

	seatCfg := seat.EngineConfig{
		SeatName:  cfg.Seat.Name,
		Scheduler: loop,
		Bounds:    geom.Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
		OnCapabilitiesChanged: func(c seat.Capability) {
			logger.Debugf("seat: capabilities now %v", c)
		},
	}

	comp := compositor.New(loop, seatCfg, func() {
		logger.Debug("output: head set changed")
	})
	comp.Gap = int32(cfg.Layout.GapPixels)

	initialPaths, err := seat.ScanInputDevices()
	if err != nil {
		logger.Warnf("seat: initial device scan failed: %v", err)
	}
	for _, path := range initialPaths {
		attachDevice(comp, loop, path)
	}

	socketPath := displaySocketPath(cfg.Socket.Name)
	if err := comp.Listen(socketPath); err != nil {
		return fmt.Errorf("listen on %s: %w", socketPath, err)
	}
	logger.Infof("wlcore: listening on %s", socketPath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("wlcore: shutting down")
		comp.Stop()
		loop.RequestShutdown()
	}()

	// HandleDeviceAdded/Removed run only on the loop thread, so the
	// directory watcher goroutine never touches seat state directly: it
	// posts bus.DeviceAdded/DeviceRemoved across the Event Spine's
	// PostFromOtherThread bridge instead (spec.md §6 "auxiliary-thread
	// collaborators").
	go watchInputDevices(loop, comp)

	return loop.RunUntilShutdown()
}

// watchInputDevices polls /dev/input every 2s from its own goroutine —
// there is no udev/netlink watcher wired in this pass — and posts the
// diff as bus events for the loop thread to apply.
func watchInputDevices(loop *spine.Loop, comp *compositor.Compositor) {
	known := make(map[string]bool)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		paths, err := seat.ScanInputDevices()
		if err != nil {
			logger.Debugf("seat: device scan: %v", err)
			continue
		}
		seen := make(map[string]bool, len(paths))
		for _, path := range paths {
			seen[path] = true
			if known[path] {
				continue
			}
			known[path] = true
			devicePath := path
			loop.PostFromOtherThread(bus.DeviceAdded{Path: devicePath}, func(msg any) {
				attachDevice(comp, loop, msg.(bus.DeviceAdded).Path)
			})
		}
		for path := range known {
			if seen[path] {
				continue
			}
			delete(known, path)
			devicePath := path
			loop.PostFromOtherThread(bus.DeviceRemoved{Path: devicePath}, func(msg any) {
				detachDevice(comp, loop, msg.(bus.DeviceRemoved).Path)
			})
		}
	}
}

// attachDevice opens path through the Input Engine and registers its fd
// with the Event Spine so raw evdev reads stay on the single compositor
// thread (spec.md §4.4).
func attachDevice(comp *compositor.Compositor, loop *spine.Loop, path string) {
	if _, ok := comp.Seat.DeviceFd(path); ok {
		return
	}
	if err := comp.Seat.HandleDeviceAdded(path); err != nil {
		logger.Debugf("seat: skip device %s: %v", path, err)
		return
	}
	fd, ok := comp.Seat.DeviceFd(path)
	if !ok {
		return
	}
	if err := loop.RegisterReadable(fd, "seat:"+path, func() {
		dispatchDevice(comp, loop, path)
	}); err != nil {
		logger.Warnf("seat: register device %s: %v", path, err)
	}
}

func detachDevice(comp *compositor.Compositor, loop *spine.Loop, path string) {
	if fd, ok := comp.Seat.DeviceFd(path); ok {
		loop.UnregisterReadable(fd)
	}
	comp.Seat.HandleDeviceRemoved(path)
}

func dispatchDevice(comp *compositor.Compositor, loop *spine.Loop, path string) {
	events, err := comp.Seat.ReadDevice(path)
	if err != nil {
		detachDevice(comp, loop, path)
		logger.Debugf("seat: device %s removed: %v", path, err)
		return
	}
	comp.Outputs.ResetIdleTimer()
	if err := comp.Seat.DispatchRaw(path, events); err != nil {
		logger.Debugf("seat: dispatch %s: %v", path, err)
	}
}

// displaySocketPath resolves the Wayland display socket's full path
// under $XDG_RUNTIME_DIR, falling back to /tmp when unset (matches the
// real compositor convention wl_display_add_socket follows).
func displaySocketPath(name string) string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = filepath.Join("/tmp", fmt.Sprintf("wlcore-%d", os.Getuid()))
	}
	return filepath.Join(dir, name)
}
