package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/soar/joypadview/internal/console"
	"github.com/soar/joypadview/internal/hub"
	"github.com/soar/joypadview/internal/joypad"
	"github.com/soar/joypadview/internal/server"
	"github.com/soar/joypadview/internal/tray"
)

var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func loadConfig() *viper.Viper {
	pflag.String("addr", ":8080", "HTTP listen address")
	pflag.Duration("tick", 16*time.Millisecond, "poll interval")
	pflag.Float32("axis-threshold", 0.5, "axis magnitude treated as a press")
	pflag.Bool("no-tray", false, "disable the system tray")
	pflag.Parse()

	v := viper.New()
	v.SetEnvPrefix("joypadview")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(pflag.CommandLine); err != nil {
		log.Fatalf("config: %v", err)
	}
	return v
}

func main() {
	cfg := loadConfig()
	addr := cfg.GetString("addr")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)

	// Ctrl+C can be swallowed by native libraries holding the main
	// thread; the console handler closes this channel regardless.
	consoleShutdown := make(chan struct{})
	reregister := console.SetupConsoleHandler(consoleShutdown)

	driver := joypad.Select(joypad.Config{Notifier: joypad.LogNotifier{}}, nil)
	monitor := joypad.NewMonitor(driver,
		cfg.GetDuration("tick"),
		float32(cfg.GetFloat64("axis-threshold")))

	h := hub.NewHub()
	go h.Run()

	broadcaster := hub.NewBroadcaster(h, monitor.Changes())
	go broadcaster.Run()

	srv := server.New(h, broadcaster, getFrontendFS(), addr)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	url := "http://localhost" + addr
	log.Printf("JoypadView started: %s", url)

	shutdownRequested := make(chan struct{})
	if runtime.GOOS == "windows" && !cfg.GetBool("no-tray") {
		go func() {
			t := tray.New(url, func() {
				close(shutdownRequested)
			})
			t.Run()
		}()
	} else if console.IsRunningFromConsole() {
		// A GUI-mode launch with the tray disabled has no console to
		// print to.
		log.Println("Press Ctrl+C to exit")
	}

	monitorDone := make(chan struct{})
	go func() {
		if err := monitor.Run(ctx); err != nil {
			log.Printf("Joypad monitor: %v", err)
		}
		close(monitorDone)
	}()
	// Driver init may have replaced the console handler.
	reregister()

	select {
	case <-sigCh:
		log.Println("Shutting down...")
		cancel()
	case <-consoleShutdown:
		log.Println("Shutting down...")
		cancel()
	case <-shutdownRequested:
		log.Println("Shutdown requested from tray")
		cancel()
	case err := <-serverErrCh:
		log.Printf("HTTP server error: %v", err)
		cancel()
	}

	<-monitorDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("JoypadView stopped")
}
