package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/bus"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/playback"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/tray"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string
	var withTray bool
	var noCamera bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gesture and voice control server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}
			if noCamera {
				cfg.Camera.Enabled = false
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}

			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			bridge := server.NewHostBridge(cfg.BridgeTimeout(), logger)
			deps, err := buildDeps(cfg, bridge, logger)
			if err != nil {
				return err
			}

			var tr *tray.Tray
			var sinks []control.Sink
			if withTray {
				tr = tray.New()
				sinks = append(sinks, tr)
			}

			a, err := app.New(app.Options{
				Config:   cfg,
				Logger:   logger,
				Store:    st,
				Deps:     deps,
				Hit:      bridge,
				Notifier: bridge,
				Sinks:    sinks,
			})
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Start(); err != nil {
				if errors.Is(err, app.ErrAlreadyRunning) {
					return fmt.Errorf("another mudra server is running: %w", err)
				}
				return err
			}

			if cfg.MQTT.Enabled {
				b, err := bus.Connect(cfg.MQTT, a, logger)
				if err != nil {
					logger.Warn("mqtt disabled", "error", err)
				} else {
					defer b.Close()
					a.Engine().AddSink(b)
				}
			}

			srv := server.New(server.Config{
				StaticDir:  cfg.Server.StaticDir,
				Store:      st,
				Controller: a,
				Bridge:     bridge,
				Logger:     logger,
			})
			httpSrv := &http.Server{Addr: cfg.Server.Bind, Handler: srv}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			serveErr := make(chan error, 1)
			go func() {
				if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				stop()
			}()
			logger.Info("serving", "addr", cfg.Server.Bind, "backend", cfg.Playback.Backend, "camera", cfg.Camera.Enabled)

			if tr != nil {
				url := "http://" + cfg.Server.Bind
				tr.OnToggle(func(ch tray.Channel, enabled bool) {
					switch ch {
					case tray.Gestures:
						a.SetGesturesEnabled(enabled)
					case tray.Voice:
						a.SetVoiceEnabled(enabled)
					}
				})
				tr.OnOpen(func() {
					if err := openBrowser(url); err != nil {
						logger.Warn("open browser failed", "url", url, "error", err)
					}
				})
				tr.OnQuit(stop)
				go func() {
					<-runCtx.Done()
					tr.Quit()
				}()
				tr.Run()
				stop()
			}

			<-runCtx.Done()
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("http shutdown", "error", err)
			}

			select {
			case err := <-serveErr:
				return fmt.Errorf("serve %s: %w", cfg.Server.Bind, err)
			default:
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (overrides server.bind)")
	cmd.Flags().BoolVar(&withTray, "tray", false, "Show a system tray menu")
	cmd.Flags().BoolVar(&noCamera, "no-camera", false, "Do not open the local camera")
	return cmd
}

// buildDeps wires the command resources. The host page always drives navigation
// and page actions; playback goes to a player plugin when one is configured.
func buildDeps(cfg *config.Config, bridge *server.HostBridge, logger *slog.Logger) (control.Deps, error) {
	deps := control.Deps{Player: bridge, Navigator: bridge, Page: bridge, Listener: bridge}
	if cfg.Playback.Backend != config.BackendPlugin {
		return deps, nil
	}

	mgr := plugin.NewManager(cfg.Playback.PluginDir)
	if err := mgr.Discover(); err != nil {
		return control.Deps{}, fmt.Errorf("discover plugins: %w", err)
	}
	p, err := mgr.Get(cfg.Playback.Plugin)
	if err != nil {
		return control.Deps{}, fmt.Errorf("player plugin %q in %s: %w", cfg.Playback.Plugin, mgr.PluginDir(), err)
	}
	logger.Info("using player plugin", "plugin", p.Manifest.Name, "version", p.Manifest.Version)
	deps.Player = playback.NewPluginPlayer(p, plugin.NewExecutor(cfg.PluginTimeout()))
	return deps, nil
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
