// Package demo is a small GLFW host that drives the transparency renderer
// the way a plotting GUI would: it owns the window, fills per-plot draw data
// every frame and shows the resulting color textures.
package demo

import (
	"fmt"
	"time"

	"implot3d/internal/logger"
	"implot3d/pkg/config"
	"implot3d/pkg/engine"
	"implot3d/pkg/engine/glbackend"
	"implot3d/pkg/plot3d"

	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	dragSensitivity = 0.01 // radians per pixel
	statsInterval   = 5 * time.Second
)

var renderModes = []engine.Mode{engine.ModeAuto, engine.ModeWBOIT, engine.ModeOpaque}

// App represents the demo application
type App struct {
	window   *glfw.Window
	config   *config.Config
	logger   *logger.Logger
	device   *glbackend.Device
	backend  *engine.Backend
	blitter  *Blitter
	input    *InputHandler
	scene    *Scene
	watcher  *ConfigWatcher
	rotation plot3d.Quat

	isRunning  bool
	lastUpdate time.Time
	lastStats  time.Time
}

// NewApp creates the window, the GL device and the renderer. configPath is
// watched for changes when cfg.Demo.WatchConfig is set.
func NewApp(cfg *config.Config, configPath string, log *logger.Logger) (*App, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %v", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GLFW window: %v", err)
	}
	window.MakeContextCurrent()
	if cfg.Window.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	app := &App{
		window:   window,
		config:   cfg,
		logger:   log,
		rotation: plot3d.QuatFromAxisAngle(-0.9, [3]float64{1, 0.3, 0}),
	}
	if err := app.setup(configPath); err != nil {
		app.cleanup()
		return nil, err
	}
	return app, nil
}

func (a *App) setup(configPath string) error {
	var err error
	if a.device, err = glbackend.New(a.logger); err != nil {
		return err
	}
	if a.backend, err = engine.New(a.device, a.config.Render, a.logger); err != nil {
		return err
	}
	if err = a.backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize renderer: %w", err)
	}
	if a.blitter, err = NewBlitter(a.device); err != nil {
		return err
	}

	a.input = NewInputHandler(a.window)
	a.scene = NewScene(a.config.Demo)

	if a.config.Demo.WatchConfig && configPath != "" {
		a.watcher, err = WatchConfig(configPath, a.logger)
		if err != nil {
			a.logger.Warnf("config hot reload disabled: %v", err)
		}
	}
	return nil
}

// Run starts the main loop and returns when the window closes
func (a *App) Run() {
	a.isRunning = true
	a.lastUpdate = time.Now()
	a.lastStats = a.lastUpdate

	for a.isRunning && !a.window.ShouldClose() {
		currentTime := time.Now()
		deltaTime := currentTime.Sub(a.lastUpdate).Seconds()
		a.lastUpdate = currentTime

		a.processInput()
		a.applyConfigUpdates()
		a.update(deltaTime)
		a.render()

		a.window.SwapBuffers()
		glfw.PollEvents()

		if currentTime.Sub(a.lastStats) >= statsInterval {
			a.lastStats = currentTime
			a.logStats()
		}
	}

	a.cleanup()
}

// processInput handles user input
func (a *App) processInput() {
	a.input.Update()

	if a.input.IsKeyPressed(glfw.KeyEscape) {
		a.isRunning = false
	}
	if a.input.IsKeyPressed(glfw.KeyR) {
		a.rotation = plot3d.IdentityQuat()
	}
	if a.input.IsKeyPressed(glfw.KeyM) {
		a.cycleMode()
	}
	if a.input.IsKeyPressed(glfw.KeyEqual) {
		a.scene.SetPlotCount(len(a.scene.plots) + 1)
	}
	if a.input.IsKeyPressed(glfw.KeyMinus) {
		a.scene.SetPlotCount(len(a.scene.plots) - 1)
	}

	if a.input.IsMouseButtonDown(glfw.MouseButtonLeft) && !a.input.IsMouseButtonPressed(glfw.MouseButtonLeft) {
		d := a.input.GetMouseDelta()
		a.rotation = DragRotation(a.rotation, d[0], d[1], dragSensitivity)
	}
	if wheel := a.input.GetMouseWheelDelta(); wheel != 0 {
		a.rotation = plot3d.QuatFromAxisAngle(wheel*0.1, [3]float64{0, 0, 1}).Mul(a.rotation).Normalized()
	}
}

func (a *App) cycleMode() {
	next := renderModes[0]
	for i, m := range renderModes {
		if m == a.backend.Mode() {
			next = renderModes[(i+1)%len(renderModes)]
		}
	}
	rc := a.config.Render
	rc.Mode = next.String()
	if err := a.backend.Reconfigure(rc); err != nil {
		a.logger.Errorf("switching render mode: %v", err)
		return
	}
	a.config.Render = rc
	a.logger.Infof("render mode %s", next)
}

// applyConfigUpdates picks up a reloaded config file without blocking
func (a *App) applyConfigUpdates() {
	if a.watcher == nil {
		return
	}
	select {
	case cfg := <-a.watcher.Updates():
		if err := a.backend.Reconfigure(cfg.Render); err != nil {
			a.logger.Errorf("rejected render settings: %v", err)
			return
		}
		a.logger.SetLevel(cfg.Log.Level)
		a.scene.SetPoints(cfg.Demo.Points)
		a.scene.SetPlotCount(cfg.Demo.Plots)
		a.config.Render = cfg.Render
		a.config.Demo = cfg.Demo
	default:
	}
}

// update advances the scene and refills the draw data
func (a *App) update(deltaTime float64) {
	a.scene.Update(deltaTime, a.rotation)
}

// render renders the current frame
func (a *App) render() {
	width, height := a.window.GetFramebufferSize()
	rects := a.scene.Layout(width, height)

	a.backend.RenderDrawData(a.scene.DrawData())

	a.blitter.Begin(width, height, [3]float32{0.08, 0.08, 0.1})
	for i, p := range a.scene.Plots() {
		r := rects[i]
		a.blitter.Draw(p.ColorTexture, r[0], r[1], r[2], r[3])
	}
	if err := a.device.Error(); err != nil {
		a.logger.Warnf("frame: %v", err)
	}
}

func (a *App) logStats() {
	st := a.backend.Stats()
	a.logger.Debugf("frame: %d plots (%d wboit, %d opaque), %d draws, %d vertices, %d live textures",
		st.PlotsRendered, st.WBOITPasses, st.OpaquePasses, st.DrawCalls, st.Vertices, len(a.backend.LiveTextures()))
}

// cleanup performs necessary cleanup before exiting
func (a *App) cleanup() {
	a.logger.Info("Shutting down...")
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.blitter != nil {
		a.blitter.Close()
	}
	if a.backend != nil {
		a.backend.Shutdown()
	}
	a.window.Destroy()
	glfw.Terminate()
}
