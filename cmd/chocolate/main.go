package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/handsonicv4/Chocolate-3D/common"
	"github.com/handsonicv4/Chocolate-3D/engine"
	"github.com/handsonicv4/Chocolate-3D/engine/camera"
	"github.com/handsonicv4/Chocolate-3D/engine/config"
	"github.com/handsonicv4/Chocolate-3D/engine/light"
	"github.com/handsonicv4/Chocolate-3D/engine/loader"
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/descriptor"
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/device"
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/resource"
	"github.com/handsonicv4/Chocolate-3D/engine/window"
	log "github.com/sirupsen/logrus"
)

const usage = `usage:
  chocolate check [-simulate] [-v] <manifest.json>
  chocolate run [-profile] [-env .env] [model.glb]`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "check":
		err = check(ctx, os.Args[2:])
	case "run":
		err = run(ctx, os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error(os.Args[1] + " failed")
		os.Exit(1)
	}
}

// check compiles a descriptor library and optionally creates every entry on the headless device.
func check(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	simulate := fs.Bool("simulate", false, "Create every descriptor on an in-memory device")
	verbose := fs.Bool("v", false, "Verbose logging")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New(usage)
	}
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	lib, err := descriptor.LoadLibrary(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	for _, e := range lib.Entries() {
		fmt.Printf("ok  %-14s %s\n", e.Kind, e.Name)
	}
	if !*simulate {
		return nil
	}

	dev := device.NewHeadless()
	defer dev.Release()
	reg := resource.NewRegistry(dev)

	failed := 0
	for _, e := range lib.Entries() {
		var h resource.Handle
		switch e.Kind {
		case descriptor.KindResource:
			d, _ := lib.Resource(e.Name)
			h = reg.CreateFromDescriptor(d, nil)
		case descriptor.KindDepthStencil:
			d, _ := lib.DepthStencil(e.Name)
			h = reg.CreateDepthStencilState(d)
		case descriptor.KindBlend:
			d, _ := lib.Blend(e.Name)
			h = reg.CreateBlendState(d)
		case descriptor.KindRasterizer:
			d, _ := lib.Rasterizer(e.Name)
			h = reg.CreateRasterizerState(d)
		case descriptor.KindSampler:
			d, _ := lib.Sampler(e.Name)
			h = reg.CreateSamplerState(d)
		}
		if h == resource.InvalidHandle {
			failed++
			fmt.Printf("ERR %-14s %s: device creation failed\n", e.Kind, e.Name)
		}
	}
	fmt.Printf("%d descriptors, %d created, %d failed\n", len(lib.Entries()), reg.Len(), failed)
	if failed > 0 {
		return fmt.Errorf("%d descriptors could not be created", failed)
	}
	return nil
}

// orbit is a key-driven camera orbiting the origin.
type orbit struct {
	azimuth, elevation, radius float32
}

func (o *orbit) eye() mgl32.Vec3 {
	cosE := float32(math.Cos(float64(o.elevation)))
	return mgl32.Vec3{
		o.radius * cosE * float32(math.Sin(float64(o.azimuth))),
		o.radius * float32(math.Sin(float64(o.elevation))),
		-o.radius * cosE * float32(math.Cos(float64(o.azimuth))),
	}
}

func (o *orbit) key(code uint32) {
	const step = 0.05
	switch code {
	case common.KeyLeft, common.KeyA:
		o.azimuth -= step
	case common.KeyRight, common.KeyD:
		o.azimuth += step
	case common.KeyUp, common.KeyW:
		o.elevation = min(o.elevation+step, 1.5)
	case common.KeyDown, common.KeyS:
		o.elevation = max(o.elevation-step, -1.5)
	case common.KeyQ:
		o.radius = max(o.radius*0.95, 0.5)
	case common.KeyE:
		o.radius *= 1.05
	}
}

// run opens a window and renders an optional glTF model lit by a directional and a point light.
func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	profile := fs.Bool("profile", false, "Log frame statistics every second")
	envFile := fs.String("env", ".env", "Environment file with CHOC_ settings")
	fs.Parse(args)

	cfg, err := config.Load(*envFile)
	if err != nil {
		return err
	}

	win, err := window.NewWindow(
		window.WithTitle("Chocolate-3D"),
		window.WithSize(cfg.Width, cfg.Height),
		window.WithFullscreen(cfg.Fullscreen),
	)
	if err != nil {
		return fmt.Errorf("open window: %w", err)
	}
	defer win.Close()

	dev, err := device.NewWGPU(win.SurfaceDescriptor(), win.Width(), win.Height(),
		device.WithVSync(cfg.VSync),
		device.WithDeviceLogger(log.StandardLogger()),
	)
	if err != nil {
		return fmt.Errorf("create device: %w", err)
	}
	defer dev.Release()

	cfg.Width, cfg.Height = win.Width(), win.Height()
	view := &orbit{radius: 5}
	cam := camera.NewCamera(camera.WithPosition(view.eye()), camera.WithClip(0.1, 1000))
	eng := engine.NewEngine(dev,
		engine.WithConfig(cfg),
		engine.WithCamera(cam),
		engine.WithWindow(win),
		engine.WithProfiling(*profile),
	)
	defer eng.Shutdown()

	if fs.NArg() > 0 {
		m, err := loader.NewLoader().Load(fs.Arg(0))
		if err != nil {
			return err
		}
		m.NewInstance()
		if err := eng.Init(); err != nil {
			return err
		}
		if _, err := eng.LoadModel(m); err != nil {
			return err
		}
	}

	eng.UpdateLight([]light.Light{
		light.NewLight(light.LightTypeDirectional, light.WithDirection(mgl32.Vec3{-0.3, -1, 0.5})),
		light.NewLight(light.LightTypePoint, light.WithPosition(mgl32.Vec3{0, 3, -3}), light.WithRange(20)),
	})

	win.SetKeyDownCallback(view.key)
	eng.SetTickCallback(func(float32) {
		cam.LookAt(view.eye(), mgl32.Vec3{})
	})
	return eng.Run(ctx)
}
