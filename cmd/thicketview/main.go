// thicketview is a debug viewer: it runs the simulation locally and
// draws mob footprints, facing, health and state names. It exists to
// eyeball script behavior, not to render the game.
package main

import (
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/rs/zerolog"

	"github.com/thicket-engine/thicket/content"
	"github.com/thicket-engine/thicket/sim"
)

const (
	screenW = 1024
	screenH = 768
	tickDt  = 1.0 / 60
)

type viewer struct {
	world     *sim.Sim
	camX      float64
	camY      float64
	paused    bool
	spaceHeld bool
}

func (v *viewer) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	space := ebiten.IsKeyPressed(ebiten.KeySpace)
	if space && !v.spaceHeld {
		v.paused = !v.paused
	}
	v.spaceHeld = space
	speed := 4.0
	if ebiten.IsKeyPressed(ebiten.KeyLeft) {
		v.camX -= speed
	}
	if ebiten.IsKeyPressed(ebiten.KeyRight) {
		v.camX += speed
	}
	if ebiten.IsKeyPressed(ebiten.KeyUp) {
		v.camY -= speed
	}
	if ebiten.IsKeyPressed(ebiten.KeyDown) {
		v.camY += speed
	}
	v.world.SetCamera(sim.Box{
		Min: cp.Vector{X: v.camX - screenW/2, Y: v.camY - screenH/2},
		Max: cp.Vector{X: v.camX + screenW/2, Y: v.camY + screenH/2},
	})
	if !v.paused {
		v.world.Tick(tickDt)
	}
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 24, G: 28, B: 24, A: 255})

	for _, m := range v.world.Snapshot() {
		sx := float32(m.X - v.camX + screenW/2)
		sy := float32(m.Y - v.camY + screenH/2)
		r := float32(m.Radius)
		if r < 2 {
			r = 2
		}
		c := color.RGBA{R: 90, G: 90, B: 110, A: 255}
		if m.Active {
			c = color.RGBA{R: 80, G: 180, B: 100, A: 255}
		}
		if m.Dead {
			c = color.RGBA{R: 170, G: 60, B: 60, A: 255}
		}
		vector.StrokeCircle(screen, sx, sy, r, 1.5, c, true)

		// Facing tick.
		fx := sx + r*float32(cosApprox(m.Angle))
		fy := sy + r*float32(sinApprox(m.Angle))
		vector.StrokeLine(screen, sx, sy, fx, fy, 1, c, true)

		label := fmt.Sprintf("%s/%s", m.Type, m.State)
		ebitenutil.DebugPrintAt(screen, label, int(sx)+4, int(sy)+4)
	}

	ebitenutil.DebugPrintAt(screen,
		fmt.Sprintf("mobs: %d  cam: %.0f,%.0f  space=pause", len(v.world.Snapshot()), v.camX, v.camY), 8, 8)
}

func cosApprox(a float64) float64 { return cp.ForAngle(a).X }
func sinApprox(a float64) float64 { return cp.ForAngle(a).Y }

func (v *viewer) Layout(int, int) (int, int) { return screenW, screenH }

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()

	types, err := content.LoadAll()
	if err != nil {
		log.Fatal().Err(err).Msg("compile content")
	}
	statuses, err := content.LoadStatuses()
	if err != nil {
		log.Fatal().Err(err).Msg("load statuses")
	}

	bounds := sim.Box{Min: cp.Vector{X: -2048, Y: -2048}, Max: cp.Vector{X: 2048, Y: 2048}}
	world := sim.New(sim.Options{Bounds: bounds, Camera: bounds, Seed: 1, Logger: log})
	for _, t := range types {
		if err := world.RegisterType(t); err != nil {
			log.Fatal().Err(err).Msg("register type")
		}
	}
	for _, st := range statuses {
		world.RegisterStatusType(st)
	}

	// A small demo scene.
	mustSpawn(log, world, "red_snapper", cp.Vector{X: 0, Y: 0})
	mustSpawn(log, world, "flukeweed", cp.Vector{X: 150, Y: 80})
	mustSpawn(log, world, "fire_geyser", cp.Vector{X: -120, Y: 60})
	mustSpawn(log, world, "pellet", cp.Vector{X: 60, Y: -140})

	ebiten.SetWindowSize(screenW, screenH)
	ebiten.SetWindowTitle("thicketview")
	if err := ebiten.RunGame(&viewer{world: world}); err != nil && err != ebiten.Termination {
		log.Fatal().Err(err).Msg("viewer exited")
	}
}

func mustSpawn(log zerolog.Logger, world *sim.Sim, typeName string, pos cp.Vector) {
	if _, err := world.Spawn(typeName, pos, 0); err != nil {
		log.Fatal().Err(err).Str("type", typeName).Msg("spawn")
	}
}
