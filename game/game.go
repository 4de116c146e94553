package game

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/arwing/assets"
	"github.com/plus3/arwing/ecs"
	"github.com/plus3/arwing/ecs/debugui"
	debugui_ebiten "github.com/plus3/arwing/ecs/debugui/ebiten"
	"github.com/plus3/arwing/input"
	"github.com/plus3/arwing/render"
)

const (
	ScreenWidth  = 1280
	ScreenHeight = 720
)

// Game implements ebiten.Game on top of a World.
type Game struct {
	*World

	renderScheduler *ecs.Scheduler
	screen          *ecs.Singleton[render.Screen]

	watcher *assets.Watcher
	imgui   *debugui_ebiten.ImguiBackend
	stats   debugui.StatsWindow
}

// New creates the window-backed game. With debug set, a Dear ImGui overlay
// shows ECS statistics and the score; with opts.AssetsDir set, edited model
// files are reloaded while running.
func New(opts Options, debug bool) (*Game, error) {
	w := NewWorld(opts)
	g := &Game{
		World:           w,
		renderScheduler: ecs.NewScheduler(w.Storage),
		screen:          ecs.NewSingleton[render.Screen](w.Storage),
	}
	g.renderScheduler.Register(&render.RenderSystem{Assets: w.Assets, Logger: w.Logger})

	if opts.AssetsDir != "" {
		watcher, err := w.Assets.Watch()
		if err != nil {
			return nil, fmt.Errorf("game: watch %s: %w", w.Assets.Dir(), err)
		}
		g.watcher = watcher
	}

	if debug {
		backend := debugui_ebiten.NewImguiBackend("Arwing", ScreenWidth, ScreenHeight)
		g.imgui = &backend
		g.stats = debugui.NewStatsWindow(120)
		w.Storage.Spawn(debugui.ImguiItem{Render: g.renderOverlay})
		w.Scheduler.Register(&debugui.ImguiSystem{})
	} else {
		ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
		ebiten.SetWindowTitle("Arwing")
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	return g, nil
}

func (g *Game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	input.Poll(g.Keyboard())
	g.Assets.ApplyChanges(g.watcher)

	dt := 1.0 / float64(ebiten.TPS())
	if g.imgui != nil {
		g.stats.Record(dt)
		g.imgui.BeginFrame()
		defer g.imgui.EndFrame()
	}
	g.Step(dt)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.screen.Get().Image = screen
	g.renderScheduler.Once(0)

	if g.imgui != nil {
		g.imgui.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.imgui != nil {
		g.imgui.Layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// Close stops the asset watcher.
func (g *Game) Close() error {
	if g.watcher == nil {
		return nil
	}
	return g.watcher.Close()
}

func (g *Game) renderOverlay() {
	g.stats.Render(g.Storage, g.Scheduler)

	score := g.Score()
	if imgui.BeginV("Flight", nil, imgui.WindowFlagsAlwaysAutoResize) {
		imgui.Text(fmt.Sprintf("Lasers fired: %d", score.LasersFired))
		imgui.Text(fmt.Sprintf("Drones destroyed: %d", score.DronesDestroyed))
		if ship, ok := g.Ship(); ok {
			imgui.Text(fmt.Sprintf("Ship: %.2f, %.2f", ship.Translation.X(), ship.Translation.Y()))
		}
	}
	imgui.End()
}
