package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/arwing/ecs"
)

// StatsWindow renders storage and scheduler statistics with a frame time graph.
type StatsWindow struct {
	frameHistory []float32
	frameIndex   int
}

// NewStatsWindow keeps historyFrames samples for the frame time graph.
func NewStatsWindow(historyFrames int) StatsWindow {
	if historyFrames < 1 {
		historyFrames = 1
	}
	return StatsWindow{frameHistory: make([]float32, historyFrames)}
}

// Record stores one frame duration in seconds.
func (w *StatsWindow) Record(deltaTime float64) {
	w.frameHistory[w.frameIndex] = float32(deltaTime * 1000.0)
	w.frameIndex = (w.frameIndex + 1) % len(w.frameHistory)
}

// AverageFrameTime returns the mean of the recorded samples in milliseconds.
func (w *StatsWindow) AverageFrameTime() float32 {
	var total float32
	for _, ft := range w.frameHistory {
		total += ft
	}
	return total / float32(len(w.frameHistory))
}

// Render draws the window. scheduler may be nil.
func (w *StatsWindow) Render(storage *ecs.Storage, scheduler *ecs.Scheduler) {
	if !imgui.BeginV("ECS Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	stats := storage.CollectStats()
	imgui.Text(fmt.Sprintf("Entities: %d", stats.TotalEntityCount))
	imgui.Text(fmt.Sprintf("Archetypes: %d", stats.ArchetypeCount))
	imgui.Text(fmt.Sprintf("Singletons: %d", stats.SingletonCount))

	avg := w.AverageFrameTime()
	if avg > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avg, 1000.0/avg))
	}
	imgui.PlotLinesFloatPtr("##frametime", &w.frameHistory[0], int32(len(w.frameHistory)))

	if scheduler != nil && imgui.TreeNodeStr("Systems") {
		for _, sys := range scheduler.GetStats().Systems {
			imgui.BulletText(fmt.Sprintf("%s: %v avg", sys.Name, sys.AvgDuration))
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Archetypes") {
		for _, arch := range stats.ArchetypeBreakdown {
			imgui.BulletText(fmt.Sprintf("0x%X: %d entities, %d components", arch.ID, arch.EntityCount, len(arch.ComponentTypes)))
		}
		imgui.TreePop()
	}

	imgui.End()
}
