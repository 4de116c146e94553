package flight

import (
	"context"
	"log/slog"

	"github.com/plus3/arwing/ecs"
	"github.com/plus3/arwing/transform"
)

// FlightLogSystem writes per-frame telemetry at debug level: the ship's
// rotation and location, the normalize factor and every laser's position.
type FlightLogSystem struct {
	Logger *slog.Logger

	Ships  ecs.Query[ship]
	Lasers ecs.Query[struct {
		*transform.Transform
		*Laser
	}]
	Tuning ecs.Singleton[Tuning]
}

func (s *FlightLogSystem) Execute(frame *ecs.UpdateFrame) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	for sh := range s.Ships.Values() {
		logger.Debug("rotation", "x", sh.Rotation.V.X(), "z", sh.Rotation.V.Z())
		logger.Debug("location", "x", sh.Translation.X(), "y", sh.Translation.Y())
	}
	if tuning := s.Tuning.Get(); tuning != nil {
		logger.Debug("normalize", "factor", NormalizeFactor(tuning.NormalizeFactor, frame.DeltaTime))
	}
	for l := range s.Lasers.Values() {
		logger.Debug("laser", "x", l.Translation.X(), "y", l.Translation.Y(), "z", l.Translation.Z())
	}
}
