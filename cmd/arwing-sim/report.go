package main

import (
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/plus3/arwing/ecs"
	"github.com/plus3/arwing/flight"
)

type Report struct {
	// Configuration
	Variant   flight.Variant
	Simulated time.Duration

	// Results
	Frames          int
	WallTime        time.Duration
	UpdateTime      Stats
	Score           flight.Score
	DronesRemaining int
	Envelope        Envelope
	Storage         ecs.StorageStats
	Systems         []ecs.SystemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		s.Min = min(s.Min, sample)
		s.Max = max(s.Max, sample)
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Flight Simulation Report

## Run
- **Variant:** {{.Variant}}
- **Simulated Time:** {{.Simulated}}
- **Frames:** {{.Frames}}
- **Wall Time:** {{.WallTime}}
- **Update Time (Frame):** avg {{.UpdateTime.Avg}}, min {{.UpdateTime.Min}}, max {{.UpdateTime.Max}}

## Score
- **Lasers Fired:** {{.Score.LasersFired}}
- **Drones Destroyed:** {{.Score.DronesDestroyed}}
- **Drones Remaining:** {{.DronesRemaining}}

## Ship Envelope
- **X:** {{f .Envelope.MinX}} .. {{f .Envelope.MaxX}}
- **Y:** {{f .Envelope.MinY}} .. {{f .Envelope.MaxY}}
- **Max |rotation.x|:** {{f .Envelope.MaxRotX}}
- **Max |rotation.z|:** {{f .Envelope.MaxRotZ}}

## Storage
- **Entities:** {{.Storage.TotalEntityCount}}
- **Archetypes:** {{.Storage.ArchetypeCount}}
- **Singletons:** {{.Storage.SingletonCount}}

## Systems
{{range .Systems}}- {{.Name}}: {{.ExecutionCount}} runs, avg {{.AvgDuration}}, max {{.MaxDuration}}
{{end}}`

	fm := template.FuncMap{
		"f": func(v float64) string {
			return fmt.Sprintf("%.3f", v)
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
