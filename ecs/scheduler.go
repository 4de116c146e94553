package ecs

import (
	"context"
	"reflect"
	"strings"
	"time"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

// queryRefresher is implemented by *Query[T].
type queryRefresher interface {
	Execute()
}

type registeredSystem struct {
	system  System
	queries []queryRefresher
	stats   *systemStatsInternal
}

// Scheduler manages and executes systems in order.
//
// Startup systems run once, in registration order, at the beginning of the
// first Once call; their commands are flushed before any update system runs.
// Every update system sees its queries refreshed right before it executes.
type Scheduler struct {
	storage *Storage
	startup []registeredSystem
	systems []registeredSystem
	started bool
}

// NewScheduler creates a new scheduler for the given storage.
func NewScheduler(storage *Storage) *Scheduler {
	return &Scheduler{
		storage: storage,
	}
}

// Storage returns the storage the scheduler runs against.
func (s *Scheduler) Storage() *Storage {
	return s.storage
}

// Register adds a system to the scheduler and initializes its Query and Singleton fields.
func (s *Scheduler) Register(system System) {
	s.systems = append(s.systems, s.prepare(system))
}

// RegisterStartup adds a system that runs once before the first frame.
func (s *Scheduler) RegisterStartup(system System) {
	s.startup = append(s.startup, s.prepare(system))
}

func (s *Scheduler) prepare(system System) registeredSystem {
	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}

	return registeredSystem{
		system:  system,
		queries: s.initializeFields(system),
		stats: &systemStatsInternal{
			name:        systemType.Name(),
			minDuration: time.Duration(1<<63 - 1),
		},
	}
}

// initializeFields calls Init on every Query and Singleton field of the
// system struct and returns the queries.
func (s *Scheduler) initializeFields(system System) []queryRefresher {
	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() == reflect.Ptr {
		systemValue = systemValue.Elem()
	}

	if systemValue.Kind() != reflect.Struct {
		return nil
	}

	systemType := systemValue.Type()
	var queries []queryRefresher

	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)
		fieldType := systemType.Field(i)

		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		typeName := field.Type().Name()
		isQuery := strings.HasPrefix(typeName, "Query[")
		if !isQuery && !strings.HasPrefix(typeName, "Singleton[") {
			continue
		}

		initMethod := field.Addr().MethodByName("Init")
		if !initMethod.IsValid() {
			panic("Init method not found on field: " + fieldType.Name)
		}
		initMethod.Call([]reflect.Value{reflect.ValueOf(s.storage)})

		if isQuery {
			if q, ok := field.Addr().Interface().(queryRefresher); ok {
				queries = append(queries, q)
			}
		}
	}

	return queries
}

// Once executes all registered systems once with the given delta time.
func (s *Scheduler) Once(dt float64) {
	if !s.started {
		s.started = true
		startupFrame := newUpdateFrame(0, s.storage)
		for _, rs := range s.startup {
			s.execute(rs, startupFrame)
		}
		startupFrame.Commands.Flush(s.storage)
	}

	frame := newUpdateFrame(dt, s.storage)
	for _, rs := range s.systems {
		s.execute(rs, frame)
	}

	frame.Commands.Flush(s.storage)
	s.storage.clearEvents()
}

func (s *Scheduler) execute(rs registeredSystem, frame *UpdateFrame) {
	start := time.Now()
	for _, q := range rs.queries {
		q.Execute()
	}
	rs.system.Execute(frame)
	duration := time.Since(start)

	stats := rs.stats
	stats.executionCount++
	stats.lastDuration = duration
	stats.totalDuration += duration

	if duration < stats.minDuration {
		stats.minDuration = duration
	}
	if duration > stats.maxDuration {
		stats.maxDuration = duration
	}
}

// Run executes all systems repeatedly at the given interval until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			s.Once(dt)
		}
	}
}

// GetStats returns statistics about update system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Systems:     make([]SystemStats, len(s.systems)),
	}

	var totalExecs int64
	for i, rs := range s.systems {
		internal := rs.stats
		avgDuration := time.Duration(0)
		minDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
			minDuration = internal.minDuration
		}

		stats.Systems[i] = SystemStats{
			Name:           internal.name,
			ExecutionCount: internal.executionCount,
			MinDuration:    minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
