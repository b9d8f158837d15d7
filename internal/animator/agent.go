package animator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/foliolab/foliage-platform/internal/inventory"
	"github.com/foliolab/foliage-platform/internal/phenology"
	"github.com/foliolab/foliage-platform/internal/playback"
	"github.com/foliolab/foliage-platform/pkg/config"
	"github.com/foliolab/foliage-platform/pkg/mqtt"
	"github.com/foliolab/foliage-platform/pkg/redis"
	"github.com/foliolab/foliage-platform/pkg/schema"
	"github.com/foliolab/foliage-platform/pkg/season"
	"github.com/google/uuid"
)

// Agent streams seasonal color frames for one dataset and answers
// transport control commands.
type Agent struct {
	mqtt   mqtt.Client
	redis  redis.Client
	cfg    *config.Config
	logger *slog.Logger

	dataset  *inventory.Dataset
	resolver *phenology.Resolver
	lookup   *phenology.Lookup
	clock    *playback.Clock
	store    *StateStore
	throttle *Throttle
	session  string

	positions []float32
	radii     []float32

	// Frame-loop state, owned by the frame goroutine
	seq         uint64
	lastDOY     float64
	daylightDay int
	daylight    *schema.Daylight

	stopChan chan struct{}
}

// NewAgent creates a new foliage agent for one dataset.
func NewAgent(mqttClient mqtt.Client, redisClient redis.Client, resolver *phenology.Resolver, dataset *inventory.Dataset, cfg *config.Config, logger *slog.Logger) *Agent {
	return &Agent{
		mqtt:      mqttClient,
		redis:     redisClient,
		cfg:       cfg,
		logger:    logger,
		dataset:   dataset,
		resolver:  resolver,
		lookup:    phenology.BuildLookup(resolver, dataset.SpeciesNames()),
		clock:     playback.NewClock(cfg.StartDOY, cfg.EndDOY, cfg.LoopSeconds),
		store:     NewStateStore(redisClient, logger),
		throttle:  NewThrottle(cfg.ControlThrottleMs),
		session:   uuid.New().String(),
		positions: PackPositions(dataset.Entities),
		radii:     PackRadii(dataset.Entities),
		lastDOY:   -1,
		stopChan:  make(chan struct{}),
	}
}

// Start starts the foliage agent and begins streaming frames.
func (a *Agent) Start(ctx context.Context) error {
	a.logger.Info("Starting foliage agent",
		"service_name", a.cfg.ServiceName,
		"dataset", a.dataset.Name,
		"entities", len(a.dataset.Entities),
		"species", len(a.dataset.Species),
		"frame_rate", a.cfg.FrameRate,
		"window", fmt.Sprintf("%d-%d", a.cfg.StartDOY, a.cfg.EndDOY))

	// Connect to MQTT broker
	if err := a.mqtt.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to MQTT: %w", err)
	}

	// Verify Redis connection; go-redis dials lazily, so this is the
	// first real round trip
	if err := a.redis.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	a.logger.Info("Connected to Redis", "address", a.cfg.RedisAddress())

	a.logPriorSession(ctx)
	a.resumeClock(ctx)
	a.logResolutionSummary()

	if err := a.publishDescriptor(); err != nil {
		return fmt.Errorf("failed to publish descriptor: %w", err)
	}

	if err := a.store.SaveMeta(ctx, a.dataset, a.session, a.cfg.StartDOY, a.cfg.EndDOY); err != nil {
		a.logger.Warn("Failed to store dataset metadata", "error", err)
	}

	report := BuildReport(a.dataset.Name, a.session, a.resolver, a.dataset.Species)
	if err := a.store.SaveReport(ctx, report); err != nil {
		a.logger.Warn("Failed to store resolution report", "error", err)
	}

	// Subscribe to transport control
	controlTopic := mqtt.ControlTopic(a.dataset.Name)
	if err := a.mqtt.Subscribe(controlTopic, 0, a.handleControlMessage); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", controlTopic, err)
	}

	a.startFrameLoop()
	a.startStateLoop()

	a.logger.Info("Foliage agent started and ready")

	// Block until context is cancelled
	<-ctx.Done()
	a.logger.Info("Foliage agent stopping")

	return nil
}

// Stop gracefully stops the foliage agent.
func (a *Agent) Stop() error {
	a.logger.Info("Stopping foliage agent")

	close(a.stopChan)

	// Disconnect from MQTT
	a.mqtt.Disconnect()

	// Close Redis connection
	if err := a.redis.Close(); err != nil {
		a.logger.Error("Error closing Redis connection", "error", err)
		return err
	}

	a.logger.Info("Foliage agent stopped")
	return nil
}

// logPriorSession notes which agent instance animated this dataset
// before a restart, before SaveMeta overwrites the hash.
func (a *Agent) logPriorSession(ctx context.Context) {
	meta := a.store.LoadMeta(ctx, a.dataset.Name)
	if len(meta) == 0 {
		return
	}

	a.logger.Info("Taking over dataset from earlier session",
		"prior_session", meta["session"],
		"prior_entities", meta["entity_count"],
		"updated_at", meta["updated_at"])
}

// resumeClock restores the previous session's transport position when
// one survives in Redis.
func (a *Agent) resumeClock(ctx context.Context) {
	state := a.store.LoadState(ctx, a.dataset.Name)
	if state == nil {
		return
	}

	a.clock.Seek(state.DOY)
	a.clock.SetSpeed(state.Speed)
	if state.Playing {
		a.clock.Play()
	}

	a.logger.Info("Resumed clock from stored state",
		"doy", state.DOY,
		"playing", state.Playing,
		"speed", state.Speed)
}

func (a *Agent) logResolutionSummary() {
	summary := a.lookup.Summary()
	a.logger.Info("Resolved species timing",
		"entities", summary.Total,
		"exact", summary.Exact,
		"fold", summary.Fold,
		"substring", summary.Substring,
		"keyword", summary.Keyword,
		"default", summary.Default)
}

// publishDescriptor announces the dataset layout, retained so
// renderers joining later still get it.
func (a *Agent) publishDescriptor() error {
	descriptor := &schema.Descriptor{
		Dataset:     a.dataset.Name,
		Session:     a.session,
		EntityCount: len(a.dataset.Entities),
		Species:     a.dataset.Species,
		Positions:   schema.EncodeFloat32s(a.positions),
		Radii:       schema.EncodeFloat32s(a.radii),
		Centroid:    &schema.GeoPoint{Lng: a.dataset.CentroidLng, Lat: a.dataset.CentroidLat},
		StartDOY:    a.cfg.StartDOY,
		EndDOY:      a.cfg.EndDOY,
		GeneratedAt: time.Now(),
	}

	payload, err := json.Marshal(descriptor)
	if err != nil {
		return fmt.Errorf("failed to marshal descriptor: %w", err)
	}

	if err := a.mqtt.Publish(mqtt.DescriptorTopic(a.dataset.Name), 0, true, payload); err != nil {
		return fmt.Errorf("failed to publish descriptor: %w", err)
	}

	a.logger.Info("Published dataset descriptor",
		"dataset", a.dataset.Name,
		"session", a.session,
		"entities", len(a.dataset.Entities))

	return nil
}

// startFrameLoop starts the frame evaluation ticker.
func (a *Agent) startFrameLoop() {
	interval := a.cfg.FrameInterval()

	go func() {
		a.logger.Info("Starting frame loop", "interval", interval)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				a.tickFrame()
			case <-a.stopChan:
				return
			}
		}
	}()
}

// tickFrame advances the clock and publishes a frame when the
// simulated day moved or a control command forced a refresh.
func (a *Agent) tickFrame() {
	a.clock.Advance()
	snap := a.clock.Snapshot()

	forced := a.throttle.Consume()
	if !forced && snap.DOY == a.lastDOY {
		return
	}

	if err := a.publishFrame(snap); err != nil {
		a.logger.Error("Failed to publish frame", "error", err)
		return
	}

	if forced {
		a.publishState(snap)
	}
}

func (a *Agent) publishFrame(snap playback.Snapshot) error {
	colors := EvaluateColors(a.lookup, a.dataset.Entities, snap.DOY)

	a.seq++
	frame := &schema.Frame{
		Dataset:  a.dataset.Name,
		Session:  a.session,
		Seq:      a.seq,
		DOY:      snap.DOY,
		Date:     schema.DOYDate(snap.DOY),
		Playing:  snap.Playing,
		Speed:    snap.Speed,
		Count:    len(a.dataset.Entities),
		Colors:   schema.EncodeColors(colors),
		Daylight: a.daylightFor(snap.DOY),
		SentAt:   time.Now(),
	}

	payload, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}

	if err := a.mqtt.Publish(mqtt.FrameTopic(a.dataset.Name), 0, false, payload); err != nil {
		return fmt.Errorf("failed to publish frame: %w", err)
	}

	a.lastDOY = snap.DOY
	return nil
}

// daylightFor caches the astronomical summary per integer day so
// frames within the same simulated day share one computation.
func (a *Agent) daylightFor(doy float64) *schema.Daylight {
	day := int(doy)
	if a.daylight == nil || day != a.daylightDay {
		d := season.Summarize(doy, a.dataset.CentroidLat, a.dataset.CentroidLng)
		a.daylight = &d
		a.daylightDay = day
	}
	return a.daylight
}

// startStateLoop starts the periodic state snapshot ticker.
func (a *Agent) startStateLoop() {
	interval := time.Duration(a.cfg.StateIntervalSec) * time.Second

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				a.publishState(a.clock.Snapshot())
			case <-a.stopChan:
				return
			}
		}
	}()
}

// publishState sends the retained transport state and mirrors it to
// Redis. Safe from both the frame and the state goroutine; it only
// reads immutable agent fields.
func (a *Agent) publishState(snap playback.Snapshot) {
	state := &schema.ClockState{
		Dataset:   a.dataset.Name,
		Session:   a.session,
		DOY:       snap.DOY,
		Playing:   snap.Playing,
		Speed:     snap.Speed,
		StartDOY:  snap.StartDOY,
		EndDOY:    snap.EndDOY,
		UpdatedAt: time.Now(),
	}

	payload, err := json.Marshal(state)
	if err != nil {
		a.logger.Error("Failed to marshal clock state", "error", err)
		return
	}

	if err := a.mqtt.Publish(mqtt.StateTopic(a.dataset.Name), 0, true, payload); err != nil {
		a.logger.Error("Failed to publish clock state", "error", err)
	}

	if err := a.store.SaveState(context.Background(), state); err != nil {
		a.logger.Warn("Failed to store clock state", "error", err)
	}
}

// handleControlMessage processes one transport command.
func (a *Agent) handleControlMessage(msg mqtt.Message) {
	cmd, err := parseControl(msg.Payload())
	if err != nil {
		a.logger.Error("Failed to parse control message", "topic", msg.Topic(), "error", err)
		return
	}

	if !applyControl(a.clock, cmd) {
		a.logger.Warn("Ignoring unknown control action", "action", cmd.Action)
		return
	}

	snap := a.clock.Snapshot()
	a.logger.Info("Applied control command",
		"action", cmd.Action,
		"value", cmd.Value,
		"origin", cmd.Origin,
		"doy", snap.DOY,
		"playing", snap.Playing)

	event := &schema.TimelineEvent{
		Action: cmd.Action,
		Value:  cmd.Value,
		DOY:    snap.DOY,
		At:     time.Now(),
	}
	if err := a.store.RecordControl(context.Background(), a.dataset.Name, event); err != nil {
		a.logger.Warn("Failed to record control event", "error", err)
	}

	// Paused scrubbing still needs a fresh frame
	a.throttle.Request()
}
