package formz

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// DefaultDebounce is the default debounce window for binding propagation.
const DefaultDebounce = 300 * time.Millisecond

// eventKind distinguishes change events from blur events. Each kind has
// its own debounce timer.
type eventKind int

const (
	eventChange eventKind = iota
	eventBlur
)

// String returns the string representation of the kind.
func (k eventKind) String() string {
	switch k {
	case eventChange:
		return "change"
	case eventBlur:
		return "blur"
	default:
		return "unknown"
	}
}

type bindingEvent struct {
	kind  eventKind
	value any
}

// Binding bridges an input's change and blur events to a Form field. It
// keeps a local echo of the value that updates on every event with zero
// latency, while propagation to the form is debounced: events arriving
// within the window coalesce into a single propagation carrying the
// latest value. Change and blur windows run on independent timers.
//
// A Binding may be created without a form, in which case the local echo
// and the event hooks still work and the default value seeds the echo.
//
// Close cancels pending windows; no propagation fires after Close returns.
// A propagation already dispatched past the debounce boundary runs to
// completion, but its result is discarded instead of being applied to the
// closed binding.
type Binding struct {
	form  *Form
	field string

	debounce   time.Duration
	syncMode   bool
	clock      clockz.Clock
	transforms []Transform
	changeHook func(any)
	blurHook   func(any)
	fallback   any

	local     atomic.Pointer[any]
	lastError atomic.Pointer[error]
	history   *errorLog

	mu      sync.Mutex
	started bool
	closed  bool
	cancel  context.CancelFunc
	resync  chan struct{}

	// Sync mode: pending values flushed manually.
	pendingChange *any
	pendingBlur   *any

	events chan bindingEvent
	done   chan struct{}
}

// bindingConfig holds configuration options for a Binding.
type bindingConfig struct {
	debounce   time.Duration
	syncMode   bool
	clock      clockz.Clock
	transforms []Transform
	changeHook func(any)
	blurHook   func(any)
	fallback   any
	history    int
}

// BindingOption configures a Binding.
type BindingOption func(*bindingConfig)

// WithDebounce sets the debounce window for propagation.
// Events arriving within this window coalesce into a single propagation.
func WithDebounce(d time.Duration) BindingOption {
	return func(c *bindingConfig) {
		c.debounce = d
	}
}

// WithSyncMode disables the background goroutine and debounce timers.
// Events are recorded as pending and propagated by explicit Flush calls,
// making tests deterministic.
func WithSyncMode() BindingOption {
	return func(c *bindingConfig) {
		c.syncMode = true
	}
}

// WithClock sets a custom clock for debounce timers.
// Use this with clockz.FakeClock for deterministic debounce testing.
func WithClock(clock clockz.Clock) BindingOption {
	return func(c *bindingConfig) {
		c.clock = clock
	}
}

// WithDefault sets the value the local echo starts from when no form is
// attached, or when the attached form has no value for the field.
func WithDefault(v any) BindingOption {
	return func(c *bindingConfig) {
		c.fallback = v
	}
}

// WithTransform appends a transform applied to values at the propagation
// boundary, in the order given.
func WithTransform(t Transform) BindingOption {
	return func(c *bindingConfig) {
		c.transforms = append(c.transforms, t)
	}
}

// WithChangeHook sets a callback invoked after a change propagation is
// delivered to the form.
func WithChangeHook(fn func(any)) BindingOption {
	return func(c *bindingConfig) {
		c.changeHook = fn
	}
}

// WithBlurHook sets a callback invoked after a blur propagation is
// delivered to the form.
func WithBlurHook(fn func(any)) BindingOption {
	return func(c *bindingConfig) {
		c.blurHook = fn
	}
}

// WithErrorHistory keeps up to size recent propagation failures,
// readable via Errors. Zero disables the history.
func WithErrorHistory(size int) BindingOption {
	return func(c *bindingConfig) {
		c.history = size
	}
}

// Bind creates a Binding for one field of a form. A nil form creates a
// standalone binding that only maintains the local echo and hooks.
func Bind(form *Form, field string, opts ...BindingOption) *Binding {
	cfg := &bindingConfig{
		debounce: DefaultDebounce,
		clock:    clockz.RealClock,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Binding{
		form:       form,
		field:      field,
		debounce:   cfg.debounce,
		syncMode:   cfg.syncMode,
		clock:      cfg.clock,
		transforms: cfg.transforms,
		changeHook: cfg.changeHook,
		blurHook:   cfg.blurHook,
		fallback:   cfg.fallback,
		history:    newErrorLog(cfg.history),
		events:     make(chan bindingEvent, 16),
		done:       make(chan struct{}),
	}
}

// Field returns the field name this binding synchronizes.
func (b *Binding) Field() string {
	return b.field
}

// Start seeds the local echo from the form (or the default value) and, in
// async mode, begins the debounce loop. The loop runs until ctx is
// canceled or Close is called.
//
// Start can only be called once. Subsequent calls return an error.
func (b *Binding) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return fmt.Errorf("binding %q already started", b.field)
	}
	b.started = true
	if b.form != nil {
		b.resync = b.form.subscribe()
	}
	b.mu.Unlock()

	b.seedLocal()

	capitan.Emit(ctx, BindingStarted,
		KeyField.Field(b.field),
		KeyDebounce.Field(b.debounce),
	)

	if b.syncMode {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	b.cancel = cancel
	b.mu.Unlock()

	go b.run(runCtx)
	return nil
}

// Close tears the binding down. Pending debounce windows are canceled;
// no propagation reaches the form after Close returns. Close is
// idempotent.
func (b *Binding) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	cancel := b.cancel
	resync := b.resync
	syncMode := b.syncMode
	b.pendingChange = nil
	b.pendingBlur = nil
	b.mu.Unlock()

	close(b.done)
	if cancel != nil {
		cancel()
	}
	if b.form != nil && resync != nil {
		b.form.unsubscribe(resync)
	}
	if syncMode || cancel == nil {
		capitan.Emit(context.Background(), BindingStopped,
			KeyField.Field(b.field),
		)
	}
}

// Value returns the local echo of the field value. It reflects the most
// recent OnChange or OnBlur immediately, before any propagation runs.
func (b *Binding) Value() any {
	ptr := b.local.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// LastError returns the most recent propagation failure, or nil.
func (b *Binding) LastError() error {
	ptr := b.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// Errors returns the recorded propagation failures, oldest first.
// Empty unless WithErrorHistory was set.
func (b *Binding) Errors() []error {
	return b.history.snapshot()
}

// OnChange records a change event: the local echo updates immediately and
// a debounced propagation to the form is scheduled. Events within the
// window coalesce; only the latest value propagates.
func (b *Binding) OnChange(value any) {
	b.setLocal(value)
	b.push(bindingEvent{kind: eventChange, value: value})
}

// OnBlur records a blur event. Identical to OnChange but debounced on an
// independent timer and delivered to the blur hook.
func (b *Binding) OnBlur(value any) {
	b.setLocal(value)
	b.push(bindingEvent{kind: eventBlur, value: value})
}

// Flush propagates any pending change and blur values immediately. It is
// only available in sync mode and is used for deterministic testing.
// Returns true if anything was propagated. Propagation failures are
// recorded and readable via LastError.
func (b *Binding) Flush(ctx context.Context) bool {
	if !b.syncMode {
		return false
	}

	b.drainResync()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return false
	}
	change := b.pendingChange
	blur := b.pendingBlur
	b.pendingChange = nil
	b.pendingBlur = nil
	b.mu.Unlock()

	flushed := false
	if change != nil {
		_ = b.flush(ctx, eventChange, *change) //nolint:errcheck // Errors stored via recordError
		flushed = true
	}
	if blur != nil {
		_ = b.flush(ctx, eventBlur, *blur) //nolint:errcheck // Errors stored via recordError
		flushed = true
	}
	return flushed
}

// push hands an event to the debounce loop, or records it as pending in
// sync mode. Events after Close are discarded.
func (b *Binding) push(ev bindingEvent) {
	if b.syncMode {
		b.mu.Lock()
		if !b.closed {
			v := ev.value
			switch ev.kind {
			case eventChange:
				b.pendingChange = &v
			case eventBlur:
				b.pendingBlur = &v
			}
		}
		b.mu.Unlock()
		return
	}

	select {
	case b.events <- ev:
	case <-b.done:
	}
}

// run is the debounce loop: it coalesces events per kind and propagates
// the latest pending value when a kind's timer fires. Cancellation stops
// both timers and drops pending values without propagating them.
func (b *Binding) run(ctx context.Context) {
	defer capitan.Emit(ctx, BindingStopped,
		KeyField.Field(b.field),
	)

	var (
		changeTimer, blurTimer     clockz.Timer
		pendingChange, pendingBlur any
		hasChange, hasBlur         bool
	)

	for {
		// Get timer channels or nil if no timer
		var changeC, blurC <-chan time.Time
		if changeTimer != nil {
			changeC = changeTimer.C()
		}
		if blurTimer != nil {
			blurC = blurTimer.C()
		}

		select {
		case <-ctx.Done():
			if changeTimer != nil {
				changeTimer.Stop()
			}
			if blurTimer != nil {
				blurTimer.Stop()
			}
			return

		case ev := <-b.events:
			switch ev.kind {
			case eventChange:
				pendingChange = ev.value
				hasChange = true
				changeTimer = restartTimer(b.clock, changeTimer, b.debounce)
			case eventBlur:
				pendingBlur = ev.value
				hasBlur = true
				blurTimer = restartTimer(b.clock, blurTimer, b.debounce)
			}

		case <-changeC:
			if hasChange {
				_ = b.flush(ctx, eventChange, pendingChange) //nolint:errcheck // Errors stored via recordError
				hasChange = false
			}

		case <-blurC:
			if hasBlur {
				_ = b.flush(ctx, eventBlur, pendingBlur) //nolint:errcheck // Errors stored via recordError
				hasBlur = false
			}

		case <-b.resync:
			b.seedLocal()
			capitan.Emit(ctx, BindingResynced,
				KeyField.Field(b.field),
			)
		}
	}
}

// restartTimer starts the timer on first use and resets it on subsequent
// events, draining a fire that raced the reset.
func restartTimer(clock clockz.Clock, t clockz.Timer, d time.Duration) clockz.Timer {
	if t == nil {
		return clock.NewTimer(d)
	}
	if !t.Stop() {
		select {
		case <-t.C():
		default:
		}
	}
	t.Reset(d)
	return t
}

// flush delivers one coalesced value to the form and the matching hook.
// When the binding was closed while the propagation was in flight, the
// form write still completes but the result is discarded: no error is
// recorded and no hook runs.
func (b *Binding) flush(ctx context.Context, kind eventKind, value any) error {
	for _, t := range b.transforms {
		value = t(value)
	}

	var err error
	if b.form != nil {
		err = b.form.SetValue(ctx, b.field, value)
	}

	if b.isClosed() {
		return err
	}

	if err != nil {
		b.recordError(err)
		capitan.Emit(ctx, BindingFlushFailed,
			KeyField.Field(b.field),
			KeyKind.Field(kind.String()),
			KeyError.Field(err.Error()),
		)
		return err
	}

	b.lastError.Store(nil)
	capitan.Emit(ctx, BindingFlushed,
		KeyField.Field(b.field),
		KeyKind.Field(kind.String()),
	)

	switch kind {
	case eventChange:
		if b.changeHook != nil {
			b.changeHook(value)
		}
	case eventBlur:
		if b.blurHook != nil {
			b.blurHook(value)
		}
	}
	return nil
}

// seedLocal loads the local echo from the form's canonical value, falling
// back to the default value when no form is attached or the field is
// absent.
func (b *Binding) seedLocal() {
	if b.form != nil {
		if v, ok := b.form.Value(b.field); ok {
			b.setLocal(v)
			return
		}
	}
	b.setLocal(b.fallback)
}

// drainResync applies a pending external-change notification in sync mode.
func (b *Binding) drainResync() {
	if b.resync == nil {
		return
	}
	select {
	case <-b.resync:
		b.seedLocal()
	default:
	}
}

func (b *Binding) setLocal(v any) {
	b.local.Store(&v)
}

func (b *Binding) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *Binding) recordError(err error) {
	e := err
	b.lastError.Store(&e)
	b.history.record(err)
}
