// mapfocus реализует контроллер фокуса карты.
// По списку мест, выбору и ручному "показать все" выдаёт поток команд
// (invalidate_size, fit_bounds, fly_to, set_view), который потребляет адаптер карты.
//
// Таймеры работают на clockwork.Clock. Медленный подписчик теряет команды,
// контроллер на нём не блокируется.
package mapfocus

import (
	"context"
	"sync"
	"time"

	"github.com/haroldove90-spec/Cowele/internal/geo"
	"github.com/haroldove90-spec/Cowele/internal/metrics"
	"github.com/jonboulle/clockwork"
)

// subscriberBuffer: ёмкость канала подписчика.
const subscriberBuffer = 64

// Timings: задержки контроллера.
type Timings struct {
	FitDelay           time.Duration
	InvalidateInterval time.Duration
	PickerSettle       time.Duration
}

// Controller: контроллер основной карты и карты выбора точки.
type Controller struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	timings Timings
	metrics *metrics.Metrics

	seq     uint64
	subs    map[int]chan Command
	nextSub int

	places    []geo.Point
	fitted    bool
	fitTimer  clockwork.Timer
	selected  string
	manualFit uint64

	pickerTimer clockwork.Timer
	pickerZoom  int

	running bool
}

// New создаёт контроллер. m может быть nil.
func New(clock clockwork.Clock, timings Timings, m *metrics.Metrics) *Controller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Controller{
		clock:   clock,
		timings: timings,
		metrics: m,
		subs:    make(map[int]chan Command),
	}
}

// Subscribe возвращает канал команд и функцию отписки.
func (c *Controller) Subscribe() (<-chan Command, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++

	ch := make(chan Command, subscriberBuffer)
	c.subs[id] = ch

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()

			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
		})
	}
}

// emitLocked рассылает команду подписчикам. Вызывается под c.mu.
func (c *Controller) emitLocked(cmd Command) {
	c.seq++
	cmd.Seq = c.seq

	c.metrics.MapCommand(string(cmd.Kind))

	for _, ch := range c.subs {
		select {
		case ch <- cmd:
		default:
		}
	}
}

// Start запускает периодический invalidate_size основной карты до отмены ctx.
// Повторный вызов при работающем цикле ничего не делает.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running || c.timings.InvalidateInterval <= 0 {
		return
	}

	c.running = true
	ticker := c.clock.NewTicker(c.timings.InvalidateInterval)

	go c.loop(ctx, ticker)
}

func (c *Controller) loop(ctx context.Context, ticker clockwork.Ticker) {
	defer func() {
		ticker.Stop()

		c.mu.Lock()
		c.running = false
		c.stopTimersLocked()
		c.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			c.mu.Lock()
			c.emitLocked(Command{Kind: KindInvalidateSize, Target: TargetMain})
			c.mu.Unlock()
		}
	}
}

func (c *Controller) stopTimersLocked() {
	if c.fitTimer != nil {
		c.fitTimer.Stop()
		c.fitTimer = nil
	}

	if c.pickerTimer != nil {
		c.pickerTimer.Stop()
		c.pickerTimer = nil
	}
}

// SetPlaces принимает текущий список валидных координат мест.
// Когда список впервые становится непустым, через FitDelay выполняется invalidate_size + fit_bounds.
func (c *Controller) SetPlaces(points []geo.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.places = append(c.places[:0:0], points...)

	if c.fitted || len(c.places) == 0 {
		return
	}

	c.fitted = true
	c.fitTimer = c.clock.AfterFunc(c.timings.FitDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		c.fitTimer = nil
		c.fitLocked()
	})
}

// ManualFit: пользователь нажал "показать все". Выполняется сразу.
func (c *Controller) ManualFit() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.manualFit++

	if c.fitTimer != nil {
		c.fitTimer.Stop()
		c.fitTimer = nil
	}

	c.fitLocked()

	return c.manualFit
}

// fitLocked: invalidate_size, затем fit_bounds по всем местам.
// Пустой список: перелёт к центру города.
func (c *Controller) fitLocked() {
	c.emitLocked(Command{Kind: KindInvalidateSize, Target: TargetMain})

	if len(c.places) == 0 {
		center := geo.CityCenter()
		c.emitLocked(Command{Kind: KindFlyTo, Target: TargetMain, Point: &center, Zoom: EmptyFitZoom, Animate: true})
		return
	}

	c.emitLocked(Command{
		Kind:    KindFitBounds,
		Target:  TargetMain,
		Points:  append([]geo.Point(nil), c.places...),
		Padding: FitPadding,
		MaxZoom: FitMaxZoom,
		Animate: true,
	})
}

// Select: выбор места. fly_to выдаётся только при переходе к другому месту.
// Пустой id: снятие выбора, для карты это no-op.
func (c *Controller) Select(id string, p geo.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id == "" {
		c.selected = ""
		return
	}

	if id == c.selected {
		return
	}

	c.selected = id

	if !geo.Valid(p) {
		return
	}

	c.emitLocked(Command{
		Kind:     KindFlyTo,
		Target:   TargetMain,
		Point:    &p,
		Zoom:     FlyToZoom,
		Duration: FlyToDuration.Seconds(),
		PlaceID:  id,
	})
}

// ShowUserMarker: маркер пользователя с кругом заданного радиуса.
func (c *Controller) ShowUserMarker(p geo.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.emitLocked(Command{Kind: KindShowUserMarker, Target: TargetMain, Point: &p, RadiusKm: UserRadiusKm})
}

// PickerMoved: координаты формы изменились. Через PickerSettle карта выбора
// выполняет invalidate_size и set_view на текущем зуме (по умолчанию 18).
// Повторный вызов до срабатывания перезапускает ожидание.
func (c *Controller) PickerMoved(p geo.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pickerTimer != nil {
		c.pickerTimer.Stop()
	}

	c.pickerTimer = c.clock.AfterFunc(c.timings.PickerSettle, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		c.pickerTimer = nil

		zoom := c.pickerZoom
		if zoom == 0 {
			zoom = PickerZoom
		}

		c.emitLocked(Command{Kind: KindInvalidateSize, Target: TargetPicker})
		c.emitLocked(Command{Kind: KindSetView, Target: TargetPicker, Point: &p, Zoom: zoom})
	})
}

// PickerZoomed запоминает текущий зум карты выбора.
func (c *Controller) PickerZoomed(zoom int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if zoom > 0 {
		c.pickerZoom = zoom
	}
}

// PickerClicked: клик по карте выбора. Возвращает точку, округлённую до 10 знаков,
// и центрирует на ней карту.
func (c *Controller) PickerClicked(p geo.Point) geo.Point {
	p = geo.Point{Lat: geo.Round(p.Lat, clickPrecision), Lng: geo.Round(p.Lng, clickPrecision)}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.emitLocked(Command{Kind: KindPanTo, Target: TargetPicker, Point: &p})

	return p
}

// ManualFitCount: значение счётчика ручных fit.
func (c *Controller) ManualFitCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.manualFit
}
