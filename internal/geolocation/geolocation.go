// geolocation выполняет однократный запрос позиции устройства при старте.
// Результат: future с явными ветками успеха и ошибки.
package geolocation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/haroldove90-spec/Cowele/internal/geo"
)

var (
	// ErrUnavailable: позиция не получена до истечения таймаута.
	ErrUnavailable = errors.New("position unavailable")
	// ErrInvalidPosition: координаты вне допустимого диапазона.
	ErrInvalidPosition = errors.New("invalid position")
	// ErrAlreadyReported: позиция уже была сообщена.
	ErrAlreadyReported = errors.New("position already reported")
)

// Provider: источник позиции устройства.
type Provider interface {
	Locate(ctx context.Context) (geo.Point, error)
}

// Static: фиксированная позиция из конфига.
type Static struct {
	Point geo.Point
}

func (s Static) Locate(context.Context) (geo.Point, error) {
	return s.Point, nil
}

// Reported: позиция, которую сообщает презентационный слой. Учитывается только первое сообщение.
type Reported struct {
	once sync.Once
	ch   chan geo.Point
}

// NewReported создаёт провайдер, ожидающий Report.
func NewReported() *Reported {
	return &Reported{ch: make(chan geo.Point, 1)}
}

// Report передаёт позицию устройства.
func (r *Reported) Report(p geo.Point) error {
	if !validPosition(p) {
		return fmt.Errorf("geolocation/Report: %w", ErrInvalidPosition)
	}

	sent := false
	r.once.Do(func() {
		r.ch <- p
		sent = true
	})

	if !sent {
		return fmt.Errorf("geolocation/Report: %w", ErrAlreadyReported)
	}

	return nil
}

func (r *Reported) Locate(ctx context.Context) (geo.Point, error) {
	select {
	case p := <-r.ch:
		return p, nil
	case <-ctx.Done():
		return geo.Point{}, fmt.Errorf("geolocation/Locate: %w: %w", ErrUnavailable, ctx.Err())
	}
}

func validPosition(p geo.Point) bool {
	return geo.Valid(p) && p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Future: результат однократного запроса позиции.
type Future struct {
	done  chan struct{}
	point geo.Point
	err   error
}

// Request запускает запрос позиции с таймаутом. timeout <= 0: без таймаута.
func Request(ctx context.Context, p Provider, timeout time.Duration) *Future {
	f := &Future{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		f.point, f.err = p.Locate(ctx)
		if f.err == nil && !validPosition(f.point) {
			f.err = fmt.Errorf("geolocation/Request: %w", ErrInvalidPosition)
		}
	}()

	return f
}

// Done закрывается, когда результат готов.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Result блокируется до готовности результата.
func (f *Future) Result() (geo.Point, error) {
	<-f.done
	return f.point, f.err
}
