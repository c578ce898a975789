package dispatcher

import (
	"context"

	"vibe-cli/internal/events"
	"vibe-cli/internal/tools"
	"vibe-cli/internal/tools/handlers"
)

// Dispatcher 从 Bus 消费 DispatchRequest 并驱动 Runtime 执行。
type Dispatcher struct {
	runtime *tools.Runtime
	bus     *events.Bus
}

func New(opts tools.RuntimeOptions, bus *events.Bus) *Dispatcher {
	return &Dispatcher{
		runtime: tools.NewRuntime(opts, handlers.Default()),
		bus:     bus,
	}
}

// Runtime 暴露底层 Runtime，便于同步调用路径复用。
func (d *Dispatcher) Runtime() *tools.Runtime {
	return d.runtime
}

func (d *Dispatcher) Start(ctx context.Context) {
	if d.bus == nil {
		return
	}
	ch := d.bus.Subscribe()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-ch:
				if !ok {
					return
				}
				req, ok := evt.(tools.DispatchRequest)
				if !ok {
					continue
				}
				if req.Call.Name == "" || req.Call.ID == "" {
					continue
				}
				callCtx := req.Ctx
				if callCtx == nil {
					callCtx = ctx
				}
				go d.runtime.Dispatch(callCtx, req.Call, func(ev tools.ToolEvent) {
					d.bus.Publish(ev)
				})
			}
		}
	}()
}
