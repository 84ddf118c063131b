package cmd

import (
	"context"
	"fmt"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"github.com/deevus/orders-tui/app"
	"github.com/deevus/orders-tui/internal"
	"github.com/deevus/orders-tui/internal/logging"
)

// eventQueueSize bounds the events waiting to reach the UI loop.
const eventQueueSize = 256

// eventForwarder hands events from background goroutines to the UI loop
// without ever blocking the sender. Events are dropped when the queue is
// full; every event the app posts is a redraw hint that a later one covers.
type eventForwarder struct {
	queue chan vaxis.Event
}

func newEventForwarder(ctx context.Context, post func(vaxis.Event)) *eventForwarder {
	f := &eventForwarder{queue: make(chan vaxis.Event, eventQueueSize)}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-f.queue:
				post(ev)
			}
		}
	}()
	return f
}

func (f *eventForwarder) Post(ev vaxis.Event) {
	select {
	case f.queue <- ev:
	default:
	}
}

func runTUI(ctx context.Context, opts *rootOptions) error {
	cfg, name, pc, err := loadPortal(opts)
	if err != nil {
		return err
	}

	logger, logFile, err := logging.New(logging.Options{Path: cfg.Log.Path, Level: cfg.Log.Level, JSON: cfg.Log.JSON})
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer logFile.Close()

	root := app.New(app.Params{PortalName: name})
	svc := internal.NewServices(name, pc, root, root, logger)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("shutdown", "err", err)
		}
	}()
	root.SetController(svc.Dashboard)

	logger.Info("starting", "portal", name, "base_url", pc.BaseURL, "client_id", svc.Client.ClientID(), "push", pc.WebSocketURL != "" && !pc.DisablePush)
	// Updates posted before the terminal app exists are kept in the views
	// and shown by the first draw.
	if err := svc.Start(ctx); err != nil {
		return err
	}

	vxApp, err := vxfw.NewApp(vaxis.Options{})
	if err != nil {
		return fmt.Errorf("creating terminal app: %w", err)
	}

	uiCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	root.SetPostEvent(newEventForwarder(uiCtx, vxApp.PostEvent).Post)

	if err := vxApp.Run(root); err != nil {
		return fmt.Errorf("running terminal app: %w", err)
	}
	logger.Info("exiting")
	return nil
}
