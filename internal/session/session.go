// Package session drives one clipboard grab: registry bootstrap, the
// blocking event loop feeding the offer tracker, and the selector →
// transfer → decode pipeline once an offer becomes current.
package session

import (
	"errors"
	"fmt"
	"log/slog"

	"go.klb.dev/wlgrab/internal/content"
	"go.klb.dev/wlgrab/internal/tracker"
	"go.klb.dev/wlgrab/internal/transfer"
	"go.klb.dev/wlgrab/internal/wayland"
)

// ErrMissingGlobal reports that the compositor's initial registry burst
// did not advertise a required interface.
var ErrMissingGlobal = errors.New("session: required global not advertised")

// Client is the slice of the wayland client the session drives. Narrow
// enough to fake in tests.
type Client interface {
	GetRegistry() (uint32, error)
	Sync() (uint32, error)
	Bind(name uint32, iface string, version uint32) (uint32, error)
	GetDataDevice(manager, seat uint32) (uint32, error)
	Receive(offer uint32, mime string, fd int) error
	DestroyOffer(offer uint32) error
	NextEvent() (wayland.Event, error)
}

// Options configures a session.
type Options struct {
	// ListOnly stops after selection: the capture carries the announced
	// mime types but no payload is transferred.
	ListOnly bool
	Logger   *slog.Logger
}

// Capture is the outcome of one successful grab.
type Capture struct {
	// Kind is the representation that was (or, in list-only mode, would
	// have been) requested.
	Kind content.Kind
	// Mimes lists the mime strings of every recognized kind the offer
	// announced, in arrival order.
	Mimes []string
	// Raw is the transferred payload; nil in list-only mode.
	Raw []byte
	// Content is the decoded payload; nil in list-only mode.
	Content content.Decoded
}

// Session owns the offer tracker for one connection. Single-threaded;
// both blocking points (NextEvent, the transfer pipe read) stall it
// until the compositor responds. There is deliberately no timeout.
type Session struct {
	client  Client
	opts    Options
	log     *slog.Logger
	tracker *tracker.Tracker
	device  uint32
}

// New wraps an established client.
func New(c Client, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Session{client: c, opts: opts, log: opts.Logger}
	s.tracker = tracker.New(s.destroyOffer, opts.Logger)
	return s
}

func (s *Session) destroyOffer(id uint32) {
	if err := s.client.DestroyOffer(id); err != nil {
		s.log.Debug("destroying released offer failed", "id", id, "err", err)
	}
}

// Run bootstraps the session and blocks until one capture succeeds or
// the session fails for good.
func (s *Session) Run() (*Capture, error) {
	if err := s.Bootstrap(); err != nil {
		return nil, err
	}
	return s.Wait()
}

// Bootstrap lists the registry, binds wl_seat and the data-control
// manager, and opens the data device for the seat. The registry burst is
// considered exhausted when the sync callback fires; a required global
// still missing then is fatal.
func (s *Session) Bootstrap() error {
	if _, err := s.client.GetRegistry(); err != nil {
		return err
	}
	done, err := s.client.Sync()
	if err != nil {
		return err
	}

	var seatName, managerName uint32
	var seatFound, managerFound bool
	for {
		ev, err := s.client.NextEvent()
		if err != nil {
			return err
		}
		if sd, ok := ev.(wayland.SyncDone); ok && sd.Callback == done {
			break
		}
		g, ok := ev.(wayland.Global)
		if !ok {
			s.log.Debug("ignoring event during bootstrap", "event", fmt.Sprintf("%T", ev))
			continue
		}
		switch g.Interface {
		case wayland.IfaceSeat:
			seatName, seatFound = g.Name, true
		case wayland.IfaceDataControlManager:
			managerName, managerFound = g.Name, true
		}
	}
	if !seatFound {
		return fmt.Errorf("%w: %s", ErrMissingGlobal, wayland.IfaceSeat)
	}
	if !managerFound {
		return fmt.Errorf("%w: %s", ErrMissingGlobal, wayland.IfaceDataControlManager)
	}

	seat, err := s.client.Bind(seatName, wayland.IfaceSeat, 1)
	if err != nil {
		return err
	}
	manager, err := s.client.Bind(managerName, wayland.IfaceDataControlManager, 1)
	if err != nil {
		return err
	}
	s.device, err = s.client.GetDataDevice(manager, seat)
	if err != nil {
		return err
	}
	s.log.Debug("data device ready", "device", s.device)
	return nil
}

// Wait pulls one event per iteration and routes the offer-affecting ones
// to the tracker. When a selection promotes an offer, retrieval runs
// exactly once for it; an offer with no usable representation is skipped
// and the loop keeps waiting for the next selection.
func (s *Session) Wait() (*Capture, error) {
	for {
		ev, err := s.client.NextEvent()
		if err != nil {
			return nil, err
		}
		switch ev.(type) {
		case wayland.DataOffer, wayland.OfferMime, wayland.Selection:
			if !s.tracker.Handle(ev) {
				continue
			}
			capture, err := s.grab(s.tracker.Current())
			if err != nil {
				return nil, err
			}
			if capture != nil {
				return capture, nil
			}
		case wayland.Finished:
			return nil, fmt.Errorf("%w: data device finished", wayland.ErrProtocol)
		default:
			s.log.Debug("ignoring event", "event", fmt.Sprintf("%T", ev))
		}
	}
}

// grab runs selector → transfer → decode for a freshly promoted offer.
// A nil, nil return means the offer had nothing usable.
func (s *Session) grab(o *tracker.Offer) (*Capture, error) {
	kind, ok := content.PickPasteMime(o.Kinds)
	if !ok {
		s.log.Info("selection advertises no supported types", "id", o.ID)
		return nil, nil
	}
	mimes := make([]string, len(o.Kinds))
	for i, k := range o.Kinds {
		mimes[i] = k.Mime()
	}
	if s.opts.ListOnly {
		return &Capture{Kind: kind, Mimes: mimes}, nil
	}

	s.log.Debug("retrieving selection", "id", o.ID, "mime", kind.Mime())
	raw, err := transfer.Retrieve(s.client, o.ID, kind.Mime())
	if err != nil {
		return nil, err
	}
	dec, err := content.Decode(kind, raw)
	if err != nil {
		return nil, err
	}
	return &Capture{Kind: kind, Mimes: mimes, Raw: raw, Content: dec}, nil
}
