// Package tracker holds the per-session clipboard offer state machine:
// at most one offer still being described (pending) and at most one the
// compositor has confirmed as the clipboard (current).
package tracker

import (
	"log/slog"

	"go.klb.dev/wlgrab/internal/content"
	"go.klb.dev/wlgrab/internal/wayland"
)

// Offer is one compositor-announced clipboard candidate. Kinds collects
// its recognized mime declarations in arrival order; it grows only while
// the offer is pending and is frozen once the offer becomes current.
type Offer struct {
	ID    uint32
	Kinds []content.Kind
}

// Tracker consumes offer-affecting protocol events. It is mutated by a
// single goroutine only; no event is ever fatal — malformed or stale
// peer input degrades to "no current offer".
type Tracker struct {
	pending *Offer
	current *Offer
	destroy func(id uint32)
	log     *slog.Logger
}

// New returns an empty tracker. destroy is invoked with the protocol id
// of every offer the tracker releases (superseded pending offers,
// replaced or cleared current offers) so the session can destroy the
// protocol object; nil means no-op.
func New(destroy func(id uint32), log *slog.Logger) *Tracker {
	if destroy == nil {
		destroy = func(uint32) {}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{destroy: destroy, log: log}
}

// Current returns the offer currently holding the clipboard, or nil.
func (t *Tracker) Current() *Offer {
	return t.current
}

// Handle applies one protocol event. It reports true exactly when the
// event promoted a pending offer to current; every other event,
// including ones ignored as stale, reports false.
func (t *Tracker) Handle(ev wayland.Event) bool {
	switch ev := ev.(type) {
	case wayland.DataOffer:
		t.newOffer(ev.ID)
	case wayland.OfferMime:
		t.describe(ev.ID, ev.Mime)
	case wayland.Selection:
		return t.selected(ev.ID)
	}
	return false
}

// newOffer starts tracking a fresh pending offer, superseding any offer
// still being described.
func (t *Tracker) newOffer(id uint32) {
	if t.pending != nil {
		t.log.Debug("offer superseded", "id", t.pending.ID, "by", id)
		t.release(t.pending)
	}
	t.pending = &Offer{ID: id}
}

// describe records one mime declaration against the pending offer.
// Unrecognized mime strings are dropped without comment; events for an
// offer that is no longer pending are stale and ignored.
func (t *Tracker) describe(id uint32, mime string) {
	if t.pending == nil || t.pending.ID != id {
		t.log.Debug("stale offer description ignored", "id", id, "mime", mime)
		return
	}
	if k, ok := content.ParseMime(mime); ok {
		t.pending.Kinds = append(t.pending.Kinds, k)
	}
}

// selected promotes the pending offer to current. Id 0 means the
// compositor cleared the clipboard; a selection for anything other than
// the pending offer is stale and ignored.
func (t *Tracker) selected(id uint32) bool {
	if id == 0 {
		if t.current != nil {
			t.release(t.current)
			t.current = nil
		}
		t.log.Debug("clipboard cleared")
		return false
	}
	if t.pending == nil || t.pending.ID != id {
		t.log.Debug("stale selection ignored", "id", id)
		return false
	}
	if t.current != nil {
		t.release(t.current)
	}
	t.current = t.pending
	t.pending = nil
	return true
}

func (t *Tracker) release(o *Offer) {
	t.destroy(o.ID)
	o.Kinds = nil
}
