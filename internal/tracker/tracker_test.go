package tracker

import (
	"slices"
	"testing"

	"go.klb.dev/wlgrab/internal/content"
	"go.klb.dev/wlgrab/internal/wayland"
)

func newTestTracker() (*Tracker, *[]uint32) {
	var destroyed []uint32
	t := New(func(id uint32) { destroyed = append(destroyed, id) }, nil)
	return t, &destroyed
}

func TestOfferSupersession(t *testing.T) {
	tr, destroyed := newTestTracker()

	tr.Handle(wayland.DataOffer{ID: 1})
	tr.Handle(wayland.OfferMime{ID: 1, Mime: "text/plain"})
	tr.Handle(wayland.DataOffer{ID: 2})
	tr.Handle(wayland.OfferMime{ID: 2, Mime: "image/png"})

	if !slices.Equal(*destroyed, []uint32{1}) {
		t.Fatalf("destroyed = %v, want [1]", *destroyed)
	}
	if promoted := tr.Handle(wayland.Selection{ID: 2}); !promoted {
		t.Fatal("selection of pending offer should promote")
	}
	cur := tr.Current()
	if cur == nil || cur.ID != 2 {
		t.Fatalf("current = %+v, want offer 2", cur)
	}
	// Only offer 2's descriptions survive.
	if len(cur.Kinds) != 1 || cur.Kinds[0] != content.ImagePNG {
		t.Fatalf("kinds = %v, want [image/png]", cur.Kinds)
	}
}

func TestStaleDescriptionIgnored(t *testing.T) {
	tr, _ := newTestTracker()

	tr.Handle(wayland.DataOffer{ID: 5})
	tr.Handle(wayland.OfferMime{ID: 5, Mime: "text/plain"})
	tr.Handle(wayland.OfferMime{ID: 6, Mime: "image/png"})

	tr.Handle(wayland.Selection{ID: 5})
	cur := tr.Current()
	if len(cur.Kinds) != 1 || cur.Kinds[0] != content.TextPlain {
		t.Fatalf("kinds = %v, stale description for offer 6 leaked in", cur.Kinds)
	}
}

func TestStaleSelectionIgnored(t *testing.T) {
	tr, destroyed := newTestTracker()

	tr.Handle(wayland.DataOffer{ID: 5})
	if promoted := tr.Handle(wayland.Selection{ID: 6}); promoted {
		t.Fatal("selection for unknown offer must not promote")
	}
	if tr.Current() != nil {
		t.Fatal("stale selection must leave no current offer")
	}
	if len(*destroyed) != 0 {
		t.Fatalf("stale selection destroyed offers: %v", *destroyed)
	}
	// The pending offer is still live and selectable.
	if promoted := tr.Handle(wayland.Selection{ID: 5}); !promoted {
		t.Fatal("pending offer should still be selectable after a stale selection")
	}
}

func TestSelectionWithoutPending(t *testing.T) {
	tr, _ := newTestTracker()
	if promoted := tr.Handle(wayland.Selection{ID: 3}); promoted {
		t.Fatal("selection with no pending offer must not promote")
	}
}

func TestUnknownMimeDropped(t *testing.T) {
	tr, _ := newTestTracker()

	tr.Handle(wayland.DataOffer{ID: 1})
	tr.Handle(wayland.OfferMime{ID: 1, Mime: "text/html"})
	tr.Handle(wayland.OfferMime{ID: 1, Mime: "application/x-moz-url"})
	tr.Handle(wayland.OfferMime{ID: 1, Mime: "UTF8_STRING"})

	tr.Handle(wayland.Selection{ID: 1})
	cur := tr.Current()
	if len(cur.Kinds) != 1 || cur.Kinds[0] != content.TextUTF8String {
		t.Fatalf("kinds = %v, want only UTF8_STRING", cur.Kinds)
	}
}

func TestPromotionReplacesCurrent(t *testing.T) {
	tr, destroyed := newTestTracker()

	tr.Handle(wayland.DataOffer{ID: 1})
	tr.Handle(wayland.Selection{ID: 1})
	tr.Handle(wayland.DataOffer{ID: 2})
	tr.Handle(wayland.Selection{ID: 2})

	if cur := tr.Current(); cur == nil || cur.ID != 2 {
		t.Fatalf("current = %+v, want offer 2", tr.Current())
	}
	if !slices.Equal(*destroyed, []uint32{1}) {
		t.Fatalf("destroyed = %v, want [1]", *destroyed)
	}
	// Descriptions after promotion have no pending offer to land on.
	tr.Handle(wayland.OfferMime{ID: 2, Mime: "text/plain"})
	if len(tr.Current().Kinds) != 0 {
		t.Fatal("current offer's kinds must be frozen after promotion")
	}
}

func TestSelectionCleared(t *testing.T) {
	tr, destroyed := newTestTracker()

	tr.Handle(wayland.DataOffer{ID: 7})
	tr.Handle(wayland.Selection{ID: 7})
	if promoted := tr.Handle(wayland.Selection{ID: 0}); promoted {
		t.Fatal("clearing the clipboard is not a promotion")
	}
	if tr.Current() != nil {
		t.Fatal("cleared clipboard must leave no current offer")
	}
	if !slices.Equal(*destroyed, []uint32{7}) {
		t.Fatalf("destroyed = %v, want [7]", *destroyed)
	}
}
