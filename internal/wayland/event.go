package wayland

// Event is the closed set of decoded compositor events this client can
// observe. Client.NextEvent returns exactly one per call.
type Event interface {
	event()
}

// Global announces a registry capability the client may bind.
type Global struct {
	Name      uint32
	Interface string
	Version   uint32
}

// GlobalRemove announces that a registry capability went away.
type GlobalRemove struct {
	Name uint32
}

// SyncDone reports that the callback created by Sync has fired: every
// request sent before it has been processed by the compositor.
type SyncDone struct {
	Callback uint32
}

// DataOffer introduces a new clipboard offer object. Mime descriptions
// for it follow as OfferMime events.
type DataOffer struct {
	ID uint32
}

// OfferMime declares one mime type the offer can deliver.
type OfferMime struct {
	ID   uint32
	Mime string
}

// Selection declares the offer that now holds the clipboard. ID 0 means
// the clipboard was cleared.
type Selection struct {
	ID uint32
}

// Finished reports that the data device is defunct and will deliver no
// further events.
type Finished struct{}

// Unknown is any event the client has no decoder for (seat capabilities
// and the like). Callers log it at debug level and move on.
type Unknown struct {
	Object uint32
	Opcode uint16
}

func (Global) event()       {}
func (GlobalRemove) event() {}
func (SyncDone) event()     {}
func (DataOffer) event()    {}
func (OfferMime) event()    {}
func (Selection) event()    {}
func (Finished) event()     {}
func (Unknown) event()      {}
