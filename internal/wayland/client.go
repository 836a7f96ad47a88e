package wayland

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Interface names the session binds from the registry.
const (
	IfaceSeat               = "wl_seat"
	IfaceDataControlManager = "zwlr_data_control_manager_v1"
)

// objKind tags an object id with the interface whose event table applies
// to it. Incoming events carry only the object id, so the client keeps
// this table to know how to decode each one.
type objKind uint8

const (
	kindUnknown objKind = iota
	kindDisplay
	kindRegistry
	kindCallback
	kindSeat
	kindManager
	kindDevice
	kindOffer
)

var kindByInterface = map[string]objKind{
	IfaceSeat:               kindSeat,
	IfaceDataControlManager: kindManager,
}

// Request opcodes, per the core and wlr-data-control protocol XML.
const (
	opDisplaySync        = 0
	opDisplayGetRegistry = 1

	opRegistryBind = 0

	opManagerGetDevice = 1

	opOfferReceive = 0
	opOfferDestroy = 1
)

// Event opcodes.
const (
	evDisplayError    = 0
	evDisplayDeleteID = 1

	evRegistryGlobal       = 0
	evRegistryGlobalRemove = 1

	evCallbackDone = 0

	evDeviceOffer     = 0
	evDeviceSelection = 1
	evDeviceFinished  = 2

	evOfferMime = 0
)

const idDisplay uint32 = 1

// Client layers typed requests and event decoding over a Conn. One
// goroutine at a time.
type Client struct {
	conn     *Conn
	nextID   uint32
	registry uint32
	objects  map[uint32]objKind
}

// Connect dials the display and returns a ready client.
func Connect(display string) (*Client, error) {
	conn, err := Dial(display)
	if err != nil {
		return nil, err
	}
	return NewClient(conn), nil
}

// NewClient wraps an established connection.
func NewClient(conn *Conn) *Client {
	return &Client{
		conn:    conn,
		nextID:  2, // 1 is wl_display
		objects: map[uint32]objKind{idDisplay: kindDisplay},
	}
}

// Close tears down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) newID(k objKind) uint32 {
	id := c.nextID
	c.nextID++
	c.objects[id] = k
	return id
}

// GetRegistry creates the registry object. The compositor answers with a
// burst of Global events.
func (c *Client) GetRegistry() (uint32, error) {
	id := c.newID(kindRegistry)
	if err := c.conn.send(idDisplay, opDisplayGetRegistry, appendUint32(nil, id)); err != nil {
		return 0, err
	}
	c.registry = id
	return id, nil
}

// Sync creates a callback object whose SyncDone event marks the point
// where all prior requests have been processed.
func (c *Client) Sync() (uint32, error) {
	id := c.newID(kindCallback)
	if err := c.conn.send(idDisplay, opDisplaySync, appendUint32(nil, id)); err != nil {
		return 0, err
	}
	return id, nil
}

// Bind binds the named registry global and returns the new object id.
// wl_registry.bind inlines the new_id as (interface, version, id).
func (c *Client) Bind(name uint32, iface string, version uint32) (uint32, error) {
	if c.registry == 0 {
		return 0, fmt.Errorf("wayland: bind %s before get_registry", iface)
	}
	id := c.newID(kindByInterface[iface])
	args := appendUint32(nil, name)
	args = appendString(args, iface)
	args = appendUint32(args, version)
	args = appendUint32(args, id)
	if err := c.conn.send(c.registry, opRegistryBind, args); err != nil {
		return 0, err
	}
	return id, nil
}

// GetDataDevice asks the data-control manager for the device watching
// the given seat's clipboard.
func (c *Client) GetDataDevice(manager, seat uint32) (uint32, error) {
	id := c.newID(kindDevice)
	args := appendUint32(nil, id)
	args = appendUint32(args, seat)
	if err := c.conn.send(manager, opManagerGetDevice, args); err != nil {
		return 0, err
	}
	return id, nil
}

// Receive asks the compositor to write the offer's payload for the given
// mime type into fd. The caller keeps ownership of fd; the kernel dups it
// in transit, so the local copy should be closed once this returns.
func (c *Client) Receive(offer uint32, mime string, fd int) error {
	args := appendString(nil, mime)
	return c.conn.sendFD(offer, opOfferReceive, args, fd)
}

// DestroyOffer releases an offer object the session no longer tracks.
func (c *Client) DestroyOffer(offer uint32) error {
	delete(c.objects, offer)
	return c.conn.send(offer, opOfferDestroy, nil)
}

// NextEvent blocks until the next decodable event arrives. Display
// delete_id bookkeeping is consumed internally; a display error event or
// an undecodable payload fails with ErrProtocol. Events for objects the
// client never created, or opcodes it has no decoder for, come back as
// Unknown so the caller can log and drop them.
func (c *Client) NextEvent() (Event, error) {
	for {
		object, opcode, payload, fd, err := c.conn.read()
		if err != nil {
			return nil, err
		}
		if fd >= 0 {
			// Nothing in this client's event set carries a descriptor.
			_ = unix.Close(fd)
		}

		switch c.objects[object] {
		case kindDisplay:
			switch opcode {
			case evDisplayError:
				objID, rest, err := parseUint32(payload)
				if err != nil {
					return nil, err
				}
				code, rest, err := parseUint32(rest)
				if err != nil {
					return nil, err
				}
				msg, _, err := parseString(rest)
				if err != nil {
					return nil, err
				}
				return nil, fmt.Errorf("%w: object %d code %d: %s", ErrProtocol, objID, code, msg)
			case evDisplayDeleteID:
				id, _, err := parseUint32(payload)
				if err != nil {
					return nil, err
				}
				delete(c.objects, id)
				continue
			}

		case kindRegistry:
			switch opcode {
			case evRegistryGlobal:
				name, rest, err := parseUint32(payload)
				if err != nil {
					return nil, err
				}
				iface, rest, err := parseString(rest)
				if err != nil {
					return nil, err
				}
				version, _, err := parseUint32(rest)
				if err != nil {
					return nil, err
				}
				return Global{Name: name, Interface: iface, Version: version}, nil
			case evRegistryGlobalRemove:
				name, _, err := parseUint32(payload)
				if err != nil {
					return nil, err
				}
				return GlobalRemove{Name: name}, nil
			}

		case kindCallback:
			if opcode == evCallbackDone {
				delete(c.objects, object)
				return SyncDone{Callback: object}, nil
			}

		case kindDevice:
			switch opcode {
			case evDeviceOffer:
				id, _, err := parseUint32(payload)
				if err != nil {
					return nil, err
				}
				// Server-allocated object; track it so its mime
				// events are decodable.
				c.objects[id] = kindOffer
				return DataOffer{ID: id}, nil
			case evDeviceSelection:
				id, _, err := parseUint32(payload)
				if err != nil {
					return nil, err
				}
				return Selection{ID: id}, nil
			case evDeviceFinished:
				return Finished{}, nil
			}

		case kindOffer:
			if opcode == evOfferMime {
				mime, _, err := parseString(payload)
				if err != nil {
					return nil, err
				}
				return OfferMime{ID: object, Mime: mime}, nil
			}
		}

		return Unknown{Object: object, Opcode: opcode}, nil
	}
}
