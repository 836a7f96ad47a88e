// Package wayland speaks the small slice of the Wayland protocol that a
// clipboard reader needs: the display/registry bootstrap, wl_seat, and
// the zwlr_data_control_v1 family. It is a hand-rolled binding over the
// compositor's unix socket rather than a generated one; the client only
// ever handles a handful of message shapes.
package wayland

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// ErrProtocol reports a fatal protocol-level failure: a wl_display error
// event, a malformed payload, or the compositor closing the connection.
var ErrProtocol = errors.New("wayland: protocol error")

// Conn is a buffered connection to the compositor socket. It is not safe
// for concurrent use; the client drives it from a single goroutine.
type Conn struct {
	fd    int
	inBuf []byte
	// File descriptors received via SCM_RIGHTS, in arrival order. This
	// client sends fds but never expects to receive any; anything that
	// does arrive is closed when the message it rode in on is consumed.
	pendingFds []int
}

// Dial connects to the compositor socket for the given display name.
// An empty name falls back to $WAYLAND_DISPLAY, then "wayland-0".
// Relative names resolve under $XDG_RUNTIME_DIR.
func Dial(display string) (*Conn, error) {
	if display == "" {
		display = os.Getenv("WAYLAND_DISPLAY")
	}
	if display == "" {
		display = "wayland-0"
	}
	path := display
	if !filepath.IsAbs(path) {
		runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
		if runtimeDir == "" {
			return nil, errors.New("wayland: XDG_RUNTIME_DIR not set")
		}
		path = filepath.Join(runtimeDir, display)
	}

	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("wayland: socket: %w", err)
	}
	if err := unix.Connect(fd, &unix.SockaddrUnix{Name: path}); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("wayland: connect %s: %w", path, err)
	}
	return newConn(fd), nil
}

func newConn(fd int) *Conn {
	return &Conn{fd: fd}
}

// Close releases the socket and any unconsumed received descriptors.
func (c *Conn) Close() error {
	for _, fd := range c.pendingFds {
		_ = unix.Close(fd)
	}
	c.pendingFds = nil
	return unix.Close(c.fd)
}

// send writes one request: object id, size<<16|opcode, then args.
func (c *Conn) send(object uint32, opcode uint16, args []byte) error {
	return c.sendFD(object, opcode, args, -1)
}

// sendFD writes one request, attaching fd via SCM_RIGHTS when fd >= 0.
func (c *Conn) sendFD(object uint32, opcode uint16, args []byte, fd int) error {
	size := 8 + len(args)
	buf := make([]byte, 0, size)
	buf = appendUint32(buf, object)
	buf = appendUint32(buf, uint32(opcode)|uint32(size)<<16)
	buf = append(buf, args...)

	var oob []byte
	if fd >= 0 {
		oob = unix.UnixRights(fd)
	}
	for len(buf) > 0 {
		n, err := unix.SendmsgN(c.fd, buf, oob, nil, 0)
		if err != nil {
			return fmt.Errorf("wayland: send: %w", err)
		}
		buf = buf[n:]
		oob = nil // ancillary data goes out with the first byte
	}
	return nil
}

// read blocks until one complete event is available and returns its
// header, payload, and the first queued SCM_RIGHTS descriptor (-1 if
// none). Ownership of the descriptor passes to the caller.
func (c *Conn) read() (object uint32, opcode uint16, payload []byte, fd int, err error) {
	fd = -1
	for {
		if len(c.inBuf) >= 8 {
			sizeOpcode := order.Uint32(c.inBuf[4:8])
			size := int(sizeOpcode >> 16)
			if size < 8 {
				err = fmt.Errorf("%w: event size %d below header size", ErrProtocol, size)
				return
			}
			if len(c.inBuf) >= size {
				object = order.Uint32(c.inBuf[0:4])
				opcode = uint16(sizeOpcode & 0xffff)
				payload = make([]byte, size-8)
				copy(payload, c.inBuf[8:size])
				c.inBuf = c.inBuf[size:]
				if len(c.pendingFds) > 0 {
					fd = c.pendingFds[0]
					c.pendingFds = c.pendingFds[1:]
				}
				return
			}
		}

		buf := make([]byte, 4096)
		oob := make([]byte, unix.CmsgSpace(4*8)) // up to 8 fds per recvmsg
		var n, oobn int
		n, oobn, _, _, err = unix.Recvmsg(c.fd, buf, oob, 0)
		if err != nil {
			err = fmt.Errorf("wayland: recvmsg: %w", err)
			return
		}
		if n == 0 {
			err = fmt.Errorf("%w: connection closed by compositor", ErrProtocol)
			return
		}
		c.inBuf = append(c.inBuf, buf[:n]...)

		if oobn > 0 {
			scms, perr := unix.ParseSocketControlMessage(oob[:oobn])
			if perr != nil {
				continue
			}
			for _, scm := range scms {
				rights, perr := unix.ParseUnixRights(&scm)
				if perr != nil {
					continue
				}
				c.pendingFds = append(c.pendingFds, rights...)
			}
		}
	}
}
