// Package transfer pulls an offer's raw bytes across the pipe handed to
// the compositor in the receive request.
package transfer

import (
	"fmt"
	"io"
	"os"
)

// Receiver submits a receive request for one offer: deliver the payload
// for mime into fd. Implemented by the wayland client.
type Receiver interface {
	Receive(offer uint32, mime string, fd int) error
}

const chunkSize = 32 * 1024

// Retrieve asks the compositor for the offer's payload in the given mime
// type and drains it to end-of-stream. Both pipe ends are closed by the
// time it returns, on success and on every failure path. The local write
// end is closed as soon as the request is on the wire — end-of-stream is
// only observable once the compositor's copy is the last one open.
func Retrieve(rc Receiver, offer uint32, mime string) ([]byte, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("transfer: pipe: %w", err)
	}

	sendErr := rc.Receive(offer, mime, int(w.Fd()))
	_ = w.Close()
	if sendErr != nil {
		_ = r.Close()
		return nil, fmt.Errorf("transfer: receive request: %w", sendErr)
	}
	defer r.Close()

	var data []byte
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		data = append(data, buf[:n]...)
		if err == io.EOF {
			return data, nil
		}
		if err != nil {
			return nil, fmt.Errorf("transfer: read: %w", err)
		}
	}
}
