package client

import (
	"io"

	cerr "craftlink/internal/errors"
)

// send writes line in full, looping over short writes.  A write error
// goes to the fatal handler.
func (c *Client) send(line string) error {
	if c.conn == nil {
		return cerr.ErrNotConnected
	}

	data := []byte(line)
	for len(data) > 0 {
		n, err := c.conn.Write(data)
		if n > 0 {
			c.bytesSent.Add(int64(n))
			c.metrics.BytesSent(int64(n))
			data = data[n:]
		}
		if err == nil && n == 0 {
			err = io.ErrShortWrite
		}
		if err != nil {
			return c.fail(cerr.Wrap("write", c.addr, err))
		}
	}
	c.metrics.FrameSent(line[0])
	c.logger.Debug("sent %q", line)
	return nil
}
