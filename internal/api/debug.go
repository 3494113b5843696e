package api

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"strings"
	"sync"
)

func (c *Client) dumpRequest(req *http.Request) {
	if !c.debug {
		return
	}
	// Bodies are multipart uploads or small JSON; headers are enough.
	dump, err := httputil.DumpRequestOut(req, false)
	if err != nil {
		c.logger.Error("api.dump.failed", "error", err)
		return
	}
	c.writeDumpBlock("REQUEST", dump)
}

// dumpResponse writes the response head and tees the body to the dump
// output as it is consumed.
func (c *Client) dumpResponse(resp *http.Response) {
	if !c.debug || resp == nil {
		return
	}
	head, err := httputil.DumpResponse(resp, false)
	if err != nil {
		c.logger.Error("api.dump.failed", "error", err)
	} else {
		c.writeDumpBlock("RESPONSE", head)
	}
	if resp.Body != nil {
		title := fmt.Sprintf("RESPONSE BODY status=%d", resp.StatusCode)
		c.writeDumpBoundary(title, true)
		resp.Body = &dumpReadCloser{src: resp.Body, client: c, title: title}
	}
}

func (c *Client) writeDumpBlock(title string, data []byte) {
	c.writeDumpBoundary(title, true)
	if len(data) > 0 {
		c.writeDumpChunk(data)
		if data[len(data)-1] != '\n' {
			c.writeDumpChunk([]byte("\n"))
		}
	}
	c.writeDumpBoundary(title, false)
}

func (c *Client) writeDumpBoundary(title string, begin bool) {
	kind := "END"
	if begin {
		kind = "BEGIN"
	}
	c.writeDumpChunk([]byte("===== " + strings.TrimSpace(title) + " " + kind + " =====\n"))
}

func (c *Client) writeDumpChunk(data []byte) {
	if len(data) == 0 {
		return
	}
	c.dumpMu.Lock()
	defer c.dumpMu.Unlock()
	if _, err := c.dumpOut.Write(data); err != nil {
		c.logger.Error("api.dump.write.failed", "error", err)
	}
}

// dumpReadCloser copies every chunk read from src to the dump output. Close
// is forwarded so a cancelled upload can still unblock a pending read.
type dumpReadCloser struct {
	src    io.ReadCloser
	client *Client
	title  string
	once   sync.Once
}

func (d *dumpReadCloser) Read(p []byte) (int, error) {
	n, err := d.src.Read(p)
	if n > 0 {
		d.client.writeDumpChunk(p[:n])
	}
	if err == io.EOF {
		d.finish()
	}
	return n, err
}

func (d *dumpReadCloser) Close() error {
	err := d.src.Close()
	d.finish()
	return err
}

func (d *dumpReadCloser) finish() {
	d.once.Do(func() {
		d.client.writeDumpChunk([]byte("\n"))
		d.client.writeDumpBoundary(d.title, false)
	})
}
