package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func call[T any](c *Client, method string, req any) (*T, error) {
	var resp T
	if err := c.client.Call(serviceName+"."+method, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Start requests the daemon to start its API and monitors.
func (c *Client) Start() (*StartResponse, error) {
	return call[StartResponse](c, "Start", StartRequest{})
}

// Stop requests the daemon to stop and its process to exit.
func (c *Client) Stop() (*StopResponse, error) {
	return call[StopResponse](c, "Stop", StopRequest{})
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	return call[StatusResponse](c, "Status", StatusRequest{})
}

// ListDevices returns the capture device catalog.
func (c *Client) ListDevices(refresh bool) (*DeviceListResponse, error) {
	return call[DeviceListResponse](c, "ListDevices", DeviceListRequest{Refresh: refresh})
}

// StartRecording starts a capture.
func (c *Client) StartRecording(req StartRecordingRequest) (*RecordingInfo, error) {
	return call[RecordingInfo](c, "StartRecording", req)
}

// StopRecording stops the active capture and waits for it to finalize.
func (c *Client) StopRecording() (*RecordingResult, error) {
	return call[RecordingResult](c, "StopRecording", StopRecordingRequest{})
}

// RecordingStatus reports whether a capture is live.
func (c *Client) RecordingStatus() (*RecordingStatus, error) {
	return call[RecordingStatus](c, "RecordingStatus", RecordingStatusRequest{})
}

// ExportVideo trims a single input. It blocks until the encoder exits.
func (c *Client) ExportVideo(req ExportRequest) (*ExportResponse, error) {
	return call[ExportResponse](c, "ExportVideo", req)
}

// ExportVideoWithPip composites a picture-in-picture clip over a main clip.
func (c *Client) ExportVideoWithPip(req ExportPipRequest) (*ExportResponse, error) {
	return call[ExportResponse](c, "ExportVideoWithPip", req)
}

// CheckEncoder runs the encoder's version probe.
func (c *Client) CheckEncoder() (*EncoderStatus, error) {
	return call[EncoderStatus](c, "CheckEncoder", EncoderCheckRequest{})
}

// WriteTempFile writes data into the daemon's temp directory.
func (c *Client) WriteTempFile(req WriteTempRequest) (*PathResponse, error) {
	return call[PathResponse](c, "WriteTempFile", req)
}

// ReadFile reads a file through the daemon.
func (c *Client) ReadFile(path string) (*ReadFileResponse, error) {
	return call[ReadFileResponse](c, "ReadFile", ReadFileRequest{Path: path})
}

// DocumentsPath returns the user's documents directory.
func (c *Client) DocumentsPath() (*PathResponse, error) {
	return call[PathResponse](c, "DocumentsPath", DocumentsPathRequest{})
}

// LibraryList returns history entries, newest first.
func (c *Client) LibraryList(req LibraryListRequest) (*LibraryListResponse, error) {
	return call[LibraryListResponse](c, "LibraryList", req)
}

// LibraryClear removes history entries.
func (c *Client) LibraryClear(category string) (*LibraryClearResponse, error) {
	return call[LibraryClearResponse](c, "LibraryClear", LibraryClearRequest{Category: category})
}
