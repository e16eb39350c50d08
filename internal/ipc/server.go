package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"log/slog"

	"clipdeck/internal/daemon"
	"clipdeck/internal/logging"
)

const serviceName = "Clipdeck"

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName(serviceName, srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String("impact", "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String("impact", "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually or rerun clipdeck stop"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return logging.NewComponentLogger(s.logger, "ipc")
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	s.log().Debug("daemon start requested")
	if err := s.daemon.Start(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "daemon started"
	s.log().Info("daemon started via IPC",
		logging.String(logging.FieldEventType, "daemon_start"))
	return nil
}

// Stop finalizes any recording, stops the daemon and asks the hosting
// process to exit once the reply is sent.
func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("daemon stop requested")
	s.daemon.Stop()
	s.daemon.RequestShutdown()
	resp.Stopped = true
	s.log().Info("daemon stopped via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	*resp = daemon.StatusPayload(s.daemon.Config(), s.daemon.Status(s.ctx))
	return nil
}

func (s *service) ListDevices(req DeviceListRequest, resp *DeviceListResponse) error {
	out, err := s.daemon.ListDevices(s.ctx, req.Refresh)
	if err != nil {
		return err
	}
	*resp = out
	return nil
}

func (s *service) StartRecording(req StartRecordingRequest, resp *RecordingInfo) error {
	info, err := s.daemon.StartRecording(req)
	if err != nil {
		return err
	}
	s.log().Info("recording started via IPC",
		logging.String(logging.FieldRecordingID, info.ID),
		logging.String("output_path", info.OutputPath))
	*resp = info
	return nil
}

func (s *service) StopRecording(_ StopRecordingRequest, resp *RecordingResult) error {
	result, err := s.daemon.StopRecording()
	if err != nil {
		return err
	}
	*resp = result
	return nil
}

func (s *service) RecordingStatus(_ RecordingStatusRequest, resp *RecordingStatus) error {
	*resp = s.daemon.RecordingStatus()
	return nil
}

func (s *service) ExportVideo(req ExportRequest, resp *ExportResponse) error {
	out, err := s.daemon.ExportVideo(s.ctx, req)
	if err != nil {
		return err
	}
	*resp = out
	return nil
}

func (s *service) ExportVideoWithPip(req ExportPipRequest, resp *ExportResponse) error {
	out, err := s.daemon.ExportVideoWithPip(s.ctx, req)
	if err != nil {
		return err
	}
	*resp = out
	return nil
}

func (s *service) CheckEncoder(_ EncoderCheckRequest, resp *EncoderStatus) error {
	*resp = s.daemon.CheckEncoder(s.ctx)
	return nil
}

func (s *service) WriteTempFile(req WriteTempRequest, resp *PathResponse) error {
	out, err := s.daemon.WriteTempFile(req)
	if err != nil {
		return err
	}
	*resp = out
	return nil
}

func (s *service) ReadFile(req ReadFileRequest, resp *ReadFileResponse) error {
	out, err := s.daemon.ReadFile(req)
	if err != nil {
		return err
	}
	*resp = out
	return nil
}

func (s *service) DocumentsPath(_ DocumentsPathRequest, resp *PathResponse) error {
	out, err := s.daemon.DocumentsPath()
	if err != nil {
		return err
	}
	*resp = out
	return nil
}

func (s *service) LibraryList(req LibraryListRequest, resp *LibraryListResponse) error {
	out, err := s.daemon.LibraryList(s.ctx, req)
	if err != nil {
		return err
	}
	*resp = out
	return nil
}

func (s *service) LibraryClear(req LibraryClearRequest, resp *LibraryClearResponse) error {
	out, err := s.daemon.LibraryClear(s.ctx, req)
	if err != nil {
		return err
	}
	*resp = out
	return nil
}
