package instance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"jellypot/internal/logging"
	"jellypot/internal/services"
)

const (
	lockName   = "jellypot.lock"
	socketName = "jellypot.sock"
	retryDelay = 100 * time.Millisecond
)

// Instance is the running handler's claim on the lock and socket.
type Instance struct {
	lock     *flock.Flock
	socket   string
	listener net.Listener
	logger   *slog.Logger
	cancel   context.CancelFunc

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Acquire takes over as the running handler, asking any previous instance
// to exit. The returned context is cancelled when a newer instance asks this
// one to exit. timeout bounds the wait for the previous instance.
func Acquire(ctx context.Context, dir string, timeout time.Duration, logger *slog.Logger) (*Instance, context.Context, error) {
	logger = logging.NewComponentLogger(logger, "instance")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create state directory: %w", err)
	}
	lock := flock.New(filepath.Join(dir, lockName))
	socket := filepath.Join(dir, socketName)

	waitCtx, cancelWait := context.WithTimeout(ctx, timeout)
	defer cancelWait()

	notified := false
	for {
		ok, err := lock.TryLock()
		if err != nil {
			return nil, nil, fmt.Errorf("acquire lock: %w", err)
		}
		if ok {
			break
		}
		if !notified {
			if resp, err := RequestExit(socket, "replaced by a newer launch"); err != nil {
				logger.Debug("previous instance not reachable", logging.Error(err))
			} else {
				logger.Info("asked previous instance to exit", logging.Int("pid", resp.PID))
				notified = true
			}
		}
		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			return nil, nil, services.Wrap(services.ErrTimeout, "instance", "acquire", "previous instance did not exit", nil)
		case <-time.After(retryDelay):
		}
	}

	if err := os.RemoveAll(socket); err != nil {
		_ = lock.Unlock()
		return nil, nil, fmt.Errorf("remove stale socket: %w", err)
	}
	listener, err := net.Listen("unix", socket)
	if err != nil {
		_ = lock.Unlock()
		return nil, nil, fmt.Errorf("listen on socket: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	inst := &Instance{
		lock:     lock,
		socket:   socket,
		listener: listener,
		logger:   logger,
		cancel:   cancel,
	}

	server := rpc.NewServer()
	if err := server.RegisterName("Instance", &service{inst: inst}); err != nil {
		inst.Release()
		return nil, nil, fmt.Errorf("register rpc service: %w", err)
	}
	inst.serve(runCtx, server)
	return inst, runCtx, nil
}

func (i *Instance) serve(ctx context.Context, server *rpc.Server) {
	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		for {
			conn, err := i.listener.Accept()
			if err != nil {
				if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
					return
				}
				i.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "instance_accept_failed"),
					logging.String(logging.FieldImpact, "a newer launch may not be able to replace this one"),
					logging.String(logging.FieldErrorHint, "check permissions of the state directory"))
				continue
			}
			i.wg.Add(1)
			go func(c net.Conn) {
				defer i.wg.Done()
				server.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Release stops serving, removes the socket and unlocks. It is safe to call
// more than once.
func (i *Instance) Release() {
	i.closeOnce.Do(func() {
		i.cancel()
		if i.listener != nil {
			_ = i.listener.Close()
		}
		i.wg.Wait()
		if err := os.RemoveAll(i.socket); err != nil {
			i.logger.Warn("failed to remove socket",
				logging.String("socket", i.socket),
				logging.Error(err),
				logging.String(logging.FieldEventType, "instance_socket_cleanup_failed"),
				logging.String(logging.FieldImpact, "the next launch removes it"),
				logging.String(logging.FieldErrorHint, "remove the socket file manually if launches hang"))
		}
		if err := i.lock.Unlock(); err != nil {
			i.logger.Warn("failed to release lock", logging.Error(err),
				logging.String(logging.FieldEventType, "instance_unlock_failed"))
		}
	})
}

type service struct {
	inst *Instance
}

func (s *service) Exit(req ExitRequest, resp *ExitResponse) error {
	s.inst.logger.Info("exit requested",
		logging.String("reason", req.Reason),
		logging.Int("requester_pid", req.PID),
		logging.String(logging.FieldEventType, "instance_replaced"))
	s.inst.cancel()
	resp.Exiting = true
	resp.PID = os.Getpid()
	return nil
}

// RequestExit asks the instance serving socket to exit.
func RequestExit(socket, reason string) (*ExitResponse, error) {
	conn, err := net.DialTimeout("unix", socket, 2*time.Second)
	if err != nil {
		return nil, err
	}
	client := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	defer client.Close()

	var resp ExitResponse
	if err := client.Call("Instance.Exit", ExitRequest{Reason: reason, PID: os.Getpid()}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
