package kit

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type ServerOptions struct {
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// RunHTTPServer serves h on addr until ctx is cancelled, then drains
// in-flight requests for at most opts.ShutdownTimeout.
func RunHTTPServer(ctx context.Context, addr string, h http.Handler, log *zap.Logger, opts ServerOptions) error {
	if opts.ReadHeaderTimeout <= 0 {
		opts.ReadHeaderTimeout = 5 * time.Second
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal", zap.Error(context.Cause(ctx)))
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}

	sctx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
