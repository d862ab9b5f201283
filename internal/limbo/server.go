// Package limbo wires together the protocol-critical core (proto,
// packet, connio, session) with the ambient/server-orchestration
// concerns: process-wide crypto material, the online-player counter,
// rate-limited handshake acceptance, and a bounded auth worker pool.
// Grounded in the teacher's main.go accept loop and the original
// chrrs/limbo server/src/main.rs.
package limbo

import (
	"context"
	"crypto/rsa"
	"log"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"limbo/internal/auth"
	"limbo/internal/config"
	"limbo/internal/world"
)

// ServerBrand is sent to clients on the minecraft:brand plugin channel.
const ServerBrand = "limbo"

// authWorkers bounds how many concurrent HTTPS calls to the Mojang
// session service the server will make at once.
const authWorkers = 8

// Server holds every piece of process-wide state a session needs that
// isn't local to its own connection: crypto material, configuration, the
// player registry, a handshake rate limiter and a bounded auth worker
// pool for the blocking session-service call.
type Server struct {
	Config *config.Handle
	World  *world.Registry
	Auth   *auth.Client

	// ProtocolVersion is the protocol version this deployment targets,
	// taken from the server's configuration (spec §6 "protocol_version");
	// it gates the Login handshake check and is reported in Status.
	ProtocolVersion int32

	keys    keyMaterial
	favicon faviconCache

	handshakeLimiter *rate.Limiter
	authSem          *semaphore.Weighted
}

// New builds a Server ready to accept connections. A nil or non-positive
// handshakeRate disables rate limiting (the default, per spec §4.7).
func New(cfg *config.Handle, handshakeRate rate.Limit) *Server {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if handshakeRate > 0 {
		limiter = rate.NewLimiter(handshakeRate, int(handshakeRate)+1)
	}
	return &Server{
		Config:           cfg,
		World:            world.NewRegistry(),
		Auth:             auth.NewClient(),
		ProtocolVersion:  cfg.Snapshot().ProtocolVersion,
		handshakeLimiter: limiter,
		authSem:          semaphore.NewWeighted(authWorkers),
	}
}

// PublicKeyDER returns the server's DER-encoded RSA public key,
// generating the keypair on first use.
func (s *Server) PublicKeyDER() ([]byte, error) { return s.keys.PublicKeyDER() }

// PrivateKey returns the server's RSA private key, generating it on
// first use.
func (s *Server) PrivateKey() (*rsa.PrivateKey, error) { return s.keys.PrivateKey() }

// Favicon returns the cached, data-URL-encoded favicon for path, reading
// and encoding the file at most once.
func (s *Server) Favicon(path string) string { return s.favicon.get(path) }

// AllowHandshake reports whether a new handshake may proceed right now
// under the configured rate limit, without blocking.
func (s *Server) AllowHandshake() bool { return s.handshakeLimiter.Allow() }

// RunAuth dispatches fn (a blocking call to the session service) onto the
// bounded auth worker pool and blocks until it completes or ctx is done.
func (s *Server) RunAuth(ctx context.Context, fn func()) error {
	if err := s.authSem.Acquire(ctx, 1); err != nil {
		return err
	}
	done := make(chan struct{})
	go func() {
		defer s.authSem.Release(1)
		defer close(done)
		fn()
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Serve runs the accept loop on ln until ctx is cancelled, handing each
// accepted connection to handle in its own goroutine. This, together
// with cmd/limbo's call to net.Listen, is the only place the server
// touches the listener directly — the protocol-critical core never
// calls net.Listen/Accept itself.
func (s *Server) Serve(ctx context.Context, ln net.Listener, handle func(context.Context, net.Conn)) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				log.Printf("limbo: accept: %v", err)
				return err
			}
		}

		if !s.AllowHandshake() {
			conn.Close()
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			handle(ctx, conn)
		}()
	}
}

// ShutdownGrace gives callers a fixed grace window to finish in-flight
// best-effort disconnect messages before the process exits.
const ShutdownGrace = 2 * time.Second
