// Command limbo runs a standalone limbo server: it loads limbo.yaml,
// accepts connections, and drives each through the packet-conversation
// state machine. Grounded in the teacher's main.go flag handling and
// accept loop, adapted from its single mutable global Config to the
// package-internal config.Handle/limbo.Server wiring.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"limbo/internal/config"
	"limbo/internal/connio"
	"limbo/internal/limbo"
	"limbo/internal/session"

	"golang.org/x/time/rate"
)

// Version is the server's own release version, unrelated to the
// Minecraft protocol version it speaks.
const Version = "1.0.0"

func main() {
	configPath := flag.String("config", "limbo.yaml", "path to the server's YAML configuration file")
	showVersion := flag.Bool("version", false, "print the server version and exit")
	flag.BoolVar(showVersion, "v", false, "print the server version and exit (shorthand)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("limbo v%s\n", Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("limbo: loading %s: %v", *configPath, err)
	}

	handle := config.NewHandle(cfg)
	srv := limbo.New(handle, rate.Limit(0))

	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("limbo: listening on %s: %v", addr, err)
	}
	log.Printf("limbo: listening on %s (online_mode=%v, protocol=%d)", addr, cfg.OnlineMode, cfg.ProtocolVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Serve(ctx, ln, handleConn(srv)); err != nil {
		log.Fatalf("limbo: serve: %v", err)
	}

	// Give best-effort disconnect messages a fixed window to flush before
	// the process exits.
	time.Sleep(limbo.ShutdownGrace)
	log.Println("limbo: shutdown complete")
}

// handleConn adapts a net.Conn into a session bound to srv.
func handleConn(srv *limbo.Server) func(context.Context, net.Conn) {
	return func(ctx context.Context, nc net.Conn) {
		conn := connio.New(nc)
		s := session.New(srv, conn)
		s.Run(ctx)
	}
}
