package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	log "github.com/sirupsen/logrus"

	"battleships/internal/models"
	"battleships/internal/server"
)

func main() {
	config := models.DefaultServerConfig()

	var port uint
	var players int
	var logLevel string

	flag.StringVar(&config.IP, "i", config.IP, "address to listen on")
	flag.StringVar(&config.IP, "ip", config.IP, "address to listen on")
	flag.UintVar(&port, "p", uint(config.Port), "port to listen on")
	flag.UintVar(&port, "port", uint(config.Port), "port to listen on")
	flag.IntVar(&players, "m", config.MaxPlayers, "maximum number of players")
	flag.IntVar(&players, "players", config.MaxPlayers, "maximum number of players")
	flag.StringVar(&logLevel, "l", "off", "log level: off, error, warn, info, debug or trace")
	flag.StringVar(&logLevel, "log", "off", "log level: off, error, warn, info, debug or trace")
	flag.Parse()

	if port == 0 || port > 65535 {
		fmt.Fprintf(os.Stderr, "invalid port %d\n", port)
		os.Exit(2)
	}
	if players <= 0 {
		fmt.Fprintf(os.Stderr, "invalid maximum number of players %d\n", players)
		os.Exit(2)
	}
	if err := setupLogging(logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	config.Port = uint16(port)
	config.MaxPlayers = players

	var shutdown atomic.Bool
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-signals
		log.Infof("received %s, shutting down", sig)
		shutdown.Store(true)
	}()

	srv, err := server.NewServer(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "can't start the server: %v\n", err)
		os.Exit(1)
	}

	if err := srv.Run(&shutdown); err != nil {
		fmt.Fprintf(os.Stderr, "server failed: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	switch level {
	case "off":
		log.SetOutput(io.Discard)
	case "error":
		log.SetLevel(log.ErrorLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "trace":
		log.SetLevel(log.TraceLevel)
	default:
		return fmt.Errorf("unknown log level %q", level)
	}

	return nil
}
