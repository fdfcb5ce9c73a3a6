package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"burrowwatch/internal/logger"
	"burrowwatch/internal/producer"
)

func main() {
	url := flag.String("url", "ws://localhost:3000/ws", "relay socket URL")
	device := flag.String("device", "0", "camera index or video path")
	dir := flag.String("dir", "", "stream images from this directory instead of a camera")
	interval := flag.Duration("interval", producer.DefaultInterval, "time between frames")
	width := flag.Int("width", producer.DefaultMaxWidth, "longest side of a sent frame, in pixels")
	quality := flag.Int("quality", producer.DefaultQuality, "JPEG quality (1-100)")
	flag.Parse()

	log := logger.NewWriter(os.Stdout)

	var (
		source producer.Source
		err    error
	)
	if *dir != "" {
		source, err = producer.OpenDirectory(*dir, *width, *quality)
	} else {
		source, err = producer.OpenCamera(*device, *width, *quality)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not access frame source: %v\n", err)
		os.Exit(1)
	}
	defer source.Close()

	publisher, err := producer.NewWSPublisher(*url)
	if err != nil {
		source.Close()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := producer.New(source, publisher, *interval, log).Run(ctx); err != nil {
		source.Close()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
