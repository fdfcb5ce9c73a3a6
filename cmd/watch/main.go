package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"burrowwatch/internal/consumer"
	"burrowwatch/internal/logger"
)

func main() {
	url := flag.String("url", "ws://localhost:3000/ws", "relay socket URL")
	start := flag.Bool("start", false, "send start-stream on connect and stop-stream on exit")
	flag.Parse()

	log := logger.NewWriter(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := consumer.Dial(ctx, *url, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	client.OnEntry = func(e consumer.Entry) {
		fmt.Printf("%s  %-10s %3d%%\n", e.SeenAt.Format("15:04:05"), title(e.Label), int(e.Confidence*100+0.5))
	}
	client.OnStats = func(s consumer.Snapshot) {
		fmt.Printf("   [%s] %d seen, %d kinds, %d%% confidence, %d FPS\n", s.Uptime, s.TotalDetections, s.AnimalCount, s.Confidence, s.FPS)
	}

	if *start {
		if err := client.Start(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	runCtx, cancel := context.WithCancel(context.Background())
	go func() {
		<-ctx.Done()
		if *start {
			client.Stop()
		}
		cancel()
	}()

	if err := client.Run(runCtx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func title(label string) string {
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
