// 独立运行的喷码机模拟器，便于无真机联调：
//
//	go run ./cmd/simulator -addr 127.0.0.1:2101 -jets 2
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/taoyao-code/cij-gateway/internal/devicesim"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:2101", "监听地址")
	jets := flag.Int("jets", 2, "在位喷头数 1-4")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	sim := devicesim.New(logger, *jets)
	if err := sim.Listen(*addr); err != nil {
		logger.Fatal("listen error", zap.Error(err))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	_ = sim.Close()
}
