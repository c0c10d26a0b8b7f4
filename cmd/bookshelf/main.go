package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	err := realMain()
	if err != nil {
		stdlog.Fatal(err)
	}
}

func realMain() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}
