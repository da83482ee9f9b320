package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jgivc/assignfetch/internal/app"
)

func main() {
	cfgFileName := flag.String("c", "config.yml", "Path to config file")
	flag.Parse()

	app := app.New(*cfgFileName)
	app.Start()

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(c)

	for sig := range c {
		switch sig {
		case syscall.SIGUSR1:
			go app.Probe()
		case syscall.SIGUSR2:
			go app.Dump()
		case syscall.SIGTERM, syscall.SIGINT:
			fmt.Println("Received termination signal. Shutting down...")
			app.Stop()
			fmt.Println("done")

			return
		}
	}
}
