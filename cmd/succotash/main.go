// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/devblok/succotash/core"
	"github.com/devblok/succotash/device"
	"github.com/devblok/succotash/utility/netcheck"
	"github.com/devblok/succotash/utility/settings"
	"github.com/devblok/succotash/window"
)

func init() {
	runtime.LockOSThread()
}

var (
	configFile = flag.String("config", "", "Settings file overriding the bundled defaults")
	cpuProfile = flag.String("cpuprof", "", "Profile CPU usage to file")
	verbose    = flag.Bool("v", false, "Log at debug level")
)

func main() {
	flag.Parse()
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal(err)
		}
		defer pprof.StopCPUProfile()
	}

	if err := run(); err != nil {
		log.WithError(err).Error("exiting")
		os.Exit(1)
	}
}

func run() error {
	var paths []string
	if *configFile != "" {
		paths = append(paths, *configFile)
	}
	cfgSettings, err := settings.Open(paths...)
	if err != nil {
		return err
	}
	configuration := core.DefaultConfiguration()
	configuration.Apply(cfgSettings)

	checkNetwork(cfgSettings)

	if err := window.Init(); err != nil {
		return err
	}
	defer window.Quit()

	win, err := window.New(cfgSettings.String("WINDOW", "TITLE", "Succotash"),
		configuration.Renderer.ScreenWidth,
		configuration.Renderer.ScreenHeight)
	if err != nil {
		return err
	}
	defer win.Destroy()

	drv, err := device.NewVulkan(window.ProcAddr())
	if err != nil {
		return err
	}

	ctx := core.Allocate()
	if err := ctx.Init(drv, core.WithConfiguration(configuration.Renderer)); err != nil {
		return err
	}
	if err := win.Bind(ctx, drv); err != nil {
		ctx.Free(false)
		return err
	}

	timeService := core.NewTime(configuration.Time)
	defer timeService.Stop()

	log.WithField("context", ctx.ID()).Info("entering main loop")

MainLoop:
	for {
		select {
		case <-timeService.FpsTicker().C:
			if err := ctx.Update(); err != nil {
				win.Close()
				return err
			}
		case <-timeService.EventTicker().C:
			if !win.Poll() {
				break MainLoop
			}
		}
	}

	log.Info("main loop exited")
	return nil
}

// checkNetwork logs whether the configured hosts answer.
func checkNetwork(s *settings.Settings) {
	urls := s.Strings("NETWORK", "CHECK_URLS")
	if len(urls) == 0 {
		return
	}

	timeout := s.Duration("NETWORK", "CHECK_TIMEOUT", 5*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	results, _ := netcheck.New(timeout).CheckAll(ctx, urls)
	for url, ok := range results {
		log.WithFields(log.Fields{"url": url, "reachable": ok}).Info("network check")
	}
}
