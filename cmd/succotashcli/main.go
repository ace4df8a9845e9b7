// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pierrec/lz4"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/succotash/core"
	"github.com/devblok/succotash/device"
	"github.com/devblok/succotash/utility/netcheck"
)

var (
	output     = flag.String("o", "", "Write the report to a file instead of stdout")
	compress   = flag.Bool("lz4", false, "Compress the report with lz4")
	extensions = flag.String("ext", "", "Comma separated instance extensions to enable")
	compute    = flag.Bool("compute", false, "Require a compute capable queue family")
	graphics   = flag.Bool("graphics", true, "Require a graphics capable queue family")
	checkURL   = flag.String("check", "", "Also report whether this URL is reachable")
)

// Report is what the tool prints.
type Report struct {
	Devices   []core.DeviceReport
	Reachable map[string]bool `json:",omitempty"`
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		log.WithError(err).Error("probe failed")
		os.Exit(1)
	}
}

func run() error {
	drv, err := device.NewVulkan(nil)
	if err != nil {
		return err
	}

	var exts []string
	for _, ext := range strings.Split(*extensions, ",") {
		if ext = strings.TrimSpace(ext); ext != "" {
			exts = append(exts, ext)
		}
	}

	devices, err := core.Probe(drv, exts, core.Requirements{
		Graphics: *graphics,
		Compute:  *compute,
	})
	if err != nil {
		return err
	}
	report := Report{Devices: devices}

	if *checkURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		ok, err := netcheck.New(10 * time.Second).Check(ctx, *checkURL)
		if err != nil {
			log.WithError(err).Warn("reachability check failed")
		}
		report.Reachable = map[string]bool{*checkURL: ok}
	}

	bytes, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.Wrap(err, "json.MarshalIndent()")
	}
	return write(*output, *compress, bytes)
}

func write(path string, compress bool, bytes []byte) error {
	if path == "" {
		return encode(os.Stdout, bytes, compress)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "os.Create()")
	}
	return closeAfter(f, func() error {
		return encode(f, bytes, compress)
	})
}

// closeAfter runs fn and closes c. A close failure is reported unless fn
// already failed.
func closeAfter(c io.Closer, fn func() error) error {
	err := fn()
	if closeErr := c.Close(); closeErr != nil && err == nil {
		return errors.Wrap(closeErr, "close report")
	}
	return err
}

// encode writes the report to w, lz4 framed when compress is set.
func encode(w io.Writer, bytes []byte, compress bool) error {
	if compress {
		zw := lz4.NewWriter(w)
		if _, err := zw.Write(bytes); err != nil {
			return errors.Wrap(err, "lz4 write")
		}
		return errors.Wrap(zw.Close(), "lz4 close")
	}

	_, err := fmt.Fprintf(w, "%s\n", bytes)
	return err
}
