// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package netcheck tests whether remote hosts can be reached.
package netcheck

import (
	"context"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// UserAgent is sent with every request.
const UserAgent = "Mozilla/5.0 (compatible; succotash)"

// Checker issues reachability requests.
type Checker struct {
	Client *http.Client
	Log    log.FieldLogger
}

// New returns a Checker whose requests give up after timeout.
func New(timeout time.Duration) *Checker {
	return &Checker{
		Client: &http.Client{Timeout: timeout},
		Log:    log.StandardLogger(),
	}
}

// Check reports whether url answers. Any HTTP response counts as reachable.
// A host that does not resolve is an expected outcome and yields false
// with no error. Other failures are logged and returned.
func (c *Checker) Check(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return false, errors.Wrapf(err, "netcheck: %s", url)
	}
	req = req.WithContext(ctx)
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.Client.Do(req)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			return false, nil
		}
		c.Log.WithField("url", url).WithError(err).Error("reachability check failed")
		return false, errors.Wrapf(err, "netcheck: %s", url)
	}
	io.Copy(ioutil.Discard, resp.Body)
	resp.Body.Close()
	return true, nil
}

// CheckAll checks every url concurrently. The first unexpected failure
// is returned after all checks finish.
func (c *Checker) CheckAll(ctx context.Context, urls []string) (map[string]bool, error) {
	var (
		mu      sync.Mutex
		results = make(map[string]bool, len(urls))
		g       errgroup.Group
	)
	for _, url := range urls {
		url := url
		g.Go(func() error {
			ok, err := c.Check(ctx, url)
			mu.Lock()
			results[url] = ok
			mu.Unlock()
			return err
		})
	}
	err := g.Wait()
	return results, err
}

// Check tests url with a default Checker.
func Check(ctx context.Context, url string) (bool, error) {
	return New(10*time.Second).Check(ctx, url)
}
