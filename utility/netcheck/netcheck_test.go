// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package netcheck

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"syscall"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func failingChecker(dialErr error) (*Checker, *test.Hook) {
	logger, hook := test.NewNullLogger()
	return &Checker{
		Client: &http.Client{
			Timeout: time.Second,
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					return nil, dialErr
				},
			},
		},
		Log: logger,
	}, hook
}

func TestCheckReachable(t *testing.T) {
	c := qt.New(t)

	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	ok, err := New(time.Second).Check(context.Background(), srv.URL)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(agent, qt.Equals, UserAgent)
}

func TestCheckUnresolvedHostIsQuiet(t *testing.T) {
	c := qt.New(t)

	checker, hook := failingChecker(&net.DNSError{Err: "no such host", Name: "nowhere.invalid", IsNotFound: true})
	ok, err := checker.Check(context.Background(), "http://nowhere.invalid/")
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
	c.Assert(hook.AllEntries(), qt.HasLen, 0)
}

func TestCheckOtherFailureIsLogged(t *testing.T) {
	c := qt.New(t)

	checker, hook := failingChecker(&net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED})
	ok, err := checker.Check(context.Background(), "http://localhost:1/")
	c.Assert(err, qt.IsNotNil)
	c.Assert(ok, qt.IsFalse)
	c.Assert(hook.LastEntry(), qt.IsNotNil)
	c.Assert(hook.LastEntry().Level, qt.Equals, log.ErrorLevel)
	c.Assert(hook.LastEntry().Data["url"], qt.Equals, "http://localhost:1/")
}

func TestCheckAll(t *testing.T) {
	c := qt.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	logger, _ := test.NewNullLogger()
	checker := New(time.Second)
	checker.Log = logger

	results, err := checker.CheckAll(context.Background(), []string{srv.URL + "/a", srv.URL + "/b"})
	c.Assert(err, qt.IsNil)
	c.Assert(results, qt.DeepEquals, map[string]bool{
		srv.URL + "/a": true,
		srv.URL + "/b": true,
	})
}
