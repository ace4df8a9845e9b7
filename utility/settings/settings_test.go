// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package settings

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/gobuffalo/envy"
)

func writeFile(c *qt.C, body string) string {
	dir, err := ioutil.TempDir("", "settings")
	c.Assert(err, qt.IsNil)
	c.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, "succotash.env")
	c.Assert(ioutil.WriteFile(path, []byte(body), 0644), qt.IsNil)
	return path
}

func TestDefaults(t *testing.T) {
	c := qt.New(t)

	s, err := Open()
	c.Assert(err, qt.IsNil)
	c.Assert(s.Int("renderer", "swapchain_size", 0), qt.Equals, 3)
	c.Assert(s.Int("renderer", "screen_width", 0), qt.Equals, 800)
	c.Assert(s.String("window", "title", ""), qt.Equals, "Succotash Demo")
	c.Assert(s.Duration("network", "check_timeout", 0), qt.Equals, 5*time.Second)
	c.Assert(s.Strings("renderer", "instance_extensions"), qt.HasLen, 0)
}

func TestFileOverridesDefaults(t *testing.T) {
	c := qt.New(t)

	path := writeFile(c, "RENDERER_SWAPCHAIN_SIZE=2\nRENDERER_INSTANCE_EXTENSIONS=VK_KHR_surface, VK_EXT_debug_report\n")
	s, err := Open(path)
	c.Assert(err, qt.IsNil)

	c.Assert(s.Int("RENDERER", "SWAPCHAIN_SIZE", 0), qt.Equals, 2)
	c.Assert(s.Strings("RENDERER", "INSTANCE_EXTENSIONS"), qt.DeepEquals, []string{"VK_KHR_surface", "VK_EXT_debug_report"})
	c.Assert(s.Int("RENDERER", "SCREEN_HEIGHT", 0), qt.Equals, 600)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	c := qt.New(t)

	path := writeFile(c, "TIME_FPS=30\n")
	s, err := Open(path)
	c.Assert(err, qt.IsNil)

	envy.Temp(func() {
		envy.Set("TIME_FPS", "144")
		c.Assert(s.Int("time", "fps", 0), qt.Equals, 144)
	})
	c.Assert(s.Int("time", "fps", 0), qt.Equals, 30)
}

func TestMalformedFallsBack(t *testing.T) {
	c := qt.New(t)

	path := writeFile(c, "RENDERER_CLEAR_R=red\nDEBUG_ENABLED=maybe\n")
	s, err := Open(path)
	c.Assert(err, qt.IsNil)

	c.Assert(s.Float("renderer", "clear_r", 0.5), qt.Equals, 0.5)
	c.Assert(s.Bool("debug", "enabled", true), qt.IsTrue)
	c.Assert(s.Int("missing", "key", 7), qt.Equals, 7)

	_, ok := s.Read("missing", "key")
	c.Assert(ok, qt.IsFalse)
}

func TestOpenMissingFile(t *testing.T) {
	c := qt.New(t)

	_, err := Open(filepath.Join(os.TempDir(), "does-not-exist.env"))
	c.Assert(err, qt.ErrorMatches, "settings: read .*")
}
