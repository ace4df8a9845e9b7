// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package settings reads startup parameters. Values are looked up by
// section and key, first in the environment, then in the settings file,
// then in the bundled defaults.
package settings

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gobuffalo/envy"
	"github.com/gobuffalo/packr"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// DefaultsFile is the name of the bundled defaults.
const DefaultsFile = "succotash.env"

var defaultsBox = packr.NewBox("./defaults")

// Settings is a read-only set of startup parameters.
type Settings struct {
	file     map[string]string
	defaults map[string]string
}

// Key joins section and key into the variable name they are stored under.
func Key(section, key string) string {
	return strings.ToUpper(section + "_" + key)
}

// Open reads the bundled defaults and then every file in paths, later
// files overriding earlier ones.
func Open(paths ...string) (*Settings, error) {
	raw, err := defaultsBox.FindString(DefaultsFile)
	if err != nil {
		return nil, errors.Wrap(err, "settings: bundled defaults")
	}
	defaults, err := godotenv.Unmarshal(raw)
	if err != nil {
		return nil, errors.Wrap(err, "settings: parse bundled defaults")
	}

	s := &Settings{
		file:     make(map[string]string),
		defaults: defaults,
	}
	for _, path := range paths {
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, errors.Wrapf(err, "settings: read %s", path)
		}
		for k, v := range values {
			s.file[k] = v
		}
	}
	return s, nil
}

// Read returns the raw value of section/key and whether it is set anywhere.
func (s *Settings) Read(section, key string) (string, bool) {
	name := Key(section, key)
	if v, err := envy.MustGet(name); err == nil {
		return v, true
	}
	if v, ok := s.file[name]; ok {
		return v, true
	}
	v, ok := s.defaults[name]
	return v, ok
}

// String returns the value of section/key or def when unset or empty.
func (s *Settings) String(section, key, def string) string {
	if v, ok := s.Read(section, key); ok && v != "" {
		return v
	}
	return def
}

// Int returns section/key as an integer, or def when unset or malformed.
func (s *Settings) Int(section, key string, def int) int {
	v, ok := s.Read(section, key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		malformed(section, key, v, err)
		return def
	}
	return i
}

// Float returns section/key as a float, or def when unset or malformed.
func (s *Settings) Float(section, key string, def float64) float64 {
	v, ok := s.Read(section, key)
	if !ok || v == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		malformed(section, key, v, err)
		return def
	}
	return f
}

// Bool returns section/key as a boolean, or def when unset or malformed.
func (s *Settings) Bool(section, key string, def bool) bool {
	v, ok := s.Read(section, key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		malformed(section, key, v, err)
		return def
	}
	return b
}

// Duration returns section/key as a duration, or def when unset or malformed.
func (s *Settings) Duration(section, key string, def time.Duration) time.Duration {
	v, ok := s.Read(section, key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		malformed(section, key, v, err)
		return def
	}
	return d
}

// Strings splits a comma separated value, dropping empty entries.
func (s *Settings) Strings(section, key string) []string {
	v, ok := s.Read(section, key)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func malformed(section, key, value string, err error) {
	log.WithFields(log.Fields{
		"key":   Key(section, key),
		"value": value,
	}).WithError(err).Warn("malformed setting, using default")
}
