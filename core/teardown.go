// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

// teardown holds release functions for acquired handles, run in reverse
// order of acquisition.
type teardown struct {
	release []func()
}

func (t *teardown) push(f func()) {
	t.release = append(t.release, f)
}

func (t *teardown) len() int {
	return len(t.release)
}

// run releases everything and empties the scope.
func (t *teardown) run() {
	for i := len(t.release) - 1; i >= 0; i-- {
		t.release[i]()
	}
	t.release = nil
}

// adopt moves every release function of o onto t, keeping their order.
func (t *teardown) adopt(o *teardown) {
	t.release = append(t.release, o.release...)
	o.release = nil
}
