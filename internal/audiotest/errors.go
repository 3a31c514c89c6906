// SPDX-License-Identifier: EPL-2.0

package audiotest

import "errors"

// ErrInjected is returned by mocks configured to fail.
var ErrInjected = errors.New("audiotest: injected failure")
