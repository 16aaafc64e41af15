package engage

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies that no cycle leaks goroutines; the cycle is meant to be
// strictly sequential with no background workers.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
