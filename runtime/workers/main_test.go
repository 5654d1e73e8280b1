package workers

import (
	"testing"

	"go.uber.org/goleak"
)

// Workers spawn goroutines by trade; every test must join them before
// returning or this will fail the whole package.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
