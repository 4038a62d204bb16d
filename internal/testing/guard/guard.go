// Package guard flips the console into test mode when imported, so binaries started
// from tests skip connecting to Redis, PostgreSQL and the job queue.
package guard

import (
	"os"
	"sync"
)

// Env is the variable read by app.InTestMode.
const Env = "CONSOLE_TEST_MODE"

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv(Env) == "" {
			_ = os.Setenv(Env, "1")
		}
	})
}
