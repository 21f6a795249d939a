// Package envscope temporarily overrides a process environment variable.
//
//	restore := envscope.Override("AUTH_TOKEN", token)
//	defer restore()
package envscope

import "os"

// Override snapshots key, sets it to value and returns the function that
// puts the snapshot back: the previous value is restored, or the variable
// is cleared when it was unset before.
func Override(key, value string) (restore func()) {
	prev, had := os.LookupEnv(key)
	_ = os.Setenv(key, value)
	return func() {
		if had {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	}
}
