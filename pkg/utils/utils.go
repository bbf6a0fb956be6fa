package utils

import (
	"fmt"
	"runtime/debug"

	"golang-dex-token-analyzer/pkg/logger"
)

// ToPointer returns a pointer to a copy of v.
func ToPointer[T any](v T) *T {
	return &v
}

// GoSafe runs fn in a goroutine and logs a recovered panic with its stack.
func GoSafe(log *logger.Logger, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil && log != nil {
				log.Error("Recovered from panic",
					logger.Field("panic", r),
					logger.StringField("stack", string(debug.Stack())))
			}
		}()
		fn()
	}()
}

// Recover calls fn and converts a panic into an error.
func Recover(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
