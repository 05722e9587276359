package errorutils

// Must returns the value passed in if there is no error, otherwise it panics.
// For errors that signal a broken install or programmer mistake rather than
// anything the player can fix.
func Must[T any](value T, err error) T {
	if err != nil {
		panic(err)
	}

	return value
}
