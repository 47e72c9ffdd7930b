// Package env keeps names of environment variables with special significance to
// shline.
package env

// Environment variables with special significance to shline.
//
// Note that some of these env vars may be significant only in special
// circumstances, such as when running unit tests.
const (
	HOME                   = "HOME"
	PATH                   = "PATH"
	SHLINE_CONFIG          = "SHLINE_CONFIG"
	SHLINE_HISTORY         = "SHLINE_HISTORY"
	SHLINE_TEST_TIME_SCALE = "SHLINE_TEST_TIME_SCALE"
	TERM                   = "TERM"
	USER                   = "USER"
	XDG_CONFIG_HOME        = "XDG_CONFIG_HOME"
	XDG_STATE_HOME         = "XDG_STATE_HOME"
)
