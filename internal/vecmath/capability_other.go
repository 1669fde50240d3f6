//go:build !amd64 && !arm64

package vecmath

func init() {
	initCapabilities()
}
