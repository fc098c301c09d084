//go:build !amd64

package cpu

import "runtime"

// Only the generic copy kernel exists off amd64.
func detectFeaturesImpl() Features {
	return Features{Architecture: runtime.GOARCH}
}
