// Package gohip holds Go bindings for AMD's HIP runtime (package hip) and the HIP runtime compiler
// (package hiprtc), loaded dynamically (dlopen) from libamdhip64.so, or from libnvhip64.so on NVIDIA
// platforms.
//
// This root package only holds the documentation and the go:generate rule that copies the CGO helpers template
// (chelper.go, excluded from the build) into the packages that use CGO.
package gohip

// Since CGO C types cannot cross boundaries of a package (see issue https://github.com/golang/go/issues/13467)
// we make a copy of chelper.go for every sub-directory that needs it.
//go:generate go run ./cmd/copy_go_code --original=chelper.go --targets=hip,hiprtc
