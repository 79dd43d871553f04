//go:build ignore

package gohip

/*
#include <stdlib.h>
*/
import "C"
import (
	"unsafe"
)

// File implements several CGO helper utilities.
//
// The original chelper.go, at the module root, is excluded from the build: it is copied (see cmd/copy_go_code)
// to all package directories that need it, because C types cannot be exported.
// See issue https://github.com/golang/go/issues/13467 .

// cFree calls C.free() on the unsafe.Pointer version of data.
func cFree[T any](data *T) {
	C.free(unsafe.Pointer(data))
}

// cSizeOf returns the size of the given type in bytes. Notice some structures may be padded, and this will
// include that space.
func cSizeOf[T any]() C.size_t {
	var v T
	return C.size_t(unsafe.Sizeof(v))
}

// cMallocArray allocates space to hold n copies of T in the C heap and initializes it to zero.
// It must be manually freed with cFree() by the user.
func cMallocArray[T any](n int) (ptr *T) {
	if n < 1 {
		n = 1
	}
	return (*T)(C.calloc(C.size_t(n), cSizeOf[T]()))
}

// cMallocArrayAndSet allocates space to hold n copies of T in the C heap, and set each element `i` with the result of
// `setFn(i)`.
// It must be manually freed with cFree() by the user.
func cMallocArrayAndSet[T any](n int, setFn func(i int) T) (ptr *T) {
	ptr = cMallocArray[T](n)
	slice := unsafe.Slice(ptr, n)
	for ii := 0; ii < n; ii++ {
		slice[ii] = setFn(ii)
	}
	return ptr
}

// cStrings converts the Go strings to an array of C strings (char **) allocated in the C heap.
// The returned function frees the strings and the array, and must be called by the user once the
// array is no longer needed.
//
// For an empty list it still returns a valid (one element, set to NULL) array.
func cStrings(values []string) (array **C.char, free func()) {
	array = cMallocArrayAndSet[*C.char](len(values), func(i int) *C.char {
		return C.CString(values[i])
	})
	free = func() {
		for _, cStr := range unsafe.Slice(array, len(values)) {
			C.free(unsafe.Pointer(cStr))
		}
		cFree(array)
	}
	return
}
