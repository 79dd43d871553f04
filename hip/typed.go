/*
 *	Copyright 2025 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

package hip

import (
	"github.com/gomlx/gohip/dtypes"
	"github.com/pkg/errors"
)

// MallocFor allocates device memory for n values of type T.
func MallocFor[T dtypes.Supported](n int) (DevicePtr, error) {
	dtype := dtypes.FromGenericsType[T]()
	ptr, err := Malloc(n * dtype.Size())
	if err != nil {
		return 0, errors.WithMessagef(err, "allocating %d values of %s", n, dtype)
	}
	return ptr, nil
}

// CopyToDevice copies all values of src to the device memory dst.
func CopyToDevice[T dtypes.Supported](dst DevicePtr, src []T) error {
	return MemcpyHtoD(dst, dtypes.AsBytes(src))
}

// CopyFromDevice fills dst with the values in the device memory src.
func CopyFromDevice[T dtypes.Supported](dst []T, src DevicePtr) error {
	return MemcpyDtoH(dtypes.AsBytes(dst), src)
}
