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
	"fmt"

	"github.com/gomlx/gohip/status"
)

// Status is the hipError_t code returned by every HIP runtime call.
//
// It implements the error interface, so it can be used as a target of errors.Is:
//
//	if errors.Is(err, hip.ErrorNotReady) { ... }
type Status int32

const (
	Success                          Status = 0
	ErrorInvalidValue                Status = 1
	ErrorOutOfMemory                 Status = 2
	ErrorNotInitialized              Status = 3
	ErrorDeinitialized               Status = 4
	ErrorProfilerDisabled            Status = 5
	ErrorProfilerNotInitialized      Status = 6
	ErrorProfilerAlreadyStarted      Status = 7
	ErrorProfilerAlreadyStopped      Status = 8
	ErrorInvalidConfiguration        Status = 9
	ErrorInvalidSymbol               Status = 13
	ErrorInvalidDevicePointer        Status = 17
	ErrorInvalidMemcpyDirection      Status = 21
	ErrorInsufficientDriver          Status = 35
	ErrorMissingConfiguration        Status = 52
	ErrorPriorLaunchFailure          Status = 53
	ErrorInvalidDeviceFunction       Status = 98
	ErrorNoDevice                    Status = 100
	ErrorInvalidDevice               Status = 101
	ErrorInvalidImage                Status = 200
	ErrorInvalidContext              Status = 201
	ErrorContextAlreadyCurrent       Status = 202
	ErrorMapFailed                   Status = 205
	ErrorUnmapFailed                 Status = 206
	ErrorArrayIsMapped               Status = 207
	ErrorAlreadyMapped               Status = 208
	ErrorNoBinaryForGpu              Status = 209
	ErrorAlreadyAcquired             Status = 210
	ErrorNotMapped                   Status = 211
	ErrorNotMappedAsArray            Status = 212
	ErrorNotMappedAsPointer          Status = 213
	ErrorECCNotCorrectable           Status = 214
	ErrorUnsupportedLimit            Status = 215
	ErrorContextAlreadyInUse         Status = 216
	ErrorPeerAccessUnsupported       Status = 217
	ErrorInvalidKernelFile           Status = 218
	ErrorInvalidGraphicsContext      Status = 219
	ErrorInvalidSource               Status = 300
	ErrorFileNotFound                Status = 301
	ErrorSharedObjectSymbolNotFound  Status = 302
	ErrorSharedObjectInitFailed      Status = 303
	ErrorOperatingSystem             Status = 304
	ErrorInvalidHandle               Status = 400
	ErrorNotFound                    Status = 500
	ErrorNotReady                    Status = 600
	ErrorIllegalAddress              Status = 700
	ErrorLaunchOutOfResources        Status = 701
	ErrorLaunchTimeOut               Status = 702
	ErrorPeerAccessAlreadyEnabled    Status = 704
	ErrorPeerAccessNotEnabled        Status = 705
	ErrorSetOnActiveProcess          Status = 708
	ErrorAssert                      Status = 710
	ErrorHostMemoryAlreadyRegistered Status = 712
	ErrorHostMemoryNotRegistered     Status = 713
	ErrorLaunchFailure               Status = 719
	ErrorCooperativeLaunchTooLarge   Status = 720
	ErrorNotSupported                Status = 801
	ErrorUnknown                     Status = 999
	ErrorRuntimeMemory               Status = 1052
	ErrorRuntimeOther                Status = 1053
)

type statusInfo struct {
	name     string
	category status.Category
}

// statusTable holds the native name and the category of every known status.
var statusTable = map[Status]statusInfo{
	Success:                          {"hipSuccess", status.CategoryNone},
	ErrorInvalidValue:                {"hipErrorInvalidValue", status.CategoryInvalidUsage},
	ErrorOutOfMemory:                 {"hipErrorOutOfMemory", status.CategoryResourceExhaustion},
	ErrorNotInitialized:              {"hipErrorNotInitialized", status.CategoryInvalidUsage},
	ErrorDeinitialized:               {"hipErrorDeinitialized", status.CategoryInvalidUsage},
	ErrorProfilerDisabled:            {"hipErrorProfilerDisabled", status.CategoryStateConflict},
	ErrorProfilerNotInitialized:      {"hipErrorProfilerNotInitialized", status.CategoryStateConflict},
	ErrorProfilerAlreadyStarted:      {"hipErrorProfilerAlreadyStarted", status.CategoryStateConflict},
	ErrorProfilerAlreadyStopped:      {"hipErrorProfilerAlreadyStopped", status.CategoryStateConflict},
	ErrorInvalidConfiguration:        {"hipErrorInvalidConfiguration", status.CategoryInvalidUsage},
	ErrorInvalidSymbol:               {"hipErrorInvalidSymbol", status.CategoryInvalidUsage},
	ErrorInvalidDevicePointer:        {"hipErrorInvalidDevicePointer", status.CategoryInvalidUsage},
	ErrorInvalidMemcpyDirection:      {"hipErrorInvalidMemcpyDirection", status.CategoryInvalidUsage},
	ErrorInsufficientDriver:          {"hipErrorInsufficientDriver", status.CategoryResourceExhaustion},
	ErrorMissingConfiguration:        {"hipErrorMissingConfiguration", status.CategoryInvalidUsage},
	ErrorPriorLaunchFailure:          {"hipErrorPriorLaunchFailure", status.CategoryLaunchFailure},
	ErrorInvalidDeviceFunction:       {"hipErrorInvalidDeviceFunction", status.CategoryInvalidUsage},
	ErrorNoDevice:                    {"hipErrorNoDevice", status.CategoryUnsupported},
	ErrorInvalidDevice:               {"hipErrorInvalidDevice", status.CategoryInvalidUsage},
	ErrorInvalidImage:                {"hipErrorInvalidImage", status.CategoryInvalidUsage},
	ErrorInvalidContext:              {"hipErrorInvalidContext", status.CategoryInvalidUsage},
	ErrorContextAlreadyCurrent:       {"hipErrorContextAlreadyCurrent", status.CategoryStateConflict},
	ErrorMapFailed:                   {"hipErrorMapFailed", status.CategoryStateConflict},
	ErrorUnmapFailed:                 {"hipErrorUnmapFailed", status.CategoryStateConflict},
	ErrorArrayIsMapped:               {"hipErrorArrayIsMapped", status.CategoryStateConflict},
	ErrorAlreadyMapped:               {"hipErrorAlreadyMapped", status.CategoryStateConflict},
	ErrorNoBinaryForGpu:              {"hipErrorNoBinaryForGpu", status.CategoryUnsupported},
	ErrorAlreadyAcquired:             {"hipErrorAlreadyAcquired", status.CategoryStateConflict},
	ErrorNotMapped:                   {"hipErrorNotMapped", status.CategoryStateConflict},
	ErrorNotMappedAsArray:            {"hipErrorNotMappedAsArray", status.CategoryStateConflict},
	ErrorNotMappedAsPointer:          {"hipErrorNotMappedAsPointer", status.CategoryStateConflict},
	ErrorECCNotCorrectable:           {"hipErrorECCNotCorrectable", status.CategoryLaunchFailure},
	ErrorUnsupportedLimit:            {"hipErrorUnsupportedLimit", status.CategoryUnsupported},
	ErrorContextAlreadyInUse:         {"hipErrorContextAlreadyInUse", status.CategoryStateConflict},
	ErrorPeerAccessUnsupported:       {"hipErrorPeerAccessUnsupported", status.CategoryUnsupported},
	ErrorInvalidKernelFile:           {"hipErrorInvalidKernelFile", status.CategoryInvalidUsage},
	ErrorInvalidGraphicsContext:      {"hipErrorInvalidGraphicsContext", status.CategoryInvalidUsage},
	ErrorInvalidSource:               {"hipErrorInvalidSource", status.CategoryInvalidUsage},
	ErrorFileNotFound:                {"hipErrorFileNotFound", status.CategoryInvalidUsage},
	ErrorSharedObjectSymbolNotFound:  {"hipErrorSharedObjectSymbolNotFound", status.CategoryInvalidUsage},
	ErrorSharedObjectInitFailed:      {"hipErrorSharedObjectInitFailed", status.CategoryUnsupported},
	ErrorOperatingSystem:             {"hipErrorOperatingSystem", status.CategoryUnsupported},
	ErrorInvalidHandle:               {"hipErrorInvalidHandle", status.CategoryInvalidUsage},
	ErrorNotFound:                    {"hipErrorNotFound", status.CategoryInvalidUsage},
	ErrorNotReady:                    {"hipErrorNotReady", status.CategoryNotReady},
	ErrorIllegalAddress:              {"hipErrorIllegalAddress", status.CategoryLaunchFailure},
	ErrorLaunchOutOfResources:        {"hipErrorLaunchOutOfResources", status.CategoryLaunchFailure},
	ErrorLaunchTimeOut:               {"hipErrorLaunchTimeOut", status.CategoryLaunchFailure},
	ErrorPeerAccessAlreadyEnabled:    {"hipErrorPeerAccessAlreadyEnabled", status.CategoryStateConflict},
	ErrorPeerAccessNotEnabled:        {"hipErrorPeerAccessNotEnabled", status.CategoryStateConflict},
	ErrorSetOnActiveProcess:          {"hipErrorSetOnActiveProcess", status.CategoryStateConflict},
	ErrorAssert:                      {"hipErrorAssert", status.CategoryLaunchFailure},
	ErrorHostMemoryAlreadyRegistered: {"hipErrorHostMemoryAlreadyRegistered", status.CategoryStateConflict},
	ErrorHostMemoryNotRegistered:     {"hipErrorHostMemoryNotRegistered", status.CategoryStateConflict},
	ErrorLaunchFailure:               {"hipErrorLaunchFailure", status.CategoryLaunchFailure},
	ErrorCooperativeLaunchTooLarge:   {"hipErrorCooperativeLaunchTooLarge", status.CategoryLaunchFailure},
	ErrorNotSupported:                {"hipErrorNotSupported", status.CategoryUnsupported},
	ErrorUnknown:                     {"hipErrorUnknown", status.CategoryUnsupported},
	ErrorRuntimeMemory:               {"hipErrorRuntimeMemory", status.CategoryResourceExhaustion},
	ErrorRuntimeOther:                {"hipErrorRuntimeOther", status.CategoryUnsupported},
}

// String returns the native name of the status, e.g. "hipErrorOutOfMemory".
// Codes not known to this package are rendered as "hipErrorUnknownStatus(<code>)".
func (s Status) String() string {
	if info, found := statusTable[s]; found {
		return info.name
	}
	return fmt.Sprintf("hipErrorUnknownStatus(%d)", int32(s))
}

// Error implements the error interface.
func (s Status) Error() string {
	return s.String()
}

// IsKnown returns whether the status code is one of the codes defined by this package.
func (s Status) IsKnown() bool {
	_, found := statusTable[s]
	return found
}

// Category of the status. Unknown codes are classified as status.CategoryUnsupported.
func (s Status) Category() status.Category {
	if info, found := statusTable[s]; found {
		return info.category
	}
	return status.CategoryUnsupported
}
