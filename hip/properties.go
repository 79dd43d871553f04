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
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const (
	// DevicePropertiesRecordSize is the size in bytes of the native device properties record (hipDeviceProp_t)
	// decoded by DecodeDeviceProperties.
	DevicePropertiesRecordSize = 792

	// devicePropertiesBufferSize is the zeroed buffer given to the runtime to fill the properties.
	devicePropertiesBufferSize = 4096
)

// DeviceArch holds the feature flags of the device architecture.
type DeviceArch struct {
	HasGlobalInt32Atomics    bool
	HasGlobalFloatAtomicExch bool
	HasSharedInt32Atomics    bool
	HasSharedFloatAtomicExch bool
	HasFloatAtomicAdd        bool
	HasGlobalInt64Atomics    bool
	HasSharedInt64Atomics    bool
	HasDoubles               bool
	HasWarpVote              bool
	HasWarpBallot            bool
	HasWarpShuffle           bool
	HasFunnelShift           bool
	HasThreadFenceSystem     bool
	HasSyncThreadsExt        bool
	HasSurfaceFuncs          bool
	Has3dGrid                bool
	HasDynamicParallelism    bool
}

// DeviceProperties describes a device, see Device.Properties.
//
// Sizes are in bytes, and clock rates in kHz.
type DeviceProperties struct {
	Name                        string
	TotalGlobalMem              uint64
	SharedMemPerBlock           uint64
	RegsPerBlock                int
	WarpSize                    int
	MaxThreadsPerBlock          int
	MaxThreadsDim               [3]int
	MaxGridSize                 [3]int
	ClockRate                   int
	MemoryClockRate             int
	MemoryBusWidth              int
	TotalConstMem               uint64
	Major, Minor                int
	MultiProcessorCount         int
	L2CacheSize                 int
	MaxThreadsPerMultiProcessor int
	ComputeMode                 int
	ClockInstructionRate        int
	Arch                        DeviceArch
	ConcurrentKernels           bool
	PCIDomainID                 int
	PCIBusID                    int
	PCIDeviceID                 int

	MaxSharedMemoryPerMultiProcessor uint64

	IsMultiGPUBoard  bool
	CanMapHostMemory bool
	GCNArch          int

	// GCNArchName is the full AMD architecture name, including target features, e.g. "gfx90a:sramecc+:xnack-".
	// It is empty on NVIDIA.
	GCNArchName string

	Integrated                   bool
	CooperativeLaunch            bool
	CooperativeMultiDeviceLaunch bool
	MaxTexture1DLinear           int
	MaxTexture1D                 int
	MaxTexture2D                 [2]int
	MaxTexture3D                 [3]int
	MemPitch                     uint64
	TextureAlignment             uint64
	TexturePitchAlignment        uint64
	KernelExecTimeoutEnabled     bool
	ECCEnabled                   bool
	TCCDriver                    bool

	CooperativeMultiDeviceUnmatchedFunc      bool
	CooperativeMultiDeviceUnmatchedGridDim   bool
	CooperativeMultiDeviceUnmatchedBlockDim  bool
	CooperativeMultiDeviceUnmatchedSharedMem bool

	IsLargeBar                             bool
	ASICRevision                           int
	ManagedMemory                          bool
	DirectManagedMemAccessFromHost         bool
	ConcurrentManagedAccess                bool
	PageableMemoryAccess                   bool
	PageableMemoryAccessUsesHostPageTables bool
}

// ComputeCapability returns "<major>.<minor>".
func (p *DeviceProperties) ComputeCapability() string {
	return fmt.Sprintf("%d.%d", p.Major, p.Minor)
}

// BaseArchName returns the GCNArchName without the target features, e.g. "gfx90a".
func (p *DeviceProperties) BaseArchName() string {
	name, _, _ := strings.Cut(p.GCNArchName, ":")
	return name
}

// recordReader reads fields of a native record at fixed offsets.
type recordReader []byte

func (r recordReader) int32At(offset int) int {
	return int(int32(binary.NativeEndian.Uint32(r[offset:])))
}

func (r recordReader) uint32At(offset int) uint32 {
	return binary.NativeEndian.Uint32(r[offset:])
}

func (r recordReader) boolAt(offset int) bool {
	return r.int32At(offset) != 0
}

func (r recordReader) sizeAt(offset int) uint64 {
	return binary.NativeEndian.Uint64(r[offset:])
}

func (r recordReader) int32sAt(offset int, values []int) {
	for ii := range values {
		values[ii] = r.int32At(offset + 4*ii)
	}
}

// stringAt reads a NUL terminated string stored in a fixed size char array.
func (r recordReader) stringAt(offset, size int) string {
	field := r[offset : offset+size]
	if end := bytes.IndexByte(field, 0); end >= 0 {
		field = field[:end]
	}
	return string(field)
}

// decodeDeviceArch decodes the bitfield of architecture flags, least significant bit first.
func decodeDeviceArch(bits uint32) DeviceArch {
	flag := func(bit int) bool { return bits&(1<<bit) != 0 }
	return DeviceArch{
		HasGlobalInt32Atomics:    flag(0),
		HasGlobalFloatAtomicExch: flag(1),
		HasSharedInt32Atomics:    flag(2),
		HasSharedFloatAtomicExch: flag(3),
		HasFloatAtomicAdd:        flag(4),
		HasGlobalInt64Atomics:    flag(5),
		HasSharedInt64Atomics:    flag(6),
		HasDoubles:               flag(7),
		HasWarpVote:              flag(8),
		HasWarpBallot:            flag(9),
		HasWarpShuffle:           flag(10),
		HasFunnelShift:           flag(11),
		HasThreadFenceSystem:     flag(12),
		HasSyncThreadsExt:        flag(13),
		HasSurfaceFuncs:          flag(14),
		Has3dGrid:                flag(15),
		HasDynamicParallelism:    flag(16),
	}
}

// DecodeDeviceProperties decodes the native device properties record (hipDeviceProp_t) as filled by the
// runtime. The record must have at least DevicePropertiesRecordSize bytes: any extra bytes are ignored.
func DecodeDeviceProperties(record []byte) (*DeviceProperties, error) {
	if len(record) < DevicePropertiesRecordSize {
		return nil, errors.Errorf("device properties record has %d bytes, at least %d bytes required",
			len(record), DevicePropertiesRecordSize)
	}
	r := recordReader(record)
	p := &DeviceProperties{
		Name:                        r.stringAt(0, 256),
		TotalGlobalMem:              r.sizeAt(256),
		SharedMemPerBlock:           r.sizeAt(264),
		RegsPerBlock:                r.int32At(272),
		WarpSize:                    r.int32At(276),
		MaxThreadsPerBlock:          r.int32At(280),
		ClockRate:                   r.int32At(308),
		MemoryClockRate:             r.int32At(312),
		MemoryBusWidth:              r.int32At(316),
		TotalConstMem:               r.sizeAt(320),
		Major:                       r.int32At(328),
		Minor:                       r.int32At(332),
		MultiProcessorCount:         r.int32At(336),
		L2CacheSize:                 r.int32At(340),
		MaxThreadsPerMultiProcessor: r.int32At(344),
		ComputeMode:                 r.int32At(348),
		ClockInstructionRate:        r.int32At(352),
		Arch:                        decodeDeviceArch(r.uint32At(356)),
		ConcurrentKernels:           r.boolAt(360),
		PCIDomainID:                 r.int32At(364),
		PCIBusID:                    r.int32At(368),
		PCIDeviceID:                 r.int32At(372),

		MaxSharedMemoryPerMultiProcessor: r.sizeAt(376),

		IsMultiGPUBoard:  r.boolAt(384),
		CanMapHostMemory: r.boolAt(388),
		GCNArch:          r.int32At(392),
		GCNArchName:      r.stringAt(396, 256),

		Integrated:                   r.boolAt(652),
		CooperativeLaunch:            r.boolAt(656),
		CooperativeMultiDeviceLaunch: r.boolAt(660),
		MaxTexture1DLinear:           r.int32At(664),
		MaxTexture1D:                 r.int32At(668),

		// Offsets 696 and 704 hold host pointers to HDP flush registers, not exposed.
		MemPitch:                 r.sizeAt(712),
		TextureAlignment:         r.sizeAt(720),
		TexturePitchAlignment:    r.sizeAt(728),
		KernelExecTimeoutEnabled: r.boolAt(736),
		ECCEnabled:               r.boolAt(740),
		TCCDriver:                r.boolAt(744),

		CooperativeMultiDeviceUnmatchedFunc:      r.boolAt(748),
		CooperativeMultiDeviceUnmatchedGridDim:   r.boolAt(752),
		CooperativeMultiDeviceUnmatchedBlockDim:  r.boolAt(756),
		CooperativeMultiDeviceUnmatchedSharedMem: r.boolAt(760),

		IsLargeBar:                             r.boolAt(764),
		ASICRevision:                           r.int32At(768),
		ManagedMemory:                          r.boolAt(772),
		DirectManagedMemAccessFromHost:         r.boolAt(776),
		ConcurrentManagedAccess:                r.boolAt(780),
		PageableMemoryAccess:                   r.boolAt(784),
		PageableMemoryAccessUsesHostPageTables: r.boolAt(788),
	}
	r.int32sAt(284, p.MaxThreadsDim[:])
	r.int32sAt(296, p.MaxGridSize[:])
	r.int32sAt(672, p.MaxTexture2D[:])
	r.int32sAt(680, p.MaxTexture3D[:])
	return p, nil
}
