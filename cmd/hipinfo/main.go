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

// hipinfo lists the HIP devices available and their properties.
//
// Usage:
//
//	hipinfo [-device=<n>] [-details]
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/gomlx/gohip/hip"
	"github.com/gomlx/gohip/hiprtc"
	"github.com/janpfeifer/must"
	"github.com/olekukonko/tablewriter"
	"k8s.io/klog/v2"
)

var (
	flagDevice  = flag.Int("device", -1, "Device to describe. If negative, all devices are listed.")
	flagDetails = flag.Bool("details", false, "Print all the properties of each device, instead of a summary table.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	hip.MustLoad()

	platform := must.M1(hip.Platform())
	libPath := must.M1(hip.LibraryPath())
	runtimeVersion := must.M1(hip.RuntimeVersion())
	driverVersion := must.M1(hip.DriverVersion())
	fmt.Printf("HIP runtime (%s): %s\n", platform, libPath)
	fmt.Printf("\t- runtime version: %d, driver version: %d\n", runtimeVersion, driverVersion)
	if err := hiprtc.Load(); err != nil {
		klog.Warningf("hiprtc not available: %v", err)
	} else {
		major, minor := must.M2(hiprtc.Version())
		fmt.Printf("hiprtc %d.%d: %s\n", major, minor, must.M1(hiprtc.LibraryPath()))
	}

	count := must.M1(hip.DeviceCount())
	devices := make([]hip.Device, 0, count)
	if *flagDevice >= 0 {
		if *flagDevice >= count {
			klog.Fatalf("-device=%d given, but only %d devices are available", *flagDevice, count)
		}
		devices = append(devices, hip.Device(*flagDevice))
	} else {
		for device := range hip.Device(count) {
			devices = append(devices, device)
		}
	}
	fmt.Printf("%d device(s) available.\n\n", count)
	if len(devices) == 0 {
		return
	}

	properties := make([]*hip.DeviceProperties, len(devices))
	for ii, device := range devices {
		properties[ii] = must.M1(device.Properties())
	}
	if *flagDetails {
		for ii, device := range devices {
			printDetails(device, properties[ii])
		}
		return
	}
	printSummary(devices, properties)
}

func printSummary(devices []hip.Device, properties []*hip.DeviceProperties) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "NAME", "ARCH", "CC", "CUs", "MEMORY", "CLOCK", "PCI"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	data := make([][]string, 0, len(devices))
	for ii, device := range devices {
		p := properties[ii]
		arch := p.BaseArchName()
		if arch == "" {
			arch = "-"
		}
		data = append(data, []string{
			strconv.Itoa(int(device)),
			p.Name,
			arch,
			p.ComputeCapability(),
			strconv.Itoa(p.MultiProcessorCount),
			humanBytes(p.TotalGlobalMem),
			fmt.Sprintf("%d MHz", p.ClockRate/1000),
			fmt.Sprintf("%04x:%02x:%02x", p.PCIDomainID, p.PCIBusID, p.PCIDeviceID),
		})
	}
	table.AppendBulk(data)
	table.Render()
}

func printDetails(device hip.Device, p *hip.DeviceProperties) {
	fmt.Printf("%s: %s\n", device, p.Name)
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetColumnSeparator("")
	rows := [][]string{
		{"GCN arch name", p.GCNArchName},
		{"Compute capability", p.ComputeCapability()},
		{"Global memory", humanBytes(p.TotalGlobalMem)},
		{"Shared memory per block", humanBytes(p.SharedMemPerBlock)},
		{"Shared memory per multiprocessor", humanBytes(p.MaxSharedMemoryPerMultiProcessor)},
		{"Constant memory", humanBytes(p.TotalConstMem)},
		{"L2 cache", humanBytes(uint64(p.L2CacheSize))},
		{"Registers per block", strconv.Itoa(p.RegsPerBlock)},
		{"Warp size", strconv.Itoa(p.WarpSize)},
		{"Max threads per block", strconv.Itoa(p.MaxThreadsPerBlock)},
		{"Max threads dims", fmt.Sprint(p.MaxThreadsDim)},
		{"Max grid size", fmt.Sprint(p.MaxGridSize)},
		{"Multiprocessors", strconv.Itoa(p.MultiProcessorCount)},
		{"Max threads per multiprocessor", strconv.Itoa(p.MaxThreadsPerMultiProcessor)},
		{"Clock rate", fmt.Sprintf("%d MHz", p.ClockRate/1000)},
		{"Memory clock rate", fmt.Sprintf("%d MHz", p.MemoryClockRate/1000)},
		{"Memory bus width", fmt.Sprintf("%d bits", p.MemoryBusWidth)},
		{"Concurrent kernels", strconv.FormatBool(p.ConcurrentKernels)},
		{"Cooperative launch", strconv.FormatBool(p.CooperativeLaunch)},
		{"Managed memory", strconv.FormatBool(p.ManagedMemory)},
		{"Large BAR", strconv.FormatBool(p.IsLargeBar)},
		{"ECC enabled", strconv.FormatBool(p.ECCEnabled)},
		{"Integrated", strconv.FormatBool(p.Integrated)},
		{"Doubles", strconv.FormatBool(p.Arch.HasDoubles)},
		{"Warp shuffle", strconv.FormatBool(p.Arch.HasWarpShuffle)},
		{"Global int64 atomics", strconv.FormatBool(p.Arch.HasGlobalInt64Atomics)},
	}
	table.AppendBulk(rows)
	table.Render()
	fmt.Println()
}

// humanBytes formats a size in bytes using binary units.
func humanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
