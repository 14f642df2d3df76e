package cpu

import (
	"bytes"
	"fmt"
	"runtime"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// A virtual compute device backed by a share of the host CPUs. Each compute
// unit executes one work-group at a time.
type Device struct {
	Name         string
	ComputeUnits uint32

	// Relative speed estimate used by the block schedulers.
	Speed uint32
}

func (d Device) String() string {
	return fmt.Sprintf("Name: %s\nCompute units: %d", d.Name, d.ComputeUnits)
}

// A list of devices.
type DeviceList []Device

// Split the host CPUs into count virtual devices. Left-over CPUs are given
// to the first device.
func ListDevices(count int) DeviceList {
	cpus := runtime.NumCPU()
	if count < 1 {
		count = 1
	}
	if count > cpus {
		count = cpus
	}

	devices := make(DeviceList, count)
	for idx := range devices {
		units := uint32(cpus / count)
		if idx == 0 {
			units += uint32(cpus % count)
		}
		devices[idx] = Device{
			Name:         fmt.Sprintf("cpu%d", idx),
			ComputeUnits: units,
			Speed:        units,
		}
	}
	return devices
}

// Return the available devices after applying the blacklist filters. A device
// is dropped if its name contains any of the blacklist entries.
func SelectDevices(count int, blackList []string) DeviceList {
	filteredList := make(DeviceList, 0)

	var keep bool
	for _, device := range ListDevices(count) {
		keep = true
		for _, text := range blackList {
			if text != "" && strings.Contains(device.Name, text) {
				keep = false
				break
			}
		}
		if keep {
			filteredList = append(filteredList, device)
		}
	}

	return filteredList
}

// Render a table with the device list.
func (dl DeviceList) Table() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Device", "Compute units", "Work-group", "Speed"})
	for _, device := range dl {
		table.Append([]string{
			device.Name,
			fmt.Sprintf("%d", device.ComputeUnits),
			fmt.Sprintf("%dx%d", DefaultTileW, DefaultTileH),
			fmt.Sprintf("%d", device.Speed),
		})
	}
	table.SetFooter([]string{"", "", "TOTAL", fmt.Sprintf("%d", len(dl))})

	table.Render()
	return buf.String()
}
