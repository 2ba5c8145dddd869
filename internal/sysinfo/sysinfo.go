package sysinfo

import (
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// Field is one labelled line of the report.
type Field struct {
	Name  string
	Value string
}

// Collect gathers host details useful when reporting a problem with the client.
// Lookups that fail are left out. watchPath, if set, adds free space for the
// volume holding the watch folder.
func Collect(watchPath string) []Field {
	var fields []Field
	add := func(name, value string) {
		if value != "" {
			fields = append(fields, Field{Name: name, Value: value})
		}
	}

	if hInfo, err := host.Info(); err == nil {
		add("Hostname", hInfo.Hostname)
		add("OS", strings.TrimSpace(hInfo.Platform+" "+hInfo.PlatformVersion))
		add("Kernel", hInfo.KernelVersion)
		add("Arch", hInfo.KernelArch)
	}

	if cInfos, err := cpu.Info(); err == nil && len(cInfos) > 0 {
		add("CPU Model", cInfos[0].ModelName)
	}
	if n, err := cpu.Counts(true); err == nil {
		add("CPU Threads", fmt.Sprint(n))
	}

	if mInfo, err := mem.VirtualMemory(); err == nil {
		add("Total RAM", fmt.Sprintf("%d MB", mInfo.Total/1024/1024))
	}

	if watchPath != "" {
		if usage, err := disk.Usage(watchPath); err == nil {
			add("Watch Folder Free", fmt.Sprintf("%.1f GB", float64(usage.Free)/(1<<30)))
		}
	}

	add("Go Version", runtime.Version())
	return fields
}

// Width returns the widest field name, for aligned printing.
func Width(fields []Field) int {
	if len(fields) == 0 {
		return 0
	}
	return len(slices.MaxFunc(fields, func(a, b Field) int { return len(a.Name) - len(b.Name) }).Name)
}
