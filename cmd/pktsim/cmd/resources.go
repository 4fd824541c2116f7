package cmd

import (
	"os"

	"github.com/iti/pktsim"
	"github.com/shirou/gopsutil/process"
)

// logResources reports the CPU and memory the simulation process has used
func logResources(logger *pktsim.Logger) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		logger.Warnf("cannot inspect process: %v", err)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		logger.Warnf("cannot read cpu usage: %v", err)
		return
	}
	memInfo, err := proc.MemoryInfo()
	if err != nil {
		logger.Warnf("cannot read memory usage: %v", err)
		return
	}

	logger.Infof("resources: cpu %.1f%%, rss %.1f MiB", cpuPercent, float64(memInfo.RSS)/(1<<20))
}
