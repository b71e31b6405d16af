package server

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/Fr0z3nRebel/video-toolbox/internal/config"
)

// resourceGuard rejects new jobs while the host is short on CPU, memory,
// or output disk space. Zero thresholds disable the respective check.
type resourceGuard struct {
	cfg    *config.Config
	outDir string
}

func (g *resourceGuard) check() error {
	if g.cfg.ThrottleCPU > 0 {
		if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
			if percents[0] > g.cfg.ThrottleCPU {
				return fmt.Errorf("server busy: cpu at %.0f%%", percents[0])
			}
		}
	}

	if g.cfg.ThrottleFreeMem > 0 {
		if vm, err := mem.VirtualMemory(); err == nil {
			if vm.Available < uint64(g.cfg.ThrottleFreeMem) {
				return fmt.Errorf("server busy: %d bytes of memory available", vm.Available)
			}
		}
	}

	if g.cfg.ThrottleFreeDisk > 0 {
		if usage, err := disk.Usage(g.outDir); err == nil {
			if usage.Free < uint64(g.cfg.ThrottleFreeDisk) {
				return fmt.Errorf("server busy: %d bytes of disk free", usage.Free)
			}
		}
	}

	return nil
}
