package updater

import (
	"github.com/close2/ota-common/boot"
	"github.com/close2/ota-common/flash"
)

// slotInfo resolves a slot id to its fixed flash regions plus the image
// sizes currently recorded in the boot config. Addresses and capacities
// come from the layout and never change; sizes track what was written.
type slotInfo struct {
	id         int
	fwAddr     uint32
	fwSize     uint32
	fwCapacity uint32
	fsAddr     uint32
	fsSize     uint32
	fsCapacity uint32
}

func resolveSlot(layout flash.Layout, cfg boot.Config, id int) slotInfo {
	regions := layout.Slots[id]
	return slotInfo{
		id:         id,
		fwAddr:     regions.FW.Addr,
		fwSize:     cfg.Slots[id].FWSize,
		fwCapacity: regions.FW.Capacity,
		fsAddr:     regions.FS.Addr,
		fsSize:     cfg.Slots[id].FSSize,
		fsCapacity: regions.FS.Capacity,
	}
}
