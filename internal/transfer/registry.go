package transfer

// Modes returns a fresh instance of every registered transfer mode, keyed by
// its VSI-S command name (§4.8).
func Modes() map[string]Mode {
	return map[string]Mode{
		"disk2net":      NewDisk2Net(),
		"file2net":      NewFile2Net(),
		"fill2net":      NewFill2Net(),
		"disk2out":      NewDisk2Out(),
		"diskfill2file": NewDiskFill2File(),
		"in2disk":       NewIn2Disk(),
		"in2net":        NewIn2Net(),
		"net2out":       NewNet2Out(),
		"disk2net_vbs":  NewDisk2NetVBS(),
		"scan_set":      NewScanSet(),
	}
}
