package rtos

import "github.com/behrlich/go-rtos/internal/constants"

// Re-exported build/startup configuration, per spec.md §6's
// Configuration table.
const (
	NumPriorities              = constants.NumPriorities
	ForeverChan                = constants.ForeverChan
	DefaultIdleStackDepth      = constants.DefaultIdleStackDepth
	MinStackDepth              = constants.MinStackDepth
	DefaultTicksPerMillisecond = constants.DefaultTicksPerMillisecond
	DefaultHeapSize            = constants.DefaultHeapSize
)
