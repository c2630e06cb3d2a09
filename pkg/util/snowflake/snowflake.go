package snowflake

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

var (
	node     *snowflake.Node
	nodeOnce sync.Once
	machine  int64 = 1
)

// Init fixes the node id. Call once at startup, before the first ID.
func Init(machineID int64) {
	if machineID < 0 || machineID > 1023 {
		zap.L().Warn("invalid snowflake machine id, using 1", zap.Int64("machineID", machineID))
		machineID = 1
	}
	machine = machineID
	ensureNode()
}

func ensureNode() {
	nodeOnce.Do(func() {
		var err error
		node, err = snowflake.NewNode(machine)
		if err != nil {
			zap.L().Fatal("snowflake node init failed", zap.Error(err))
		}
	})
}

// GenerateID returns a new snowflake as int64.
func GenerateID() int64 {
	ensureNode()
	return node.Generate().Int64()
}

// GenerateIDString returns a new snowflake as a decimal string.
// Used in JSON payloads so JavaScript clients keep full precision.
func GenerateIDString() string {
	ensureNode()
	return node.Generate().String()
}
