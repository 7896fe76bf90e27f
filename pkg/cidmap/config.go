package cidmap

import (
	"github.com/agenthands/cidmap/pkg/core"
)

type Config = core.Config
type IngestConfig = core.IngestConfig
type SnapshotConfig = core.SnapshotConfig
type LimitsConfig = core.LimitsConfig
