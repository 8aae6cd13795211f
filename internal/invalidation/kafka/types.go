package kafka

import (
	"time"

	"github.com/geoconsole/spatial-canvas/internal/model"
)

const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// WireEvent is one feature update on the invalidation topic. Upserts
// carry the full feature; deletes carry only the id. Cells name the
// cache cells the producer considers touched; when empty the consumer
// derives them from the feature geometry.
type WireEvent struct {
	Op        string         `json:"op"`
	FeatureID string         `json:"feature_id,omitempty"`
	Feature   *model.Feature `json:"feature,omitempty"`
	Cells     []string       `json:"cells,omitempty"`
	Version   uint64         `json:"version"`
	TS        time.Time      `json:"ts"`
}
