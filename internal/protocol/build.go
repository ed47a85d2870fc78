package protocol

// StatusSuccess is the only status a completed build reports; failures are
// surfaced as errors and never produce a BuildDocument.
const StatusSuccess = "success"

// BuildDocument is the response shape of one structure generation.
type BuildDocument struct {
	Status        string      `json:"status"`
	StructureType string      `json:"structureType"`
	BlocksPlaced  int         `json:"blocksPlaced"`
	BuildTimeMs   int64       `json:"buildTimeMs"`
	BoundingBox   BoundingBox `json:"boundingBox"`
}

type BoundingBox struct {
	MinX int `json:"minX"`
	MinY int `json:"minY"`
	MinZ int `json:"minZ"`
	MaxX int `json:"maxX"`
	MaxY int `json:"maxY"`
	MaxZ int `json:"maxZ"`
}

// BuildRecord is what the host keeps about an accepted build: the document plus
// who asked for it and with which palette. Block data is never recorded.
type BuildRecord struct {
	ID         string         `json:"id"`
	Actor      string         `json:"actor,omitempty"`
	Material   string         `json:"material"`
	Args       map[string]any `json:"args,omitempty"`
	Result     BuildDocument  `json:"result"`
	RecordedAt string         `json:"recorded_at"`
}

// SubscribeMsg is the first (and only) client message on the observer feed.
type SubscribeMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	Types           []string `json:"types,omitempty"`
}

// BuildEventMsg is pushed to observers for every accepted build.
type BuildEventMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	Build           BuildRecord `json:"build"`
}

// ObserverBootstrap is served over plain HTTP before a client opens the feed.
type ObserverBootstrap struct {
	ProtocolVersion string   `json:"protocol_version"`
	WorldID         string   `json:"world_id"`
	Structures      []string `json:"structures"`
	Materials       []string `json:"materials"`
}
