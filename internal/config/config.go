package config

import "time"

const (
	// DefaultChunkSize is the slice size used when splitting files.
	DefaultChunkSize = 256 * 1024

	// DefaultPaceDelay is the fixed inter-chunk send delay. It is the flow
	// control policy: a simple pause to avoid overrunning the data
	// channel's internal buffer, not adaptive backpressure.
	DefaultPaceDelay = 10 * time.Millisecond
)

var defaultSTUNServers = []string{
	"stun:stun.l.google.com:19302",
	"stun:stun1.l.google.com:19302",
	"stun:stun2.l.google.com:19302",
}

type Config struct {
	ChunkSize int
	// Encrypt must be decided before connecting; it cannot change
	// mid-session.
	Encrypt     bool
	HistoryPath string
	PaceDelay   time.Duration
	SignalAddr  string
	STUNServers []string
}

func Default() Config {
	return Config{
		ChunkSize:   DefaultChunkSize,
		HistoryPath: "fileshare.sqlite3",
		PaceDelay:   DefaultPaceDelay,
		SignalAddr:  "localhost:9090",
		STUNServers: DefaultSTUNServers(),
	}
}

func DefaultSTUNServers() []string {
	servers := make([]string, len(defaultSTUNServers))
	copy(servers, defaultSTUNServers)
	return servers
}
