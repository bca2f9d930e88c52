package protocol

type Message interface {
	Type() MessageType
}

// Chunk carries one slice of the file. Nonce is empty when the transfer
// is not encrypted. Timestamp is the sender's clock in unix milliseconds
// and is used by the receiver to compute per-chunk latency.
type Chunk struct {
	ChunkIndex  uint32
	Data        []byte
	FileName    string
	FileSize    uint64
	Nonce       []byte
	Timestamp   int64
	TotalChunks uint32
}

func (Chunk) Type() MessageType { return MsgChunk }

type FileEnd struct {
	FileName string
}

func (FileEnd) Type() MessageType { return MsgFileEnd }

type FileStart struct {
	Encrypted   bool
	FileName    string
	FileSize    uint64
	TotalChunks uint32
}

func (FileStart) Type() MessageType { return MsgFileStart }

// KeyExchange carries raw symmetric key material. Sent at most once per
// session, in either direction, and only when encryption is enabled.
type KeyExchange struct {
	KeyData []byte
}

func (KeyExchange) Type() MessageType { return MsgKeyExchange }
