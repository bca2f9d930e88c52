package protocol

type MessageType uint16

const (
	MsgChunk       MessageType = 0x0012
	MsgFileEnd     MessageType = 0x0013
	MsgFileStart   MessageType = 0x0011
	MsgKeyExchange MessageType = 0x0001
)

func (t MessageType) String() string {
	switch t {
	case MsgChunk:
		return "CHUNK"
	case MsgFileEnd:
		return "FILE_END"
	case MsgFileStart:
		return "FILE_START"
	case MsgKeyExchange:
		return "KEY_EXCHANGE"
	default:
		return "UNKNOWN"
	}
}
