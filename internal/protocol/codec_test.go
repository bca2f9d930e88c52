package protocol

import (
	"bytes"
	"testing"
)

func TestCodecChunkRoundTrip(t *testing.T) {
	codec := NewCodec()
	var buf bytes.Buffer

	msg := &Chunk{
		ChunkIndex:  7,
		Data:        []byte("chunk payload bytes"),
		FileName:    "report.pdf",
		FileSize:    1 << 20,
		Nonce:       []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		Timestamp:   1724900000123,
		TotalChunks: 16,
	}

	if err := codec.Encode(&buf, msg); err != nil {
		t.Fatalf("Encode Chunk failed: %v", err)
	}

	decoded, err := codec.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode Chunk failed: %v", err)
	}

	got, ok := decoded.(*Chunk)
	if !ok {
		t.Fatalf("Expected *Chunk, got %T", decoded)
	}
	if got.ChunkIndex != 7 || got.TotalChunks != 16 {
		t.Errorf("index/total mismatch: %d/%d", got.ChunkIndex, got.TotalChunks)
	}
	if !bytes.Equal(got.Data, msg.Data) {
		t.Error("chunk data mismatch")
	}
	if got.Timestamp != msg.Timestamp {
		t.Errorf("timestamp mismatch: %d", got.Timestamp)
	}
	if !bytes.Equal(got.Nonce, msg.Nonce) {
		t.Error("nonce mismatch")
	}
}

func TestCodecFileStart(t *testing.T) {
	codec := NewCodec()

	data, err := codec.EncodeToBytes(&FileStart{
		Encrypted:   true,
		FileName:    "photo.jpg",
		FileSize:    4096,
		TotalChunks: 1,
	})
	if err != nil {
		t.Fatalf("EncodeToBytes failed: %v", err)
	}

	decoded, err := codec.DecodeFromBytes(data)
	if err != nil {
		t.Fatalf("DecodeFromBytes failed: %v", err)
	}

	got, ok := decoded.(*FileStart)
	if !ok {
		t.Fatalf("Expected *FileStart, got %T", decoded)
	}
	if !got.Encrypted {
		t.Error("expected encrypted flag set")
	}
	if got.FileName != "photo.jpg" || got.FileSize != 4096 || got.TotalChunks != 1 {
		t.Errorf("field mismatch: %+v", got)
	}
}

func TestCodecKeyExchange(t *testing.T) {
	codec := NewCodec()

	keyData := bytes.Repeat([]byte{0x42}, 32)
	data, err := codec.EncodeToBytes(&KeyExchange{KeyData: keyData})
	if err != nil {
		t.Fatalf("EncodeToBytes failed: %v", err)
	}

	decoded, err := codec.DecodeFromBytes(data)
	if err != nil {
		t.Fatalf("DecodeFromBytes failed: %v", err)
	}

	got, ok := decoded.(*KeyExchange)
	if !ok {
		t.Fatalf("Expected *KeyExchange, got %T", decoded)
	}
	if !bytes.Equal(got.KeyData, keyData) {
		t.Error("key data mismatch")
	}
}

func TestCodecFileEnd(t *testing.T) {
	codec := NewCodec()

	data, err := codec.EncodeToBytes(&FileEnd{FileName: "report.pdf"})
	if err != nil {
		t.Fatalf("EncodeToBytes failed: %v", err)
	}

	decoded, err := codec.DecodeFromBytes(data)
	if err != nil {
		t.Fatalf("DecodeFromBytes failed: %v", err)
	}

	got, ok := decoded.(*FileEnd)
	if !ok {
		t.Fatalf("Expected *FileEnd, got %T", decoded)
	}
	if got.FileName != "report.pdf" {
		t.Errorf("file name mismatch: %q", got.FileName)
	}
}

func TestMessageTypeStrings(t *testing.T) {
	tests := []struct {
		mt   MessageType
		want string
	}{
		{MsgChunk, "CHUNK"},
		{MsgFileEnd, "FILE_END"},
		{MsgFileStart, "FILE_START"},
		{MsgKeyExchange, "KEY_EXCHANGE"},
		{MessageType(0xFFFF), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.mt.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}
