// Package transfer implements the minimal TCP streaming send/receive the
// spec calls out as a free implementation choice: "any sensible streaming
// transfer suffices". It exists to exercise the orchestrator's role
// pipeline end to end, not to be a general-purpose protocol.
package transfer

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/clintcan/lecturebench/internal/obslog"
)

// Artifact is the immutable byte sequence moved across the fabric, plus
// its known length and content hash.
type Artifact struct {
	Data   []byte
	Size   int64
	SHA256 string
}

// NewArtifact builds an Artifact from bytes already in memory.
func NewArtifact(data []byte) Artifact {
	return Artifact{Data: data, Size: int64(len(data)), SHA256: obslog.HashBytes(data)}
}

// Serve writes one Artifact to a single already-accepted connection: an
// 8-byte big-endian length prefix followed by the raw bytes. Each accepted
// connection gets its own full copy; the caller is responsible for
// accepting concurrently for a fan-out of receivers.
func Serve(conn net.Conn, artifact Artifact) error {
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(artifact.Size))
	if _, err := conn.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("transfer: write length prefix: %w", err)
	}
	if _, err := conn.Write(artifact.Data); err != nil {
		return fmt.Errorf("transfer: write artifact: %w", err)
	}
	return nil
}

// ReceiveResult carries what the receiver task publishes to its
// coordinating task once a stream completes — a message, not a
// back-reference (Design Note §9).
type ReceiveResult struct {
	Artifact             Artifact
	FileTransferDuration time.Duration
	Err                   error
}

// Receive reads a length-prefixed artifact from conn, verifying the
// decoded stream's hash against expectedHash as it arrives. It reports the
// time spent strictly inside the byte stream, separate from however long
// the caller spent establishing the connection.
func Receive(conn net.Conn, expectedHash string) ReceiveResult {
	var lenBuf [8]byte
	if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
		return ReceiveResult{Err: fmt.Errorf("transfer: read length prefix: %w", err)}
	}
	size := binary.BigEndian.Uint64(lenBuf[:])

	start := time.Now()
	hashed := obslog.NewHashingReader(conn)
	buf := make([]byte, size)
	if _, err := io.ReadFull(hashed, buf); err != nil {
		return ReceiveResult{Err: fmt.Errorf("transfer: read artifact: %w", err)}
	}
	duration := time.Since(start)

	actualHash := hashed.Sum()
	artifact := Artifact{Data: buf, Size: int64(size), SHA256: actualHash}

	var err error
	if expectedHash != "" && actualHash != expectedHash {
		err = fmt.Errorf("transfer: hash mismatch: got %s want %s", actualHash, expectedHash)
	}
	return ReceiveResult{Artifact: artifact, FileTransferDuration: duration, Err: err}
}
