package qube

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

// Binary persistence is a supplemental framing this module adds on top of
// the wire JSON format (C8), grounded on the teacher's index persistence
// format: a magic number, a format version, the JSON payload, and a
// trailing CRC32 over that payload, written via a temp-file-then-rename
// so a reader never observes a half-written file.
const (
	binaryMagicNumber  = 0x51554245 // "QUBE"
	binaryFormatVersion = 1
)

// SaveBinary writes n to path in the framed binary format.
func SaveBinary(n *Node, path string) error {
	payload, err := ToJSON(n)
	if err != nil {
		return err
	}
	return atomicWriteFile(path, func(f *os.File) error {
		w := bufio.NewWriter(f)
		if err := binary.Write(w, binary.LittleEndian, uint32(binaryMagicNumber)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(binaryFormatVersion)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint64(len(payload))); err != nil {
			return err
		}
		if _, err := w.Write(payload); err != nil {
			return err
		}
		checksum := crc32.ChecksumIEEE(payload)
		if err := binary.Write(w, binary.LittleEndian, checksum); err != nil {
			return err
		}
		return w.Flush()
	})
}

// LoadBinary reads a tree previously written by SaveBinary, validating
// the magic number, format version, and checksum before parsing.
func LoadBinary(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newError(ErrorKindInvariantViolation, "binary", "LoadBinary", "failed to open file").withCause(err).withPath(path)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var magic, version uint32
	var length uint64
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, newError(ErrorKindInvariantViolation, "binary", "LoadBinary", "failed to read magic number").withCause(err)
	}
	if magic != binaryMagicNumber {
		return nil, newError(ErrorKindInvariantViolation, "binary", "LoadBinary",
			fmt.Sprintf("bad magic number: expected %x, got %x", binaryMagicNumber, magic))
	}
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, newError(ErrorKindInvariantViolation, "binary", "LoadBinary", "failed to read format version").withCause(err)
	}
	if version != binaryFormatVersion {
		return nil, newError(ErrorKindInvariantViolation, "binary", "LoadBinary",
			fmt.Sprintf("unsupported format version %d", version))
	}
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, newError(ErrorKindInvariantViolation, "binary", "LoadBinary", "failed to read payload length").withCause(err)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, newError(ErrorKindInvariantViolation, "binary", "LoadBinary", "truncated payload").withCause(err)
	}
	var checksum uint32
	if err := binary.Read(r, binary.LittleEndian, &checksum); err != nil {
		return nil, newError(ErrorKindInvariantViolation, "binary", "LoadBinary", "failed to read checksum").withCause(err)
	}
	if crc32.ChecksumIEEE(payload) != checksum {
		return nil, newError(ErrorKindInvariantViolation, "binary", "LoadBinary", "checksum mismatch, file is corrupt")
	}
	return FromJSON(payload)
}

// atomicWriteFile mirrors the teacher's atomicWrite: write to a temp file
// alongside the destination, sync, close, then rename over the final
// path so a crash mid-write never leaves a corrupt file at path.
func atomicWriteFile(path string, writeFunc func(*os.File) error) error {
	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return newError(ErrorKindInvariantViolation, "binary", "atomicWriteFile", "failed to create temp file").withCause(err)
	}

	writeErr := writeFunc(f)
	if syncErr := f.Sync(); syncErr != nil && writeErr == nil {
		writeErr = syncErr
	}
	if closeErr := f.Close(); closeErr != nil && writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tempPath)
		return newError(ErrorKindInvariantViolation, "binary", "atomicWriteFile", "write failed").withCause(writeErr)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return newError(ErrorKindInvariantViolation, "binary", "atomicWriteFile", "rename failed").withCause(err)
	}
	return nil
}

