package codec

import (
	"bytes"
	"compress/zlib"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// Record format versions. Every stored byte string starts with the
// two-byte magic "CK" followed by a version byte.
const (
	// FormatLegacy is the original format: JSON encrypted directly,
	// no compression stage.
	FormatLegacy byte = 1

	// FormatCompressed is the current format: JSON compressed with
	// zlib before encryption.
	FormatCompressed byte = 2
)

var magic = []byte{'C', 'K'}

const headerLen = 3 // magic + version byte

// DecodeStage identifies where in the pipeline a decode failed.
type DecodeStage string

const (
	StageHeader     DecodeStage = "header"
	StageAuth       DecodeStage = "auth"
	StageDecompress DecodeStage = "decompress"
	StageParse      DecodeStage = "parse"
)

// DecodeError reports a failed record decode. Any authentication,
// decompression or parse failure surfaces as a DecodeError; callers
// never see partially populated data.
type DecodeError struct {
	Stage DecodeStage
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("decode record: %s failure", e.Stage)
	}
	return fmt.Sprintf("decode record: %s failure: %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Codec serializes structured values to encrypted byte strings and back.
// It is the single source of truth for every on-disk record format.
// Construct one explicitly and pass it to whoever persists records;
// there is no package-level instance.
type Codec struct {
	key [KeySize]byte
}

// New creates a Codec sealing records with the given key.
func New(key [KeySize]byte) *Codec {
	return &Codec{key: key}
}

// Encode serializes v to JSON, compresses it, encrypts the result and
// prepends the current format header.
func (c *Codec) Encode(v any) ([]byte, error) {
	plain, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("init compressor: %w", err)
	}
	if _, err := zw.Write(plain); err != nil {
		return nil, fmt.Errorf("compress record: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress record: %w", err)
	}

	return c.seal(FormatCompressed, buf.Bytes())
}

// EncodeLegacy produces a record in the uncompressed legacy format.
// Kept for round-trip tests against stores written by old builds; new
// records always use Encode.
func (c *Codec) EncodeLegacy(v any) ([]byte, error) {
	plain, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return c.seal(FormatLegacy, plain)
}

// Decode reverses Encode into v. Both historical formats are accepted;
// the header tag decides which pipeline runs. Failures of any stage
// return a *DecodeError and leave v untouched.
func (c *Codec) Decode(data []byte, v any) error {
	version, sealed, err := splitHeader(data)
	if err != nil {
		return &DecodeError{Stage: StageHeader, Err: err}
	}

	plain, err := c.open(sealed)
	if err != nil {
		return &DecodeError{Stage: StageAuth, Err: err}
	}

	if version == FormatCompressed {
		zr, err := zlib.NewReader(bytes.NewReader(plain))
		if err != nil {
			return &DecodeError{Stage: StageDecompress, Err: err}
		}
		plain, err = io.ReadAll(zr)
		if err != nil {
			return &DecodeError{Stage: StageDecompress, Err: err}
		}
		if err := zr.Close(); err != nil {
			return &DecodeError{Stage: StageDecompress, Err: err}
		}
	}

	if err := json.Unmarshal(plain, v); err != nil {
		return &DecodeError{Stage: StageParse, Err: err}
	}
	return nil
}

func (c *Codec) seal(version byte, plain []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(c.key[:])
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	out := make([]byte, 0, headerLen+len(nonce)+len(plain)+aead.Overhead())
	out = append(out, magic...)
	out = append(out, version)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plain, nil), nil
}

func (c *Codec) open(sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(c.key[:])
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, fmt.Errorf("record truncated: %d bytes", len(sealed))
	}
	nonce, ct := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	return aead.Open(nil, nonce, ct, nil)
}

// splitHeader validates the magic and returns the format version and
// the sealed payload that follows the header.
func splitHeader(data []byte) (byte, []byte, error) {
	if len(data) < headerLen {
		return 0, nil, fmt.Errorf("record too short: %d bytes", len(data))
	}
	if !bytes.Equal(data[:2], magic) {
		return 0, nil, fmt.Errorf("unrecognized record magic %q", data[:2])
	}
	version := data[2]
	if version != FormatLegacy && version != FormatCompressed {
		return 0, nil, fmt.Errorf("unknown record format version %d", version)
	}
	return version, data[headerLen:], nil
}
