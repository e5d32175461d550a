package bthome

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pion/dtls/v2/pkg/crypto/ccm"
)

const (

	// KeySize is the length of a BThome bind key
	KeySize = 16

	// MACSize is the length of a BLE device address
	MACSize = 6

	nonceSize   = 13
	tagSize     = 4
	counterSize = 4
)

// encryptor holds the state of the AES-CCM framing for one device identity
type encryptor struct {
	aead    cipher.AEAD
	mac     [MACSize]byte
	counter uint32
}

func newEncryptor(key []byte, mac []byte, counter uint32) (*encryptor, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: bind key must be %d bytes (have %d)", ErrInvalidIdentity, KeySize, len(key))
	}
	if len(mac) != MACSize {
		return nil, fmt.Errorf("%w: MAC address must be %d bytes (have %d)", ErrInvalidIdentity, MACSize, len(mac))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncryptionFailure, err)
	}
	aead, err := ccm.NewCCM(block, tagSize, nonceSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncryptionFailure, err)
	}

	e := &encryptor{
		aead:    aead,
		counter: counter,
	}
	copy(e.mac[:], mac)

	return e, nil
}

// nonce assembles the 13 byte nonce: MAC (reversed), service UUID, info byte, counter
func (e *encryptor) nonce(info byte) (nonce [nonceSize]byte) {
	for i := 0; i < MACSize; i++ {
		nonce[i] = e.mac[MACSize-1-i]
	}
	binary.LittleEndian.PutUint16(nonce[6:8], ServiceUUID)
	nonce[8] = info
	binary.LittleEndian.PutUint32(nonce[9:13], e.counter)

	return
}

// seal encrypts payload into dst as ciphertext ++ counter ++ tag and advances
// the counter. dst must hold len(payload)+8 bytes. Nothing is written on failure.
func (e *encryptor) seal(dst, payload []byte, info byte) (n int, err error) {
	if e.counter == math.MaxUint32 {
		return 0, ErrCounterExhausted
	}
	if len(dst) < len(payload)+encryptionExtra {
		return 0, fmt.Errorf("%w: need %d bytes for encrypted body", ErrBufferTooSmall, len(payload)+encryptionExtra)
	}

	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("%w: %v", ErrEncryptionFailure, r)
		}
	}()

	nonce := e.nonce(info)

	var sealed [maxPayloadSize + tagSize]byte
	out := e.aead.Seal(sealed[:0], nonce[:], payload, nil)
	if len(out) != len(payload)+tagSize {
		return 0, fmt.Errorf("%w: unexpected sealed length %d", ErrEncryptionFailure, len(out))
	}

	n = copy(dst, out[:len(payload)])
	n += copy(dst[n:], nonce[9:13])
	n += copy(dst[n:], out[len(payload):])

	e.counter++

	return n, nil
}
