package bthome

import (
	"encoding/binary"
	"fmt"
)

const (

	// ServiceUUID is the 16 bit BThome service UUID (D2 FC on air)
	ServiceUUID uint16 = 0xFCD2

	adTypeFlags       = 0x01
	adTypeShortName   = 0x08
	adTypeName        = 0x09
	adTypeServiceData = 0x16

	flagsGeneralDiscoverableNoBREDR = 0x06

	infoEncrypted = 0x01
	infoTrigger   = 0x04
	infoVersion2  = 0x40

	adHeaderSize = 2 // length, type
)

// infoByte returns the BThome device information byte
func infoByte(encrypted, trigger bool) byte {
	info := byte(infoVersion2)
	if trigger {
		info |= infoTrigger
	}
	if encrypted {
		info |= infoEncrypted
	}
	return info
}

// encode serializes the pending measurements into dst as a complete advertisement
// (flags, service data, optional name). It returns the number of bytes written;
// on error nothing is written to dst.
func (d *Device) encode(dst []byte) (int, error) {
	limit := min(len(dst), MaxAdvertisementSize)

	var payload [maxPayloadSize]byte
	payloadLen := d.acc.sortedPayload(payload[:])

	bodyLen := payloadLen
	if d.enc != nil {
		bodyLen += encryptionExtra
	}
	if envelopeSize+bodyLen > limit {
		return 0, fmt.Errorf("%w: advertisement needs %d bytes, buffer holds %d", ErrBufferTooSmall, envelopeSize+bodyLen, limit)
	}

	var buf [MaxAdvertisementSize]byte
	buf[0] = flagsSize - 1
	buf[1] = adTypeFlags
	buf[2] = flagsGeneralDiscoverableNoBREDR

	buf[3] = byte(serviceDataSize - 1 + infoSize + bodyLen)
	buf[4] = adTypeServiceData
	binary.LittleEndian.PutUint16(buf[5:7], ServiceUUID)

	info := infoByte(d.enc != nil, d.triggerBased)
	buf[7] = info

	n := envelopeSize
	if d.enc != nil {
		written, err := d.enc.seal(buf[n:], payload[:payloadLen], info)
		if err != nil {
			return 0, err
		}
		n += written
	} else {
		n += copy(buf[n:], payload[:payloadLen])
	}

	n += appendName(buf[n:limit], d.completeName, d.shortName)

	return copy(dst, buf[:n]), nil
}

// appendName writes the complete name if it fits, the short name otherwise,
// and nothing if neither fits
func appendName(dst []byte, complete, short string) int {
	for _, candidate := range []struct {
		name   string
		adType byte
	}{
		{complete, adTypeName},
		{short, adTypeShortName},
	} {
		if candidate.name == "" || adHeaderSize+len(candidate.name) > len(dst) {
			continue
		}
		dst[0] = byte(len(candidate.name) + 1)
		dst[1] = candidate.adType
		return adHeaderSize + copy(dst[adHeaderSize:], candidate.name)
	}

	return 0
}
