// Package sniffer classifies raw statement blobs before the expensive decode
// step. It only inspects leading magic bytes; decryption itself is delegated
// to the spreadsheet decoder once a password is available.
package sniffer

import (
	"bytes"
	"errors"
)

var (
	ErrEmptyFile     = errors.New("file is empty")
	ErrUnknownFormat = errors.New("file is not a recognized spreadsheet container")
)

// Compound File Binary signature. Password-protected workbooks are wrapped
// in this OLE2 container regardless of the inner format.
var cfbSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Plain XLSX is a zip archive.
var zipSignature = []byte{0x50, 0x4B, 0x03, 0x04}

// IsEncrypted reports whether the blob is an encrypted compound-document
// container.
func IsEncrypted(data []byte) bool {
	return bytes.HasPrefix(data, cfbSignature)
}

// IsValidFormat reports whether the blob is either a plain zip-style workbook
// or an encrypted compound-document container.
func IsValidFormat(data []byte) bool {
	return bytes.HasPrefix(data, zipSignature) || IsEncrypted(data)
}

// Validate is the combined gate: nil for any parseable container, a sentinel
// error otherwise.
func Validate(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyFile
	}
	if len(data) < len(cfbSignature) || !IsValidFormat(data) {
		return ErrUnknownFormat
	}
	return nil
}
