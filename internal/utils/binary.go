package utils

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// sniffLength defines the maximum number of bytes read when detecting binary content.
const sniffLength = 8000

// binaryExtensions lists formats treated as binary without reading them.
var binaryExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".bmp": {}, ".ico": {}, ".tiff": {}, ".tif": {}, ".webp": {},
	".psd": {}, ".raw": {}, ".cr2": {}, ".nef": {},
	".mp4": {}, ".avi": {}, ".mkv": {}, ".mov": {}, ".wmv": {}, ".flv": {}, ".webm": {}, ".m4v": {}, ".mpg": {}, ".mpeg": {},
	".mp3": {}, ".wav": {}, ".flac": {}, ".aac": {}, ".ogg": {}, ".wma": {}, ".m4a": {}, ".opus": {},
	".zip": {}, ".tar": {}, ".gz": {}, ".bz2": {}, ".xz": {}, ".7z": {}, ".rar": {}, ".jar": {}, ".war": {},
	".exe": {}, ".dll": {}, ".so": {}, ".dylib": {}, ".bin": {}, ".o": {}, ".a": {}, ".lib": {}, ".pyc": {}, ".pyo": {}, ".pyd": {},
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {}, ".ppt": {}, ".pptx": {}, ".odt": {}, ".ods": {}, ".odp": {},
	".ttf": {}, ".otf": {}, ".woff": {}, ".woff2": {}, ".eot": {},
	".db": {}, ".sqlite": {}, ".sqlite3": {}, ".mdb": {},
	".class": {}, ".dex": {}, ".apk": {}, ".ipa": {}, ".dmg": {}, ".iso": {}, ".img": {},
	".pickle": {}, ".pkl": {}, ".npy": {}, ".npz": {}, ".h5": {}, ".hdf5": {},
	".parquet": {}, ".avro": {}, ".orc": {}, ".wasm": {},
}

// HasBinaryExtension reports whether path names a well-known binary format.
func HasBinaryExtension(path string) bool {
	_, found := binaryExtensions[strings.ToLower(filepath.Ext(path))]
	return found
}

// IsBinary reports whether the provided byte slice appears to contain binary data.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	sample := data
	if len(sample) >= sniffLength {
		sample = TrimPartialRune(sample[:sniffLength])
	}
	if !utf8.Valid(sample) {
		return true
	}
	for _, byteValue := range sample {
		if byteValue == 0 {
			return true
		}
	}
	return false
}

// TrimPartialRune drops a trailing incomplete UTF-8 sequence left by cutting
// data at an arbitrary byte offset.
func TrimPartialRune(data []byte) []byte {
	for back := 1; back <= utf8.UTFMax && back <= len(data); back++ {
		start := len(data) - back
		if !utf8.RuneStart(data[start]) {
			continue
		}
		if utf8.FullRune(data[start:]) {
			return data
		}
		return data[:start]
	}
	return data
}
