// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_audio

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync/atomic"
)

const wavHeaderSize = 44

// WAVWriter streams PCM16 audio to a WAV file. The header is written with
// placeholder sizes up front and patched on Close, so a crash mid-session
// leaves a file that recovery tooling can still re-header.
// Writes come from the single fan-out pump; BytesWritten may be read from
// other goroutines (progress display), hence the atomic payload counter.
type WAVWriter struct {
	file    *os.File
	config  Config
	dataLen atomic.Uint32
}

// NewWAVWriter creates (truncating) the destination file and writes the
// RIFF/fmt/data header.
func NewWAVWriter(path string, config Config) (*WAVWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create wav destination %s: %w", path, err)
	}
	w := &WAVWriter{file: file, config: config}
	if err := w.writeHeader(); err != nil {
		file.Close()
		os.Remove(path)
		return nil, err
	}
	return w, nil
}

func (w *WAVWriter) writeHeader() error {
	var header [wavHeaderSize]byte
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+w.dataLen.Load())
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], AudioPCMFormat)
	binary.LittleEndian.PutUint16(header[22:24], uint16(w.config.Channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(w.config.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(w.config.BytesPerSecond()))
	binary.LittleEndian.PutUint16(header[32:34], uint16(AudioBytesPerSample*w.config.Channels))
	binary.LittleEndian.PutUint16(header[34:36], AudioBitsPerSample)

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], w.dataLen.Load())

	if _, err := w.file.WriteAt(header[:], 0); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	return nil
}

// Write appends one PCM chunk after the current data payload.
func (w *WAVWriter) Write(pcm []byte) error {
	if len(pcm) == 0 {
		return nil
	}
	if _, err := w.file.WriteAt(pcm, int64(wavHeaderSize)+int64(w.dataLen.Load())); err != nil {
		return fmt.Errorf("write wav data: %w", err)
	}
	w.dataLen.Add(uint32(len(pcm)))
	return nil
}

// BytesWritten returns the PCM payload size so far.
func (w *WAVWriter) BytesWritten() int {
	return int(w.dataLen.Load())
}

// Close patches the header sizes and closes the file. Safe to call once on
// every exit path.
func (w *WAVWriter) Close() error {
	if w.file == nil {
		return nil
	}
	headerErr := w.writeHeader()
	closeErr := w.file.Close()
	w.file = nil
	if headerErr != nil {
		return headerErr
	}
	return closeErr
}
